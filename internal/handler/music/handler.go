package music

import (
	"strings"

	"vibesync/internal/pkg/mixer"
	"vibesync/internal/service"
)

// Config 音乐接口配置
type Config struct {
	BackendURL     string        // 对外访问地址，用于拼接下载链接
	MaxUploadBytes int64         // 合成接口上传视频的大小上限
	DefaultMode    mixer.MixMode // 未指定 mix_mode 时使用
	DefaultFadeIn  float64
	DefaultFadeOut float64
}

// Handler 音乐模块处理器
type Handler struct {
	musicService   service.MusicService
	mergeService   service.MergeService
	creditService  service.CreditService
	assetService   service.AssetService
	historyService service.HistoryService // 未配置 MongoDB 时为 nil
	cfg            Config
}

// NewHandler 创建音乐模块处理器
func NewHandler(
	musicService service.MusicService,
	mergeService service.MergeService,
	creditService service.CreditService,
	assetService service.AssetService,
	historyService service.HistoryService,
	cfg Config,
) *Handler {
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = mixer.DefaultMode
	}
	return &Handler{
		musicService:   musicService,
		mergeService:   mergeService,
		creditService:  creditService,
		assetService:   assetService,
		historyService: historyService,
		cfg:            cfg,
	}
}

// HistoryEnabled 是否提供历史记录接口
func (h *Handler) HistoryEnabled() bool {
	return h.historyService != nil
}
