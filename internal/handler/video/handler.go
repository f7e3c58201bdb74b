package video

import (
	"vibesync/internal/service"
)

// Handler 视频分析处理器
type Handler struct {
	analysisService service.AnalysisService
	maxUploadBytes  int64
}

// NewHandler 创建视频分析处理器，maxUploadBytes <= 0 表示不限制
func NewHandler(analysisService service.AnalysisService, maxUploadBytes int64) *Handler {
	return &Handler{
		analysisService: analysisService,
		maxUploadBytes:  maxUploadBytes,
	}
}
