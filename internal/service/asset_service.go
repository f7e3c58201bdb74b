package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/id"
	"vibesync/internal/pkg/storage"
)

var (
	ErrAssetNotFound = errors.New("文件不存在")
	ErrInvalidFormat = errors.New("格式必须为 mp3 或 wav")
)

// AssetKind 可下载资源类型
type AssetKind string

const (
	AssetTrack  AssetKind = "track"
	AssetMerged AssetKind = "merged"
)

// DownloadRequest 下载请求
type DownloadRequest struct {
	Kind   AssetKind
	FileID string
	Format string // 仅音乐使用：mp3 / wav
}

// DownloadResult 下载结果
// 本地存储返回 LocalPath；其他存储返回 Data 流，开启跳转时返回 RedirectURL
type DownloadResult struct {
	FileName    string        `json:"file_name"`
	ContentType string        `json:"content_type"`
	LocalPath   string        `json:"-"`
	RedirectURL string        `json:"-"`
	Data        io.ReadCloser `json:"-"`
}

// Close 释放下载流
func (r *DownloadResult) Close() error {
	if r.Data == nil {
		return nil
	}
	return r.Data.Close()
}

// AssetService 生成资源下载
type AssetService interface {
	Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error)
}

// AssetConfig 下载配置
type AssetConfig struct {
	RedirectRemote bool          // 非本地存储时跳转到预签名地址，不经服务端转发
	URLExpiry      time.Duration // 预签名地址有效期，0 使用存储默认值
}

type assetService struct {
	store *assetstore.Store
	cfg   AssetConfig
}

// NewAssetService 创建下载服务
func NewAssetService(store *assetstore.Store, cfg AssetConfig) AssetService {
	return &assetService{store: store, cfg: cfg}
}

func (s *assetService) Download(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	if !id.IsFileID(req.FileID) {
		return nil, ErrAssetNotFound
	}

	var key string
	result := &DownloadResult{}
	switch req.Kind {
	case AssetTrack:
		switch req.Format {
		case "mp3":
			result.ContentType = "audio/mpeg"
		case "wav":
			result.ContentType = "audio/wav"
		default:
			return nil, ErrInvalidFormat
		}
		key = assetstore.MusicKey(req.FileID, req.Format)
		result.FileName = fmt.Sprintf("vibesync_%s.%s", req.FileID, req.Format)
	case AssetMerged:
		key = assetstore.MergedKey(req.FileID)
		result.ContentType = "video/mp4"
		result.FileName = fmt.Sprintf("vibesync_%s.mp4", req.FileID)
	default:
		return nil, fmt.Errorf("unknown asset kind %q", req.Kind)
	}

	if s.store.IsLocal() {
		path, _, err := s.store.Localize(ctx, key)
		if err != nil {
			return nil, s.mapErr(key, err)
		}
		result.LocalPath = path
		return result, nil
	}

	if s.cfg.RedirectRemote {
		return s.presign(ctx, key, result)
	}

	data, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, s.mapErr(key, err)
	}
	result.Data = data
	return result, nil
}

// presign 确认对象存在后返回预签名地址
func (s *assetService) presign(ctx context.Context, key string, result *DownloadResult) (*DownloadResult, error) {
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, s.mapErr(key, err)
	}
	if !ok {
		return nil, ErrAssetNotFound
	}
	url, err := s.store.URL(ctx, key, s.cfg.URLExpiry)
	if err != nil {
		return nil, s.mapErr(key, err)
	}
	result.RedirectURL = url
	return result, nil
}

func (s *assetService) mapErr(key string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrAssetNotFound
	}
	log.Error().Err(err).Str("key", key).Msg("读取文件失败")
	return fmt.Errorf("open %s: %w", key, err)
}
