package server

import (
	"context"
	"fmt"

	"vibesync/internal/config"
	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/ffmpeg"
	"vibesync/internal/pkg/mixer"
	"vibesync/internal/pkg/musicgen"
	"vibesync/internal/pkg/storagefactory"
	"vibesync/internal/service"
)

// NewAssetStore 根据存储配置创建资源仓库
func NewAssetStore(ctx context.Context, cfg *config.Config) (*assetstore.Store, error) {
	backend, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return assetstore.New(backend, cfg.Media.WorkDir)
}

// NewFFmpegClient 根据媒体配置创建 ffmpeg 客户端
func NewFFmpegClient(cfg *config.MediaConfig) *ffmpeg.Client {
	return ffmpeg.NewClient(ffmpeg.Options{
		FFmpegPath:    cfg.FFmpegPath,
		FFprobePath:   cfg.FFprobePath,
		Timeout:       cfg.Timeout,
		MaxConcurrent: cfg.MaxConcurrent,
	})
}

// NewMergeService 创建合成服务，jobs 为 nil 时不记录历史
func NewMergeService(cfg *config.Config, store *assetstore.Store, engine service.MediaEngine, jobs service.MergeRecorder) service.MergeService {
	return service.NewMergeService(store, engine, service.MergeConfig{
		AudioBitrate:  cfg.Mix.AudioBitrate,
		SegmentPolicy: mixer.SegmentPolicy(cfg.Mix.SegmentPolicy),
	}, jobs)
}

// NewMusicService 创建音乐生成服务
func NewMusicService(ctx context.Context, cfg *config.Config, store *assetstore.Store, transcoder service.Transcoder, tracks service.TrackRecorder) (service.MusicService, error) {
	generator, err := musicgen.NewClient(ctx, musicgen.Config{
		Project:     cfg.Music.Project,
		Location:    cfg.Music.Location,
		Model:       cfg.Music.Model,
		Endpoint:    cfg.Music.Endpoint,
		AccessToken: cfg.Music.AccessToken,
		Timeout:     cfg.Music.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return service.NewMusicService(generator, transcoder, store, service.MusicConfig{
		MaxAttempts:  cfg.Music.MaxAttempts,
		PromptBudget: cfg.Music.PromptBudget,
		Variants:     cfg.Music.Variants,
		MP3Bitrate:   cfg.Music.MP3Bitrate,
	}, tracks), nil
}
