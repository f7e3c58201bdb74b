package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"vibesync/internal/model/music"
	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/ffmpeg"
	"vibesync/internal/pkg/id"
	"vibesync/internal/pkg/mixer"
	"vibesync/internal/pkg/storage"
)

var (
	ErrMusicNotFound   = errors.New("音乐文件不存在")
	ErrInvalidMixMode  = errors.New("无效的混音模式")
	ErrInvalidFade     = errors.New("淡入淡出时长必须在 0 到 3 秒之间")
	ErrOutputIntegrity = errors.New("合成结果缺少输出文件或音频流")
)

const (
	// maxEngineTail 错误信息中保留的 ffmpeg stderr 字符数
	maxEngineTail = 500
	// defaultVideoDuration 无法探测视频时长时使用
	defaultVideoDuration = 30.0
	// MaxFadeSeconds 淡入淡出时长上限
	MaxFadeSeconds = 3.0
)

// MergeEngineError 主流程与降级流程都失败
type MergeEngineError struct {
	Tail string // ffmpeg stderr 末尾
	Err  error
}

func (e *MergeEngineError) Error() string {
	if e.Tail == "" {
		return fmt.Sprintf("ffmpeg merge failed: %v", e.Err)
	}
	return "ffmpeg merge failed: " + e.Tail
}

func (e *MergeEngineError) Unwrap() error { return e.Err }

// MediaEngine 合成所需的媒体能力
type MediaEngine interface {
	mixer.MediaProber
	mixer.LoudnessMeter
	Run(ctx context.Context, args ...string) error
}

// MergeRecorder 合成记录持久化
type MergeRecorder interface {
	Create(ctx context.Context, job *music.MergeJob) error
}

// MixOptions 混音参数
type MixOptions struct {
	Mode              mixer.MixMode
	KeepOriginalAudio bool
	FadeIn            float64
	FadeOut           float64
	Segments          []mixer.Segment
}

// MergeRequest 合成请求
type MergeRequest struct {
	UserID        string
	Video         io.Reader
	VideoFilename string
	MusicFileID   string
	Options       MixOptions
}

// MergeResult 合成结果
type MergeResult struct {
	FileID          string  `json:"file_id"`
	OutputKey       string  `json:"-"`
	DurationSeconds float64 `json:"duration_seconds"`
	Ducking         bool    `json:"ducking"`
	UsedFallback    bool    `json:"used_fallback"`
}

// MergeReport 一次 ffmpeg 合成的细节
type MergeReport struct {
	VideoDuration float64
	VideoHasAudio bool
	OriginalLUFS  float64
	MusicLUFS     float64
	Curve         mixer.VolumeCurve
	Graph         mixer.Graph
	UsedFallback  bool
}

// MergeService 视频配乐合成服务
type MergeService interface {
	// Merge 把已生成的音乐混入上传的视频，结果发布到 merged/<id>_merged.mp4
	Merge(ctx context.Context, req *MergeRequest) (*MergeResult, error)

	// MergeFiles 对本地文件执行同样的合成流程
	MergeFiles(ctx context.Context, videoPath, musicPath, outputPath string, opts MixOptions) (*MergeReport, error)
}

// MergeConfig 合成服务配置
type MergeConfig struct {
	AudioBitrate  string
	SegmentPolicy mixer.SegmentPolicy
}

type mergeService struct {
	store    *assetstore.Store
	engine   MediaEngine
	analyzer *mixer.Analyzer
	cfg      MergeConfig
	jobs     MergeRecorder
}

// NewMergeService 创建合成服务，jobs 为 nil 时不记录合成历史
func NewMergeService(store *assetstore.Store, engine MediaEngine, cfg MergeConfig, jobs MergeRecorder) MergeService {
	if cfg.SegmentPolicy == "" {
		cfg.SegmentPolicy = mixer.PolicyKeep
	}
	return &mergeService{
		store:    store,
		engine:   engine,
		analyzer: mixer.NewAnalyzer(engine, engine),
		cfg:      cfg,
		jobs:     jobs,
	}
}

// ValidateFade 检查淡入淡出时长
func ValidateFade(fadeIn, fadeOut float64) error {
	if fadeIn < 0 || fadeIn > MaxFadeSeconds || fadeOut < 0 || fadeOut > MaxFadeSeconds {
		return ErrInvalidFade
	}
	return nil
}

func (s *mergeService) Merge(ctx context.Context, req *MergeRequest) (*MergeResult, error) {
	if !id.IsFileID(req.MusicFileID) {
		return nil, ErrMusicNotFound
	}

	musicPath, release, err := s.store.Localize(ctx, assetstore.MusicKey(req.MusicFileID, "mp3"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMusicNotFound
		}
		return nil, fmt.Errorf("resolve music: %w", err)
	}
	defer release()

	fileID := id.NewFileID()
	videoPath, err := s.persistVideo(fileID, req.Video, req.VideoFilename)
	if err != nil {
		return nil, err
	}
	defer assetstore.RemoveWorkFile(videoPath)

	outputPath := s.store.WorkPath(fileID + "_merged.mp4")
	report, err := s.MergeFiles(ctx, videoPath, musicPath, outputPath, req.Options)
	if err != nil {
		assetstore.RemoveWorkFile(outputPath)
		s.record(ctx, fileID, req, report, "", err)
		return nil, err
	}

	outputKey := assetstore.MergedKey(fileID)
	if err := s.store.PutFile(ctx, outputKey, outputPath); err != nil {
		assetstore.RemoveWorkFile(outputPath)
		return nil, fmt.Errorf("publish merged video: %w", err)
	}
	s.record(ctx, fileID, req, report, outputKey, nil)

	log.Info().
		Str("file_id", fileID).
		Str("music_file_id", req.MusicFileID).
		Str("mix_mode", string(req.Options.Mode.Normalize())).
		Bool("ducking", report.Graph.Ducking).
		Bool("used_fallback", report.UsedFallback).
		Msg("视频合成完成")

	return &MergeResult{
		FileID:          fileID,
		OutputKey:       outputKey,
		DurationSeconds: report.VideoDuration,
		Ducking:         report.Graph.Ducking,
		UsedFallback:    report.UsedFallback,
	}, nil
}

func (s *mergeService) MergeFiles(ctx context.Context, videoPath, musicPath, outputPath string, opts MixOptions) (*MergeReport, error) {
	mode := opts.Mode.Normalize()
	report := &MergeReport{VideoDuration: defaultVideoDuration}

	if probe, err := s.engine.Probe(ctx, videoPath); err != nil {
		log.Warn().Err(err).Str("path", videoPath).Msg("视频探测失败，按无音频处理")
	} else {
		report.VideoHasAudio = probe.HasAudio()
		if d := probe.DurationSeconds(); d > 0 {
			report.VideoDuration = d
		}
	}

	segments, err := mixer.ApplyPolicy(opts.Segments, report.VideoDuration, s.cfg.SegmentPolicy)
	if err != nil {
		return report, err
	}

	report.MusicLUFS = s.analyzer.Measure(ctx, musicPath)
	report.OriginalLUFS = mixer.SilentLUFS
	if report.VideoHasAudio {
		report.OriginalLUFS = s.analyzer.MeasureKnown(ctx, videoPath, true)
	}

	log.Info().
		Float64("video_duration", report.VideoDuration).
		Bool("video_has_audio", report.VideoHasAudio).
		Float64("original_lufs", report.OriginalLUFS).
		Float64("music_lufs", report.MusicLUFS).
		Str("mix_mode", string(mode)).
		Int("segments", len(segments)).
		Msg("开始合成")

	report.Curve = mixer.BuildCurve(segments, report.OriginalLUFS, report.MusicLUFS, mode)
	params := mixer.GraphParams{
		VideoHasAudio:     report.VideoHasAudio,
		KeepOriginalAudio: opts.KeepOriginalAudio,
		Mode:              mode,
		VideoDuration:     report.VideoDuration,
		FadeIn:            opts.FadeIn,
		FadeOut:           opts.FadeOut,
		Curve:             report.Curve,
		AudioBitrate:      s.cfg.AudioBitrate,
	}

	report.Graph = mixer.Compose(params)
	if err := s.engine.Run(ctx, report.Graph.Args(videoPath, musicPath, outputPath)...); err != nil {
		log.Warn().
			Str("stderr", engineTail(err)).
			Msg("主滤镜图执行失败，使用降级滤镜图")

		report.Graph = mixer.ComposeFallback(params)
		report.UsedFallback = true
		if err := s.engine.Run(ctx, report.Graph.Args(videoPath, musicPath, outputPath)...); err != nil {
			return report, &MergeEngineError{Tail: engineTail(err), Err: err}
		}
	}

	if err := s.verifyOutput(ctx, outputPath); err != nil {
		return report, err
	}
	return report, nil
}

// verifyOutput 输出文件必须存在且含有音频流
func (s *mergeService) verifyOutput(ctx context.Context, outputPath string) error {
	probe, err := s.engine.Probe(ctx, outputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputIntegrity, err)
	}
	if !probe.HasAudio() {
		return fmt.Errorf("%w: no audio stream", ErrOutputIntegrity)
	}
	return nil
}

// persistVideo 把上传的视频写入工作目录
func (s *mergeService) persistVideo(fileID string, video io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	f, err := s.store.WorkFile(fileID + "_input-*" + ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, video); err != nil {
		f.Close()
		assetstore.RemoveWorkFile(f.Name())
		return "", fmt.Errorf("save video: %w", err)
	}
	if err := f.Close(); err != nil {
		assetstore.RemoveWorkFile(f.Name())
		return "", fmt.Errorf("save video: %w", err)
	}
	return f.Name(), nil
}

func (s *mergeService) record(ctx context.Context, fileID string, req *MergeRequest, report *MergeReport, outputKey string, mergeErr error) {
	if s.jobs == nil {
		return
	}
	job := &music.MergeJob{
		ID:                fileID,
		UserID:            req.UserID,
		MusicFileID:       req.MusicFileID,
		MixMode:           string(req.Options.Mode.Normalize()),
		KeepOriginalAudio: req.Options.KeepOriginalAudio,
		FadeIn:            req.Options.FadeIn,
		FadeOut:           req.Options.FadeOut,
		SegmentCount:      len(req.Options.Segments),
		OutputKey:         outputKey,
		Status:            music.MergeStatusSucceeded,
		CreatedAt:         time.Now(),
	}
	if report != nil {
		job.VideoDuration = report.VideoDuration
		job.VideoHasAudio = report.VideoHasAudio
		job.OriginalLUFS = report.OriginalLUFS
		job.MusicLUFS = report.MusicLUFS
		job.Ducking = report.Graph.Ducking
		job.UsedFallback = report.UsedFallback
	}
	if mergeErr != nil {
		job.Status = music.MergeStatusFailed
		job.Error = mergeErr.Error()
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("保存合成记录失败")
	}
}

// engineTail 取 ffmpeg 错误输出的末尾
func engineTail(err error) string {
	var execErr *ffmpeg.ExecError
	if errors.As(err, &execErr) {
		if tail := execErr.Tail(maxEngineTail); tail != "" {
			return tail
		}
	}
	return ffmpeg.TailString(err.Error(), maxEngineTail)
}
