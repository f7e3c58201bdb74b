package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"vibesync/internal/ai/chain"
	"vibesync/internal/model/analysis"
	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/mixer"
)

var (
	ErrUnsupportedVideo = errors.New("不支持的视频格式")
	ErrVideoTooLong     = errors.New("视频时长超出限制")
)

// VideoMIMETypes 支持分析的视频格式
var VideoMIMETypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
}

// VideoAnalyzer 视频分析能力
type VideoAnalyzer interface {
	AnalyzeVideo(ctx context.Context, req *chain.VideoAnalysisRequest) (*analysis.VideoAnalysis, error)
}

// AnalyzeRequest 视频分析请求
type AnalyzeRequest struct {
	Video       io.Reader
	Filename    string
	ContentType string
}

// AnalysisService 视频分析服务
type AnalysisService interface {
	// Analyze 探测视频时长后交给大模型生成配乐方案
	Analyze(ctx context.Context, req *AnalyzeRequest) (*analysis.VideoAnalysis, error)
}

type analysisService struct {
	analyzer    VideoAnalyzer
	prober      mixer.MediaProber
	store       *assetstore.Store
	maxDuration float64
}

// NewAnalysisService 创建视频分析服务，maxDuration <= 0 表示不限制时长
func NewAnalysisService(analyzer VideoAnalyzer, prober mixer.MediaProber, store *assetstore.Store, maxDuration float64) AnalysisService {
	return &analysisService{
		analyzer:    analyzer,
		prober:      prober,
		store:       store,
		maxDuration: maxDuration,
	}
}

// ResolveVideoMIME 根据 Content-Type 或扩展名确定视频格式
func ResolveVideoMIME(contentType, filename string) (string, bool) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, mime := range VideoMIMETypes {
		if contentType == mime {
			return mime, true
		}
	}
	mime, ok := VideoMIMETypes[strings.ToLower(filepath.Ext(filename))]
	return mime, ok
}

func (s *analysisService) Analyze(ctx context.Context, req *AnalyzeRequest) (*analysis.VideoAnalysis, error) {
	mimeType, ok := ResolveVideoMIME(req.ContentType, req.Filename)
	if !ok {
		return nil, ErrUnsupportedVideo
	}

	f, err := s.store.WorkFile("analyze-*" + filepath.Ext(req.Filename))
	if err != nil {
		return nil, err
	}
	path := f.Name()
	defer assetstore.RemoveWorkFile(path)

	_, err = io.Copy(f, req.Video)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}

	var duration float64
	if probe, err := s.prober.Probe(ctx, path); err != nil {
		log.Warn().Err(err).Msg("视频探测失败，时长未知")
	} else {
		duration = probe.DurationSeconds()
	}
	if s.maxDuration > 0 && duration > s.maxDuration {
		return nil, fmt.Errorf("%w: %.1fs > %.0fs", ErrVideoTooLong, duration, s.maxDuration)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}

	result, err := s.analyzer.AnalyzeVideo(ctx, &chain.VideoAnalysisRequest{
		Video:           data,
		MIMEType:        mimeType,
		DurationSeconds: duration,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("bpm", result.BPM).
		Str("key", result.Key).
		Str("recommended_mix", result.AudioProfile.RecommendedMix).
		Int("segments", len(result.Segments)).
		Msg("视频分析完成")
	return result, nil
}
