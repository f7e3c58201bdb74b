package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"vibesync/internal/model/music"
	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/id"
	"vibesync/internal/pkg/musicgen"
)

// ErrGenerationFailed 所有风格都生成失败
var ErrGenerationFailed = errors.New("音乐生成失败")

const defaultMaxAttempts = 4

// AttemptOutcome 单次生成尝试的结果
type AttemptOutcome string

const (
	OutcomeSuccess        AttemptOutcome = "success"
	OutcomePolicyRejected AttemptOutcome = "policy_rejected"
	OutcomeFailed         AttemptOutcome = "failed"
)

// GenerationAttempt 一次生成尝试，只在单次调用内有效
type GenerationAttempt struct {
	Index   int
	Prompt  string
	Outcome AttemptOutcome
	Err     error
}

// Transcoder WAV 转 MP3
type Transcoder interface {
	TranscodeMP3(ctx context.Context, inputPath, outputPath, bitrate string) error
}

// TrackRecorder 生成记录持久化
type TrackRecorder interface {
	Create(ctx context.Context, track *music.Track) error
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	UserID         string
	Prompt         string
	NegativePrompt string
	Suggestions    []musicgen.Style // 仅多风格生成使用
}

// GeneratedTrack 生成结果
type GeneratedTrack struct {
	FileID          string              `json:"file_id"`
	StyleLabel      string              `json:"style_label"`
	DurationSeconds float64             `json:"duration_seconds"`
	Attempts        []GenerationAttempt `json:"-"`
}

// MusicService 音乐生成服务
type MusicService interface {
	// Generate 生成单首音乐
	Generate(ctx context.Context, req *GenerateRequest) (*GeneratedTrack, error)

	// GenerateVariations 依次生成 Original 与备选风格，部分失败时返回成功的部分
	GenerateVariations(ctx context.Context, req *GenerateRequest) ([]*GeneratedTrack, error)
}

// MusicConfig 音乐生成服务配置
type MusicConfig struct {
	MaxAttempts  int
	PromptBudget int
	Variants     int
	MP3Bitrate   string
}

type musicService struct {
	generator  musicgen.Generator
	transcoder Transcoder
	store      *assetstore.Store
	cfg        MusicConfig
	tracks     TrackRecorder
}

// NewMusicService 创建音乐生成服务，tracks 为 nil 时不记录生成历史
func NewMusicService(generator musicgen.Generator, transcoder Transcoder, store *assetstore.Store, cfg MusicConfig, tracks TrackRecorder) MusicService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.PromptBudget <= 0 {
		cfg.PromptBudget = musicgen.DefaultPromptBudget
	}
	if cfg.Variants <= 0 || cfg.Variants > 3 {
		cfg.Variants = 3
	}
	if cfg.MP3Bitrate == "" {
		cfg.MP3Bitrate = "320k"
	}
	return &musicService{
		generator:  generator,
		transcoder: transcoder,
		store:      store,
		cfg:        cfg,
		tracks:     tracks,
	}
}

func (s *musicService) Generate(ctx context.Context, req *GenerateRequest) (*GeneratedTrack, error) {
	track, err := s.generateStyle(ctx, req, musicgen.OriginalStyle, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return track, nil
}

func (s *musicService) GenerateVariations(ctx context.Context, req *GenerateRequest) ([]*GeneratedTrack, error) {
	styles := musicgen.PlanStyles(req.Suggestions, s.cfg.Variants)
	batchID := id.New()

	var (
		tracks  []*GeneratedTrack
		lastErr error
	)
	for i, style := range styles {
		log.Info().
			Str("batch_id", batchID).
			Str("style", style.Label).
			Int("index", i+1).
			Int("total", len(styles)).
			Msg("开始生成风格")

		track, err := s.generateStyle(ctx, req, style, batchID)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("style", style.Label).Msg("风格生成失败，已跳过")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		tracks = append(tracks, track)
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
	}
	return tracks, nil
}

// generateStyle 单个风格的重试循环
// 策略拒绝时追加修饰语重试，其他错误直接放弃该风格
func (s *musicService) generateStyle(ctx context.Context, req *GenerateRequest, style musicgen.Style, batchID string) (*GeneratedTrack, error) {
	var suffixes []string
	if style.Modifier != "" {
		suffixes = append(suffixes, " "+style.Modifier)
	}

	attempts := make([]GenerationAttempt, 0, s.cfg.MaxAttempts)
	var lastErr error
	for n := 1; n <= s.cfg.MaxAttempts; n++ {
		parts := suffixes
		if modifier := musicgen.RetryModifier(n); modifier != "" {
			parts = append(append([]string(nil), suffixes...), " "+modifier)
		}
		prompt := musicgen.ComposePrompt(req.Prompt, s.cfg.PromptBudget, parts...)

		audio, err := s.generator.Generate(ctx, musicgen.Request{Prompt: prompt, NegativePrompt: req.NegativePrompt})
		if err == nil {
			attempts = append(attempts, GenerationAttempt{Index: n, Prompt: prompt, Outcome: OutcomeSuccess})
			track, err := s.saveTrack(ctx, audio)
			if err != nil {
				return nil, err
			}
			track.StyleLabel = style.Label
			track.Attempts = attempts
			if n > 1 {
				log.Info().Str("style", style.Label).Int("attempt", n).Msg("重试后生成成功")
			}
			s.record(ctx, req, batchID, track, prompt)
			return track, nil
		}

		lastErr = err
		if !errors.Is(err, musicgen.ErrPolicyRejection) {
			attempts = append(attempts, GenerationAttempt{Index: n, Prompt: prompt, Outcome: OutcomeFailed, Err: err})
			return nil, err
		}
		attempts = append(attempts, GenerationAttempt{Index: n, Prompt: prompt, Outcome: OutcomePolicyRejected, Err: err})
		log.Warn().
			Str("style", style.Label).
			Int("attempt", n).
			Int("max_attempts", s.cfg.MaxAttempts).
			Msg("生成被内容策略拒绝，追加修饰语重试")
	}
	return nil, fmt.Errorf("exhausted %d attempts: %w", s.cfg.MaxAttempts, lastErr)
}

// saveTrack 保存 music/<id>.wav 与转码后的 music/<id>.mp3
func (s *musicService) saveTrack(ctx context.Context, audio []byte) (*GeneratedTrack, error) {
	fileID := id.NewFileID()

	wav, err := s.store.WorkFile(fileID + "-*.wav")
	if err != nil {
		return nil, err
	}
	wavPath := wav.Name()
	defer assetstore.RemoveWorkFile(wavPath)

	if _, err := wav.Write(audio); err != nil {
		wav.Close()
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := wav.Close(); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}

	mp3Path := s.store.WorkPath(fileID + ".mp3")
	if err := s.transcoder.TranscodeMP3(ctx, wavPath, mp3Path, s.cfg.MP3Bitrate); err != nil {
		assetstore.RemoveWorkFile(mp3Path)
		return nil, err
	}
	if err := s.store.PutFile(ctx, assetstore.MusicKey(fileID, "mp3"), mp3Path); err != nil {
		assetstore.RemoveWorkFile(mp3Path)
		return nil, fmt.Errorf("store mp3: %w", err)
	}
	if err := s.store.PutFile(ctx, assetstore.MusicKey(fileID, "wav"), wavPath); err != nil {
		return nil, fmt.Errorf("store wav: %w", err)
	}

	return &GeneratedTrack{
		FileID:          fileID,
		DurationSeconds: musicgen.TrackDurationSeconds,
	}, nil
}

func (s *musicService) record(ctx context.Context, req *GenerateRequest, batchID string, track *GeneratedTrack, prompt string) {
	if s.tracks == nil {
		return
	}
	err := s.tracks.Create(ctx, &music.Track{
		ID:              track.FileID,
		UserID:          req.UserID,
		BatchID:         batchID,
		StyleLabel:      track.StyleLabel,
		Prompt:          prompt,
		NegativePrompt:  req.NegativePrompt,
		Attempts:        len(track.Attempts),
		WAVKey:          assetstore.MusicKey(track.FileID, "wav"),
		MP3Key:          assetstore.MusicKey(track.FileID, "mp3"),
		DurationSeconds: track.DurationSeconds,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		log.Warn().Err(err).Str("file_id", track.FileID).Msg("保存生成记录失败")
	}
}
