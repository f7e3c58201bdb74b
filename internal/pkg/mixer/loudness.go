package mixer

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"vibesync/internal/pkg/ffmpeg"
)

const (
	// SilentLUFS 无音频流或数字静音时的响度
	SilentLUFS = -40.0
	// FallbackLUFS 测量失败时的保守值
	FallbackLUFS = -20.0
)

// MediaProber 媒体探测能力
type MediaProber interface {
	Probe(ctx context.Context, path string) (*ffmpeg.ProbeResult, error)
}

// LoudnessMeter 响度测量能力
type LoudnessMeter interface {
	MeasureLoudness(ctx context.Context, path string) (*ffmpeg.LoudnormStats, error)
}

// Analyzer 响度分析器
// 所有失败都被吸收为哨兵值，不会中断混音流程
type Analyzer struct {
	prober MediaProber
	meter  LoudnessMeter
}

// NewAnalyzer 创建响度分析器
func NewAnalyzer(prober MediaProber, meter LoudnessMeter) *Analyzer {
	return &Analyzer{prober: prober, meter: meter}
}

// Measure 测量文件积分响度（LUFS），先探测是否有音频流
func (a *Analyzer) Measure(ctx context.Context, path string) float64 {
	probe, err := a.prober.Probe(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Float64("lufs", FallbackLUFS).Msg("媒体探测失败，使用默认响度")
		return FallbackLUFS
	}
	return a.MeasureKnown(ctx, path, probe.HasAudio())
}

// MeasureKnown 已知音频流是否存在时直接测量
func (a *Analyzer) MeasureKnown(ctx context.Context, path string, hasAudio bool) float64 {
	if !hasAudio {
		return SilentLUFS
	}

	stats, err := a.meter.MeasureLoudness(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Float64("lufs", FallbackLUFS).Msg("响度测量失败，使用默认响度")
		return FallbackLUFS
	}

	lufs, ok := stats.IntegratedLUFS()
	switch {
	case !ok, math.IsNaN(lufs), math.IsInf(lufs, 1):
		log.Warn().Str("path", path).Str("input_i", stats.InputI).Msg("响度输出无法解析，使用默认响度")
		return FallbackLUFS
	case math.IsInf(lufs, -1):
		return SilentLUFS
	}

	return lufs
}
