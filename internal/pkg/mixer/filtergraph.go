package mixer

import (
	"fmt"
	"math"
	"strings"
)

const DefaultAudioBitrate = "256k"

// GraphParams 构建滤镜图所需参数
type GraphParams struct {
	VideoHasAudio     bool
	KeepOriginalAudio bool
	Mode              MixMode
	VideoDuration     float64
	FadeIn            float64
	FadeOut           float64
	Curve             VolumeCurve
	AudioBitrate      string
}

// Graph 组合好的滤镜图与输出映射
type Graph struct {
	FilterComplex string
	Maps          []string
	Ducking       bool
	AudioBitrate  string
}

// Compose 构建主混音滤镜图
// 视频有音频且保留原声时走 sidechain 压缩 + amix，否则只输出处理后的音乐
func Compose(p GraphParams) Graph {
	music := musicChain(p)

	if p.VideoHasAudio && p.KeepOriginalAudio {
		duck := p.Mode.Ducking()
		filter := strings.Join([]string{
			"[0:a]asplit=2[orig][sc]",
			music + "[music_raw]",
			"[music_raw][sc]sidechaincompress=" + duck.String() + "[music_ducked]",
			"[orig][music_ducked]amix=inputs=2:duration=first:normalize=0[out]",
		}, ";")
		return Graph{
			FilterComplex: filter,
			Maps:          []string{"0:v", "[out]"},
			Ducking:       true,
			AudioBitrate:  bitrateOrDefault(p.AudioBitrate),
		}
	}

	return musicOnly(music, p)
}

// ComposeFallback 构建降级滤镜图：只有裁剪、淡入淡出和音量，不做 ducking 也不保留原声
func ComposeFallback(p GraphParams) Graph {
	return musicOnly(musicChain(p), p)
}

func musicOnly(music string, p GraphParams) Graph {
	return Graph{
		FilterComplex: music + "[music]",
		Maps:          []string{"0:v", "[music]"},
		AudioBitrate:  bitrateOrDefault(p.AudioBitrate),
	}
}

// musicChain [1:a] 裁剪 -> 淡入淡出 -> 音量
// 时长为 0 的淡入/淡出不生成 afade，afade 的 d=0 表示按默认采样数淡变
func musicChain(p GraphParams) string {
	duration := math.Max(0, p.VideoDuration)
	stages := []string{
		"[1:a]atrim=0:" + formatSeconds(duration),
		"asetpts=PTS-STARTPTS",
	}
	if p.FadeIn > 0 {
		stages = append(stages, "afade=t=in:st=0:d="+formatSeconds(p.FadeIn))
	}
	if p.FadeOut > 0 {
		fadeStart := math.Max(0, duration-p.FadeOut)
		stages = append(stages, fmt.Sprintf("afade=t=out:st=%s:d=%s", formatSeconds(fadeStart), formatSeconds(p.FadeOut)))
	}
	stages = append(stages, p.Curve.FilterArg())
	return strings.Join(stages, ",")
}

// Args 生成完整的 ffmpeg 参数
// 视频流直接复制，音频编码为 AAC，输出时长取较短的流
func (g Graph) Args(videoPath, musicPath, outputPath string) []string {
	args := []string{
		"-hide_banner",
		"-i", videoPath,
		"-i", musicPath,
		"-filter_complex", g.FilterComplex,
	}
	for _, m := range g.Maps {
		args = append(args, "-map", m)
	}
	args = append(args,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", bitrateOrDefault(g.AudioBitrate),
		"-shortest",
		"-y", outputPath,
	)
	return args
}

// formatSeconds 时间保留到毫秒
func formatSeconds(v float64) string {
	return formatNumber(round3(v))
}

func bitrateOrDefault(b string) string {
	if b == "" {
		return DefaultAudioBitrate
	}
	return b
}
