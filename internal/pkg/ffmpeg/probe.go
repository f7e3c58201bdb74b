package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProbeResult ffprobe JSON 输出
type ProbeResult struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream 单个流信息
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format 容器信息
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Probe 使用 ffprobe 读取媒体信息
func (c *Client) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ffprobe: empty path")
	}

	stdout, _, err := c.exec(ctx, "ffprobe", c.ffprobePath, []string{
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	})
	if err != nil {
		return nil, err
	}

	return ParseProbe(stdout)
}

// ParseProbe 解析 ffprobe JSON
func ParseProbe(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	return &result, nil
}

// HasAudio 是否包含音频流
func (r *ProbeResult) HasAudio() bool {
	return r.count("audio") > 0
}

// HasVideo 是否包含视频流
func (r *ProbeResult) HasVideo() bool {
	return r.count("video") > 0
}

func (r *ProbeResult) count(codecType string) int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, codecType) {
			n++
		}
	}
	return n
}

// DurationSeconds 容器时长（秒）
// 容器没有时长时取最长的流时长，都没有则返回 0
func (r *ProbeResult) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, s := range r.Streams {
		if d := parseFloat(s.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
