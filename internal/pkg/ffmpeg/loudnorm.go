package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoLoudnormOutput stderr 中没有 loudnorm 统计 JSON
var ErrNoLoudnormOutput = errors.New("no loudnorm statistics in output")

var loudnormJSON = regexp.MustCompile(`(?s)\{[^{}]*"input_i"[^{}]*\}`)

// LoudnormStats loudnorm 滤镜的统计输出（print_format=json）
type LoudnormStats struct {
	InputI       string `json:"input_i"`
	InputTP      string `json:"input_tp"`
	InputLRA     string `json:"input_lra"`
	InputThresh  string `json:"input_thresh"`
	TargetOffset string `json:"target_offset"`
}

// IntegratedLUFS 解析积分响度
// ok 为 false 表示无法解析；-inf 等非有限值原样返回，由调用方决定如何处理
func (s *LoudnormStats) IntegratedLUFS() (lufs float64, ok bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.InputI), 64)
	if err != nil {
		if strings.Contains(strings.ToLower(s.InputI), "inf") {
			return math.Inf(-1), true
		}
		return 0, false
	}
	return v, true
}

// MeasureLoudness 对文件的音频做一次 loudnorm 测量
func (c *Client) MeasureLoudness(ctx context.Context, path string) (*LoudnormStats, error) {
	// ffmpeg -hide_banner -nostats -i in -vn -af loudnorm=print_format=json -f null -
	_, stderr, err := c.exec(ctx, "loudnorm", c.ffmpegPath, []string{
		"-hide_banner",
		"-nostats",
		"-i", path,
		"-vn",
		"-af", "loudnorm=print_format=json",
		"-f", "null",
		"-",
	})
	if err != nil {
		return nil, err
	}
	return ParseLoudnorm(stderr)
}

// ParseLoudnorm 从 ffmpeg stderr 中提取 loudnorm JSON
func ParseLoudnorm(stderr []byte) (*LoudnormStats, error) {
	matches := loudnormJSON.FindAll(stderr, -1)
	if len(matches) == 0 {
		return nil, ErrNoLoudnormOutput
	}

	var stats LoudnormStats
	if err := json.Unmarshal(matches[len(matches)-1], &stats); err != nil {
		return nil, fmt.Errorf("parse loudnorm json: %w", err)
	}
	return &stats, nil
}
