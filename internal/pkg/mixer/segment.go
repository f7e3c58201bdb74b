package mixer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Segment 视频叙事片段
type Segment struct {
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Energy       Energy  `json:"energy"`
}

// SegmentPolicy 超出视频时长或不合法片段的处理策略
type SegmentPolicy string

const (
	// PolicyKeep 原样保留（超出时长的断点不会被命中），丢弃非法片段
	PolicyKeep SegmentPolicy = "keep"
	// PolicyClamp 丢弃起点超出时长的片段并把最后终点限制到时长
	PolicyClamp SegmentPolicy = "clamp"
	// PolicyReject 任何越界或非法片段都返回错误
	PolicyReject SegmentPolicy = "reject"
)

// ErrInvalidSegments 片段列表校验失败
var ErrInvalidSegments = errors.New("invalid segments")

// ParseSegments 解析片段 JSON
// 空串或格式错误的 JSON 退化为空列表
func ParseSegments(raw string) []Segment {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var segments []Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return nil
	}
	return segments
}

// ApplyPolicy 按策略校验/整理片段
// duration <= 0 时不做时长相关处理
func ApplyPolicy(segments []Segment, duration float64, policy SegmentPolicy) ([]Segment, error) {
	out := make([]Segment, 0, len(segments))
	prevEnd := 0.0
	for i, seg := range segments {
		if reason := invalidReason(seg, prevEnd); reason != "" {
			if policy == PolicyReject {
				return nil, fmt.Errorf("%w: segment %d %s", ErrInvalidSegments, i, reason)
			}
			continue
		}
		prevEnd = seg.EndSeconds

		if duration > 0 && seg.EndSeconds > duration {
			switch policy {
			case PolicyReject:
				return nil, fmt.Errorf("%w: segment %d ends at %.2fs beyond video duration %.2fs",
					ErrInvalidSegments, i, seg.EndSeconds, duration)
			case PolicyClamp:
				if seg.StartSeconds >= duration {
					continue
				}
				seg.EndSeconds = duration
			}
		}
		out = append(out, seg)
	}
	return out, nil
}

func invalidReason(seg Segment, prevEnd float64) string {
	switch {
	case seg.StartSeconds < 0:
		return "has negative start"
	case seg.EndSeconds <= seg.StartSeconds:
		return "ends before it starts"
	case seg.EndSeconds < prevEnd:
		return "is out of order"
	}
	return ""
}
