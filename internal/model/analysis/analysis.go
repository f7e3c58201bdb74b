package analysis

import "vibesync/internal/pkg/mixer"

// VideoSegment 视频时间片段
type VideoSegment struct {
	StartSeconds      float64      `json:"start_seconds"`
	EndSeconds        float64      `json:"end_seconds"`
	Energy            mixer.Energy `json:"energy"` // calm, building, intense, peak, fading
	Mood              string       `json:"mood"`
	VisualDescription string       `json:"visual_description"`
	MusicalSuggestion string       `json:"musical_suggestion"`
}

// AudioProfile 原视频音频特征
type AudioProfile struct {
	HasSpeech       bool   `json:"has_speech"`
	HasAmbientSound bool   `json:"has_ambient_sound"`
	IsSilent        bool   `json:"is_silent"`
	RecommendedMix  string `json:"recommended_mix"` // background, balanced, feature
	MixReasoning    string `json:"mix_reasoning"`
}

// StyleSuggestion 备选风格
type StyleSuggestion struct {
	Label    string `json:"label"`
	Modifier string `json:"modifier"`
}

// VideoAnalysis 视频分析结果
type VideoAnalysis struct {
	BPM              int               `json:"bpm"`
	Key              string            `json:"key"`
	OverallMood      string            `json:"overall_mood"`
	EnergyArc        string            `json:"energy_arc"`
	AudioProfile     AudioProfile      `json:"audio_profile"`
	Segments         []VideoSegment    `json:"segments"`
	StyleSuggestions []StyleSuggestion `json:"style_suggestions"`
	PrimaryPrompt    string            `json:"primary_prompt"`
	NegativePrompt   string            `json:"negative_prompt"`
	Reasoning        string            `json:"reasoning"`
}

// MixSegments 转换为混音片段
func (a *VideoAnalysis) MixSegments() []mixer.Segment {
	out := make([]mixer.Segment, 0, len(a.Segments))
	for _, s := range a.Segments {
		out = append(out, mixer.Segment{StartSeconds: s.StartSeconds, EndSeconds: s.EndSeconds, Energy: s.Energy})
	}
	return out
}

// Normalize 补齐默认值并把数值限制在合法范围
func (a *VideoAnalysis) Normalize() {
	if a.BPM < 40 {
		a.BPM = 40
	}
	if a.BPM > 220 {
		a.BPM = 220
	}
	if a.Key == "" {
		a.Key = "C minor"
	}
	if !mixer.MixMode(a.AudioProfile.RecommendedMix).Valid() {
		a.AudioProfile.RecommendedMix = string(mixer.DefaultMode)
	}
}
