package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"vibesync/internal/ai/component"
	"vibesync/internal/config"
	"vibesync/internal/model/analysis"
)

// ErrAnalysis 视频分析失败
var ErrAnalysis = errors.New("video analysis failed")

// VideoAnalysisChain 视频配乐分析链
// 工作流: 视频 + 时长提示 -> 多模态 ChatModel -> JSON -> VideoAnalysis
type VideoAnalysisChain struct {
	chatModel model.BaseChatModel
}

// VideoAnalysisRequest 分析请求
type VideoAnalysisRequest struct {
	Video           []byte
	MIMEType        string  // video/mp4 等
	DurationSeconds float64 // <= 0 表示未知
}

// NewVideoAnalysisChain 创建视频分析链
func NewVideoAnalysisChain(ctx context.Context, cfg *config.AIConfig) (*VideoAnalysisChain, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewVideoAnalysisChainWithModel(chatModel), nil
}

// NewVideoAnalysisChainWithModel 使用已有的 ChatModel 创建分析链
func NewVideoAnalysisChainWithModel(chatModel model.BaseChatModel) *VideoAnalysisChain {
	return &VideoAnalysisChain{chatModel: chatModel}
}

// Run 执行视频分析
func (c *VideoAnalysisChain) Run(ctx context.Context, req *VideoAnalysisRequest) (*analysis.VideoAnalysis, error) {
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(req.Video)

	messages := []*schema.Message{
		schema.SystemMessage(videoAnalysisSystemPrompt),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type:     schema.ChatMessagePartTypeVideoURL,
					VideoURL: &schema.ChatMessageVideoURL{URL: dataURL, MIMEType: mimeType},
				},
				{
					Type: schema.ChatMessagePartTypeText,
					Text: buildVideoAnalysisPrompt(req.DurationSeconds),
				},
			},
		},
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	result, err := ParseVideoAnalysis(resp.Content)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ParseVideoAnalysis 解析模型输出
// 兼容 ```json 代码块包裹
func ParseVideoAnalysis(content string) (*analysis.VideoAnalysis, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrAnalysis)
	}

	var result analysis.VideoAnalysis
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: decode model output: %v", ErrAnalysis, err)
	}
	if strings.TrimSpace(result.PrimaryPrompt) == "" {
		return nil, fmt.Errorf("%w: primary_prompt is empty", ErrAnalysis)
	}
	result.Normalize()
	return &result, nil
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func buildVideoAnalysisPrompt(duration float64) string {
	if duration <= 0 {
		return "The video duration is unknown. Score it: analyze both the visuals AND the existing audio track. " +
			"Create segments matching the actual video timeline, determine the audio_profile (speech? ambient? silent?), " +
			"and build a primary_prompt that describes music for the full 30 seconds."
	}
	return fmt.Sprintf("This video is exactly %.1f seconds long. Score it: analyze both the visuals AND the existing audio track. "+
		"Create segments matching the ACTUAL video timeline (0 to %.0fs), determine the audio_profile (speech? ambient? silent?), "+
		"and build a primary_prompt that describes music for the full 30 seconds.", duration, duration)
}

const videoAnalysisSystemPrompt = `You are a music director scoring soundtracks for short social media videos.
Watch the video and design a 30-second composition that follows its visual narrative.

VIDEO DURATION
- Segments must lie inside the real video duration given by the user.
- primary_prompt describes the first N seconds to match the segments, then how the music continues up to 30 seconds.

AUDIO PROFILE
- has_speech: someone talks, narrates or does a voiceover.
- has_ambient_sound: significant environmental sound.
- is_silent: the video is silent or nearly silent.
- recommended_mix: "background" when speech dominates, "balanced" when ambient sound should coexist with music,
  "feature" when the video is silent and the music should lead. Explain the choice in mix_reasoning.

VISUAL ANALYSIS
1. Split the video into 3-6 segments at energy shifts, transitions and emotional beats.
2. Label each segment's energy with exactly one of: calm, building, intense, peak, fading.
3. Derive BPM (40-220) from the cut rhythm and the key from the color palette.
4. Map motion to instrumentation.

PROMPT RULES
- primary_prompt stays under 1500 characters, names instruments, BPM and key, and uses second markers.
- negative_prompt normally includes "vocals, singing, speech, voice" plus clashing genres.

STYLE SUGGESTIONS
- Exactly 2 contrasting alternatives, each with a 2-3 word label and a modifier under 200 characters
  that completely changes the sound.

OUTPUT
Return only a JSON object with the fields:
bpm, key, overall_mood, energy_arc,
audio_profile {has_speech, has_ambient_sound, is_silent, recommended_mix, mix_reasoning},
segments [{start_seconds, end_seconds, energy, mood, visual_description, musical_suggestion}],
style_suggestions [{label, modifier}], primary_prompt, negative_prompt, reasoning.`
