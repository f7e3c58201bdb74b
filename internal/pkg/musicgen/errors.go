package musicgen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPolicyRejection 内容策略拒绝（如 recitation 检测），可以换提示词重试
var ErrPolicyRejection = errors.New("music generation rejected by content policy")

// policyMarkers 服务端错误信息中代表策略拒绝的关键字
var policyMarkers = []string{
	"recitation",
	"content policy",
	"responsible ai",
	"safety filter",
	"blocked by",
}

// GenerationError 音乐生成失败
type GenerationError struct {
	StatusCode int
	Message    string
	Policy     bool
	Err        error
}

func newGenerationError(status int, message string, err error) *GenerationError {
	return &GenerationError{
		StatusCode: status,
		Message:    message,
		Policy:     isPolicyMessage(message),
		Err:        err,
	}
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("music generation failed (status %d): %s", e.StatusCode, e.Message)
	}
	return "music generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is 策略拒绝时匹配 ErrPolicyRejection
func (e *GenerationError) Is(target error) bool {
	return target == ErrPolicyRejection && e.Policy
}

func isPolicyMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range policyMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
