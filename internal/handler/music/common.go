package music

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vibesync/internal/pkg/ctxutil"
	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// SuccessResponse 成功响应类型别名
type SuccessResponse = httputil.SuccessResponse

// StyleSuggestion 备选风格
type StyleSuggestion struct {
	Label    string `json:"label" binding:"max=100"`
	Modifier string `json:"modifier" binding:"max=200"`
}

// MusicVariation 单个风格的生成结果
type MusicVariation struct {
	FileID          string  `json:"file_id"`
	AudioURL        string  `json:"audio_url"`
	StyleLabel      string  `json:"style_label"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (h *Handler) audioURL(fileID string) string {
	return h.cfg.BackendURL + "/api/v1/music/download/" + fileID + "/mp3"
}

func (h *Handler) mergedURL(fileID string) string {
	return h.cfg.BackendURL + "/api/v1/music/download-merged/" + fileID
}

// chargeCredit 生成前扣减 1 积分，失败时已写入响应
func (h *Handler) chargeCredit(c *gin.Context) (string, bool) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    httputil.CodeUnauthorized,
			Message: "Authentication required",
		})
		return "", false
	}

	if _, err := h.creditService.Deduct(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, ErrorResponse{
				Code:    httputil.CodePaymentRequired,
				Message: "No credits remaining. Purchase more to continue.",
			})
			return "", false
		}
		log.Error().Err(err).Str("user_id", userID).Msg("扣减积分失败")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeInternal,
			Message: "扣减积分失败",
			Detail:  err.Error(),
		})
		return "", false
	}
	return userID, true
}

// refundCredit 生成失败时退还积分
func (h *Handler) refundCredit(ctx context.Context, userID string) {
	credits, err := h.creditService.Refund(context.WithoutCancel(ctx), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("退还积分失败")
		return
	}
	log.Info().Str("user_id", userID).Int("credits", credits).Msg("生成失败，积分已退还")
}

// generationFailed 写入生成失败响应
func generationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    httputil.CodeGenerationFailed,
		Message: "Music generation failed",
		Detail:  err.Error(),
	})
}
