package music

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/pkg/musicgen"
	"vibesync/internal/service"
)

// GenerateVariationsRequest 多风格生成请求
type GenerateVariationsRequest struct {
	Prompt           string            `json:"prompt" binding:"required,min=5,max=2000"`
	NegativePrompt   string            `json:"negative_prompt" binding:"max=500"`
	Mood             string            `json:"mood"`                                      // 整体情绪，仅记录
	BPM              int               `json:"bpm" binding:"omitempty,min=40,max=220"`    // 节拍，仅记录
	StyleSuggestions []StyleSuggestion `json:"style_suggestions" binding:"omitempty,dive"` // 分析给出的备选风格
}

// GenerateVariationsResponseData 多风格生成响应数据
type GenerateVariationsResponseData struct {
	Variations []MusicVariation `json:"variations"`
}

// GenerateVariations 一次生成 Original 与两个备选风格
// @Summary      多风格生成
// @Description  依次生成 Original 与备选风格（优先使用 style_suggestions），整批消耗 1 积分；部分风格失败时返回成功的部分
// @Tags         音乐
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header    string                     false  "用户ID（未启用 JWT 时）"
// @Param        request    body      GenerateVariationsRequest  true   "生成参数"
// @Success      200        {object}  SuccessResponse{data=GenerateVariationsResponseData}
// @Failure      400        {object}  ErrorResponse  "请求参数错误"
// @Failure      401        {object}  ErrorResponse  "缺少用户身份"
// @Failure      402        {object}  ErrorResponse  "积分不足"
// @Failure      500        {object}  ErrorResponse  "全部风格生成失败"
// @Router       /api/v1/music/generate-variations [post]
func (h *Handler) GenerateVariations(c *gin.Context) {
	var req GenerateVariationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid request",
			Detail:  err.Error(),
		})
		return
	}

	userID, ok := h.chargeCredit(c)
	if !ok {
		return
	}

	suggestions := make([]musicgen.Style, 0, len(req.StyleSuggestions))
	for _, s := range req.StyleSuggestions {
		suggestions = append(suggestions, musicgen.Style{Label: s.Label, Modifier: s.Modifier})
	}

	ctx := c.Request.Context()
	tracks, err := h.musicService.GenerateVariations(ctx, &service.GenerateRequest{
		UserID:         userID,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Suggestions:    suggestions,
	})
	if err != nil {
		h.refundCredit(ctx, userID)
		generationFailed(c, err)
		return
	}

	variations := make([]MusicVariation, 0, len(tracks))
	for _, t := range tracks {
		variations = append(variations, MusicVariation{
			FileID:          t.FileID,
			AudioURL:        h.audioURL(t.FileID),
			StyleLabel:      t.StyleLabel,
			DurationSeconds: t.DurationSeconds,
		})
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("音乐生成成功", GenerateVariationsResponseData{
		Variations: variations,
	}))
}
