package music

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/service"
)

// GenerateMusicRequest 生成音乐请求
type GenerateMusicRequest struct {
	Prompt         string `json:"prompt" binding:"required,min=5,max=2000"` // 生成提示词
	NegativePrompt string `json:"negative_prompt" binding:"max=500"`        // 负面提示词
}

// GenerateMusicResponseData 生成音乐响应数据
type GenerateMusicResponseData struct {
	AudioURL        string  `json:"audio_url"`        // MP3 下载地址
	DurationSeconds float64 `json:"duration_seconds"` // 时长（秒）
	Format          string  `json:"format"`           // 固定为 mp3
	FileID          string  `json:"file_id"`          // 文件ID
}

// Generate 生成单首音乐
// @Summary      生成音乐
// @Description  根据提示词生成 30 秒配乐，消耗 1 积分；被内容策略拒绝时自动追加修饰语重试
// @Tags         音乐
// @Accept       json
// @Produce      json
// @Param        X-User-Id  header    string                false  "用户ID（未启用 JWT 时）"
// @Param        request    body      GenerateMusicRequest  true   "生成参数"
// @Success      200        {object}  SuccessResponse{data=GenerateMusicResponseData}
// @Failure      400        {object}  ErrorResponse  "请求参数错误"
// @Failure      401        {object}  ErrorResponse  "缺少用户身份"
// @Failure      402        {object}  ErrorResponse  "积分不足"
// @Failure      500        {object}  ErrorResponse  "生成失败"
// @Router       /api/v1/music/generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateMusicRequest
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

	ctx := c.Request.Context()
	track, err := h.musicService.Generate(ctx, &service.GenerateRequest{
		UserID:         userID,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
	})
	if err != nil {
		h.refundCredit(ctx, userID)
		generationFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("音乐生成成功", GenerateMusicResponseData{
		AudioURL:        h.audioURL(track.FileID),
		DurationSeconds: track.DurationSeconds,
		Format:          "mp3",
		FileID:          track.FileID,
	}))
}
