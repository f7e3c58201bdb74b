package video

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vibesync/internal/ai/chain"
	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Analyze 分析视频并给出配乐方案
// @Summary      视频分析
// @Description  上传 MP4 / MOV / WebM / AVI 视频，返回节拍、调性、分段能量与生成提示词
// @Tags         视频
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "视频文件"
// @Success      200   {object}  map[string]interface{}  "{\"code\": 0, \"message\": \"视频分析完成\", \"data\": {\"bpm\": 96, ...}}"
// @Failure      400   {object}  ErrorResponse  "格式不支持或视频过长"
// @Failure      413   {object}  ErrorResponse  "视频过大"
// @Failure      500   {object}  ErrorResponse  "分析失败"
// @Router       /api/v1/video/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid file",
			Detail:  err.Error(),
		})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if _, ok := service.ResolveVideoMIME(contentType, file.Filename); !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeUnsupportedMedia,
			Message: fmt.Sprintf("Unsupported video format: %s. Use MP4, MOV, WebM, or AVI.", contentType),
		})
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		h.tooLarge(c)
		return
	}

	video, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Failed to open file",
			Detail:  err.Error(),
		})
		return
	}
	defer video.Close()

	result, err := h.analysisService.Analyze(c.Request.Context(), &service.AnalyzeRequest{
		Video:       video,
		Filename:    file.Filename,
		ContentType: contentType,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoTooLong):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    httputil.CodeVideoTooLong,
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrUnsupportedVideo):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    httputil.CodeUnsupportedMedia,
				Message: err.Error(),
			})
		case errors.Is(err, chain.ErrAnalysis):
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    httputil.CodeAnalysisFailed,
				Message: "Video analysis failed",
				Detail:  err.Error(),
			})
		default:
			log.Error().Err(err).Str("filename", file.Filename).Msg("视频分析失败")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    httputil.CodeInternal,
				Message: "Video analysis failed",
				Detail:  err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("视频分析完成", result))
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Code:    httputil.CodeTooLarge,
		Message: fmt.Sprintf("Video too large. Maximum is %dMB.", h.maxUploadBytes>>20),
	})
}
