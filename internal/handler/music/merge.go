package music

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"vibesync/internal/pkg/ctxutil"
	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/pkg/mixer"
	"vibesync/internal/service"
)

// MergeResponseData 合成响应数据
type MergeResponseData struct {
	VideoURL        string  `json:"video_url"`        // 合成视频下载地址
	DurationSeconds float64 `json:"duration_seconds"` // 视频时长（秒）
	FileID          string  `json:"file_id"`          // 合成文件ID
	Ducking         bool    `json:"ducking"`          // 是否启用了人声闪避
	UsedFallback    bool    `json:"used_fallback"`    // 是否使用了降级滤镜图
}

// Merge 把生成的音乐混入视频
// @Summary      视频配乐合成
// @Description  按混音模式与分段能量曲线把音乐混入上传的视频；segments_json 解析失败时按无分段处理
// @Tags         音乐
// @Accept       multipart/form-data
// @Produce      json
// @Param        video                formData  file    true   "视频文件"
// @Param        file_id              formData  string  true   "音乐文件ID"
// @Param        mix_mode             formData  string  false  "social / background / balanced / feature"
// @Param        segments_json        formData  string  false  "视频分段 JSON 数组"
// @Param        keep_original_audio  formData  bool    false  "是否保留原声（默认 true）"
// @Param        fade_in              formData  number  false  "淡入秒数 0-3"
// @Param        fade_out             formData  number  false  "淡出秒数 0-3"
// @Success      200                  {object}  SuccessResponse{data=MergeResponseData}
// @Failure      400                  {object}  ErrorResponse  "请求参数错误"
// @Failure      404                  {object}  ErrorResponse  "音乐文件不存在"
// @Failure      413                  {object}  ErrorResponse  "视频过大"
// @Failure      500                  {object}  ErrorResponse  "合成失败"
// @Router       /api/v1/music/merge [post]
func (h *Handler) Merge(c *gin.Context) {
	if h.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+1<<20)
	}

	file, err := c.FormFile("video")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			videoTooLarge(c, h.cfg.MaxUploadBytes)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid video",
			Detail:  err.Error(),
		})
		return
	}
	if h.cfg.MaxUploadBytes > 0 && file.Size > h.cfg.MaxUploadBytes {
		videoTooLarge(c, h.cfg.MaxUploadBytes)
		return
	}

	fileID := strings.TrimSpace(c.PostForm("file_id"))
	if fileID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "file_id is required",
		})
		return
	}

	opts, err := h.parseMixOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Invalid mix options",
			Detail:  err.Error(),
		})
		return
	}

	video, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Failed to open video",
			Detail:  err.Error(),
		})
		return
	}
	defer video.Close()

	ctx := c.Request.Context()
	userID, _ := ctxutil.GetUserID(ctx)
	result, err := h.mergeService.Merge(ctx, &service.MergeRequest{
		UserID:        userID,
		Video:         video,
		VideoFilename: file.Filename,
		MusicFileID:   fileID,
		Options:       opts,
	})
	if err != nil {
		h.mergeFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("视频合成成功", MergeResponseData{
		VideoURL:        h.mergedURL(result.FileID),
		DurationSeconds: result.DurationSeconds,
		FileID:          result.FileID,
		Ducking:         result.Ducking,
		UsedFallback:    result.UsedFallback,
	}))
}

// parseMixOptions 解析表单中的混音参数
// 未知的 mix_mode 返回错误，格式错误的 segments_json 退化为空
func (h *Handler) parseMixOptions(c *gin.Context) (service.MixOptions, error) {
	opts := service.MixOptions{
		Mode:              h.cfg.DefaultMode,
		KeepOriginalAudio: true,
		FadeIn:            h.cfg.DefaultFadeIn,
		FadeOut:           h.cfg.DefaultFadeOut,
		Segments:          mixer.ParseSegments(c.PostForm("segments_json")),
	}

	if raw := c.PostForm("mix_mode"); strings.TrimSpace(raw) != "" {
		mode, err := mixer.ParseMixMode(raw)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", service.ErrInvalidMixMode, err)
		}
		opts.Mode = mode
	}

	if raw := c.PostForm("keep_original_audio"); raw != "" {
		keep, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid keep_original_audio %q", raw)
		}
		opts.KeepOriginalAudio = keep
	}

	var err error
	if opts.FadeIn, err = formFloat(c, "fade_in", opts.FadeIn); err != nil {
		return opts, err
	}
	if opts.FadeOut, err = formFloat(c, "fade_out", opts.FadeOut); err != nil {
		return opts, err
	}
	if err := service.ValidateFade(opts.FadeIn, opts.FadeOut); err != nil {
		return opts, err
	}
	return opts, nil
}

func formFloat(c *gin.Context, key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func (h *Handler) mergeFailed(c *gin.Context, err error) {
	var engineErr *service.MergeEngineError
	switch {
	case errors.Is(err, service.ErrMusicNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    httputil.CodeNotFound,
			Message: "Music file not found. Generate music first.",
		})
	case errors.Is(err, mixer.ErrInvalidSegments):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeInvalidSegments,
			Message: "Invalid segments",
			Detail:  err.Error(),
		})
	case errors.As(err, &engineErr):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeMergeFailed,
			Message: "Merge failed",
			Detail:  engineErr.Tail,
		})
	case errors.Is(err, service.ErrOutputIntegrity):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeOutputIntegrity,
			Message: "Merge produced no usable output",
			Detail:  err.Error(),
		})
	default:
		log.Error().Err(err).Msg("视频合成失败")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeInternal,
			Message: "Merge failed",
			Detail:  err.Error(),
		})
	}
}

func videoTooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Code:    httputil.CodeTooLarge,
		Message: fmt.Sprintf("Video too large. Maximum is %dMB.", limit>>20),
	})
}
