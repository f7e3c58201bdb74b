package music

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/service"
)

// DownloadTrack 下载生成的音乐
// @Summary      下载音乐
// @Description  下载 mp3 或 wav，文件名为 vibesync_<file_id>.<format>
// @Tags         音乐
// @Produce      application/octet-stream
// @Param        file_id  path      string  true  "文件ID"
// @Param        format   path      string  true  "mp3 / wav"
// @Success      200      {file}    binary  "音频文件"
// @Success      302      {string}  string  "跳转到对象存储预签名地址"
// @Failure      400      {object}  ErrorResponse  "格式错误"
// @Failure      404      {object}  ErrorResponse  "文件不存在"
// @Router       /api/v1/music/download/{file_id}/{format} [get]
func (h *Handler) DownloadTrack(c *gin.Context) {
	h.download(c, &service.DownloadRequest{
		Kind:   service.AssetTrack,
		FileID: c.Param("file_id"),
		Format: c.Param("format"),
	})
}

// DownloadMerged 下载合成视频
// @Summary      下载合成视频
// @Description  文件名为 vibesync_<file_id>.mp4
// @Tags         音乐
// @Produce      video/mp4
// @Param        file_id  path      string  true  "合成文件ID"
// @Success      200      {file}    binary  "视频文件"
// @Success      302      {string}  string  "跳转到对象存储预签名地址"
// @Failure      404      {object}  ErrorResponse  "文件不存在"
// @Router       /api/v1/music/download-merged/{file_id} [get]
func (h *Handler) DownloadMerged(c *gin.Context) {
	h.download(c, &service.DownloadRequest{
		Kind:   service.AssetMerged,
		FileID: c.Param("file_id"),
	})
}

func (h *Handler) download(c *gin.Context, req *service.DownloadRequest) {
	result, err := h.assetService.Download(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidFormat):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    httputil.CodeBadRequest,
				Message: "Format must be 'mp3' or 'wav'",
			})
		case errors.Is(err, service.ErrAssetNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    httputil.CodeNotFound,
				Message: "File not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    httputil.CodeInternal,
				Message: "Failed to open file",
				Detail:  err.Error(),
			})
		}
		return
	}
	defer result.Close()

	if result.RedirectURL != "" {
		c.Redirect(http.StatusFound, result.RedirectURL)
		return
	}

	c.Header("Content-Type", result.ContentType)
	if result.LocalPath != "" {
		c.FileAttachment(result.LocalPath, result.FileName)
		return
	}

	c.DataFromReader(http.StatusOK, -1, result.ContentType, result.Data, map[string]string{
		"Content-Disposition": `attachment; filename="` + result.FileName + `"`,
	})
}
