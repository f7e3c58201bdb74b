package music

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibesync/internal/pkg/ctxutil"
	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/service"
)

// ListTracks 查询当前用户的生成记录
// @Summary      生成记录
// @Description  按创建时间倒序分页返回当前用户生成的音乐
// @Tags         音乐
// @Produce      json
// @Param        page       query     int  false  "页码（默认1）"
// @Param        page_size  query     int  false  "每页数量（默认20，最大100）"
// @Success      200        {object}  SuccessResponse{data=service.ListTracksResult}
// @Failure      401        {object}  ErrorResponse  "缺少用户身份"
// @Failure      500        {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/music/tracks [get]
func (h *Handler) ListTracks(c *gin.Context) {
	userID, _ := ctxutil.GetUserID(c.Request.Context())
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	result, err := h.historyService.ListTracks(c.Request.Context(), &service.ListTracksRequest{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeInternal,
			Message: "查询生成记录失败",
			Detail:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", result))
}

// GetTrack 查询单首音乐及其合成记录
// @Summary      音乐详情
// @Tags         音乐
// @Produce      json
// @Param        file_id  path      string  true  "文件ID"
// @Success      200      {object}  SuccessResponse{data=service.TrackDetail}
// @Failure      404      {object}  ErrorResponse  "记录不存在"
// @Router       /api/v1/music/tracks/{file_id} [get]
func (h *Handler) GetTrack(c *gin.Context) {
	userID, _ := ctxutil.GetUserID(c.Request.Context())
	detail, err := h.historyService.GetTrack(c.Request.Context(), userID, c.Param("file_id"))
	if err != nil {
		if errors.Is(err, service.ErrTrackNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    httputil.CodeNotFound,
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeInternal,
			Message: "查询生成记录失败",
			Detail:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", detail))
}
