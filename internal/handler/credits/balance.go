package credits

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibesync/internal/pkg/ctxutil"
	httputil "vibesync/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// CreditBalance 积分余额
type CreditBalance struct {
	Credits int    `json:"credits"`
	UserID  string `json:"user_id"`
}

// Balance 查询积分余额
// @Summary      积分余额
// @Description  未知用户按注册赠送额度初始化后返回
// @Tags         积分
// @Produce      json
// @Param        X-User-Id  header    string  false  "用户ID（未启用 JWT 时）"
// @Success      200        {object}  httputil.SuccessResponse{data=CreditBalance}
// @Failure      401        {object}  ErrorResponse  "缺少用户身份"
// @Failure      500        {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/credits/balance [get]
func (h *Handler) Balance(c *gin.Context) {
	userID, _ := ctxutil.GetUserID(c.Request.Context())
	credits, err := h.creditService.Balance(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeInternal,
			Message: "查询积分失败",
			Detail:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", CreditBalance{Credits: credits, UserID: userID}))
}

// Initialize 注册后初始化积分
// @Summary      初始化积分
// @Description  新用户获得注册赠送积分，已有账户余额保持不变
// @Tags         积分
// @Produce      json
// @Param        X-User-Id  header    string  false  "用户ID（未启用 JWT 时）"
// @Success      200        {object}  httputil.SuccessResponse{data=CreditBalance}
// @Failure      401        {object}  ErrorResponse  "缺少用户身份"
// @Failure      500        {object}  ErrorResponse  "服务器内部错误"
// @Router       /api/v1/credits/initialize [post]
func (h *Handler) Initialize(c *gin.Context) {
	userID, _ := ctxutil.GetUserID(c.Request.Context())
	credits, err := h.creditService.Initialize(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    httputil.CodeInternal,
			Message: "初始化积分失败",
			Detail:  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", CreditBalance{Credits: credits, UserID: userID}))
}
