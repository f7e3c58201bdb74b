package credits

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/service"
)

// SignatureHeader 回调签名请求头
const SignatureHeader = "Stripe-Signature"

// WebhookResponseData 回调处理结果
type WebhookResponseData struct {
	Received bool                  `json:"received"`
	Status   service.WebhookStatus `json:"status"`
}

// Webhook 支付回调
// @Summary      支付回调
// @Description  校验 t=<unix>,v1=<hmac> 签名；checkout.session.completed 事件为 metadata.user_id 增加积分，同一事件只处理一次
// @Tags         积分
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  true  "回调签名"
// @Success      200               {object}  httputil.SuccessResponse{data=WebhookResponseData}
// @Failure      400               {object}  ErrorResponse  "签名或事件无效"
// @Failure      503               {object}  ErrorResponse  "未配置签名密钥"
// @Router       /api/v1/credits/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    httputil.CodeBadRequest,
			Message: "Failed to read body",
			Detail:  err.Error(),
		})
		return
	}

	result, err := h.creditService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookDisabled):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Code:    httputil.CodeServiceNotAvailable,
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrInvalidSignature):
			log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("支付回调签名无效")
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    httputil.CodeInvalidSignature,
				Message: "Invalid webhook signature",
			})
		case errors.Is(err, service.ErrInvalidEvent):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    httputil.CodeBadRequest,
				Message: "Invalid webhook event",
				Detail:  err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Code:    httputil.CodeInternal,
				Message: "Failed to process webhook",
				Detail:  err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", WebhookResponseData{
		Received: true,
		Status:   result.Status,
	}))
}
