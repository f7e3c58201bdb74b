package credits

import (
	"vibesync/internal/service"
)

// maxWebhookBytes 支付回调请求体上限
const maxWebhookBytes = 1 << 20

// Handler 积分模块处理器
type Handler struct {
	creditService service.CreditService
}

// NewHandler 创建积分模块处理器
func NewHandler(creditService service.CreditService) *Handler {
	return &Handler{creditService: creditService}
}
