package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readyTimeout 单个依赖检查的超时
const readyTimeout = 3 * time.Second

// ReadinessCheck 依赖检查
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checks []ReadinessCheck
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health 健康检查
// @Summary  健康检查
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready 就绪检查，任一依赖不可用时返回 503
// @Summary  就绪检查
// @Tags     系统
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Failure  503  {object}  map[string]interface{}
// @Router   /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		err := check.Check(ctx)
		cancel()
		if err != nil {
			status = http.StatusServiceUnavailable
			results[check.Name] = err.Error()
			continue
		}
		results[check.Name] = "ok"
	}

	body := gin.H{"status": "ready", "checks": results}
	if status != http.StatusOK {
		body["status"] = "not_ready"
	}
	c.JSON(status, body)
}
