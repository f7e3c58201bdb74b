package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vibesync/internal/pkg/ctxutil"
	httputil "vibesync/internal/pkg/http"
	"vibesync/internal/pkg/jwt"
)

// UserIDHeader 未启用 JWT 时前端直接传递的用户标识
const UserIDHeader = "X-User-Id"

// UserIdentity 识别请求用户并注入 context
// jwtUtil 不为空时要求 Bearer Token；否则读取 X-User-Id 请求头
// required 为 false 时允许匿名访问
func UserIdentity(jwtUtil *jwt.JWT, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, code, msg := resolveUser(c, jwtUtil)
		if userID == "" {
			if !required && code == httputil.CodeUnauthorized {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse(code, msg))
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", userID)

		c.Next()
	}
}

func resolveUser(c *gin.Context, jwtUtil *jwt.JWT) (string, int, string) {
	if jwtUtil == nil {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			return "", httputil.CodeUnauthorized, "缺少用户身份"
		}
		return userID, 0, ""
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", httputil.CodeUnauthorized, "未授权"
	}

	// 提取 Token（Bearer {token}）
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", httputil.CodeInvalidToken, "Invalid authorization header"
	}

	claims, err := jwtUtil.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return "", httputil.CodeInvalidToken, "Token已过期"
		}
		return "", httputil.CodeInvalidToken, "Token无效"
	}
	return claims.EffectiveUserID(), 0, ""
}
