package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"school-health/internal/api/middleware"
	"school-health/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "Chưa đăng nhập")
		return 0, false
	}
	// 默认管理员的 ID 为 0
	id, ok := v.(int)
	if !ok || id < 0 {
		response.Unauthorized(c, 10002, "Chưa đăng nhập")
		return 0, false
	}
	return id, true
}

// tokenInfo 当前 Token 的 jti 与过期时间，登出时写入黑名单
func tokenInfo(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return c.GetString(middleware.CtxTokenJTI), t
}

// pathID 解析路径中的整数 ID，失败时写入 400
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 0 {
		response.BadRequest(c, 10001, "Mã định danh không hợp lệ")
		return 0, false
	}
	return id, true
}
