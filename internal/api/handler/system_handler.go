package handler

import (
	"github.com/gin-gonic/gin"

	"school-health/internal/service"
	"school-health/pkg/response"
)

// SystemHandler 系统维护 HTTP 处理器
type SystemHandler struct {
	systemSvc service.SystemService
}

// NewSystemHandler 创建 SystemHandler
func NewSystemHandler(systemSvc service.SystemService) *SystemHandler {
	return &SystemHandler{systemSvc: systemSvc}
}

// Reset 用默认数据覆盖全部数据
// POST /api/v1/system/reset
func (h *SystemHandler) Reset(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.systemSvc.Reset(c.Request.Context(), userID); err != nil {
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
		return
	}
	response.OKMessage(c, "Đã khôi phục dữ liệu mặc định.", nil)
}
