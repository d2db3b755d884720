package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-health/internal/dto"
	"school-health/internal/service"
	"school-health/pkg/response"
)

// DashboardHandler 首页统计 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Get 统计数据；year_id 缺省时取当前学年
// GET /api/v1/dashboard?year_id=
func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Tham số không hợp lệ")
		return
	}

	data, err := h.dashboardSvc.Get(c.Request.Context(), userID, &req)
	if err != nil {
		if handleCommonError(c, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrYearNotFound):
			response.NotFound(c, 19001, err.Error())
		case errors.Is(err, service.ErrNoCurrentYear):
			response.NotFound(c, 19002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, data)
}
