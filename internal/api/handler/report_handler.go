package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-health/internal/dto"
	"school-health/internal/service"
	"school-health/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Tabular 按 tab 生成明细报表
// GET /api/v1/reports/tabular?year_id=&tab=
func (h *ReportHandler) Tabular(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.TabularReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Vui lòng chọn năm học và loại báo cáo.")
		return
	}

	report, err := h.reportSvc.Tabular(c.Request.Context(), userID, &req)
	if err != nil {
		handleReportError(c, err)
		return
	}
	response.OK(c, report)
}

// Compare 两个学年的指标对比
// GET /api/v1/reports/compare?year1=&year2=
func (h *ReportHandler) Compare(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CompareRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Vui lòng chọn hai năm học để so sánh.")
		return
	}

	report, err := h.reportSvc.Compare(c.Request.Context(), userID, &req)
	if err != nil {
		handleReportError(c, err)
		return
	}
	response.OK(c, report)
}

// handleReportError 报表与导出共用
func handleReportError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCompareSameYear):
		response.BadRequest(c, 17001, err.Error())
	case errors.Is(err, service.ErrReportTab):
		response.BadRequest(c, 17002, err.Error())
	case errors.Is(err, service.ErrYearNotFound):
		response.NotFound(c, 17003, err.Error())
	default:
		response.InternalError(c)
	}
}
