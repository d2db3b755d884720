package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-health/internal/dto"
	"school-health/internal/service"
	"school-health/pkg/response"
)

// SchoolYearHandler 学年模块 HTTP 处理器
type SchoolYearHandler struct {
	yearSvc service.SchoolYearService
}

// NewSchoolYearHandler 创建 SchoolYearHandler
func NewSchoolYearHandler(yearSvc service.SchoolYearService) *SchoolYearHandler {
	return &SchoolYearHandler{yearSvc: yearSvc}
}

// ListYears 全部学年
// GET /api/v1/school-years
func (h *SchoolYearHandler) ListYears(c *gin.Context) {
	years, err := h.yearSvc.List(c.Request.Context())
	if err != nil {
		h.handleYearError(c, err)
		return
	}
	response.OKList(c, years, len(years))
}

// CurrentYear 当前学年
// GET /api/v1/school-years/current
func (h *SchoolYearHandler) CurrentYear(c *gin.Context) {
	year, err := h.yearSvc.Current(c.Request.Context())
	if err != nil {
		h.handleYearError(c, err)
		return
	}
	response.OK(c, year)
}

// CreateYear 新增学年
// POST /api/v1/school-years
func (h *SchoolYearHandler) CreateYear(c *gin.Context) {
	var req dto.SchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, service.ErrYearFormat.Error())
		return
	}

	year, err := h.yearSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleYearError(c, err)
		return
	}
	response.Created(c, year)
}

// RenameYear 修改学年名称
// PUT /api/v1/school-years/:id
func (h *SchoolYearHandler) RenameYear(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, service.ErrYearFormat.Error())
		return
	}

	year, err := h.yearSvc.Rename(c.Request.Context(), id, &req)
	if err != nil {
		h.handleYearError(c, err)
		return
	}
	response.OK(c, year)
}

// SetCurrent 设为当前学年
// PUT /api/v1/school-years/:id/current
func (h *SchoolYearHandler) SetCurrent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.yearSvc.SetCurrent(c.Request.Context(), id); err != nil {
		h.handleYearError(c, err)
		return
	}
	response.OK(c, nil)
}

// Lock 锁定学年
// PUT /api/v1/school-years/:id/lock
func (h *SchoolYearHandler) Lock(c *gin.Context) {
	h.setLocked(c, true)
}

// Unlock 解锁学年
// PUT /api/v1/school-years/:id/unlock
func (h *SchoolYearHandler) Unlock(c *gin.Context) {
	h.setLocked(c, false)
}

func (h *SchoolYearHandler) setLocked(c *gin.Context, locked bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.yearSvc.SetLocked(c.Request.Context(), id, locked); err != nil {
		h.handleYearError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeleteYear 删除学年及其全部档案
// DELETE /api/v1/school-years/:id
func (h *SchoolYearHandler) DeleteYear(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.yearSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleYearError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *SchoolYearHandler) handleYearError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrYearFormat):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrYearDuplicate):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrYearNotFound):
		response.NotFound(c, 13003, err.Error())
	case errors.Is(err, service.ErrNoCurrentYear):
		response.NotFound(c, 13004, err.Error())
	default:
		response.InternalError(c)
	}
}
