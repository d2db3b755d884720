package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-health/internal/dto"
	"school-health/internal/service"
	"school-health/pkg/response"
)

// FieldHandler 动态字段模块 HTTP 处理器
type FieldHandler struct {
	fieldSvc service.FieldService
}

// NewFieldHandler 创建 FieldHandler
func NewFieldHandler(fieldSvc service.FieldService) *FieldHandler {
	return &FieldHandler{fieldSvc: fieldSvc}
}

// ListFields 动态字段，可按 tab 过滤
// GET /api/v1/fields?tab=
func (h *FieldHandler) ListFields(c *gin.Context) {
	var req dto.FieldListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14005, service.ErrFieldTab.Error())
		return
	}

	fields, err := h.fieldSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}
	response.OKList(c, fields, len(fields))
}

// CreateField 新增动态字段
// POST /api/v1/fields
func (h *FieldHandler) CreateField(c *gin.Context) {
	var req dto.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, err)
		return
	}

	field, err := h.fieldSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}
	response.Created(c, field)
}

// UpdateField 修改动态字段；name 与 tab 不可修改
// PUT /api/v1/fields/:id
func (h *FieldHandler) UpdateField(c *gin.Context) {
	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleBindError(c, err)
		return
	}

	field, err := h.fieldSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleFieldError(c, err)
		return
	}
	response.OK(c, field)
}

// DeleteField 删除动态字段，已有档案中的值保留
// DELETE /api/v1/fields/:id
func (h *FieldHandler) DeleteField(c *gin.Context) {
	if err := h.fieldSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleFieldError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *FieldHandler) handleBindError(c *gin.Context, err error) {
	switch invalidField(err) {
	case "Label":
		response.BadRequest(c, 14001, service.ErrFieldLabelRequired.Error())
	case "Tab":
		response.BadRequest(c, 14005, service.ErrFieldTab.Error())
	case "Type":
		response.BadRequest(c, 14006, service.ErrFieldType.Error())
	default:
		response.BadRequest(c, 10001, "Dữ liệu gửi lên không hợp lệ")
	}
}

func (h *FieldHandler) handleFieldError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrFieldLabelRequired):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrFieldDuplicate):
		response.Conflict(c, 14002, err.Error())
	case errors.Is(err, service.ErrFieldNameEmpty):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrFieldNotFound):
		response.NotFound(c, 14004, err.Error())
	case errors.Is(err, service.ErrFieldTab):
		response.BadRequest(c, 14005, err.Error())
	case errors.Is(err, service.ErrFieldType):
		response.BadRequest(c, 14006, err.Error())
	default:
		response.InternalError(c)
	}
}
