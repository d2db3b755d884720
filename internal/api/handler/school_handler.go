package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-health/internal/dto"
	"school-health/internal/service"
	"school-health/pkg/response"
)

// SchoolHandler 学校模块 HTTP 处理器
type SchoolHandler struct {
	schoolSvc service.SchoolService
}

// NewSchoolHandler 创建 SchoolHandler
func NewSchoolHandler(schoolSvc service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolSvc: schoolSvc}
}

// ListSchools 当前用户可见的学校
// GET /api/v1/schools?q=
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SchoolListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Tham số không hợp lệ")
		return
	}

	schools, err := h.schoolSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OKList(c, schools, len(schools))
}

// GetSchool 学校详情
// GET /api/v1/schools/:id
func (h *SchoolHandler) GetSchool(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	school, err := h.schoolSvc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, school)
}

// CreateSchool 新增学校
// POST /api/v1/schools
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	req, ok := bindSchool(c)
	if !ok {
		return
	}

	school, err := h.schoolSvc.Create(c.Request.Context(), req)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.Created(c, school)
}

// UpdateSchool 修改学校
// PUT /api/v1/schools/:id
func (h *SchoolHandler) UpdateSchool(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req, ok := bindSchool(c)
	if !ok {
		return
	}

	school, err := h.schoolSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, school)
}

// DeleteSchool 删除学校，不级联删除档案
// DELETE /api/v1/schools/:id
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.schoolSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleSchoolError(c, err)
		return
	}

	response.OK(c, nil)
}

// bindSchool 必填校验交给 Service，以返回统一的提示文案
func bindSchool(c *gin.Context) (*dto.SchoolRequest, bool) {
	var req dto.SchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if invalidField(err) == "Level" {
			response.BadRequest(c, 12003, service.ErrSchoolLevel.Error())
		} else {
			response.BadRequest(c, 10001, "Dữ liệu gửi lên không hợp lệ")
		}
		return nil, false
	}
	return &req, true
}

func (h *SchoolHandler) handleSchoolError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrSchoolRequired):
		response.BadRequest(c, 12001, err.Error())
	case errors.Is(err, service.ErrSchoolNotFound):
		response.NotFound(c, 12002, err.Error())
	case errors.Is(err, service.ErrSchoolLevel):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrSchoolAccess):
		response.Forbidden(c, 12004, err.Error())
	default:
		response.InternalError(c)
	}
}
