package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"school-health/internal/dto"
	"school-health/internal/model"
	"school-health/internal/service"
	"school-health/internal/session"
	"school-health/pkg/blob"
	"school-health/pkg/response"
)

// RecordHandler 健康档案编辑 HTTP 处理器
// 路由 /api/v1/records/:schoolId/:yearId/...，会话按 (用户, 学校, 学年) 区分
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

func recordRef(c *gin.Context) (service.RecordRef, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.RecordRef{}, false
	}
	schoolID, ok := pathID(c, "schoolId")
	if !ok {
		return service.RecordRef{}, false
	}
	yearID, ok := pathID(c, "yearId")
	if !ok {
		return service.RecordRef{}, false
	}
	return service.RecordRef{UserID: userID, SchoolID: schoolID, YearID: yearID}, true
}

// GetRecord 查看档案及完成度
// GET /api/v1/records/:schoolId/:yearId
func (h *RecordHandler) GetRecord(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	view, err := h.recordSvc.View(c.Request.Context(), ref)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, view)
}

// BeginEdit 进入编辑
// POST /api/v1/records/:schoolId/:yearId/edit
func (h *RecordHandler) BeginEdit(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	view, err := h.recordSvc.BeginEdit(c.Request.Context(), ref)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, view)
}

// SetField 修改单个字段
// PUT /api/v1/records/:schoolId/:yearId/fields/:name
func (h *RecordHandler) SetField(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	var req dto.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Dữ liệu gửi lên không hợp lệ")
		return
	}

	view, err := h.recordSvc.SetField(c.Request.Context(), ref, c.Param("name"), req.Value)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, view)
}

// Attach 上传附件（multipart：file + field_name）
// POST /api/v1/records/:schoolId/:yearId/attachments
func (h *RecordHandler) Attach(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	var req dto.AttachmentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.handleUploadError(c, err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.handleUploadError(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	att, view, err := h.recordSvc.Attach(c.Request.Context(), ref, req.FieldName, fh.Filename, contentType, f)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.Created(c, gin.H{"attachment": att, "record": view})
}

func (h *RecordHandler) handleUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 16008, blob.ErrTooLarge.Error())
		return
	}
	response.BadRequest(c, 10001, "Vui lòng chọn tệp và trường thông tin cần đính kèm.")
}

// RemoveAttachment 移除附件
// DELETE /api/v1/records/:schoolId/:yearId/attachments/:id
func (h *RecordHandler) RemoveAttachment(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	view, err := h.recordSvc.RemoveAttachment(c.Request.Context(), ref, c.Param("id"))
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, view)
}

// DownloadAttachment 下载附件：内联内容直接返回，对象存储重定向到预签名地址
// GET /api/v1/records/:schoolId/:yearId/attachments/:id
func (h *RecordHandler) DownloadAttachment(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	dl, err := h.recordSvc.Download(c.Request.Context(), ref, c.Param("id"))
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	if dl.Object.URL != "" {
		c.Redirect(http.StatusFound, dl.Object.URL)
		return
	}
	contentType := dl.Object.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(dl.Attachment.FileName))
	c.Data(http.StatusOK, contentType, dl.Object.Data)
}

// Save 保存编辑内容
// POST /api/v1/records/:schoolId/:yearId/save
func (h *RecordHandler) Save(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	view, err := h.recordSvc.Save(c.Request.Context(), ref)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OKMessage(c, service.SavedMessage, view)
}

// Cancel 放弃编辑内容
// POST /api/v1/records/:schoolId/:yearId/cancel
func (h *RecordHandler) Cancel(c *gin.Context) {
	ref, ok := recordRef(c)
	if !ok {
		return
	}
	view, err := h.recordSvc.Cancel(c.Request.Context(), ref)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, view)
}

func (h *RecordHandler) handleRecordError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, session.ErrSchoolNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, session.ErrYearNotFound):
		response.NotFound(c, 16002, err.Error())
	case errors.Is(err, service.ErrRecordAccess):
		response.Forbidden(c, 16003, err.Error())
	case errors.Is(err, session.ErrYearLocked):
		response.Forbidden(c, 16004, err.Error())
	case errors.Is(err, session.ErrNotEditing), errors.Is(err, session.ErrSaving):
		response.Conflict(c, 16005, err.Error())
	case errors.Is(err, session.ErrUnknownField):
		response.BadRequest(c, 16006, err.Error())
	case errors.Is(err, model.ErrInvalidNumber), errors.Is(err, model.ErrInvalidBool),
		errors.Is(err, model.ErrInvalidText), errors.Is(err, model.ErrInvalidOption):
		response.BadRequest(c, 16007, err.Error())
	case errors.Is(err, blob.ErrTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 16008, err.Error())
	case errors.Is(err, blob.ErrEmptyContent):
		response.BadRequest(c, 16009, err.Error())
	case errors.Is(err, session.ErrAttachmentNotFound):
		response.NotFound(c, 16010, err.Error())
	case errors.Is(err, blob.ErrInvalidRef), errors.Is(err, blob.ErrUnsupportedRef):
		response.Error(c, http.StatusUnprocessableEntity, 16011, err.Error())
	default:
		response.InternalError(c)
	}
}
