package dto

// ── 健康档案模块 DTO ──

// SetFieldRequest 修改单个字段的值；value 按字段类型转换
type SetFieldRequest struct {
	Value any `json:"value"`
}

// AttachmentRequest 上传附件（multipart 表单字段）
type AttachmentRequest struct {
	FieldName string `form:"field_name" binding:"required,max=100"`
}
