package dto

// ── 动态字段模块 DTO ──

// FieldListRequest 字段列表查询
type FieldListRequest struct {
	Tab string `form:"tab" binding:"omitempty,oneof=staff careContract checkContract checklist"`
}

// CreateFieldRequest 新增字段；name 由 label 自动生成
type CreateFieldRequest struct {
	Tab     string `json:"tab"     binding:"required,oneof=staff careContract checkContract checklist"`
	Label   string `json:"label"   binding:"required,max=200"`
	Type    string `json:"type"    binding:"required,oneof=text number select checkbox droplist"`
	Options string `json:"options"` // 逗号分隔，仅 select / droplist 有效
}

// UpdateFieldRequest 编辑字段；name 与 tab 不可修改
type UpdateFieldRequest struct {
	Label   string `json:"label"   binding:"required,max=200"`
	Type    string `json:"type"    binding:"required,oneof=text number select checkbox droplist"`
	Options string `json:"options"`
}
