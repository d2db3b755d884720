package dto

// ── 学校模块 DTO ──

// SchoolListRequest 学校列表查询
type SchoolListRequest struct {
	Q string `form:"q"`
}

// SchoolRequest 新增 / 编辑学校
type SchoolRequest struct {
	Name     string `json:"name"     binding:"max=200"`
	Level    string `json:"level"    binding:"omitempty,school_level"`
	Location string `json:"location" binding:"max=200"`
}
