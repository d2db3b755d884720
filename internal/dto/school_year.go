package dto

// ── 学年模块 DTO ──

// SchoolYearRequest 新增 / 重命名学年，格式 "2025-2026"
type SchoolYearRequest struct {
	Year string `json:"year" binding:"required,school_year"`
}
