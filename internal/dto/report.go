package dto

// ── 报表模块 DTO ──

// TabularReportRequest 按 tab 的明细报表
type TabularReportRequest struct {
	YearID int    `form:"year_id" binding:"required,min=1"`
	Tab    string `form:"tab"     binding:"required,oneof=staff careContract checkContract checklist"`
}

// CompareRequest 两个学年对比
type CompareRequest struct {
	Year1 int `form:"year1" binding:"required,min=1"`
	Year2 int `form:"year2" binding:"required,min=1"`
}

// TabularReport 明细报表
// Empty 为 true 时该 tab 未配置任何字段，Headers / Rows 为空
type TabularReport struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
}

// ComparisonMetrics 单个学年的汇总指标
type ComparisonMetrics struct {
	TotalStudents           float64 `json:"total_students"`
	CareContractsSigned     int     `json:"care_contracts_signed"`
	CheckContractsCompleted int     `json:"check_contracts_completed"`
	SchoolCount             int     `json:"school_count"`
	CareContractsPercent    float64 `json:"care_contracts_percent"`
	CheckContractsPercent   float64 `json:"check_contracts_percent"`
}

// ComparisonYear 对比报表中的一列
type ComparisonYear struct {
	YearID  int               `json:"year_id"`
	Year    string            `json:"year"`
	Metrics ComparisonMetrics `json:"metrics"`
}

// ComparisonReport 两个学年并列对比
type ComparisonReport struct {
	Year1        ComparisonYear `json:"year1"`
	Year2        ComparisonYear `json:"year2"`
	TotalSchools int            `json:"total_schools"`
}
