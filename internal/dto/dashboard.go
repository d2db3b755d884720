package dto

// ── 总览模块 DTO ──

// DashboardRequest 总览查询；year_id 为空时取当前学年
type DashboardRequest struct {
	YearID int `form:"year_id" binding:"omitempty,min=1"`
}

// StatCount 计数与占可见学校总数的百分比（一位小数）
type StatCount struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// SeriesPoint 图表数据点
type SeriesPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DashboardAlerts 缺项学校名称
type DashboardAlerts struct {
	MissingActivityPlan  []string `json:"missing_activity_plan"`
	MissingCareContract  []string `json:"missing_care_contract"`
	MissingCheckContract []string `json:"missing_check_contract"`
}

// DashboardResponse 总览
type DashboardResponse struct {
	YearID              int             `json:"year_id"`
	Year                string          `json:"year"`
	TotalSchools        int             `json:"total_schools"`
	TotalStudents       float64         `json:"total_students"`
	CareContractsSigned StatCount       `json:"care_contracts_signed"`
	HealthChecksDone    StatCount       `json:"health_checks_done"`
	CollectiveKitchens  StatCount       `json:"collective_kitchens"`
	Inspected           StatCount       `json:"inspected"`
	ActivityPlans       StatCount       `json:"activity_plans"`
	SteeringCommittees  StatCount       `json:"steering_committees"`
	SchoolsByLevel      map[string]int  `json:"schools_by_level"`
	StudentsBySchool    []SeriesPoint   `json:"students_by_school"`
	StudentsByLevel     []SeriesPoint   `json:"students_by_level"`
	Alerts              DashboardAlerts `json:"alerts"`
}
