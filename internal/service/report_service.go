package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"school-health/internal/dto"
	"school-health/internal/model"
)

// ── 报表模块业务错误 ──

var (
	ErrCompareSameYear = errors.New("Vui lòng chọn hai năm học khác nhau để so sánh.")
	ErrReportTab       = errors.New("loại báo cáo không hợp lệ")
)

// EmptyReportMessage 该 tab 未配置字段时的提示
const EmptyReportMessage = "Chưa có trường thông tin nào được cấu hình cho báo cáo này."

var reportTitles = map[model.Tab]string{
	model.TabStaff:         "Báo cáo Nhân sự Y tế Học đường - Năm học ",
	model.TabCareContract:  "Báo cáo Hợp đồng Chăm sóc Sức khỏe - Năm học ",
	model.TabCheckContract: "Báo cáo Hợp đồng Khám Sức khỏe - Năm học ",
	model.TabChecklist:     "Báo cáo Tuân thủ Hoạt động - Năm học ",
}

// ReportService 报表业务接口
type ReportService interface {
	Tabular(ctx context.Context, userID int, req *dto.TabularReportRequest) (*dto.TabularReport, error)
	Compare(ctx context.Context, userID int, req *dto.CompareRequest) (*dto.ComparisonReport, error)
}

type reportService struct {
	state  State
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(st State, logger *zap.Logger) ReportService {
	return &reportService{state: st, logger: logger}
}

// ────────────────────── Tabular ──────────────────────

// Tabular 每所可见学校一行，首列为校名，其后为该 tab 各字段
func (s *reportService) Tabular(ctx context.Context, userID int, req *dto.TabularReportRequest) (*dto.TabularReport, error) {
	tab := model.Tab(req.Tab)
	prefix, ok := reportTitles[tab]
	if !ok {
		return nil, ErrReportTab
	}
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	caller, err := callerOf(snap, userID)
	if err != nil {
		return nil, err
	}
	year, ok := snap.FindYear(req.YearID)
	if !ok {
		return nil, ErrYearNotFound
	}

	report := &dto.TabularReport{Title: prefix + year.Year, Headers: []string{}, Rows: [][]string{}}
	fields := snap.FieldsByTab(tab)
	if len(fields) == 0 {
		report.Empty = true
		report.Message = EmptyReportMessage
		return report, nil
	}

	report.Headers = append(report.Headers, "Tên trường")
	for _, f := range fields {
		report.Headers = append(report.Headers, f.Label)
	}

	byschool := recordsBySchool(snap.HealthRecords, year.ID)
	for _, sc := range snap.VisibleSchools(caller) {
		row := make([]string, 0, len(fields)+1)
		row = append(row, sc.Name)
		rec, has := byschool[sc.ID]
		for _, f := range fields {
			var v any
			if has {
				v = rec.DynamicData[f.Name]
			}
			row = append(row, formatCell(f, v))
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// recordsBySchool 某学年的档案按学校索引
func recordsBySchool(records []model.HealthRecord, yearID int) map[int]model.HealthRecord {
	out := make(map[int]model.HealthRecord)
	for _, r := range records {
		if r.SchoolYearID == yearID {
			out[r.SchoolID] = r
		}
	}
	return out
}

// ────────────────────── Compare ──────────────────────

// Compare 两个学年的汇总指标并列；百分比以可见学校总数为分母
func (s *reportService) Compare(ctx context.Context, userID int, req *dto.CompareRequest) (*dto.ComparisonReport, error) {
	if req.Year1 == req.Year2 {
		return nil, ErrCompareSameYear
	}
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	caller, err := callerOf(snap, userID)
	if err != nil {
		return nil, err
	}
	y1, ok1 := snap.FindYear(req.Year1)
	y2, ok2 := snap.FindYear(req.Year2)
	if !ok1 || !ok2 {
		return nil, ErrYearNotFound
	}

	visible := snap.VisibleSchools(caller)
	total := len(visible)
	return &dto.ComparisonReport{
		Year1:        dto.ComparisonYear{YearID: y1.ID, Year: y1.Year, Metrics: yearMetrics(snap, visible, y1.ID)},
		Year2:        dto.ComparisonYear{YearID: y2.ID, Year: y2.Year, Metrics: yearMetrics(snap, visible, y2.ID)},
		TotalSchools: total,
	}, nil
}

// yearMetrics schoolCount 为有档案的学校数，为 0 时取可见学校总数
func yearMetrics(snap model.Snapshot, visible []model.School, yearID int) dto.ComparisonMetrics {
	byschool := recordsBySchool(snap.HealthRecords, yearID)
	var m dto.ComparisonMetrics
	for _, sc := range visible {
		rec, ok := byschool[sc.ID]
		if !ok {
			continue
		}
		m.SchoolCount++
		m.TotalStudents += rec.Number(model.FieldStudentCount)
		if rec.String(model.FieldCareContractStatus) == model.ContractSigned {
			m.CareContractsSigned++
		}
		if rec.Bool(model.FieldCheckContractComplete) {
			m.CheckContractsCompleted++
		}
	}
	if m.SchoolCount == 0 {
		m.SchoolCount = len(visible)
	}
	m.CareContractsPercent = percent(m.CareContractsSigned, len(visible))
	m.CheckContractsPercent = percent(m.CheckContractsCompleted, len(visible))
	return m
}
