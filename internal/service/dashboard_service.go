package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"school-health/internal/compliance"
	"school-health/internal/dto"
	"school-health/internal/model"
)

// DashboardService 总览业务接口
type DashboardService interface {
	Get(ctx context.Context, userID int, req *dto.DashboardRequest) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	state  State
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(st State, logger *zap.Logger) DashboardService {
	return &dashboardService{state: st, logger: logger}
}

// Get 按当前用户可见学校与所选学年汇总；未指定学年时取当前学年
func (s *dashboardService) Get(ctx context.Context, userID int, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	snap, err := s.state.Current()
	if err != nil {
		return nil, err
	}
	caller, err := callerOf(snap, userID)
	if err != nil {
		return nil, err
	}

	var (
		year model.SchoolYear
		ok   bool
	)
	if req.YearID > 0 {
		if year, ok = snap.FindYear(req.YearID); !ok {
			return nil, ErrYearNotFound
		}
	} else if year, ok = snap.CurrentYear(); !ok {
		return nil, ErrNoCurrentYear
	}

	return Aggregate(snap, snap.VisibleSchools(caller), year), nil
}

// Aggregate 纯计算，不访问存储
func Aggregate(snap model.Snapshot, visible []model.School, year model.SchoolYear) *dto.DashboardResponse {
	total := len(visible)
	resp := &dto.DashboardResponse{
		YearID:           year.ID,
		Year:             year.Year,
		TotalSchools:     total,
		SchoolsByLevel:   make(map[string]int, len(model.SchoolLevels)),
		StudentsBySchool: make([]dto.SeriesPoint, 0, total),
		StudentsByLevel:  []dto.SeriesPoint{},
		Alerts: dto.DashboardAlerts{
			MissingActivityPlan:  []string{},
			MissingCareContract:  []string{},
			MissingCheckContract: []string{},
		},
	}
	for _, lv := range model.SchoolLevels {
		resp.SchoolsByLevel[string(lv)] = 0
	}

	var signed, checked, kitchens, inspected, plans, committees int
	studentsByLevel := make(map[model.SchoolLevel]float64)
	byschool := recordsBySchool(snap.HealthRecords, year.ID)

	for _, sc := range visible {
		resp.SchoolsByLevel[string(sc.Level)]++

		rec, has := byschool[sc.ID]
		if !has {
			rec = model.NewHealthRecord(sc.ID, year.ID)
		}
		students := rec.Number(model.FieldStudentCount)
		resp.TotalStudents += students
		studentsByLevel[sc.Level] += students
		resp.StudentsBySchool = append(resp.StudentsBySchool, dto.SeriesPoint{Name: chartLabel(sc.Name), Value: students})

		careSigned := rec.String(model.FieldCareContractStatus) == model.ContractSigned
		checkDone := rec.Bool(model.FieldCheckContractComplete)
		if careSigned {
			signed++
		}
		if checkDone {
			checked++
		}
		if rec.Bool(model.FieldCollectiveKitchen) {
			kitchens++
		}
		if rec.Bool(model.FieldInspected) {
			inspected++
		}
		planOK := rec.Bool(model.FieldActivityPlan) && rec.HasAttachment(model.FieldActivityPlan)
		if rec.Bool(model.FieldActivityPlan) {
			plans++
		}
		if rec.Bool(model.FieldSteeringCommittee) {
			committees++
		}

		status := compliance.Evaluate(rec, snap.DynamicFields)
		if !planOK {
			resp.Alerts.MissingActivityPlan = append(resp.Alerts.MissingActivityPlan, sc.Name)
		}
		if !careSigned || status.TabIncomplete(model.TabCareContract) {
			resp.Alerts.MissingCareContract = append(resp.Alerts.MissingCareContract, sc.Name)
		}
		if !checkDone || status.TabIncomplete(model.TabCheckContract) {
			resp.Alerts.MissingCheckContract = append(resp.Alerts.MissingCheckContract, sc.Name)
		}
	}

	resp.CareContractsSigned = dto.StatCount{Count: signed, Percent: percent(signed, total)}
	resp.HealthChecksDone = dto.StatCount{Count: checked, Percent: percent(checked, total)}
	resp.CollectiveKitchens = dto.StatCount{Count: kitchens, Percent: percent(kitchens, total)}
	resp.Inspected = dto.StatCount{Count: inspected, Percent: percent(inspected, total)}
	resp.ActivityPlans = dto.StatCount{Count: plans, Percent: percent(plans, total)}
	resp.SteeringCommittees = dto.StatCount{Count: committees, Percent: percent(committees, total)}

	for _, lv := range model.SchoolLevels {
		if n := studentsByLevel[lv]; n > 0 {
			resp.StudentsByLevel = append(resp.StudentsByLevel, dto.SeriesPoint{Name: string(lv), Value: n})
		}
	}
	return resp
}

// chartLabel 柱状图标签去掉常见的学校类型前缀
func chartLabel(name string) string {
	name = strings.Replace(name, "THCS ", "", 1)
	return strings.Replace(name, "Tiểu học ", "", 1)
}
