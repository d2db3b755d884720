package service

import (
	"context"
	"sync"

	"school-health/internal/model"
)

// ── Mock State ──
// 写入立即回显到本地快照，模拟存储推送

type mockState struct {
	mu       sync.Mutex
	snap     model.Snapshot
	writeErr error
	writes   []model.Collection
	resets   int
}

func newMockState(snap model.Snapshot) *mockState {
	return &mockState{snap: snap.Normalize()}
}

func (m *mockState) Current() (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

func (m *mockState) write(c model.Collection, apply func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, c)
	if m.writeErr != nil {
		return m.writeErr
	}
	apply()
	return nil
}

func (m *mockState) UpdateSchools(_ context.Context, v []model.School) error {
	return m.write(model.CollectionSchools, func() { m.snap.Schools = v })
}

func (m *mockState) UpdateUsers(_ context.Context, v []model.User) error {
	return m.write(model.CollectionUsers, func() { m.snap.Users = v })
}

func (m *mockState) UpdateHealthRecords(_ context.Context, v []model.HealthRecord) error {
	return m.write(model.CollectionHealthRecords, func() { m.snap.HealthRecords = v })
}

func (m *mockState) UpdateSchoolYears(_ context.Context, v []model.SchoolYear) error {
	return m.write(model.CollectionSchoolYears, func() { m.snap.SchoolYears = v })
}

func (m *mockState) UpdateDynamicFields(_ context.Context, v []model.DynamicField) error {
	return m.write(model.CollectionDynamicFields, func() { m.snap.DynamicFields = v })
}

func (m *mockState) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return m.writeErr
}

func (m *mockState) snapshot() model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone()
}

// ── 测试数据 ──

const (
	adminID = 1
	userID  = 2
)

// fixture 三所学校、两个学年、一个管理员、一个只分配了学校 1 的普通用户
func fixture() model.Snapshot {
	return model.Snapshot{
		SchoolYears: []model.SchoolYear{
			{ID: 1, Year: "2024-2025", IsCurrent: true},
			{ID: 2, Year: "2023-2024", IsLocked: true},
		},
		DynamicFields: []model.DynamicField{
			{ID: "df_01", Tab: model.TabOverview, Label: "Tổng số học sinh", Name: model.FieldStudentCount, Type: model.FieldNumber},
			{ID: "df_02", Tab: model.TabStaff, Label: "Họ tên", Name: "staff_name", Type: model.FieldText},
			{ID: "df_05", Tab: model.TabCareContract, Label: "Tình trạng", Name: model.FieldCareContractStatus, Type: model.FieldSelect, Options: []string{"Đã ký", "Chưa ký"}},
			{ID: "df_10", Tab: model.TabCheckContract, Label: "Đã hoàn thành khám", Name: model.FieldCheckContractComplete, Type: model.FieldCheckbox},
			{ID: "df_13", Tab: model.TabChecklist, Label: "Có Kế hoạch hoạt động", Name: model.FieldActivityPlan, Type: model.FieldCheckbox},
		},
		Schools: []model.School{
			{ID: 1, Name: "THCS Đức Phú", Level: model.LevelLowerSecondary, Location: "Nghị Đức, Lâm Đồng"},
			{ID: 2, Name: "Tiểu học Suối Kiết", Level: model.LevelPrimary, Location: "Suối Kiết, Lâm Đồng"},
			{ID: 5, Name: "THPT Tánh Linh", Level: model.LevelUpperSecondary, Location: "Lạc Tánh, Lâm Đồng"},
		},
		Users: []model.User{
			{ID: adminID, Name: "Quản trị", Phone: "0900000000", Username: "admin", Password: "admin", Role: model.RoleAdmin},
			{ID: userID, Name: "Cán bộ", Phone: "0911111111", Username: "user1", Password: "123", Role: model.RoleUser, AssignedSchoolIDs: []int{1}},
		},
		HealthRecords: []model.HealthRecord{},
	}
}
