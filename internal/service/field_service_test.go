package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"school-health/internal/dto"
	"school-health/internal/model"
)

func setupTestFieldService() (*fieldService, *mockState) {
	st := newMockState(fixture())
	svc := NewFieldService(st, zap.NewNop()).(*fieldService)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, st
}

func TestFieldSlug(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Có bếp ăn tập thể", "co_bep_an_tap_the"},
		{"Đơn vị ký kết", "don_vi_ky_ket"},
		{"  Chi phí/học sinh (VND) ", "chi_phihoc_sinh_vnd"},
		{"Số   lượng", "so_luong"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := FieldSlug(tt.label); got != tt.want {
			t.Errorf("FieldSlug(%q) 期望 %q，实际 %q", tt.label, tt.want, got)
		}
	}
}

func TestParseOptions(t *testing.T) {
	got := ParseOptions(" Đã ký, Chưa ký ,,")
	want := []string{"Đã ký", "Chưa ký"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
	if ParseOptions("") != nil {
		t.Error("空字符串应无选项")
	}
}

// ── Create 测试 ──

func TestFieldService_Create(t *testing.T) {
	svc, st := setupTestFieldService()

	f, err := svc.Create(context.Background(), &dto.CreateFieldRequest{
		Tab: "staff", Label: "Trình độ chuyên môn", Type: "droplist", Options: "Bác sĩ, Y sĩ",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if f.Name != "trinh_do_chuyen_mon" {
		t.Errorf("期望 name=trinh_do_chuyen_mon，实际=%s", f.Name)
	}
	if f.ID != "1700000000000" {
		t.Errorf("ID 应为毫秒时间戳，实际=%s", f.ID)
	}
	if !reflect.DeepEqual(f.Options, []string{"Bác sĩ", "Y sĩ"}) {
		t.Errorf("选项解析不正确: %v", f.Options)
	}
	if n := len(st.snapshot().DynamicFields); n != 6 {
		t.Errorf("期望 6 个字段，实际=%d", n)
	}

	// 同一毫秒内再次创建，ID 顺延
	g, err := svc.Create(context.Background(), &dto.CreateFieldRequest{Tab: "staff", Label: "Ghi chú", Type: "text", Options: "a,b"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if g.ID != "1700000000001" {
		t.Errorf("ID 应顺延，实际=%s", g.ID)
	}
	if g.Options != nil {
		t.Errorf("text 类型不应保留选项: %v", g.Options)
	}
}

func TestFieldService_Create_DuplicateInTab(t *testing.T) {
	svc, st := setupTestFieldService()

	_, err := svc.Create(context.Background(), &dto.CreateFieldRequest{Tab: "staff", Label: "Họ tên", Type: "text"})
	if !errors.Is(err, ErrFieldDuplicate) {
		t.Errorf("期望 ErrFieldDuplicate，实际: %v", err)
	}
	// 其他 tab 同名允许
	if _, err := svc.Create(context.Background(), &dto.CreateFieldRequest{Tab: "checklist", Label: "Họ tên", Type: "text"}); err != nil {
		t.Errorf("不同 tab 同名应允许: %v", err)
	}
	if len(st.writes) != 1 {
		t.Errorf("期望只写入 1 次，实际 %d", len(st.writes))
	}
}

func TestFieldService_Create_Validation(t *testing.T) {
	svc, _ := setupTestFieldService()

	tests := []struct {
		req  dto.CreateFieldRequest
		want error
	}{
		{dto.CreateFieldRequest{Tab: "staff", Label: "  ", Type: "text"}, ErrFieldLabelRequired},
		{dto.CreateFieldRequest{Tab: "misc", Label: "A", Type: "text"}, ErrFieldTab},
		{dto.CreateFieldRequest{Tab: "staff", Label: "A", Type: "date"}, ErrFieldType},
		{dto.CreateFieldRequest{Tab: "staff", Label: "???", Type: "text"}, ErrFieldNameEmpty},
	}
	for _, tt := range tests {
		if _, err := svc.Create(context.Background(), &tt.req); !errors.Is(err, tt.want) {
			t.Errorf("%+v 期望 %v，实际: %v", tt.req, tt.want, err)
		}
	}
}

// ── Update / Delete 测试 ──

func TestFieldService_Update_NameImmutable(t *testing.T) {
	svc, st := setupTestFieldService()

	f, err := svc.Update(context.Background(), "df_05", &dto.UpdateFieldRequest{Label: "Trạng thái hợp đồng", Type: "text", Options: "x"})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if f.Name != model.FieldCareContractStatus || f.Tab != model.TabCareContract {
		t.Errorf("name 与 tab 不应改变: %+v", f)
	}
	if f.Options != nil {
		t.Errorf("改为 text 后应移除选项: %v", f.Options)
	}
	stored := st.snapshot().DynamicFields[2]
	if stored.Label != "Trạng thái hợp đồng" {
		t.Errorf("存储中的 label 未更新: %s", stored.Label)
	}

	if _, err := svc.Update(context.Background(), "nope", &dto.UpdateFieldRequest{Label: "A", Type: "text"}); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("期望 ErrFieldNotFound，实际: %v", err)
	}
}

func TestFieldService_Delete_KeepsValues(t *testing.T) {
	svc, st := setupTestFieldService()
	rec := model.NewHealthRecord(1, 1)
	rec.DynamicData["staff_name"] = "Nguyễn Văn A"
	st.snap.HealthRecords = []model.HealthRecord{rec}

	if err := svc.Delete(context.Background(), "df_02"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	snap := st.snapshot()
	if len(snap.FieldsByTab(model.TabStaff)) != 0 {
		t.Error("staff 字段应已删除")
	}
	if r, _ := snap.FindRecord(1, 1); r.String("staff_name") != "Nguyễn Văn A" {
		t.Error("删除字段不应清理档案中已保存的值")
	}

	list, _ := svc.List(context.Background(), &dto.FieldListRequest{Tab: "checklist"})
	if len(list) != 1 {
		t.Errorf("checklist 期望 1 个字段，实际=%d", len(list))
	}
}
