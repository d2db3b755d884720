package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestFieldKind_Coerce(t *testing.T) {
	tests := []struct {
		name    string
		field   DynamicField
		raw     any
		want    any
		wantErr error
	}{
		{"数字字符串", DynamicField{Type: FieldNumber}, "450", 450.0, nil},
		{"整数", DynamicField{Type: FieldNumber}, 12, 12.0, nil},
		{"空串清空数字", DynamicField{Type: FieldNumber}, " ", nil, nil},
		{"非法数字", DynamicField{Type: FieldNumber}, "abc", nil, ErrInvalidNumber},
		{"勾选 on", DynamicField{Type: FieldCheckbox}, "on", true, nil},
		{"勾选 bool", DynamicField{Type: FieldCheckbox}, false, false, nil},
		{"勾选非法", DynamicField{Type: FieldCheckbox}, 3.0, nil, ErrInvalidBool},
		{"文本数字", DynamicField{Type: FieldText}, 1.5, "1.5", nil},
		{"选项命中", DynamicField{Type: FieldSelect, Options: []string{"Đã ký", "Chưa ký"}}, "Đã ký", "Đã ký", nil},
		{"选项未命中", DynamicField{Type: FieldSelect, Options: []string{"Đã ký"}}, "Khác", nil, ErrInvalidOption},
		{"无选项下拉", DynamicField{Type: FieldDroplist}, "tùy ý", "tùy ý", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Kind().Coerce(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("期望错误 %v，实际: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("意外错误: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %v (%T)，实际 %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestHealthRecord_CloneIsIndependent(t *testing.T) {
	r := NewHealthRecord(1, 3)
	r.DynamicData["student_count"] = 10.0
	r.Attachments = append(r.Attachments, FileAttachment{ID: "a1", FieldName: CareContractFileKey})

	c := r.Clone()
	c.DynamicData["student_count"] = 20.0
	c.Attachments[0].FileName = "khác.pdf"
	c.Attachments = append(c.Attachments, FileAttachment{ID: "a2"})

	if r.Number("student_count") != 10 {
		t.Errorf("原记录的 dynamicData 被修改")
	}
	if len(r.Attachments) != 1 || r.Attachments[0].FileName != "" {
		t.Errorf("原记录的附件被修改: %+v", r.Attachments)
	}
}

func TestSnapshot_EmptyAndNormalize(t *testing.T) {
	var s Snapshot
	if !s.Empty() {
		t.Error("零值快照应为空")
	}

	s.HealthRecords = []HealthRecord{{SchoolID: 1, SchoolYearID: 1}}
	if s.Empty() {
		t.Error("含记录的快照不应为空")
	}

	n := s.Normalize()
	if n.Schools == nil || n.Users == nil || n.SchoolYears == nil || n.DynamicFields == nil {
		t.Error("Normalize 后集合不应为 nil")
	}
	if n.HealthRecords[0].DynamicData == nil || n.HealthRecords[0].Attachments == nil {
		t.Error("Normalize 后记录字段不应为 nil")
	}
}

func TestSnapshot_VisibleSchools(t *testing.T) {
	s := Snapshot{Schools: []School{{ID: 1}, {ID: 5}, {ID: 9}}}

	admin := User{Role: RoleAdmin, AssignedSchoolIDs: []int{}}
	if got := s.VisibleSchools(admin); len(got) != 3 {
		t.Errorf("管理员应看到全部 3 所学校，实际 %d", len(got))
	}

	user := User{Role: RoleUser, AssignedSchoolIDs: []int{5}}
	got := s.VisibleSchools(user)
	if !reflect.DeepEqual(got, []School{{ID: 5}}) {
		t.Errorf("普通用户应只看到学校 5，实际 %+v", got)
	}
}

func TestSnapshot_CloneDeep(t *testing.T) {
	s := Snapshot{
		Users:         []User{{ID: 1, AssignedSchoolIDs: []int{1}}},
		DynamicFields: []DynamicField{{ID: "f", Options: []string{"a"}}},
	}
	c := s.Clone()
	c.Users[0].AssignedSchoolIDs[0] = 99
	c.DynamicFields[0].Options[0] = "z"

	if s.Users[0].AssignedSchoolIDs[0] != 1 || s.DynamicFields[0].Options[0] != "a" {
		t.Error("Clone 不应共享底层切片")
	}
}
