// Package compliance 记录完整性检查
package compliance

import "school-health/internal/model"

// Status 不完整的字段名与分类
type Status struct {
	IncompleteFieldNames []string    `json:"incompleteFieldNames"`
	IncompleteTabs       []model.Tab `json:"incompleteTabs"`
}

// Complete 全部检查通过
func (s Status) Complete() bool { return len(s.IncompleteFieldNames) == 0 }

// FieldIncomplete 某字段是否未完成
func (s Status) FieldIncomplete(name string) bool {
	for _, n := range s.IncompleteFieldNames {
		if n == name {
			return true
		}
	}
	return false
}

// TabIncomplete 某分类是否未完成
func (s Status) TabIncomplete(tab model.Tab) bool {
	for _, t := range s.IncompleteTabs {
		if t == tab {
			return true
		}
	}
	return false
}

// contractFiles 合同分类需要的合同附件
var contractFiles = []struct {
	tab model.Tab
	key string
}{
	{model.TabCareContract, model.CareContractFileKey},
	{model.TabCheckContract, model.CheckContractFileKey},
}

// Evaluate 计算记录的不完整项，纯函数
//
// 非 checklist 字段：值缺失、为 nil 或空串即不完整；student_count 为 0 视为未填写。
// checklist 字段：值严格为 true 且存在同名附件才算完成。
// 另外两类合同各自需要一个合同附件。
func Evaluate(record model.HealthRecord, fields []model.DynamicField) Status {
	st := Status{IncompleteFieldNames: []string{}, IncompleteTabs: []model.Tab{}}
	seen := map[model.Tab]bool{}
	fail := func(name string, tab model.Tab) {
		st.IncompleteFieldNames = append(st.IncompleteFieldNames, name)
		if !seen[tab] {
			seen[tab] = true
			st.IncompleteTabs = append(st.IncompleteTabs, tab)
		}
	}

	for _, f := range fields {
		if f.Tab == model.TabChecklist {
			if !record.Bool(f.Name) || !record.HasAttachment(f.Name) {
				fail(f.Name, f.Tab)
			}
			continue
		}
		if isEmptyValue(f.Name, record.DynamicData[f.Name]) {
			fail(f.Name, f.Tab)
		}
	}

	for _, c := range contractFiles {
		if !record.HasAttachment(c.key) {
			fail(c.key, c.tab)
		}
	}
	return st
}

func isEmptyValue(name string, v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return name == model.FieldStudentCount && x == 0
	case int:
		return name == model.FieldStudentCount && x == 0
	}
	return false
}
