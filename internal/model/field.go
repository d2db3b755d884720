package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tab 字段所属分类
type Tab string

const (
	TabOverview      Tab = "overview"
	TabStaff         Tab = "staff"
	TabCareContract  Tab = "careContract"
	TabCheckContract Tab = "checkContract"
	TabChecklist     Tab = "checklist"
)

// Tabs 展示顺序
var Tabs = []Tab{TabOverview, TabStaff, TabCareContract, TabCheckContract, TabChecklist}

var tabLabels = map[Tab]string{
	TabOverview:      "Tổng quan",
	TabStaff:         "Nhân viên Y tế",
	TabCareContract:  "Hợp đồng CSSK",
	TabCheckContract: "Hợp đồng KSK",
	TabChecklist:     "Hoạt động (Checklist)",
}

func (t Tab) Valid() bool {
	_, ok := tabLabels[t]
	return ok
}

// Label 界面显示名
func (t Tab) Label() string { return tabLabels[t] }

// FieldType 字段类型
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldDroplist FieldType = "droplist"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldCheckbox, FieldDroplist:
		return true
	}
	return false
}

// HasOptions select / droplist 才有选项
func (t FieldType) HasOptions() bool { return t == FieldSelect || t == FieldDroplist }

// DynamicField 动态字段定义，集合 dynamicFields
// Name 在同一 Tab 内唯一，是 HealthRecord.DynamicData 的键
type DynamicField struct {
	ID      string    `json:"id"`
	Tab     Tab       `json:"tab"`
	Label   string    `json:"label"`
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options,omitempty"`
}

// Clone 深拷贝
func (f DynamicField) Clone() DynamicField {
	if f.Options != nil {
		f.Options = append([]string(nil), f.Options...)
	}
	return f
}

// Kind 返回字段类型对应的取值规则
func (f DynamicField) Kind() FieldKind {
	switch f.Type {
	case FieldNumber:
		return NumberKind{}
	case FieldCheckbox:
		return CheckboxKind{}
	case FieldSelect, FieldDroplist:
		return ChoiceKind{Options: f.Options}
	default:
		return TextKind{}
	}
}

// ────────────────────── 字段取值规则 ──────────────────────

var (
	ErrInvalidNumber = errors.New("giá trị phải là số")
	ErrInvalidBool   = errors.New("giá trị phải là Có/Không")
	ErrInvalidText   = errors.New("giá trị phải là chuỗi ký tự")
	ErrInvalidOption = errors.New("giá trị không nằm trong danh sách lựa chọn")
)

// FieldKind 每种字段类型的默认值与强制转换
// Coerce 返回 nil 表示清空该字段
type FieldKind interface {
	Default() any
	Coerce(raw any) (any, error)
}

// TextKind 文本
type TextKind struct{}

func (TextKind) Default() any { return "" }

func (TextKind) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	}
	return nil, ErrInvalidText
}

// NumberKind 数值，统一为 float64（与 JSON 解码结果一致）
type NumberKind struct{}

func (NumberKind) Default() any { return nil }

func (NumberKind) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, ErrInvalidNumber
		}
		return f, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, ErrInvalidNumber
		}
		return f, nil
	}
	return nil, ErrInvalidNumber
}

// CheckboxKind 勾选
type CheckboxKind struct{}

func (CheckboxKind) Default() any { return false }

func (CheckboxKind) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1":
			return true, nil
		case "false", "off", "0", "":
			return false, nil
		}
	}
	return nil, ErrInvalidBool
}

// ChoiceKind select / droplist；配置了选项时只接受选项内的值
type ChoiceKind struct {
	Options []string
}

func (ChoiceKind) Default() any { return "" }

func (k ChoiceKind) Coerce(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, ErrInvalidText
	}
	if s == "" || len(k.Options) == 0 {
		return s, nil
	}
	for _, o := range k.Options {
		if o == s {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidOption, s)
}
