package service

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"school-health/internal/model"
)

// 报表单元格文案
const (
	cellMissing = "Chưa có"
	cellYes     = "Có"
	cellNo      = "Không"
)

var viPrinter = message.NewPrinter(language.Vietnamese)

// FormatNumber 越南语数字格式：千位 "."，小数 ","，最多三位小数
func FormatNumber(v float64) string {
	return viPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// formatCell 按字段类型格式化档案中的值
func formatCell(field model.DynamicField, v any) string {
	if v == nil {
		return cellMissing
	}
	if s, ok := v.(string); ok && s == "" {
		return cellMissing
	}
	switch field.Type {
	case model.FieldCheckbox:
		if truthy(v) {
			return cellYes
		}
		return cellNo
	case model.FieldNumber:
		switch n := v.(type) {
		case float64:
			return FormatNumber(n)
		case int:
			return FormatNumber(float64(n))
		}
	}
	return viPrinter.Sprint(v)
}

// truthy 非空字符串、非零数字、true 视为"有"
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case int:
		return x != 0
	}
	return v != nil
}

// percent 一位小数的百分比；分母为 0 时为 0
func percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(total)) / 10
}
