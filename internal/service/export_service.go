package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"school-health/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("báo cáo không có dữ liệu để xuất")
	ErrExportGenerateFail = errors.New("tạo tệp Excel thất bại")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写出。
// 格式：单个 Sheet，第 1 行标题（合并单元格），第 2 行表头，其后每校一行
type ExportService interface {
	ExportReport(ctx context.Context, userID int, req *dto.TabularReportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	report ReportService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(report ReportService, logger *zap.Logger) ExportService {
	return &exportService{report: report, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportReport 明细报表导出为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportReport(ctx context.Context, userID int, req *dto.TabularReportRequest) (*bytes.Buffer, string, error) {
	report, err := s.report.Tabular(ctx, userID, req)
	if err != nil {
		return nil, "", err
	}
	if report.Empty {
		return nil, "", ErrExportEmpty
	}

	buf, err := renderReport(report)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("tab", req.Tab), zap.Int("year_id", req.YearID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	filename := fmt.Sprintf("bao-cao_%s_%d.xlsx", req.Tab, req.YearID)
	return buf, filename, nil
}

const reportSheet = "Báo cáo"

func renderReport(report *dto.TabularReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	// 设置列宽
	f.SetColWidth(reportSheet, "A", "A", 32)
	if n := len(report.Headers); n > 1 {
		f.SetColWidth(reportSheet, colName(1), colName(n-1), 20)
	}

	// 样式
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#0EA5E9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// 标题行
	f.SetCellValue(reportSheet, "A1", report.Title)
	if n := len(report.Headers); n > 1 {
		f.MergeCell(reportSheet, "A1", cell(colName(n-1), 1))
	}
	f.SetCellStyle(reportSheet, "A1", "A1", titleStyle)

	// 表头
	for i, h := range report.Headers {
		f.SetCellValue(reportSheet, cell(colName(i), 2), h)
	}
	if n := len(report.Headers); n > 0 {
		f.SetCellStyle(reportSheet, "A2", cell(colName(n-1), 2), headerStyle)
	}

	// 数据行
	for r, row := range report.Rows {
		for c, v := range row {
			f.SetCellValue(reportSheet, cell(colName(c), r+3), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
