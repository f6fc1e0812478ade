package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"billcheck/internal/report"
)

type styles struct {
	header           int
	highlight        int
	highlightMoney   int
	totalLabel       int
	totalAmount      int
	totalDiffZero    int
	totalDiffNonZero int
	money            int
}

// numFmtMoney 内置数字格式 "0.00"
const numFmtMoney = 2

func newStyles(f *excelize.File) (styles, error) {
	var (
		st  styles
		err error
	)
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&st.highlight, &excelize.Style{
			Font: &excelize.Font{Color: "8B0000"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE4E1"}},
		}},
		{&st.highlightMoney, &excelize.Style{
			Font:   &excelize.Font{Color: "8B0000"},
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE4E1"}},
			NumFmt: numFmtMoney,
		}},
		{&st.totalLabel, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
		{&st.totalAmount, &excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFFCC"}},
			NumFmt: numFmtMoney,
		}},
		{&st.totalDiffZero, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: "008000"},
			NumFmt: numFmtMoney,
		}},
		{&st.totalDiffNonZero, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: "FF0000"},
			NumFmt: numFmtMoney,
		}},
		{&st.money, &excelize.Style{NumFmt: numFmtMoney}},
	}
	for _, d := range defs {
		if *d.dst, err = f.NewStyle(d.style); err != nil {
			return st, err
		}
	}
	return st, nil
}

// 统计附表表头
var (
	departmentHeader    = []string{"部门", "付款方式", "订单数量", "总金额"}
	offlineDetailHeader = []string{"经手人", "运单号", "总金额", "付款方式"}
	offlineAgentHeader  = []string{"经手人", "部门", "付款方式", "订单数量", "总金额"}
)

// writeStatisticsSheets 写入三张统计附表；无数据时只保留表头
func writeStatisticsSheets(f *excelize.File, st styles, stats report.Statistics) error {
	dept := make([][]interface{}, 0, len(stats.ByDepartment))
	for _, s := range stats.ByDepartment {
		dept = append(dept, []interface{}{s.Department, s.PaymentType, s.OrderCount, s.TotalAmount.InexactFloat64()})
	}
	details := make([][]interface{}, 0, len(stats.OfflineDetails))
	for _, d := range stats.OfflineDetails {
		details = append(details, []interface{}{d.Agent, d.TrackingNumber, d.TotalAmount.InexactFloat64(), d.PaymentType})
	}
	agents := make([][]interface{}, 0, len(stats.OfflineByAgent))
	for _, a := range stats.OfflineByAgent {
		agents = append(agents, []interface{}{a.Agent, a.Department, a.PaymentType, a.OrderCount, a.TotalAmount.InexactFloat64()})
	}

	sheets := []struct {
		name     string
		header   []string
		rows     [][]interface{}
		moneyCol int
	}{
		{DepartmentSheet, departmentHeader, dept, 4},
		{OfflineDetailSheet, offlineDetailHeader, details, 3},
		{OfflineAgentSheet, offlineAgentHeader, agents, 5},
	}
	for _, s := range sheets {
		if err := writeTableSheet(f, st, s.name, s.header, s.rows, s.moneyCol); err != nil {
			return err
		}
	}
	return nil
}

func writeTableSheet(f *excelize.File, st styles, sheet string, header []string, rows [][]interface{}, moneyCol int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建 %s 失败: %w", sheet, err)
	}
	if err := writeHeader(f, sheet, st.header, header); err != nil {
		return err
	}
	for i, values := range rows {
		v := values
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &v); err != nil {
			return fmt.Errorf("写入 %s 第 %d 行失败: %w", sheet, i+2, err)
		}
	}
	if len(rows) > 0 {
		top, _ := excelize.CoordinatesToCellName(moneyCol, 2)
		bottom, _ := excelize.CoordinatesToCellName(moneyCol, len(rows)+1)
		if err := f.SetCellStyle(sheet, top, bottom, st.money); err != nil {
			return err
		}
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", last, 16)
}
