package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"billcheck/internal/calculator"
	"billcheck/internal/model"
	"billcheck/internal/report"
)

func sampleReport() *report.Report {
	header := []string{"序号", "运单号", "应付金额"}
	cells := [][]string{
		{"1", "SF1", "16.80"},
		{"2", "SF2", "12.00"},
		{"3", "SF3", "5"},
		{"合计", "", "33.80"},
	}
	rows := make([]model.BillRow, len(cells))
	for i, c := range cells {
		rows[i] = model.NewBillRow(i+2, header, c)
	}

	d := decimal.RequireFromString
	results := []model.ProcessingResult{
		{RowNum: 2, TrackingNumber: "SF1", Category: "运费", Formula: "12.6 + 2 * 2.1 = 16.80",
			TheoreticalAmount: d("16.8"), DiffAmount: decimal.Zero, ResultText: "运费一致"},
		{RowNum: 3, TrackingNumber: "SF2", Category: "运费",
			TheoreticalAmount: d("11"), DiffAmount: d("1"), ResultText: "运费差异（账单：12.00 vs 核算：11.00）", ReasonText: "金额不一致"},
		{RowNum: 4, TrackingNumber: "SF3",
			TheoreticalAmount: decimal.Zero, DiffAmount: d("5"), ResultText: calculator.FreightNotFoundText},
		{RowNum: 5, TheoreticalAmount: decimal.Zero, DiffAmount: d("33.8"), ResultText: "未核算服务类型"},
	}
	orders := []model.AggregatedOrder{
		{TrackingNumber: "SF1", Department: "市场部", Agent: "张三", PaymentType: "寄付", TotalAmount: d("16.8"), RequiresOfflineApproval: true},
		{TrackingNumber: "SF2", Department: "财务部", Agent: "李四", PaymentType: "到付", TotalAmount: d("11")},
	}
	return &report.Report{
		Mode:       model.ModeStandard,
		Rows:       rows,
		Results:    results,
		Orders:     orders,
		Statistics: report.BuildStatistics(orders),
	}
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("read %s!%s: %v", sheet, cell, err)
	}
	return v
}

func TestExport_ResultSheet(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil, "").Export(sampleReport(), nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{ResultSheet, DepartmentSheet, OfflineDetailSheet, OfflineAgentSheet}
	if len(sheets) != len(want) {
		t.Fatalf("sheets: %v", sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("sheets: %v", sheets)
		}
	}

	rows, err := f.GetRows(ResultSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows[0]) != 12 || rows[0][3] != HeaderCategory || rows[0][11] != HeaderReason {
		t.Fatalf("header: %q", rows[0])
	}

	checks := map[string]string{
		"H2": "12.6 + 2 * 2.1 = 16.80",
		"H3": "11.00",
		"H4": "",
		"I2": "16.80",
		"J3": "1.00",
		"K4": calculator.FreightNotFoundText,
		"H6": TotalLabel,
		"I6": "27.80",
		"J6": "6.00",
	}
	for cell, v := range checks {
		if got := cellValue(t, f, ResultSheet, cell); got != v {
			t.Fatalf("%s: want %q got %q", cell, v, got)
		}
	}
}

func TestExport_Highlight(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil, "").Export(sampleReport(), nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	style := func(cell string) int {
		id, err := f.GetCellStyle(ResultSheet, cell)
		if err != nil {
			t.Fatalf("style %s: %v", cell, err)
		}
		return id
	}
	if style("A2") != 0 {
		t.Fatalf("consistent row must not be highlighted")
	}
	if style("A3") == 0 || style("A3") != style("L4") {
		t.Fatalf("discrepant rows must share the highlight style: %d %d", style("A3"), style("L4"))
	}
}

func TestExport_AmountColumnsAreNumeric(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil, "").Export(sampleReport(), nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	for _, cell := range []string{"I2", "J2", "I3", "J3", "I4", "J4"} {
		typ, err := f.GetCellType(ResultSheet, cell)
		if err != nil {
			t.Fatalf("type %s: %v", cell, err)
		}
		if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
			t.Fatalf("%s must hold a number, got type %v", cell, typ)
		}
	}
	if got, _ := f.GetCellValue(ResultSheet, "I3"); got != "11.00" {
		t.Fatalf("formatted I3: %q", got)
	}

	// 高亮行的金额单元格保留高亮，同时使用两位小数格式
	plain, _ := f.GetCellStyle(ResultSheet, "I2")
	marked, _ := f.GetCellStyle(ResultSheet, "I3")
	row, _ := f.GetCellStyle(ResultSheet, "A3")
	if plain == 0 || marked == plain || marked == row {
		t.Fatalf("amount styles: plain=%d marked=%d row=%d", plain, marked, row)
	}
}

func TestExport_StatisticsSheets(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil, "").Export(sampleReport(), nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer f.Close()

	dept, _ := f.GetRows(DepartmentSheet)
	if len(dept) != 3 || dept[1][0] != "财务部" {
		t.Fatalf("department sheet: %q", dept)
	}
	detail, _ := f.GetRows(OfflineDetailSheet)
	if len(detail) != 2 || detail[1][1] != "SF1" {
		t.Fatalf("offline detail sheet: %q", detail)
	}

	rep := sampleReport()
	rep.Statistics = report.BuildStatistics(nil)
	empty, err := NewExporter(nil, "").Export(rep, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer empty.Close()
	for _, sheet := range []string{DepartmentSheet, OfflineDetailSheet, OfflineAgentSheet} {
		rows, _ := empty.GetRows(sheet)
		if len(rows) != 1 {
			t.Fatalf("%s must be header-only: %q", sheet, rows)
		}
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 5, 9, 7, 30, 0, time.Local)
	if got := FileName("SF_Check_Result", ts); got != "SF_Check_Result_20240305_0907.xlsx" {
		t.Fatalf("file name: %s", got)
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := NewExporter(nil, "bill")
	e.now = func() time.Time { return time.Date(2024, 12, 31, 23, 59, 0, 0, time.Local) }

	var events []ProgressEvent
	path, err := e.WriteReport(dir, sampleReport(), func(ev ProgressEvent) { events = append(events, ev) })
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "bill_20241231_2359.xlsx") {
		t.Fatalf("path: %s", path)
	}
	if len(events) == 0 || events[len(events)-1].Percent != 100 {
		t.Fatalf("progress: %+v", events)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	if f.GetSheetList()[0] != ResultSheet {
		t.Fatalf("first sheet: %v", f.GetSheetList())
	}
}
