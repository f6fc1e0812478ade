package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"billcheck/internal/calculator"
	"billcheck/internal/model"
	"billcheck/internal/parser"
	"billcheck/internal/report"
)

// 结果工作簿的 Sheet 名
const (
	ResultSheet        = "核对结果"
	DepartmentSheet    = "部门付款方式统计"
	OfflineDetailSheet = "需线下审批明细"
	OfflineAgentSheet  = "线下审批付款方式统计"
)

// DefaultPrefix 默认文件名前缀
const DefaultPrefix = "SF_Check_Result"

// TotalLabel 总计行标签
const TotalLabel = "总计"

// 追加在原始列之后的核对列；与原始表头同名时覆盖原列
const (
	HeaderCategory  = "核算类目"
	HeaderFreight   = "运费核算"
	HeaderPackaging = "包装核算"
	HeaderInsurance = "保价核算"
	HeaderLogic     = "核算逻辑"
	HeaderAmount    = "核算金额"
	HeaderDiff      = "差异金额"
	HeaderResult    = "核对结果"
	HeaderReason    = "差异原因"
)

// OutputHeaders 核对列（按输出顺序）
func OutputHeaders() []string {
	return []string{
		HeaderCategory, HeaderFreight, HeaderPackaging, HeaderInsurance,
		HeaderLogic, HeaderAmount, HeaderDiff, HeaderResult, HeaderReason,
	}
}

// Exporter 核对结果导出器
type Exporter struct {
	fields *parser.FieldMapper
	prefix string
	now    func() time.Time
}

// NewExporter 创建导出器；fields 用于识别合计行
func NewExporter(fields *parser.FieldMapper, prefix string) *Exporter {
	if fields == nil {
		fields = parser.NewFieldMapper(nil)
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultPrefix
	}
	return &Exporter{fields: fields, prefix: prefix, now: time.Now}
}

// WithPrefix 返回使用另一文件名前缀的导出器，前缀为空时保持原前缀
func (e *Exporter) WithPrefix(prefix string) *Exporter {
	if strings.TrimSpace(prefix) == "" || prefix == e.prefix {
		return e
	}
	cp := *e
	cp.prefix = prefix
	return &cp
}

// FileName 结果文件名：<prefix>_YYYYMMDD_HHMM.xlsx
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, t.Format("20060102_1504"))
}

// WriteReport 导出并保存到 dir，返回文件路径
func (e *Exporter) WriteReport(dir string, rep *report.Report, progress func(ProgressEvent)) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建导出目录失败: %w", err)
	}

	f, err := e.Export(rep, progress)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, FileName(e.prefix, e.now()))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("保存结果文件失败: %w", err)
	}
	reportProgress(progress, 100, StageSaved)
	return path, nil
}

// Export 生成结果工作簿
func (e *Exporter) Export(rep *report.Report, progress func(ProgressEvent)) (*excelize.File, error) {
	if rep == nil {
		return nil, fmt.Errorf("导出失败: 核对结果为空")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ResultSheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("创建样式失败: %w", err)
	}

	reportProgress(progress, 10, StageResults)
	if err := e.writeResultSheet(f, st, rep); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 70, StageStatistics)
	if err := writeStatisticsSheets(f, st, rep.Statistics); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func (e *Exporter) writeResultSheet(f *excelize.File, st styles, rep *report.Report) error {
	columns, index := resultColumns(rep.Rows)
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	if err := writeHeader(f, ResultSheet, st.header, columns); err != nil {
		return err
	}

	totalAmount := decimal.Zero
	totalDiff := decimal.Zero

	for i, row := range rep.Rows {
		excelRow := i + 2
		values := make([]interface{}, len(columns))
		for j, col := range columns {
			values[j] = row.Fields[col]
		}

		if i < len(rep.Results) {
			res := rep.Results[i]
			for header, v := range outputValues(res) {
				values[index[header]] = v
			}
			if !report.IsSummaryRow(row, e.fields) {
				totalAmount = totalAmount.Add(res.TheoreticalAmount)
				totalDiff = totalDiff.Add(res.DiffAmount)
			}
		}

		if err := f.SetSheetRow(ResultSheet, fmt.Sprintf("A%d", excelRow), &values); err != nil {
			return fmt.Errorf("写入第 %d 行失败: %w", excelRow, err)
		}
		if i >= len(rep.Results) {
			continue
		}
		res := rep.Results[i]
		moneyStyle := st.money
		if report.NeedsAttention(res) {
			moneyStyle = st.highlightMoney
			err := f.SetCellStyle(ResultSheet, fmt.Sprintf("A%d", excelRow), fmt.Sprintf("%s%d", lastCol, excelRow), st.highlight)
			if err != nil {
				return err
			}
		}
		// 金额列写数值，便于在表格中继续求和筛选
		if err := setMoneyCell(f, ResultSheet, index[HeaderAmount]+1, excelRow, calculator.Round2(res.TheoreticalAmount), moneyStyle); err != nil {
			return err
		}
		if err := setMoneyCell(f, ResultSheet, index[HeaderDiff]+1, excelRow, calculator.Round2(res.DiffAmount), moneyStyle); err != nil {
			return err
		}
	}

	totalRow := len(rep.Rows) + 2
	amountCol := index[HeaderAmount] + 1
	diffCol := index[HeaderDiff] + 1
	if amountCol > 1 {
		if err := setStyledCell(f, ResultSheet, amountCol-1, totalRow, TotalLabel, st.totalLabel); err != nil {
			return err
		}
	}
	if err := setMoneyCell(f, ResultSheet, amountCol, totalRow, calculator.Round2(totalAmount), st.totalAmount); err != nil {
		return err
	}
	diffStyle := st.totalDiffZero
	if !calculator.Round2(totalDiff).IsZero() {
		diffStyle = st.totalDiffNonZero
	}
	if err := setMoneyCell(f, ResultSheet, diffCol, totalRow, calculator.Round2(totalDiff), diffStyle); err != nil {
		return err
	}

	return f.SetColWidth(ResultSheet, "A", lastCol, 14)
}

// resultColumns 原始表头（按首次出现顺序合并各行）+ 核对列
func resultColumns(rows []model.BillRow) ([]string, map[string]int) {
	var columns []string
	index := make(map[string]int)
	add := func(col string) {
		if _, ok := index[col]; ok {
			return
		}
		index[col] = len(columns)
		columns = append(columns, col)
	}
	for _, row := range rows {
		for _, col := range row.Columns {
			add(col)
		}
	}
	for _, h := range OutputHeaders() {
		add(h)
	}
	return columns, index
}

func outputValues(res model.ProcessingResult) map[string]string {
	return map[string]string{
		HeaderCategory:  res.Category,
		HeaderFreight:   res.FreightDetail,
		HeaderPackaging: res.PackagingDetail,
		HeaderInsurance: res.InsuranceDetail,
		HeaderLogic:     logicText(res),
		HeaderResult:    res.ResultText,
		HeaderReason:    res.ReasonText,
	}
}

// logicText 核算逻辑列：优先公式，其次金额；未找到运费标准且金额为 0 时留空
func logicText(res model.ProcessingResult) string {
	if res.Formula != "" {
		return res.Formula
	}
	if res.ResultText == calculator.FreightNotFoundText && res.TheoreticalAmount.IsZero() {
		return ""
	}
	return res.TheoreticalAmount.StringFixed(2)
}

func writeHeader(f *excelize.File, sheet string, style int, header []string) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return fmt.Errorf("写入 %s 表头失败: %w", sheet, err)
	}
	if len(header) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setStyledCell(f *excelize.File, sheet string, col, row int, value interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func setMoneyCell(f *excelize.File, sheet string, col, row int, value decimal.Decimal, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellFloat(sheet, cell, value.InexactFloat64(), 2, 64); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}
