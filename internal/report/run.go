// Package report 核对批次编排：逐行核算、订单聚合与统计
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"billcheck/internal/calculator"
	"billcheck/internal/logger"
	"billcheck/internal/model"
	"billcheck/internal/parser"
)

var (
	// ErrNoBillRows 账单为空（或全部为空行）
	ErrNoBillRows = errors.New("bill has no data rows")
	// ErrNoRateRules 当前模式下没有任何运费规则
	ErrNoRateRules = errors.New("no rate rules configured")
)

// RowFailedText 行处理失败时的核对结果
const RowFailedText = "核算异常"

// RowError 单行处理失败
type RowError struct {
	RowNum int   `json:"rowNum"`
	Err    error `json:"-"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.RowNum, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Report 一次核对的完整输出
type Report struct {
	ID         string                   `json:"id"`
	Mode       model.Mode               `json:"mode"`
	Rows       []model.BillRow          `json:"-"`
	Results    []model.ProcessingResult `json:"results"` // 与 Rows 一一对应
	Orders     []model.AggregatedOrder  `json:"orders"`
	Stats      model.CalculationStats   `json:"stats"`
	Statistics Statistics               `json:"statistics"`
	Errors     []RowError               `json:"errors"`
	StartedAt  time.Time                `json:"startedAt"`
	FinishedAt time.Time                `json:"finishedAt"`
}

// Discrepancies 差额超过容差的行
func (r *Report) Discrepancies() []model.ProcessingResult {
	out := make([]model.ProcessingResult, 0)
	for _, res := range r.Results {
		if !calculator.IsZeroDiff(res.DiffAmount) {
			out = append(out, res)
		}
	}
	return out
}

// Observer 核对完成回调（指标采集等）
type Observer interface {
	RunFinished(mode model.Mode, stats model.CalculationStats, elapsed time.Duration)
}

// Runner 核对执行器；不持有可变状态，可并发执行多个批次
type Runner struct {
	fields   *parser.FieldMapper
	observer Observer
}

// NewRunner 创建执行器；fields 为空时使用内置别名表，observer 可为 nil
func NewRunner(fields *parser.FieldMapper, observer Observer) *Runner {
	if fields == nil {
		fields = parser.NewFieldMapper(nil)
	}
	return &Runner{fields: fields, observer: observer}
}

// Fields 返回字段映射器
func (r *Runner) Fields() *parser.FieldMapper {
	return r.fields
}

// Run 执行一次核对
//
// 规则在开始时冻结；单行失败被记录为 RowError 并继续处理后续行。
// 只有账单为空、缺少运费规则或 ctx 被取消时返回错误。
func (r *Runner) Run(ctx context.Context, mode model.Mode, rules model.RuleSet, rows []model.BillRow) (*Report, error) {
	rep := &Report{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
	ctx = logger.WithRunID(ctx, rep.ID)

	for _, row := range rows {
		if !row.IsEmpty() {
			rep.Rows = append(rep.Rows, row)
		}
	}
	if len(rep.Rows) == 0 {
		return nil, fmt.Errorf("reconcile: %w", ErrNoBillRows)
	}
	if rules.RateRuleCount(mode) == 0 {
		return nil, fmt.Errorf("reconcile %s: %w", mode, ErrNoRateRules)
	}

	logger.Info(ctx, "reconcile started", slog.String("mode", string(mode)), slog.Int("rows", len(rep.Rows)))

	proc := calculator.NewProcessor(mode, rules, r.fields)
	rep.Results = make([]model.ProcessingResult, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reconcile canceled at row %d: %w", row.RowNum, err)
		}

		res, err := r.processRow(proc, row)
		if err != nil {
			logger.Warn(ctx, "row failed", slog.Int("row", row.RowNum), slog.Any("error", err))
			rep.Errors = append(rep.Errors, RowError{RowNum: row.RowNum, Err: err})
			res = model.ProcessingResult{
				RowNum:         row.RowNum,
				TrackingNumber: r.fields.Get(row, parser.FieldTrackingNo),
				ResultText:     RowFailedText,
				ReasonText:     err.Error(),
			}
		}
		rep.Results = append(rep.Results, res)
	}

	validRows := make([]model.BillRow, 0, len(rep.Rows))
	validResults := make([]model.ProcessingResult, 0, len(rep.Rows))
	for i, row := range rep.Rows {
		if IsSummaryRow(row, r.fields) {
			continue
		}
		validRows = append(validRows, row)
		validResults = append(validResults, rep.Results[i])
	}

	rep.Orders = AggregateOrders(validRows, validResults, r.fields)
	rep.Statistics = BuildStatistics(rep.Orders)
	rep.Stats = ComputeStats(rep.Results, len(rep.Errors), validResults, rep.Orders)
	rep.FinishedAt = time.Now()

	elapsed := rep.FinishedAt.Sub(rep.StartedAt)
	logger.Info(ctx, "reconcile finished",
		slog.Int("total", rep.Stats.TotalRows),
		slog.Int("mismatched", rep.Stats.MismatchedRows),
		slog.Int("errors", rep.Stats.ErrorRows),
		slog.Int("orders", rep.Stats.TotalOrders),
		slog.Duration("elapsed", elapsed),
	)
	if r.observer != nil {
		r.observer.RunFinished(mode, rep.Stats, elapsed)
	}
	return rep, nil
}

// processRow 单行核算；panic 在行边界恢复为错误
func (r *Runner) processRow(proc *calculator.Processor, row model.BillRow) (res model.ProcessingResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return proc.Process(row)
}

// IsMismatch 结果文本含“差异”或“未找到”
func IsMismatch(res model.ProcessingResult) bool {
	return containsText(res.ResultText, "差异") || containsText(res.ResultText, "未找到")
}

// NeedsAttention 需要在结果表中高亮的行
func NeedsAttention(res model.ProcessingResult) bool {
	if res.DiffAmount.Abs().GreaterThan(calculator.Tolerance) || res.ResultText == RowFailedText {
		return true
	}
	for _, kw := range []string{"未找到", "差异", "无法"} {
		if containsText(res.ResultText, kw) {
			return true
		}
	}
	return false
}

func containsText(s, sub string) bool {
	return strings.Contains(s, sub)
}
