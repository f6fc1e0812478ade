package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
)

func order(tracking, dept, agent, pay, amount string, approval bool) model.AggregatedOrder {
	return model.AggregatedOrder{
		TrackingNumber:          tracking,
		Department:              dept,
		Agent:                   agent,
		PaymentType:             pay,
		TotalAmount:             decimal.RequireFromString(amount),
		RequiresOfflineApproval: approval,
	}
}

func TestBuildStatistics_Views(t *testing.T) {
	t.Parallel()

	orders := []model.AggregatedOrder{
		order("SF1", "市场部", "张三", "寄付", "10.004", true),
		order("SF2", "财务部", "李四", "到付", "5", false),
		order("SF3", "市场部", "张三", "寄付", "2.003", true),
		order("SF4", "市场部", "王五", "到付", "1", true),
		order("SF5", "财务部", "李四", "到付", "7.5", false),
	}
	stats := BuildStatistics(orders)

	if len(stats.ByDepartment) != 3 {
		t.Fatalf("by department: %+v", stats.ByDepartment)
	}
	// 财务部 (cai) 排在 市场部 (shi) 之前
	if stats.ByDepartment[0].Department != "财务部" {
		t.Fatalf("sort: %+v", stats.ByDepartment)
	}
	first := stats.ByDepartment[0]
	if first.OrderCount != 2 || !first.TotalAmount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("财务部/到付: %+v", first)
	}
	var mkt model.AggregatedOrder
	for _, s := range stats.ByDepartment {
		if s.Department == "市场部" && s.PaymentType == "寄付" {
			mkt.TotalAmount = s.TotalAmount
			if s.OrderCount != 2 {
				t.Fatalf("市场部/寄付 count: %d", s.OrderCount)
			}
		}
	}
	// 全精度累加后再舍入：10.004 + 2.003 = 12.007 -> 12.01
	if !mkt.TotalAmount.Equal(decimal.RequireFromString("12.01")) {
		t.Fatalf("市场部/寄付 sum: %s", mkt.TotalAmount)
	}

	if len(stats.OfflineDetails) != 3 {
		t.Fatalf("offline details: %+v", stats.OfflineDetails)
	}
	// 王五 (wang) 在 张三 (zhang) 之前
	if stats.OfflineDetails[0].Agent != "王五" || stats.OfflineDetails[1].TrackingNumber != "SF1" {
		t.Fatalf("offline details order: %+v", stats.OfflineDetails)
	}

	if len(stats.OfflineByAgent) != 2 {
		t.Fatalf("offline by agent: %+v", stats.OfflineByAgent)
	}
	zs := stats.OfflineByAgent[1]
	if zs.Agent != "张三" || zs.OrderCount != 2 || !zs.TotalAmount.Equal(decimal.RequireFromString("12.01")) {
		t.Fatalf("张三: %+v", zs)
	}
}

func TestBuildStatistics_Empty(t *testing.T) {
	t.Parallel()

	stats := BuildStatistics(nil)
	if stats.ByDepartment == nil || stats.OfflineDetails == nil || stats.OfflineByAgent == nil {
		t.Fatalf("views must be empty slices, not nil")
	}
}

func TestComputeStats(t *testing.T) {
	t.Parallel()

	results := []model.ProcessingResult{
		{ResultText: "运费一致", DiffAmount: decimal.Zero},
		{ResultText: "运费差异（账单：20.00 vs 核算：16.80）", DiffAmount: decimal.RequireFromString("3.2")},
		{ResultText: "未找到运费标准", DiffAmount: decimal.RequireFromString("5")},
		{ResultText: RowFailedText, DiffAmount: decimal.Zero},
		{ResultText: "未核算服务类型", DiffAmount: decimal.Zero},
	}
	valid := results[:4]
	orders := []model.AggregatedOrder{
		order("A", "x", "y", "寄付", "1", true),
		order("B", "x", "y", "到付", "1", false),
		order("C", "x", "y", "寄付(月结)", "1", false),
	}

	s := ComputeStats(results, 1, valid, orders)
	if s.TotalRows != 5 || s.MismatchedRows != 2 || s.ErrorRows != 1 || s.MatchedRows != 2 {
		t.Fatalf("row tallies: %+v", s)
	}
	if s.TotalOrders != 3 || s.PrepaidCount != 2 || s.CollectCount != 1 || s.OfflineApprovalCount != 1 {
		t.Fatalf("order tallies: %+v", s)
	}
	if !s.TotalDiffAmount.Equal(decimal.RequireFromString("8.2")) {
		t.Fatalf("total diff: %s", s.TotalDiffAmount)
	}
}
