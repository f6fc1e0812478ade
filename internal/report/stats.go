package report

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"billcheck/internal/model"
)

// DepartmentStat 部门 + 付款方式统计
type DepartmentStat struct {
	Department  string          `json:"department"`
	PaymentType string          `json:"paymentType"`
	OrderCount  int             `json:"orderCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// OfflineDetail 需线下审批订单明细
type OfflineDetail struct {
	Agent          string          `json:"agent"`
	TrackingNumber string          `json:"trackingNumber"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaymentType    string          `json:"paymentType"`
}

// OfflineAgentStat 线下审批订单按经手人 + 部门 + 付款方式统计
type OfflineAgentStat struct {
	Agent       string          `json:"agent"`
	Department  string          `json:"department"`
	PaymentType string          `json:"paymentType"`
	OrderCount  int             `json:"orderCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Statistics 报表附表
type Statistics struct {
	ByDepartment   []DepartmentStat   `json:"byDepartment"`
	OfflineDetails []OfflineDetail    `json:"offlineDetails"`
	OfflineByAgent []OfflineAgentStat `json:"offlineByAgent"`
}

// BuildStatistics 由订单生成三张统计视图
//
// 金额全精度累加，输出时保留两位小数。中文名称按拼音排序，同名保持首次出现顺序。
func BuildStatistics(orders []model.AggregatedOrder) Statistics {
	cl := collate.New(language.Chinese)
	less := func(a, b string) int { return cl.CompareString(a, b) }

	stats := Statistics{
		ByDepartment:   []DepartmentStat{},
		OfflineDetails: []OfflineDetail{},
		OfflineByAgent: []OfflineAgentStat{},
	}

	deptIndex := make(map[[2]string]int)
	for _, o := range orders {
		key := [2]string{o.Department, o.PaymentType}
		pos, ok := deptIndex[key]
		if !ok {
			pos = len(stats.ByDepartment)
			deptIndex[key] = pos
			stats.ByDepartment = append(stats.ByDepartment, DepartmentStat{
				Department:  o.Department,
				PaymentType: o.PaymentType,
				TotalAmount: decimal.Zero,
			})
		}
		stats.ByDepartment[pos].OrderCount++
		stats.ByDepartment[pos].TotalAmount = stats.ByDepartment[pos].TotalAmount.Add(o.TotalAmount)
	}

	agentIndex := make(map[[3]string]int)
	for _, o := range orders {
		if !o.RequiresOfflineApproval {
			continue
		}
		stats.OfflineDetails = append(stats.OfflineDetails, OfflineDetail{
			Agent:          o.Agent,
			TrackingNumber: o.TrackingNumber,
			TotalAmount:    o.TotalAmount.RoundBank(2),
			PaymentType:    o.PaymentType,
		})

		key := [3]string{o.Agent, o.Department, o.PaymentType}
		pos, ok := agentIndex[key]
		if !ok {
			pos = len(stats.OfflineByAgent)
			agentIndex[key] = pos
			stats.OfflineByAgent = append(stats.OfflineByAgent, OfflineAgentStat{
				Agent:       o.Agent,
				Department:  o.Department,
				PaymentType: o.PaymentType,
				TotalAmount: decimal.Zero,
			})
		}
		stats.OfflineByAgent[pos].OrderCount++
		stats.OfflineByAgent[pos].TotalAmount = stats.OfflineByAgent[pos].TotalAmount.Add(o.TotalAmount)
	}

	for i := range stats.ByDepartment {
		stats.ByDepartment[i].TotalAmount = stats.ByDepartment[i].TotalAmount.RoundBank(2)
	}
	for i := range stats.OfflineByAgent {
		stats.OfflineByAgent[i].TotalAmount = stats.OfflineByAgent[i].TotalAmount.RoundBank(2)
	}

	sort.SliceStable(stats.ByDepartment, func(i, j int) bool {
		return less(stats.ByDepartment[i].Department, stats.ByDepartment[j].Department) < 0
	})
	sort.SliceStable(stats.OfflineDetails, func(i, j int) bool {
		return less(stats.OfflineDetails[i].Agent, stats.OfflineDetails[j].Agent) < 0
	})
	sort.SliceStable(stats.OfflineByAgent, func(i, j int) bool {
		a, b := stats.OfflineByAgent[i], stats.OfflineByAgent[j]
		if c := less(a.Agent, b.Agent); c != 0 {
			return c < 0
		}
		return less(a.Department, b.Department) < 0
	})

	return stats
}

// ComputeStats 汇总单次核对的统计数字
//
// results 为全部已处理行（含合计行与失败行）；orders 与 valid 为剔除合计行后的订单与结果。
func ComputeStats(results []model.ProcessingResult, errorRows int, valid []model.ProcessingResult, orders []model.AggregatedOrder) model.CalculationStats {
	s := model.CalculationStats{
		TotalRows:       len(results),
		ErrorRows:       errorRows,
		TotalOrders:     len(orders),
		TotalDiffAmount: decimal.Zero,
	}
	for _, r := range results {
		if IsMismatch(r) {
			s.MismatchedRows++
		}
	}
	s.MatchedRows = s.TotalRows - s.MismatchedRows - s.ErrorRows
	if s.MatchedRows < 0 {
		s.MatchedRows = 0
	}

	for _, o := range orders {
		if containsText(o.PaymentType, "寄付") {
			s.PrepaidCount++
		}
		if containsText(o.PaymentType, "到付") {
			s.CollectCount++
		}
		if o.RequiresOfflineApproval {
			s.OfflineApprovalCount++
		}
	}
	for _, r := range valid {
		s.TotalDiffAmount = s.TotalDiffAmount.Add(r.DiffAmount)
	}
	s.TotalDiffAmount = s.TotalDiffAmount.RoundBank(2)
	return s
}
