package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
	"billcheck/internal/parser"
)

// 聚合时的缺省元数据
const (
	DefaultDepartment  = "未分类"
	DefaultAgent       = "未知"
	DefaultPaymentType = "其他"
)

// OfflineApprovalKeyword 需线下审批的标记
const OfflineApprovalKeyword = "线下审批"

var summaryKeywords = []string{"合计", "总计", "TOTAL", "SUM", "小计", "SUBTOTAL", "结转", "承前"}

// IsSummaryRow 判断是否为账单中的合计/小计/结转行（序号或运单号含关键字）
func IsSummaryRow(row model.BillRow, fields *parser.FieldMapper) bool {
	seq := strings.ToUpper(fields.Get(row, parser.FieldSequence))
	track := strings.ToUpper(fields.Get(row, parser.FieldTrackingNo))
	for _, kw := range summaryKeywords {
		if strings.Contains(seq, kw) || strings.Contains(track, kw) {
			return true
		}
	}
	return false
}

// RequiresOfflineApproval 系统匹配/审批备注是否要求线下审批
func RequiresOfflineApproval(value string) bool {
	v := strings.NewReplacer("（", "", "）", "", "(", "", ")", "").Replace(strings.TrimSpace(value))
	if v == OfflineApprovalKeyword {
		return true
	}
	return strings.Contains(v, "线下") && (strings.Contains(v, "审批") || strings.Contains(v, "确认"))
}

// AggregateOrders 按运单号将行聚合为订单
//
// rows 与 results 按下标一一对应，调用方须先剔除合计行。缺少运单号的行各自成单
// （UNKNOWN_n，编号避开账单中已有的运单号），既不互相合并也不并入真实运单。
// 部门、经手人、付款方式取第一个非缺省值；线下审批标记一旦置位不再清除。
// 订单按首次出现的顺序返回。
func AggregateOrders(rows []model.BillRow, results []model.ProcessingResult, fields *parser.FieldMapper) []model.AggregatedOrder {
	if fields == nil {
		fields = parser.NewFieldMapper(nil)
	}

	numbers := make([]string, len(rows))
	taken := make(map[string]bool, len(rows))
	for i, row := range rows {
		no := ""
		if i < len(results) {
			no = strings.TrimSpace(results[i].TrackingNumber)
		}
		if no == "" {
			no = fields.Get(row, parser.FieldTrackingNo)
		}
		numbers[i] = no
		if no != "" {
			taken[no] = true
		}
	}

	index := make(map[string]int)
	orders := make([]model.AggregatedOrder, 0, len(rows))
	unknown := 0

	for i, row := range rows {
		var res *model.ProcessingResult
		if i < len(results) {
			res = &results[i]
		}

		// 缺少运单号的行不进入索引；占位编号跳过账单中真实存在的运单号
		trackingNo, keyed := numbers[i], true
		if trackingNo == "" {
			keyed = false
			for {
				unknown++
				trackingNo = fmt.Sprintf("UNKNOWN_%d", unknown)
				if !taken[trackingNo] {
					break
				}
			}
		}

		dept := valueOr(fields.Get(row, parser.FieldDepartment), DefaultDepartment)
		agent := valueOr(fields.Get(row, parser.FieldAgent), DefaultAgent)
		payType := valueOr(fields.Get(row, parser.FieldPaymentType), DefaultPaymentType)
		approval := RequiresOfflineApproval(fields.Get(row, parser.FieldSystemMatch))

		amount := decimal.Zero
		if res != nil {
			amount = res.TheoreticalAmount
		}

		pos, ok := 0, false
		if keyed {
			pos, ok = index[trackingNo]
		}
		if !ok {
			if keyed {
				index[trackingNo] = len(orders)
			}
			orders = append(orders, model.AggregatedOrder{
				TrackingNumber:          trackingNo,
				Department:              dept,
				Agent:                   agent,
				PaymentType:             payType,
				TotalAmount:             amount,
				RequiresOfflineApproval: approval,
			})
			continue
		}

		o := &orders[pos]
		o.TotalAmount = o.TotalAmount.Add(amount)
		if o.Department == DefaultDepartment && dept != DefaultDepartment {
			o.Department = dept
		}
		if o.Agent == DefaultAgent && agent != DefaultAgent {
			o.Agent = agent
		}
		if o.PaymentType == DefaultPaymentType && payType != DefaultPaymentType {
			o.PaymentType = payType
		}
		if approval {
			o.RequiresOfflineApproval = true
		}
	}
	return orders
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
