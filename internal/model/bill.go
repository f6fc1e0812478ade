package model

import "github.com/shopspring/decimal"

// BillRow 账单原始行；列名随账单格式变化，只能通过别名解析访问字段
type BillRow struct {
	RowNum  int               `json:"rowNum"`  // Excel 行号（表头为第 1 行）
	Columns []string          `json:"columns"` // 表头顺序，模糊匹配按此顺序进行
	Fields  map[string]string `json:"fields"`
}

// NewBillRow 由表头与单元格构造账单行；缺失单元格取空串
func NewBillRow(rowNum int, header, cells []string) BillRow {
	row := BillRow{
		RowNum:  rowNum,
		Columns: make([]string, 0, len(header)),
		Fields:  make(map[string]string, len(header)),
	}
	for i, h := range header {
		if h == "" {
			continue
		}
		if _, dup := row.Fields[h]; dup {
			continue
		}
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		row.Columns = append(row.Columns, h)
		row.Fields[h] = v
	}
	return row
}

// IsEmpty 判断是否为结构性空行
func (r BillRow) IsEmpty() bool {
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// ProcessingResult 单行核对结果，由行处理器创建后不再修改
type ProcessingResult struct {
	RowNum            int             `json:"rowNum"`
	TrackingNumber    string          `json:"trackingNumber"`
	Origin            string          `json:"origin"`
	Destination       string          `json:"destination"`
	Category          string          `json:"category"`        // 核算类目
	FreightDetail     string          `json:"freightDetail"`   // 运费核算
	Formula           string          `json:"formula"`         // 计算公式
	PackagingDetail   string          `json:"packagingDetail"` // 包装核算
	InsuranceDetail   string          `json:"insuranceDetail"` // 保价核算
	TheoreticalAmount decimal.Decimal `json:"theoreticalAmount"`
	DiffAmount        decimal.Decimal `json:"diffAmount"` // 应付 - 核算
	ResultText        string          `json:"resultText"`
	ReasonText        string          `json:"reasonText"`
}

// AggregatedOrder 按运单号聚合后的订单
type AggregatedOrder struct {
	TrackingNumber          string          `json:"trackingNumber"`
	Department              string          `json:"department"`
	Agent                   string          `json:"agent"`
	PaymentType             string          `json:"paymentType"`
	TotalAmount             decimal.Decimal `json:"totalAmount"`
	RequiresOfflineApproval bool            `json:"requiresOfflineApproval"`
}

// CalculationStats 单次核对的汇总统计
type CalculationStats struct {
	TotalRows            int             `json:"totalRows"`
	MatchedRows          int             `json:"matchedRows"`
	MismatchedRows       int             `json:"mismatchedRows"`
	ErrorRows            int             `json:"errorRows"`
	TotalOrders          int             `json:"totalOrders"`
	PrepaidCount         int             `json:"prepaidCount"`
	CollectCount         int             `json:"collectCount"`
	OfflineApprovalCount int             `json:"offlineApprovalCount"`
	TotalDiffAmount      decimal.Decimal `json:"totalDiffAmount"`
}
