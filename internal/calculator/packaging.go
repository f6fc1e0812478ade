package calculator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
)

// 包装备注条目：名称:数量N[,单价P]，多个条目以 | 分隔
var rePackagingItem = regexp.MustCompile(`([^:|：]+)[:：]数量(\d+)(?:[,，]单价([\d.]+))?`)

// PackagingItem 解析出的包装条目
type PackagingItem struct {
	Name      string
	Quantity  int64
	BillPrice *decimal.Decimal // 备注中未给出单价时为 nil
}

// ParsePackagingRemark 解析包装备注；返回候选条目数与成功解析的条目
func ParsePackagingRemark(remark string) (int, []PackagingItem) {
	var parts []string
	for _, s := range strings.Split(remark, "|") {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	items := make([]PackagingItem, 0, len(parts))
	for _, part := range parts {
		if !strings.Contains(part, "数量") {
			continue
		}
		m := rePackagingItem.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		qty, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		item := PackagingItem{Name: strings.TrimSpace(m[1]), Quantity: qty}
		if m[3] != "" {
			if p, ok := ParseNumber(m[3]); ok {
				item.BillPrice = &p
			}
		}
		items = append(items, item)
	}
	return len(parts), items
}

// CalculatePackaging 按包装模板核算包装费
func CalculatePackaging(remark string, templates []model.PackagingTemplateEntry) Calculation {
	candidates, items := ParsePackagingRemark(remark)
	if len(items) == 0 && candidates > 0 {
		return Calculation{
			Amount:          decimal.Zero,
			ResultText:      "无法提取包装信息",
			PackagingDetail: "解析失败",
		}
	}

	total := decimal.Zero
	details := make([]string, 0, len(items))
	var reasons []string
	for _, item := range items {
		unitPrice := decimal.Zero
		if tpl, ok := findTemplate(templates, item.Name); ok {
			unitPrice = decimal.NewFromFloat(tpl.UnitPrice)
			if item.BillPrice != nil && item.BillPrice.Sub(unitPrice).Abs().GreaterThan(Tolerance) {
				reasons = append(reasons, fmt.Sprintf("单价与模板不符(%s:账单%s/模板%s)", item.Name, item.BillPrice.String(), unitPrice.String()))
			}
		} else if item.BillPrice != nil {
			unitPrice = *item.BillPrice
			reasons = append(reasons, fmt.Sprintf("模板缺失(%s)", item.Name))
		} else {
			reasons = append(reasons, fmt.Sprintf("未知材料且无单价(%s)", item.Name))
		}

		total = total.Add(unitPrice.Mul(decimal.NewFromInt(item.Quantity)))
		details = append(details, fmt.Sprintf("%s×%d", item.Name, item.Quantity))
	}
	total = Round2(total)

	return Calculation{
		Amount:          total,
		Category:        "包装材料",
		PackagingDetail: strings.TrimSpace(fmt.Sprintf("%s 合计%s", strings.Join(details, "+"), money(total))),
		ReasonText:      strings.Join(reasons, "; "),
	}
}

func findTemplate(templates []model.PackagingTemplateEntry, name string) (model.PackagingTemplateEntry, bool) {
	key := compact(name)
	for _, t := range templates {
		if compact(t.MaterialName) == key {
			return t, true
		}
	}
	return model.PackagingTemplateEntry{}, false
}
