package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/locality"
	"billcheck/internal/model"
)

// DefaultDestination 普通价目表中的默认目的地
const DefaultDestination = "默认"

// MatchGeneric 普通价目表查找（合同规则中没有线路关键字时使用）
//
// 候选：始发地为空或相等，目的地相等或为“默认”。
// 优先产品类型与服务类型互相包含的规则，其次无产品类型的规则，最后取第一条候选。
func MatchGeneric(rules []model.ContractRateRule, origin, dest, serviceType string) (model.ContractRateRule, bool) {
	var routes []model.ContractRateRule
	for _, rule := range rules {
		ro := locality.Normalize(rule.Origin)
		rd := locality.Normalize(rule.Destination)
		if ro != "" && ro != origin {
			continue
		}
		if rd != dest && rd != DefaultDestination {
			continue
		}
		routes = append(routes, rule)
	}
	if len(routes) == 0 {
		return model.ContractRateRule{}, false
	}

	st := strings.ToUpper(strings.TrimSpace(serviceType))
	if st != "" {
		for _, rule := range routes {
			pt := strings.ToUpper(strings.TrimSpace(rule.ProductType))
			if pt != "" && (strings.Contains(st, pt) || strings.Contains(pt, st)) {
				return rule, true
			}
		}
	}
	for _, rule := range routes {
		if strings.TrimSpace(rule.ProductType) == "" {
			return rule, true
		}
	}
	return routes[0], true
}

// PriceGeneric 重量不超过首重取首重价，否则首重价 + 续重
func PriceGeneric(rule model.ContractRateRule, weight decimal.Decimal) (decimal.Decimal, string) {
	first := decimal.NewFromFloat(rule.FirstWeight)
	if weight.LessThanOrEqual(first) {
		amount := Round2(decimal.NewFromFloat(rule.FirstPrice))
		return amount, money(amount)
	}
	return PriceContract(rule, weight)
}

// CalculateGenericFreight 普通价目表运费核算
func CalculateGenericFreight(rules []model.ContractRateRule, originRaw, destRaw, serviceType string, weight decimal.Decimal) Calculation {
	origin := locality.Normalize(originRaw)
	dest := locality.Normalize(destRaw)

	rule, ok := MatchGeneric(rules, origin, dest, serviceType)
	if !ok {
		return Calculation{
			Amount:        decimal.Zero,
			ResultText:    FreightNotFoundText,
			ReasonText:    fmt.Sprintf("未找到 %s->%s 的报价", originRaw, destRaw),
			FreightDetail: fmt.Sprintf("%s 无报价", dest),
		}
	}

	amount, formula := PriceGeneric(rule, weight)
	category := "运费"
	if pt := strings.TrimSpace(rule.ProductType); pt != "" {
		category = fmt.Sprintf("运费(%s)", rule.ProductType)
	}
	return Calculation{
		Amount:        amount,
		Category:      category,
		FreightDetail: fmt.Sprintf("%s-%s %s", origin, dest, money(amount)),
		Formula:       formula,
	}
}
