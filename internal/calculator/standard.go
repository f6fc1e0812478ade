package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/locality"
	"billcheck/internal/model"
)

var (
	halfKg = decimal.NewFromFloat(0.5)
	oneKg  = decimal.NewFromInt(1)
)

// IsFallbackDestination 判断规则目的地是否为兜底标记（其他 / Other）
func IsFallbackDestination(dest string) bool {
	return dest == model.FallbackDestination || strings.EqualFold(dest, "Other")
}

// MatchStandard 按始发地/目的地匹配最具体的标准价规则
//
// origin、dest 须已规范化。候选条件：规则始发地为空或相等，且目的地相等或为兜底。
// 打分：始发地精确 +2，目的地精确 +1；同分取配置顺序靠前者。
func MatchStandard(rules []model.RateRule, origin, dest string) (model.RateRule, bool) {
	best := -1
	bestScore := -1
	for i, r := range rules {
		ro := locality.Normalize(r.Origin)
		rd := locality.Normalize(r.Destination)
		if ro != "" && ro != origin {
			continue
		}
		if rd != dest && !IsFallbackDestination(rd) {
			continue
		}

		score := 0
		if ro == origin {
			score += 2
		}
		if rd == dest {
			score++
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return model.RateRule{}, false
	}
	return rules[best], true
}

// PriceStandard 按首重阶梯 + 每 0.5kg 续重计算运费，返回金额与计算公式
func PriceStandard(rule model.RateRule, weight decimal.Decimal) (decimal.Decimal, string) {
	under05 := decimal.NewFromFloat(rule.PriceUnder05)
	to1 := decimal.NewFromFloat(rule.Price05To1)

	if weight.LessThanOrEqual(halfKg) {
		amount := Round2(under05)
		return amount, money(amount)
	}
	if weight.LessThanOrEqual(oneKg) {
		amount := to1
		if amount.IsZero() {
			amount = under05
		}
		amount = Round2(amount)
		return amount, money(amount)
	}

	var base, threshold decimal.Decimal
	switch {
	case to1.IsPositive():
		base, threshold = to1, oneKg
	case under05.IsPositive():
		base, threshold = under05, halfKg
	}

	steps := ceilSteps(weight.Sub(threshold), halfKg)
	amount := Round2(base.Add(steps.Mul(decimal.NewFromFloat(rule.PriceStep))))
	formula := fmt.Sprintf("%s + %s * %s = %s", base.String(), steps.String(), num(rule.PriceStep), money(amount))
	return amount, formula
}

// CalculateStandardFreight 标准价目表运费核算；未匹配时返回零金额与诊断原因
func CalculateStandardFreight(rules []model.RateRule, originRaw, destRaw string, weight decimal.Decimal) Calculation {
	origin := locality.Normalize(originRaw)
	dest := locality.Normalize(destRaw)

	rule, ok := MatchStandard(rules, origin, dest)
	if !ok {
		return Calculation{
			Amount:        decimal.Zero,
			ResultText:    FreightNotFoundText,
			ReasonText:    fmt.Sprintf("未找到 %s(%s) 到 %s(%s) 的报价", originRaw, origin, destRaw, dest),
			FreightDetail: fmt.Sprintf("%s-%s 无报价", origin, dest),
		}
	}

	amount, formula := PriceStandard(rule, weight)
	return Calculation{
		Amount:        amount,
		Category:      "运费",
		FreightDetail: fmt.Sprintf("%s-%s %s", origin, dest, money(amount)),
		Formula:       formula,
	}
}
