package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
)

// InsuranceKeyword 通用保价规则名称
const InsuranceKeyword = "保价"

var hundred = decimal.NewFromInt(100)

// MatchInsurance 选择保价规则：备注包含关键字者优先，其次名为“保价”的规则，最后取第一条
func MatchInsurance(rules []model.InsuranceRule, remark string) (model.InsuranceRule, bool) {
	for _, r := range rules {
		if r.ServiceKeyword != "" && strings.Contains(remark, r.ServiceKeyword) {
			return r, true
		}
	}
	for _, r := range rules {
		if r.ServiceKeyword == InsuranceKeyword {
			return r, true
		}
	}
	if len(rules) > 0 {
		return rules[0], true
	}
	return model.InsuranceRule{}, false
}

// CalculateInsurance 保价费 = max(声明价值 × 费率, 最低收费)
//
// 缺少声明价值或声明价值为 0 时返回零金额及说明，不视为错误。
func CalculateInsurance(remark, declaredRaw string, rules []model.InsuranceRule) Calculation {
	declaredRaw = strings.TrimSpace(declaredRaw)
	if declaredRaw == "" {
		return Calculation{
			Amount:          decimal.Zero,
			Category:        InsuranceKeyword,
			InsuranceDetail: "无声明价值",
			ResultText:      "无法核算(缺失声明价值)",
		}
	}

	declared, ok := ParseNumber(declaredRaw)
	if !ok || declared.IsZero() {
		return Calculation{
			Amount:          decimal.Zero,
			Category:        InsuranceKeyword,
			InsuranceDetail: fmt.Sprintf("声明价值:%s", declaredRaw),
			ResultText:      "声明价值为0",
		}
	}

	rule, ok := MatchInsurance(rules, remark)
	if !ok {
		return Calculation{
			Amount:          decimal.Zero,
			Category:        InsuranceKeyword,
			InsuranceDetail: "无保价标准",
			ReasonText:      "未配置保价费率",
		}
	}

	rate := decimal.NewFromFloat(rule.Rate)
	fee := decimal.Max(declared.Mul(rate), decimal.NewFromFloat(rule.MinFee))
	fee = Round2(fee)

	return Calculation{
		Amount:          fee,
		Category:        InsuranceKeyword,
		InsuranceDetail: fmt.Sprintf("%s(%s%%) 价值%s", rule.ServiceKeyword, rate.Mul(hundred).StringFixed(2), declared.String()),
	}
}
