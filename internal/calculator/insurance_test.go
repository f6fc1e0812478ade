package calculator

import (
	"testing"

	"billcheck/internal/model"
)

func TestInsurance_MinFee(t *testing.T) {
	t.Parallel()

	rules := []model.InsuranceRule{{ServiceKeyword: "保价", Rate: 0.01, MinFee: 2.0}}
	calc := CalculateInsurance("", "50", rules)
	assertAmount(t, "fee", calc.Amount, "2")
	if calc.Category != "保价" {
		t.Fatalf("category: %q", calc.Category)
	}
	if calc.InsuranceDetail != "保价(1.00%) 价值50" {
		t.Fatalf("detail: %q", calc.InsuranceDetail)
	}
}

func TestInsurance_RateApplied(t *testing.T) {
	t.Parallel()

	calc := CalculateInsurance("足额保 2000元", "1000", model.DefaultRuleSet().Insurance)
	assertAmount(t, "fee", calc.Amount, "8")
	if calc.InsuranceDetail != "足额保(0.80%) 价值1000" {
		t.Fatalf("detail: %q", calc.InsuranceDetail)
	}
}

func TestInsurance_MissingDeclaredValue(t *testing.T) {
	t.Parallel()

	calc := CalculateInsurance("基础保", "  ", model.DefaultRuleSet().Insurance)
	if !calc.Amount.IsZero() {
		t.Fatalf("amount: %s", calc.Amount)
	}
	if calc.Category != "保价" || calc.ResultText != "无法核算(缺失声明价值)" {
		t.Fatalf("unexpected: %+v", calc)
	}
}

func TestInsurance_ZeroDeclaredValue(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"0", "0.00", "无"} {
		calc := CalculateInsurance("", v, model.DefaultRuleSet().Insurance)
		if calc.ResultText != "声明价值为0" || !calc.Amount.IsZero() {
			t.Fatalf("%q: unexpected %+v", v, calc)
		}
	}
}

func TestMatchInsurance_Order(t *testing.T) {
	t.Parallel()

	rules := []model.InsuranceRule{
		{ServiceKeyword: "足额保", Rate: 0.008},
		{ServiceKeyword: "保价", Rate: 0.01},
		{ServiceKeyword: "基础保", Rate: 0.005},
	}

	r, _ := MatchInsurance(rules, "基础保")
	if r.ServiceKeyword != "基础保" {
		t.Fatalf("remark keyword should win, got %s", r.ServiceKeyword)
	}
	r, _ = MatchInsurance(rules, "")
	if r.ServiceKeyword != "保价" {
		t.Fatalf("generic rule should be second choice, got %s", r.ServiceKeyword)
	}
	r, _ = MatchInsurance(rules[:1], "")
	if r.ServiceKeyword != "足额保" {
		t.Fatalf("first rule is last resort, got %s", r.ServiceKeyword)
	}
	if _, ok := MatchInsurance(nil, "保价"); ok {
		t.Fatalf("no rules must not match")
	}
}

func TestInsurance_NoRules(t *testing.T) {
	t.Parallel()

	calc := CalculateInsurance("", "100", nil)
	if calc.InsuranceDetail != "无保价标准" || calc.ReasonText != "未配置保价费率" {
		t.Fatalf("unexpected: %+v", calc)
	}
}
