package calculator

import (
	"testing"

	"billcheck/internal/model"
)

func TestClassifyRoute_Priority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		route Route
		want  string
	}{
		{"同城按城市", Route{OriginCity: "苏州", DestCity: "苏州", OriginProvince: "江苏", DestProvince: "江苏"}, ClassSameCity},
		{"枢纽省份兜底同城", Route{OriginProvince: "上海", DestProvince: "上海"}, ClassSameCity},
		{"江浙沪", Route{OriginCity: "苏州", DestCity: "杭州", OriginProvince: "江苏", DestProvince: "浙江"}, ClassCluster},
		{"上海发偏远", Route{OriginProvince: "上海", DestProvince: "新疆"}, ClassRemote},
		{"非枢纽发偏远按异地", Route{OriginProvince: "广东", DestProvince: "新疆"}, ClassOtherStandard},
		{"异地特快", Route{OriginProvince: "上海", DestProvince: "北京", ProductType: "顺丰特快"}, ClassOtherPremium},
		{"异地标快", Route{OriginProvince: "上海", DestProvince: "北京", ProductType: "顺丰标快"}, ClassOtherStandard},
	}
	for _, c := range cases {
		if got := ClassifyRoute(c.route); got != c.want {
			t.Fatalf("%s: want=%s got=%s", c.name, c.want, got)
		}
	}
}

func TestContractFreight_SameCity(t *testing.T) {
	t.Parallel()

	rules := model.DefaultRuleSet().Contract
	route := Route{OriginCity: "上海", DestCity: "上海", OriginProvince: "上海", DestProvince: "上海", ProductType: "顺丰标快"}
	calc := CalculateContractFreight(rules, route, dec("2"))
	// 8 + ceil((2-1)/1) * 2
	assertAmount(t, "amount", calc.Amount, "10")
	if calc.Category != "同城(上海)(标快/特快)" {
		t.Fatalf("category: %q", calc.Category)
	}
	if calc.Formula != "8 + 1 * 2 = 10.00" {
		t.Fatalf("formula: %q", calc.Formula)
	}
}

func TestContractFreight_ClassesWithDefaults(t *testing.T) {
	t.Parallel()

	rules := model.DefaultRuleSet().Contract
	cases := []struct {
		name   string
		route  Route
		weight string
		want   string
	}{
		{"江浙沪", Route{OriginProvince: "江苏", DestProvince: "浙江"}, "3", "14"},
		{"偏远", Route{OriginProvince: "上海", DestProvince: "新疆"}, "1", "20"},
		{"异地特快", Route{OriginProvince: "上海", DestProvince: "北京", ProductType: "顺丰特快"}, "2.5", "26"},
		{"异地标快", Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "顺丰标快"}, "1", "12"},
		{"首重以内", Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "顺丰标快"}, "0.2", "12"},
	}
	for _, c := range cases {
		calc := CalculateContractFreight(rules, c.route, dec(c.weight))
		if calc.ResultText != "" {
			t.Fatalf("%s: unexpected result %q (%s)", c.name, calc.ResultText, calc.ReasonText)
		}
		assertAmount(t, c.name, calc.Amount, c.want)
	}
}

func TestContractFreight_ExactProductPreferredOverFallback(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{
		{Destination: "同城", FirstWeight: 1, FirstPrice: 8, StepWeight: 1, StepPrice: 2},
		{Destination: "其他异地", ProductType: "顺丰特快", FirstWeight: 1, FirstPrice: 16, StepWeight: 1, StepPrice: 5},
		{Destination: "其他异地", ProductType: "顺丰标快", FirstWeight: 1, FirstPrice: 12, StepWeight: 1, StepPrice: 3},
	}
	rule, class, ok := MatchContract(rules, Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "标快"})
	if !ok || class != ClassOtherStandard {
		t.Fatalf("unexpected match ok=%v class=%s", ok, class)
	}
	if rule.ProductType != "顺丰标快" {
		t.Fatalf("want 顺丰标快 rule, got %+v", rule)
	}
}

func TestContractFreight_LabelNamesProductType(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{
		{Destination: "同城特快", FirstWeight: 1, FirstPrice: 1},
		{Destination: "异地", ProductType: "陆运", FirstWeight: 1, FirstPrice: 2},
		{Destination: "异地特快", FirstWeight: 1, FirstPrice: 3},
	}
	rule, _, ok := MatchContract(rules, Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "特快"})
	if !ok || rule.FirstPrice != 3 {
		t.Fatalf("want 异地特快 rule, got %+v ok=%v", rule, ok)
	}
}

func TestContractFreight_ProductKeywordOnlyFallback(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{
		{Destination: "同城特快", FirstWeight: 1, FirstPrice: 1},
		{Destination: "江浙沪特快", FirstWeight: 1, FirstPrice: 2},
		{Destination: "特快专线", FirstWeight: 1, FirstPrice: 3},
	}
	rule, _, ok := MatchContract(rules, Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "特快"})
	if !ok || rule.FirstPrice != 3 {
		t.Fatalf("want 特快专线 rule, got %+v ok=%v", rule, ok)
	}
}

func TestContractFreight_GenericOtherOnlyForStandard(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{
		{Destination: "同城", FirstWeight: 1, FirstPrice: 8, StepWeight: 1, StepPrice: 2},
		{Destination: "其他", ProductType: "陆运", FirstWeight: 1, FirstPrice: 12, StepWeight: 1, StepPrice: 3},
	}

	rule, _, ok := MatchContract(rules, Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "标快"})
	if !ok || rule.Destination != "其他" {
		t.Fatalf("standard should fall back to generic other rule, got %+v ok=%v", rule, ok)
	}

	calc := CalculateContractFreight(rules, Route{OriginProvince: "广东", DestProvince: "北京", ProductType: "特快"}, dec("1"))
	if calc.ResultText != "未找到运费标准" {
		t.Fatalf("premium must not use generic other rule, got %q", calc.ResultText)
	}
	if calc.ReasonText != "满足逻辑[异地特快]但未在配置中找到对应规则" {
		t.Fatalf("reason: %q", calc.ReasonText)
	}
	if !calc.Amount.IsZero() {
		t.Fatalf("amount: %s", calc.Amount)
	}
}

func TestContractFreight_MissingClassRule(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{{Destination: "江浙沪", FirstWeight: 1, FirstPrice: 10}}
	calc := CalculateContractFreight(rules, Route{OriginCity: "上海", DestCity: "上海"}, dec("1"))
	if calc.ReasonText != "满足逻辑[同城]但未在配置中找到对应规则" {
		t.Fatalf("reason: %q", calc.ReasonText)
	}
}

func TestPriceContract_StepWeightFloor(t *testing.T) {
	t.Parallel()

	rule := model.ContractRateRule{FirstWeight: 1, FirstPrice: 10, StepWeight: 0, StepPrice: 2}
	got, _ := PriceContract(rule, dec("3.2"))
	// 续重单位按 1：ceil(2.2) = 3
	assertAmount(t, "amount", got, "16")

	rule.StepWeight = 0.5
	got, _ = PriceContract(rule, dec("2"))
	assertAmount(t, "half step", got, "14")

	got, _ = PriceContract(rule, dec("0.3"))
	assertAmount(t, "under first weight", got, "10")
}

func TestHasContractKeywords(t *testing.T) {
	t.Parallel()

	if !HasContractKeywords(model.DefaultRuleSet().Contract) {
		t.Fatalf("defaults carry route keywords")
	}
	if HasContractKeywords([]model.ContractRateRule{{Destination: "河南"}, {Destination: "默认"}}) {
		t.Fatalf("plain table should not be treated as contract rules")
	}
}

func TestGenericFreight_RouteAndProductType(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{
		{Destination: "河南", ProductType: "特快", FirstWeight: 1, FirstPrice: 15, StepWeight: 1, StepPrice: 4},
		{Destination: "河南", FirstWeight: 1, FirstPrice: 10, StepWeight: 1, StepPrice: 3},
		{Destination: "默认", FirstWeight: 1, FirstPrice: 20, StepWeight: 1, StepPrice: 5},
	}

	calc := CalculateGenericFreight(rules, "广东", "河南省", "顺丰特快", dec("1"))
	assertAmount(t, "特快", calc.Amount, "15")
	if calc.Category != "运费(特快)" {
		t.Fatalf("category: %q", calc.Category)
	}

	calc = CalculateGenericFreight(rules, "广东", "河南", "标快", dec("2.5"))
	// 10 + ceil(1.5) * 3
	assertAmount(t, "标快", calc.Amount, "16")
	if calc.Category != "运费" {
		t.Fatalf("category: %q", calc.Category)
	}

	calc = CalculateGenericFreight(rules, "广东", "湖北", "", dec("0.5"))
	assertAmount(t, "默认", calc.Amount, "20")
}

func TestGenericFreight_NotFound(t *testing.T) {
	t.Parallel()

	rules := []model.ContractRateRule{{Origin: "北京", Destination: "河南", FirstWeight: 1, FirstPrice: 10}}
	calc := CalculateGenericFreight(rules, "广东", "河南", "", dec("1"))
	if calc.ResultText != "未找到运费标准" || calc.ReasonText != "未找到 广东->河南 的报价" {
		t.Fatalf("unexpected: %+v", calc)
	}
}
