package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
	"billcheck/internal/parser"
)

// 线路关键字（出现在合同规则的目的地标签中）
const (
	KeywordSameCity = "同城"
	KeywordCluster  = "江浙沪"
	KeywordRemote   = "偏远"
	KeywordPremium  = "特快"
	KeywordStandard = "标快"
)

// 线路类别名称（出现在诊断原因中）
const (
	ClassSameCity      = "同城"
	ClassCluster       = "江浙沪"
	ClassRemote        = "偏远(上海发)"
	ClassOtherPremium  = "异地特快"
	ClassOtherStandard = "异地标快"
)

// HubProvince 合同价的发货枢纽省份
const HubProvince = "上海"

var (
	clusterProvinces = []string{"江苏", "浙江", "上海"}
	remoteProvinces  = []string{"新疆", "西藏", "甘肃", "青海"}
	otherKeywords    = []string{"异地", "其他", "Rest", "Other"}
)

// Route 合同价线路输入；省份须已规范化，城市只去空白
type Route struct {
	OriginCity     string
	DestCity       string
	OriginProvince string
	DestProvince   string
	ProductType    string
}

// routeClass 线路类别：按顺序判定，命中第一个即止
type routeClass struct {
	label   func(Route) string
	matches func(Route) bool
	find    func([]model.ContractRateRule, Route) (model.ContractRateRule, bool)
}

func fixedLabel(name string) func(Route) string {
	return func(Route) string { return name }
}

func isPremium(r Route) bool {
	return strings.Contains(r.ProductType, KeywordPremium)
}

var routeClasses = []routeClass{
	{
		label: fixedLabel(ClassSameCity),
		matches: func(r Route) bool {
			if r.OriginCity != "" && r.DestCity != "" && r.OriginCity == r.DestCity {
				return true
			}
			// 缺少城市信息时，两端均为枢纽省份视为同城
			return r.OriginProvince == HubProvince && r.DestProvince == HubProvince
		},
		find: func(rules []model.ContractRateRule, _ Route) (model.ContractRateRule, bool) {
			return findContractRule(rules, []string{KeywordSameCity}, "")
		},
	},
	{
		label: fixedLabel(ClassCluster),
		matches: func(r Route) bool {
			return inList(r.OriginProvince, clusterProvinces) && inList(r.DestProvince, clusterProvinces)
		},
		find: func(rules []model.ContractRateRule, _ Route) (model.ContractRateRule, bool) {
			return findContractRule(rules, []string{KeywordCluster}, "")
		},
	},
	{
		label: fixedLabel(ClassRemote),
		matches: func(r Route) bool {
			return r.OriginProvince == HubProvince && inList(r.DestProvince, remoteProvinces)
		},
		find: func(rules []model.ContractRateRule, _ Route) (model.ContractRateRule, bool) {
			return findContractRule(rules, []string{KeywordRemote}, "")
		},
	},
	{
		label: func(r Route) string {
			if isPremium(r) {
				return ClassOtherPremium
			}
			return ClassOtherStandard
		},
		matches: func(Route) bool { return true },
		find:    findOtherRule,
	},
}

// findOtherRule 异地线路：先按产品类型匹配“异地/其他”规则，再放宽
func findOtherRule(rules []model.ContractRateRule, r Route) (model.ContractRateRule, bool) {
	premium := isPremium(r)
	productKeyword := KeywordStandard
	if premium {
		productKeyword = KeywordPremium
	}

	if rule, ok := findContractRule(rules, otherKeywords, productKeyword); ok {
		return rule, true
	}

	// 放宽一：标签直接写产品类型（如“特快”），但不能是同城/江浙沪规则
	for _, rule := range rules {
		if strings.Contains(rule.Destination, productKeyword) &&
			!strings.Contains(rule.Destination, KeywordSameCity) &&
			!strings.Contains(rule.Destination, KeywordCluster) {
			return rule, true
		}
	}

	// 放宽二：仅标快，接受任意“异地/其他”规则
	if !premium {
		return findContractRule(rules, otherKeywords, "")
	}
	return model.ContractRateRule{}, false
}

// findContractRule 在标签含任一关键字的规则中查找；productKeyword 非空时要求产品类型或标签包含它
func findContractRule(rules []model.ContractRateRule, labelKeywords []string, productKeyword string) (model.ContractRateRule, bool) {
	candidates := make([]model.ContractRateRule, 0, len(rules))
	for _, rule := range rules {
		if parser.ContainsAny(rule.Destination, labelKeywords) {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return model.ContractRateRule{}, false
	}
	if productKeyword == "" {
		return candidates[0], true
	}
	for _, rule := range candidates {
		if strings.Contains(rule.ProductType, productKeyword) {
			return rule, true
		}
	}
	for _, rule := range candidates {
		if strings.Contains(rule.Destination, productKeyword) {
			return rule, true
		}
	}
	return model.ContractRateRule{}, false
}

func inList(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ClassifyRoute 返回线路类别名称
func ClassifyRoute(r Route) string {
	for _, c := range routeClasses {
		if c.matches(r) {
			return c.label(r)
		}
	}
	return ""
}

// MatchContract 判定线路类别并查找对应规则；返回的类别名称在未找到规则时也有效
func MatchContract(rules []model.ContractRateRule, r Route) (model.ContractRateRule, string, bool) {
	for _, c := range routeClasses {
		if !c.matches(r) {
			continue
		}
		rule, ok := c.find(rules, r)
		return rule, c.label(r), ok
	}
	return model.ContractRateRule{}, "", false
}

// HasContractKeywords 规则中是否出现同城/江浙沪/偏远标签；没有时按普通价目表查找
func HasContractKeywords(rules []model.ContractRateRule) bool {
	for _, rule := range rules {
		if parser.ContainsAny(rule.Destination, []string{KeywordSameCity, KeywordCluster, KeywordRemote}) {
			return true
		}
	}
	return false
}

func stepWeightOf(rule model.ContractRateRule) decimal.Decimal {
	if rule.StepWeight <= 0 {
		return oneKg
	}
	return decimal.NewFromFloat(rule.StepWeight)
}

// PriceContract 首重 + ceil(超出重量/续重单位) × 续重价；续重单位 ≤ 0 时按 1 计
func PriceContract(rule model.ContractRateRule, weight decimal.Decimal) (decimal.Decimal, string) {
	extra := weight.Sub(decimal.NewFromFloat(rule.FirstWeight))
	steps := ceilSteps(extra, stepWeightOf(rule))
	amount := Round2(decimal.NewFromFloat(rule.FirstPrice).Add(steps.Mul(decimal.NewFromFloat(rule.StepPrice))))
	formula := fmt.Sprintf("%s + %s * %s = %s", num(rule.FirstPrice), steps.String(), num(rule.StepPrice), money(amount))
	return amount, formula
}

// ContractCategory 结果类目：规则标签，附带产品类型
func ContractCategory(rule model.ContractRateRule) string {
	if strings.TrimSpace(rule.ProductType) == "" {
		return rule.Destination
	}
	return fmt.Sprintf("%s(%s)", rule.Destination, rule.ProductType)
}

// CalculateContractFreight 合同价运费核算
func CalculateContractFreight(rules []model.ContractRateRule, r Route, weight decimal.Decimal) Calculation {
	rule, class, ok := MatchContract(rules, r)
	if !ok {
		return Calculation{
			Amount:        decimal.Zero,
			ResultText:    FreightNotFoundText,
			ReasonText:    fmt.Sprintf("满足逻辑[%s]但未在配置中找到对应规则", class),
			FreightDetail: fmt.Sprintf("%s-%s %s 无报价", r.OriginProvince, r.DestProvince, r.ProductType),
		}
	}

	amount, formula := PriceContract(rule, weight)
	return Calculation{
		Amount:        amount,
		Category:      ContractCategory(rule),
		FreightDetail: fmt.Sprintf("%s-%s %s", r.OriginProvince, r.DestProvince, money(amount)),
		Formula:       formula,
	}
}
