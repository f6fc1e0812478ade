package model

// DefaultRuleSet 内置默认规则；每次调用返回新实例，调用方可以自由修改
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Standard: []RateRule{
			{Origin: "广东", Destination: "广东", PriceUnder05: 10, Price05To1: 11, PriceStep: 1},
			{Origin: "广东", Destination: "河南", PriceUnder05: 11, Price05To1: 12.6, PriceStep: 2.1},
			{Origin: "广东", Destination: "上海", PriceUnder05: 11, Price05To1: 12.6, PriceStep: 3.15},
			{Origin: "广东", Destination: "北京", PriceUnder05: 12, Price05To1: 13.5, PriceStep: 4.0},
			{Origin: "上海", Destination: "四川", PriceUnder05: 13, Price05To1: 15, PriceStep: 5.0},
			{Origin: "北京", Destination: FallbackDestination, PriceUnder05: 10, Price05To1: 12, PriceStep: 3},
		},
		Contract: []ContractRateRule{
			{Destination: "同城(上海)", FirstWeight: 1, FirstPrice: 8, StepWeight: 1, StepPrice: 2, ProductType: "标快/特快"},
			{Destination: "江浙沪", FirstWeight: 1, FirstPrice: 10, StepWeight: 1, StepPrice: 2, ProductType: "标快/特快"},
			{Destination: "偏远(甘青宁新藏)", FirstWeight: 1, FirstPrice: 20, StepWeight: 1, StepPrice: 10, ProductType: "标快/特快"},
			{Destination: "其他异地", FirstWeight: 1, FirstPrice: 12, StepWeight: 1, StepPrice: 3, ProductType: "顺丰标快"},
			{Destination: "其他异地", FirstWeight: 1, FirstPrice: 16, StepWeight: 1, StepPrice: 5, ProductType: "顺丰特快"},
		},
		Packaging: []PackagingTemplateEntry{
			{MaterialName: "F1纸箱", UnitPrice: 1.0},
			{MaterialName: "F2纸箱", UnitPrice: 2.0},
			{MaterialName: "F3纸箱", UnitPrice: 3.0},
			{MaterialName: "F4纸箱", UnitPrice: 4.0},
			{MaterialName: "F5纸箱", UnitPrice: 5.0},
			{MaterialName: "F6纸箱", UnitPrice: 6.0},
			{MaterialName: "防水袋(大)", UnitPrice: 0.5},
			{MaterialName: "防水袋(中)", UnitPrice: 0.3},
			{MaterialName: "防水袋(小)", UnitPrice: 0.2},
			{MaterialName: "气泡膜", UnitPrice: 1.5},
		},
		Insurance: []InsuranceRule{
			{ServiceKeyword: "基础保", Rate: 0.01, MinFee: 1.0},
			{ServiceKeyword: "足额保", Rate: 0.008, MinFee: 2.0},
			{ServiceKeyword: "保价", Rate: 0.01, MinFee: 1.0},
		},
	}
}
