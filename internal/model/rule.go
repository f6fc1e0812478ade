package model

import "fmt"

// Mode 核对模式
type Mode string

const (
	ModeStandard Mode = "standard" // 顺丰标准价目表（省到省阶梯价）
	ModeContract Mode = "contract" // 其他快递 / 合同价（同城、江浙沪、偏远、异地）
)

// ParseMode 解析核对模式，空串按标准模式处理
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStandard:
		return ModeStandard, nil
	case ModeContract:
		return ModeContract, nil
	}
	return "", fmt.Errorf("unknown mode: %q", s)
}

// FallbackDestination 标准价目表中的兜底目的地
const FallbackDestination = "其他"

// RateRule 标准价目表规则
type RateRule struct {
	Origin       string  `json:"origin" toml:"origin"`              // 始发地，空表示任意始发地
	Destination  string  `json:"destination" toml:"destination"`    // 目的地，可为“其他”兜底
	PriceUnder05 float64 `json:"priceUnder05" toml:"price_under05"` // 0<X≤0.5kg
	Price05To1   float64 `json:"price05To1" toml:"price_05_to_1"`   // 0.5<X≤1kg
	PriceStep    float64 `json:"priceStep" toml:"price_step"`       // 每续重0.5kg
}

// ContractRateRule 合同价规则（首重 + 续重）
type ContractRateRule struct {
	Origin      string  `json:"origin,omitempty" toml:"origin"`
	Destination string  `json:"destination" toml:"destination"` // 目的地或线路标签，如“同城(上海)”“江浙沪”
	ProductType string  `json:"productType,omitempty" toml:"product_type"`
	FirstWeight float64 `json:"firstWeight" toml:"first_weight"`
	FirstPrice  float64 `json:"firstPrice" toml:"first_price"`
	StepWeight  float64 `json:"stepWeight" toml:"step_weight"`
	StepPrice   float64 `json:"stepPrice" toml:"step_price"`
}

// PackagingTemplateEntry 包装材料模板
type PackagingTemplateEntry struct {
	MaterialName string  `json:"materialName" toml:"material_name"`
	UnitPrice    float64 `json:"unitPrice" toml:"unit_price"`
}

// InsuranceRule 保价费率
type InsuranceRule struct {
	ServiceKeyword string  `json:"serviceKeyword" toml:"service_keyword"` // 在服务备注中按包含匹配
	Rate           float64 `json:"rate" toml:"rate"`                      // 0.01 即 1%
	MinFee         float64 `json:"minFee" toml:"min_fee"`
}

// RuleSet 一次核对使用的全部规则
type RuleSet struct {
	Standard  []RateRule               `json:"standard" toml:"standard"`
	Contract  []ContractRateRule       `json:"contract" toml:"contract"`
	Packaging []PackagingTemplateEntry `json:"packaging" toml:"packaging"`
	Insurance []InsuranceRule          `json:"insurance" toml:"insurance"`
}

// Clone 深拷贝规则集；核对开始时冻结一份快照，运行期间的编辑对本次核对不可见
func (r RuleSet) Clone() RuleSet {
	return RuleSet{
		Standard:  append([]RateRule(nil), r.Standard...),
		Contract:  append([]ContractRateRule(nil), r.Contract...),
		Packaging: append([]PackagingTemplateEntry(nil), r.Packaging...),
		Insurance: append([]InsuranceRule(nil), r.Insurance...),
	}
}

// RateRuleCount 返回指定模式下可用的运费规则数量
func (r RuleSet) RateRuleCount(mode Mode) int {
	if mode == ModeContract {
		return len(r.Contract)
	}
	return len(r.Standard)
}

// RuleKind 规则类别（用于接口与存储）
type RuleKind string

const (
	RuleKindStandard  RuleKind = "standard"
	RuleKindContract  RuleKind = "contract"
	RuleKindPackaging RuleKind = "packaging"
	RuleKindInsurance RuleKind = "insurance"
)

// RuleKinds 全部规则类别
func RuleKinds() []RuleKind {
	return []RuleKind{RuleKindStandard, RuleKindContract, RuleKindPackaging, RuleKindInsurance}
}

// ValidRuleKind 判断规则类别是否合法
func ValidRuleKind(kind RuleKind) bool {
	switch kind {
	case RuleKindStandard, RuleKindContract, RuleKindPackaging, RuleKindInsurance:
		return true
	}
	return false
}

// Count 返回指定类别的规则条数
func (r RuleSet) Count(kind RuleKind) int {
	switch kind {
	case RuleKindStandard:
		return len(r.Standard)
	case RuleKindContract:
		return len(r.Contract)
	case RuleKindPackaging:
		return len(r.Packaging)
	case RuleKindInsurance:
		return len(r.Insurance)
	}
	return 0
}

// Replace 用 src 中对应类别的规则替换当前规则
func (r *RuleSet) Replace(kind RuleKind, src RuleSet) {
	switch kind {
	case RuleKindStandard:
		r.Standard = append([]RateRule(nil), src.Standard...)
	case RuleKindContract:
		r.Contract = append([]ContractRateRule(nil), src.Contract...)
	case RuleKindPackaging:
		r.Packaging = append([]PackagingTemplateEntry(nil), src.Packaging...)
	case RuleKindInsurance:
		r.Insurance = append([]InsuranceRule(nil), src.Insurance...)
	}
}
