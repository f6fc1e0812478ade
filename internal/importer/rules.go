package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"billcheck/internal/calculator"
	"billcheck/internal/model"
	"billcheck/internal/parser"
)

// 规则表表头别名
var (
	standardOriginAliases = []string{
		"始发地(省名)", "始发地", "始发省", "始发城市", "始发地区", "始发",
		"原寄地", "原寄省份", "原寄城市", "原寄地区", "原寄",
		"寄方省份", "寄方城市", "寄方地区", "寄件省份",
		"Start", "Origin", "From",
	}
	standardDestAliases = []string{
		"目的地(省名)", "目的地", "目的省", "目的城市", "目的地区",
		"收方省份", "收方城市", "收方地区", "收件省份",
		"End", "Dest", "Destination", "To",
		"省份", "Province", "地区", "Area",
	}
	priceUnder05Aliases = []string{"0<X≤0.5kg运费", "0.5kg内", "Under0.5", "首重", "首重费", "首重价格", "0-0.5", "<=0.5"}
	price05To1Aliases   = []string{"0.5<X≤1kg运费", "0.5-1kg", "0.5To1", "1kg内", "<=1", "首重1kg", "基础运费"}
	priceStepAliases    = []string{"续重0.5kg", "Step", "续重", "续重费", "续重价格", "续重单价"}

	contractOriginAliases  = []string{"始发地", "始发省", "Start", "原寄地", "寄方省份", "Origin"}
	contractDestAliases    = []string{"目的地", "省份", "Province", "Dest", "地区", "Area", "Destination"}
	productTypeAliases     = []string{"产品类型", "产品", "Product Type", "Service Type", "业务类型"}
	firstWeightAliases     = []string{"首重", "FirstWeight", "首重重量"}
	firstPriceAliases      = []string{"首重费", "FirstPrice", "首重价格"}
	stepWeightAliases      = []string{"续重", "StepWeight", "续重重量"}
	stepPriceAliases       = []string{"续重费", "StepPrice", "续重价格"}
	materialNameAliases    = []string{"物资名称", "Material", "包装材料", "材料名称"}
	unitPriceAliases       = []string{"单价", "含税单价", "Price", "价格"}
	insuranceNameAliases   = []string{"服务名称", "Service", "保价类型", "项目"}
	insuranceRateAliases   = []string{"费率", "Rate", "系数"}
	insuranceMinFeeAliases = []string{"最低收费", "MinFee", "起步价", "最低价"}
)

// ParseStandardRules 解析标准价目表；缺少目的地的行被丢弃，始发地可为空
func ParseStandardRules(rows []model.BillRow) []model.RateRule {
	out := make([]model.RateRule, 0, len(rows))
	for _, row := range rows {
		dest := cell(row, standardDestAliases)
		if dest == "" {
			continue
		}
		out = append(out, model.RateRule{
			Origin:       cell(row, standardOriginAliases),
			Destination:  dest,
			PriceUnder05: number(row, priceUnder05Aliases),
			Price05To1:   number(row, price05To1Aliases),
			PriceStep:    number(row, priceStepAliases),
		})
	}
	return out
}

// ParseContractRules 解析首重 + 续重报价表
func ParseContractRules(rows []model.BillRow) []model.ContractRateRule {
	out := make([]model.ContractRateRule, 0, len(rows))
	for _, row := range rows {
		dest := cell(row, contractDestAliases)
		if dest == "" {
			continue
		}
		out = append(out, model.ContractRateRule{
			Origin:      cell(row, contractOriginAliases),
			Destination: dest,
			ProductType: cell(row, productTypeAliases),
			FirstWeight: number(row, firstWeightAliases),
			FirstPrice:  number(row, firstPriceAliases),
			StepWeight:  number(row, stepWeightAliases),
			StepPrice:   number(row, stepPriceAliases),
		})
	}
	return out
}

// ParsePackagingTemplate 解析包装材料模板
func ParsePackagingTemplate(rows []model.BillRow) []model.PackagingTemplateEntry {
	out := make([]model.PackagingTemplateEntry, 0, len(rows))
	for _, row := range rows {
		name := cell(row, materialNameAliases)
		if name == "" {
			continue
		}
		out = append(out, model.PackagingTemplateEntry{
			MaterialName: name,
			UnitPrice:    number(row, unitPriceAliases),
		})
	}
	return out
}

// ParseInsuranceRules 解析保价费率；费率与最低收费均为 0 的行被丢弃
func ParseInsuranceRules(rows []model.BillRow) []model.InsuranceRule {
	out := make([]model.InsuranceRule, 0, len(rows))
	for _, row := range rows {
		r := model.InsuranceRule{
			ServiceKeyword: cell(row, insuranceNameAliases),
			Rate:           number(row, insuranceRateAliases),
			MinFee:         number(row, insuranceMinFeeAliases),
		}
		if r.ServiceKeyword == "" {
			r.ServiceKeyword = calculator.InsuranceKeyword
		}
		if r.Rate > 0 || r.MinFee > 0 {
			out = append(out, r)
		}
	}
	return out
}

// ParseRules 按类别解析规则表，结果只填充 kind 对应的字段
func ParseRules(kind model.RuleKind, rows []model.BillRow) (model.RuleSet, error) {
	var rs model.RuleSet
	switch kind {
	case model.RuleKindStandard:
		rs.Standard = ParseStandardRules(rows)
	case model.RuleKindContract:
		rs.Contract = ParseContractRules(rows)
	case model.RuleKindPackaging:
		rs.Packaging = ParsePackagingTemplate(rows)
	case model.RuleKindInsurance:
		rs.Insurance = ParseInsuranceRules(rows)
	default:
		return rs, fmt.Errorf("unknown rule kind: %q", kind)
	}
	return rs, nil
}

// ReadRules 读取规则文件：xlsx / csv 走表头别名解析，toml 按 RuleSet 结构解码
func ReadRules(kind model.RuleKind, name string, r io.Reader) (model.RuleSet, error) {
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		var rs model.RuleSet
		if err := toml.NewDecoder(r).Decode(&rs); err != nil {
			return model.RuleSet{}, fmt.Errorf("decode %s: %w", name, err)
		}
		var out model.RuleSet
		out.Replace(kind, rs)
		return out, nil
	}

	t, err := ReadTable(name, r)
	if err != nil {
		return model.RuleSet{}, err
	}
	return ParseRules(kind, t.Rows)
}

// ReadRuleFile 从磁盘读取规则文件
func ReadRuleFile(kind model.RuleKind, path string) (model.RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.RuleSet{}, fmt.Errorf("open rules: %w", err)
	}
	defer f.Close()
	return ReadRules(kind, filepath.Base(path), f)
}

func cell(row model.BillRow, aliases []string) string {
	v, _ := parser.Lookup(row, aliases)
	return strings.TrimSpace(v)
}

// number 无法解析的单元格按 0 处理
func number(row model.BillRow, aliases []string) float64 {
	d, ok := calculator.ParseNumber(cell(row, aliases))
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// ApplyRuleFiles 用规则文件覆盖 base 中对应的类别
func ApplyRuleFiles(base model.RuleSet, files map[model.RuleKind]string) (model.RuleSet, error) {
	out := base.Clone()
	for _, kind := range sortedKinds(files) {
		if !model.ValidRuleKind(kind) {
			return model.RuleSet{}, fmt.Errorf("unknown rule kind: %q", kind)
		}
		rs, err := ReadRuleFile(kind, files[kind])
		if err != nil {
			return model.RuleSet{}, err
		}
		out.Replace(kind, rs)
	}
	return out, nil
}
