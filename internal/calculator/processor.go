package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billcheck/internal/locality"
	"billcheck/internal/model"
	"billcheck/internal/parser"
)

// PassThroughText 未核算的服务类型
const PassThroughText = "未核算服务类型"

// Processor 行处理器：按服务类型分派到运费/包装/保价核算，计算差额
//
// 规则在创建时冻结为快照，Process 不修改任何状态，可并发调用。
type Processor struct {
	mode     model.Mode
	rules    model.RuleSet
	fields   *parser.FieldMapper
	contract bool // 合同规则含线路关键字
}

// NewProcessor 创建行处理器；rules 会被深拷贝
func NewProcessor(mode model.Mode, rules model.RuleSet, fields *parser.FieldMapper) *Processor {
	if fields == nil {
		fields = parser.NewFieldMapper(nil)
	}
	snapshot := rules.Clone()
	return &Processor{
		mode:     mode,
		rules:    snapshot,
		fields:   fields,
		contract: HasContractKeywords(snapshot.Contract),
	}
}

// Process 核对单行账单
//
// 规则缺失、备注无法解析等情况记录在结果中；只有应付金额或重量无法解析时返回错误。
func (p *Processor) Process(row model.BillRow) (model.ProcessingResult, error) {
	payable, err := p.number(row, parser.FieldPayable)
	if err != nil {
		return model.ProcessingResult{}, fmt.Errorf("row %d: %w", row.RowNum, err)
	}
	if p.mode == model.ModeContract {
		return p.processContract(row, payable)
	}
	return p.processStandard(row, payable)
}

func (p *Processor) processStandard(row model.BillRow, payable decimal.Decimal) (model.ProcessingResult, error) {
	serviceType := p.fields.Get(row, parser.FieldServiceType)
	origin := p.fields.Get(row, parser.FieldOriginProvince)
	dest := p.fields.Get(row, parser.FieldDestProvince)

	var calc Calculation
	switch serviceType {
	case "运费":
		weight, err := p.number(row, parser.FieldWeight)
		if err != nil {
			return model.ProcessingResult{}, fmt.Errorf("row %d: %w", row.RowNum, err)
		}
		calc = CalculateStandardFreight(p.rules.Standard, origin, dest, weight)
	case "包装服务", "包装费":
		calc = CalculatePackaging(p.fields.Get(row, parser.FieldServiceRemark), p.rules.Packaging)
	case "保价":
		calc = p.insurance(row)
	default:
		calc = Calculation{Amount: payable, Category: serviceType, ResultText: PassThroughText}
	}

	label := calc.Category
	if label == "" {
		label = serviceType
	}
	res := p.finish(row, calc, payable, label)
	res.Origin = origin
	res.Destination = dest
	return res, nil
}

func (p *Processor) processContract(row model.BillRow, payable decimal.Decimal) (model.ProcessingResult, error) {
	serviceType := p.fields.Get(row, parser.FieldServiceType)
	originProvRaw := p.fields.Get(row, parser.FieldOriginProvince)
	destProvRaw := p.fields.Get(row, parser.FieldDestProvince)
	originCityRaw := p.fields.Get(row, parser.FieldOriginCity)
	destCityRaw := p.fields.Get(row, parser.FieldDestCity)

	var calc Calculation
	switch {
	case strings.Contains(serviceType, "包装") || strings.Contains(serviceType, "耗材"):
		calc = CalculatePackaging(p.fields.Get(row, parser.FieldServiceRemark), p.rules.Packaging)
	case strings.Contains(serviceType, "保价") || strings.Contains(serviceType, "保险"):
		calc = p.insurance(row)
	default:
		weight, err := p.number(row, parser.FieldWeight)
		if err != nil {
			return model.ProcessingResult{}, fmt.Errorf("row %d: %w", row.RowNum, err)
		}
		if p.contract {
			calc = CalculateContractFreight(p.rules.Contract, Route{
				OriginCity:     locality.NormalizeCity(originCityRaw),
				DestCity:       locality.NormalizeCity(destCityRaw),
				OriginProvince: locality.Normalize(originProvRaw),
				DestProvince:   locality.Normalize(destProvRaw),
				ProductType:    serviceType,
			}, weight)
		} else {
			calc = CalculateGenericFreight(p.rules.Contract, originProvRaw, destProvRaw, serviceType, weight)
		}

		// 看起来不是运费且未能核算的服务类型，按原金额放行
		if serviceType != "" && calc.Category == "" && !looksLikeFreight(serviceType) {
			calc.Category = serviceType
			calc.ResultText = PassThroughText
			calc.Amount = payable
		}
	}

	if calc.Category == "" {
		calc.Category = "运费"
	}
	res := p.finish(row, calc, payable, calc.Category)
	res.Origin = firstNonEmpty(originProvRaw, originCityRaw)
	res.Destination = firstNonEmpty(destProvRaw, destCityRaw)
	return res, nil
}

func looksLikeFreight(serviceType string) bool {
	return parser.ContainsAny(serviceType, []string{"运费", "费", KeywordStandard, KeywordPremium})
}

func (p *Processor) insurance(row model.BillRow) Calculation {
	return CalculateInsurance(
		p.fields.Get(row, parser.FieldServiceRemark),
		p.fields.Get(row, parser.FieldDeclaredValue),
		p.rules.Insurance,
	)
}

// finish 计算差额并补全结果文本
func (p *Processor) finish(row model.BillRow, calc Calculation, payable decimal.Decimal, label string) model.ProcessingResult {
	theoretical := Round2(calc.Amount)
	diff := Round2(payable.Sub(theoretical))

	resultText := calc.ResultText
	reasonText := calc.ReasonText
	if resultText == "" {
		if IsZeroDiff(diff) {
			resultText = label + "一致"
		} else {
			resultText = fmt.Sprintf("%s差异（账单：%s vs 核算：%s）", label, money(payable), money(theoretical))
			if reasonText == "" {
				reasonText = "金额不一致"
			}
		}
	}

	return model.ProcessingResult{
		RowNum:            row.RowNum,
		TrackingNumber:    p.fields.Get(row, parser.FieldTrackingNo),
		Category:          calc.Category,
		FreightDetail:     calc.FreightDetail,
		Formula:           calc.Formula,
		PackagingDetail:   calc.PackagingDetail,
		InsuranceDetail:   calc.InsuranceDetail,
		TheoreticalAmount: theoretical,
		DiffAmount:        diff,
		ResultText:        resultText,
		ReasonText:        reasonText,
	}
}

// number 读取数值字段；字段为空按 0 处理，有值但无法解析时返回错误
func (p *Processor) number(row model.BillRow, field parser.Field) (decimal.Decimal, error) {
	raw := p.fields.Get(row, field)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, ok := ParseNumber(raw)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid %s value %q", field, raw)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
