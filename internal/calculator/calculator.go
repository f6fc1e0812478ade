// Package calculator 运费、包装、保价理论金额核算
package calculator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Calculation 单项核算输出；Category 为空表示核算未能确定类目
type Calculation struct {
	Amount          decimal.Decimal
	Category        string
	FreightDetail   string
	Formula         string
	PackagingDetail string
	InsuranceDetail string
	ResultText      string
	ReasonText      string
}

// FreightNotFoundText 没有可用运费规则时的核对结果
const FreightNotFoundText = "未找到运费标准"

// Tolerance 金额比较容差（0.01 元）
var Tolerance = decimal.New(1, -2)

var reLeadingNumber = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d+)?|\.\d+)`)

// ParseNumber 解析单元格中的数值：去掉千分位逗号、货币符号与空白后取前导数字
//
// "12.5kg" 解析为 12.5，".5" 解析为 0.5；没有任何数字时返回 false。
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == '，' || r == '¥' || r == '￥' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	m := reLeadingNumber.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}
	digits := m[2]
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits // ".5" 按 0.5 处理
	}
	if m[1] == "-" {
		digits = "-" + digits
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Round2 金额保留两位小数（银行家舍入）
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// IsZeroDiff 判断差额是否在容差内
func IsZeroDiff(d decimal.Decimal) bool {
	return d.Abs().LessThan(Tolerance)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ceilSteps 计算续重步数 ceil(extra/step)，extra ≤ 0 时为 0
func ceilSteps(extra, step decimal.Decimal) decimal.Decimal {
	if !extra.IsPositive() {
		return decimal.Zero
	}
	return extra.Div(step).Ceil()
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
