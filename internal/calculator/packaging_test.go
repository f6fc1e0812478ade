package calculator

import (
	"testing"

	"billcheck/internal/model"
)

func TestPackaging_TemplatePrices(t *testing.T) {
	t.Parallel()

	templates := []model.PackagingTemplateEntry{
		{MaterialName: "F1纸箱", UnitPrice: 1.0},
		{MaterialName: "防水袋(大)", UnitPrice: 0.5},
	}
	calc := CalculatePackaging("F1纸箱:数量2,单价1.0|防水袋(大):数量3", templates)
	assertAmount(t, "total", calc.Amount, "3.5")
	if calc.ReasonText != "" {
		t.Fatalf("unexpected reasons: %q", calc.ReasonText)
	}
	if calc.Category != "包装材料" {
		t.Fatalf("category: %q", calc.Category)
	}
	if calc.PackagingDetail != "F1纸箱×2+防水袋(大)×3 合计3.50" {
		t.Fatalf("detail: %q", calc.PackagingDetail)
	}
}

func TestPackaging_PriceMismatch(t *testing.T) {
	t.Parallel()

	templates := model.DefaultRuleSet().Packaging
	calc := CalculatePackaging("F1纸箱：数量2，单价1.5", templates)
	assertAmount(t, "total", calc.Amount, "2")
	if calc.ReasonText != "单价与模板不符(F1纸箱:账单1.5/模板1)" {
		t.Fatalf("reason: %q", calc.ReasonText)
	}
}

func TestPackaging_WithinTolerance(t *testing.T) {
	t.Parallel()

	templates := []model.PackagingTemplateEntry{{MaterialName: "气泡膜", UnitPrice: 1.5}}
	calc := CalculatePackaging("气泡膜:数量1,单价1.505", templates)
	if calc.ReasonText != "" {
		t.Fatalf("difference within 0.01 must not be reported: %q", calc.ReasonText)
	}
}

func TestPackaging_TemplateMissingAndUnknown(t *testing.T) {
	t.Parallel()

	templates := model.DefaultRuleSet().Packaging
	calc := CalculatePackaging("泡沫箱:数量2,单价0.8 | 胶带:数量4", templates)
	assertAmount(t, "total", calc.Amount, "1.6")
	if calc.ReasonText != "模板缺失(泡沫箱); 未知材料且无单价(胶带)" {
		t.Fatalf("reason: %q", calc.ReasonText)
	}
}

func TestPackaging_NameWhitespaceIgnored(t *testing.T) {
	t.Parallel()

	templates := []model.PackagingTemplateEntry{{MaterialName: "F2 纸箱", UnitPrice: 2}}
	calc := CalculatePackaging("F2纸箱:数量3", templates)
	assertAmount(t, "total", calc.Amount, "6")
}

func TestPackaging_Unparseable(t *testing.T) {
	t.Parallel()

	calc := CalculatePackaging("纸箱两个|防水袋若干", model.DefaultRuleSet().Packaging)
	if !calc.Amount.IsZero() {
		t.Fatalf("amount: %s", calc.Amount)
	}
	if calc.ResultText != "无法提取包装信息" || calc.PackagingDetail != "解析失败" {
		t.Fatalf("unexpected: %+v", calc)
	}
}

func TestParsePackagingRemark_SkipsNonQuantityItems(t *testing.T) {
	t.Parallel()

	candidates, items := ParsePackagingRemark("加急|F1纸箱:数量1||")
	if candidates != 2 {
		t.Fatalf("candidates: %d", candidates)
	}
	if len(items) != 1 || items[0].Name != "F1纸箱" || items[0].Quantity != 1 || items[0].BillPrice != nil {
		t.Fatalf("items: %+v", items)
	}
}
