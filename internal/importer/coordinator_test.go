package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"billcheck/internal/model"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCoordinator_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bill := writeFile(t, dir, "bill.xlsx", workbook(t, [][]interface{}{
		{"运单号", "服务", "应付金额"},
		{"SF1", "运费", "16.80"},
		{"SF2", "运费", "12.00"},
	}))
	packaging := writeFile(t, dir, "packaging.csv", []byte("物资名称,单价\n气泡膜,1.2\n"))

	base := model.DefaultRuleSet()
	inputs, err := NewCoordinator(base).Load(context.Background(), LoadOptions{
		BillPath: bill,
		RuleFiles: map[model.RuleKind]string{
			model.RuleKindPackaging: packaging,
			model.RuleKindInsurance: "",
		},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if inputs.Bill == nil || len(inputs.Bill.Rows) != 2 {
		t.Fatalf("bill: %+v", inputs.Bill)
	}
	if len(inputs.Rules.Packaging) != 1 || inputs.Rules.Packaging[0].MaterialName != "气泡膜" {
		t.Fatalf("packaging: %+v", inputs.Rules.Packaging)
	}
	if len(inputs.Rules.Standard) != len(base.Standard) || len(inputs.Rules.Insurance) != len(base.Insurance) {
		t.Fatalf("base rules must be kept: %+v", inputs.Rules)
	}
	if inputs.Sources[model.RuleKindPackaging] != packaging || len(inputs.Sources) != 1 {
		t.Fatalf("sources: %+v", inputs.Sources)
	}
}

func TestCoordinator_ImportEvents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bill := writeFile(t, dir, "bill.csv", []byte("运单号,应付金额\nSF1,1\n"))

	var types []string
	for evt := range NewCoordinator(model.RuleSet{}).Import(context.Background(), LoadOptions{BillPath: bill}) {
		types = append(types, evt.Type)
	}
	if len(types) != 3 || types[0] != "start" || types[1] != "file_done" || types[2] != "done" {
		t.Fatalf("events: %v", types)
	}
}

func TestCoordinator_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bill := writeFile(t, dir, "bill.csv", []byte("运单号,应付金额\nSF1,1\n"))
	c := NewCoordinator(model.DefaultRuleSet())

	if _, err := c.Load(context.Background(), LoadOptions{BillPath: filepath.Join(dir, "missing.xlsx")}); err == nil {
		t.Fatalf("expected error for missing bill")
	}
	_, err := c.Load(context.Background(), LoadOptions{
		BillPath:  bill,
		RuleFiles: map[model.RuleKind]string{"bogus": bill},
	})
	if err == nil {
		t.Fatalf("expected error for unknown rule kind")
	}
	_, err = c.Load(context.Background(), LoadOptions{
		BillPath:  bill,
		RuleFiles: map[model.RuleKind]string{model.RuleKindStandard: filepath.Join(dir, "rates.docx")},
	})
	if err == nil {
		t.Fatalf("expected error for unreadable rule file")
	}
}
