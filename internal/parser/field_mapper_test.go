package parser

import (
	"testing"

	"billcheck/internal/model"
)

func newRow(kv ...string) model.BillRow {
	var header, cells []string
	for i := 0; i+1 < len(kv); i += 2 {
		header = append(header, kv[i])
		cells = append(cells, kv[i+1])
	}
	return model.NewBillRow(2, header, cells)
}

func TestLookup_ExactBeatsFuzzy(t *testing.T) {
	t.Parallel()

	row := newRow("应付金额(含税)", "9.00", "应付金额", "10.00")
	v, ok := Lookup(row, []string{"应付金额"})
	if !ok || v != "10.00" {
		t.Fatalf("want exact column, got %q ok=%v", v, ok)
	}
}

func TestLookup_NormalizedEquality(t *testing.T) {
	t.Parallel()

	row := newRow("费用（元）", "12.5", "waybill no", "SF1")
	if v, _ := Lookup(row, []string{"费用(元)"}); v != "12.5" {
		t.Fatalf("full-width parentheses: got %q", v)
	}
	if v, _ := Lookup(row, []string{"Waybill No"}); v != "SF1" {
		t.Fatalf("case/space: got %q", v)
	}
}

func TestLookup_ContainmentBothDirections(t *testing.T) {
	t.Parallel()

	row := newRow("计费重量(kg)", "1.2")
	if v, _ := Lookup(row, []string{"计费重量"}); v != "1.2" {
		t.Fatalf("key contains alias: got %q", v)
	}

	row = newRow("重量", "3")
	if v, _ := Lookup(row, []string{"计费重量"}); v != "3" {
		t.Fatalf("alias contains key: got %q", v)
	}
}

func TestLookup_AliasPriorityAndEmptyValues(t *testing.T) {
	t.Parallel()

	row := newRow("运单号", "", "单号", "SF2")
	v, ok := Lookup(row, []string{"运单号", "单号"})
	if !ok || v != "SF2" {
		t.Fatalf("empty value must be skipped, got %q ok=%v", v, ok)
	}

	if _, ok := Lookup(newRow("部门", "财务"), []string{"付款方式"}); ok {
		t.Fatalf("unexpected match")
	}
}

func TestLookup_FuzzyFollowsHeaderOrder(t *testing.T) {
	t.Parallel()

	row := newRow("B始发地区", "second", "A始发地区", "first")
	row.Columns = []string{"A始发地区", "B始发地区"}
	for i := 0; i < 20; i++ {
		if v, _ := Lookup(row, []string{"始发地区"}); v != "first" {
			t.Fatalf("iteration %d: got %q", i, v)
		}
	}
}

func TestFieldMapper_DefaultsAndOverrides(t *testing.T) {
	t.Parallel()

	m := NewFieldMapper(nil)
	row := newRow("Waybill No", " SF3 ", "Total Amount", "8")
	if got := m.Get(row, FieldTrackingNo); got != "SF3" {
		t.Fatalf("tracking: %q", got)
	}
	if got := m.Get(row, FieldPayable); got != "8" {
		t.Fatalf("payable: %q", got)
	}
	if got := m.Get(row, FieldDepartment); got != "" {
		t.Fatalf("department should be absent, got %q", got)
	}

	custom := DefaultAliases().Merge(map[string][]string{
		string(FieldDepartment): {"成本归属"},
	})
	m = NewFieldMapper(custom)
	if got := m.Get(newRow("成本归属", "研发"), FieldDepartment); got != "研发" {
		t.Fatalf("override: %q", got)
	}
	if len(DefaultAliases()[FieldDepartment]) == 1 {
		t.Fatalf("merge must not mutate defaults")
	}
}
