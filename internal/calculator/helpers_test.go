package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"billcheck/internal/model"
)

// billRow 按键值对构造账单行，保持列顺序
func billRow(rowNum int, kv ...string) model.BillRow {
	header := make([]string, 0, len(kv)/2)
	cells := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		header = append(header, kv[i])
		cells = append(cells, kv[i+1])
	}
	return model.NewBillRow(rowNum, header, cells)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s: want=%s got=%s", name, want, got.String())
	}
}
