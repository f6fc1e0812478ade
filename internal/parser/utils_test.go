package parser

import "testing"

func TestNormalizeHeaderKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"费用(元)":        "费用元",
		"费用（元）":        "费用元",
		" Waybill No ": "WAYBILLNO",
		"[备注]":         "备注",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeHeaderKey(in); got != want {
			t.Fatalf("%q: want=%q got=%q", in, want, got)
		}
	}
}

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	if got := NormalizeColumnName(" 应付\n金额\t"); got != "应付金额" {
		t.Fatalf("got %q", got)
	}
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	if !ContainsAny("包装耗材", []string{"保价", "耗材"}) {
		t.Fatalf("expected match")
	}
	if ContainsAny("运费", []string{"保价", "耗材"}) {
		t.Fatalf("unexpected match")
	}
	if ContainsAny("运费", []string{""}) {
		t.Fatalf("empty keyword must not match")
	}
}
