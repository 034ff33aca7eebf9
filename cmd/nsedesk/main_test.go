package main

import "testing"

func TestPadOrTrunc(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"RELIANCE", 12, "RELIANCE    "},
		{"RELIANCE INDUSTRIES LTD", 8, "RELIANCE"},
		{"", 3, "   "},
		// Multi-byte runes must count as one cell, not several bytes.
		{"NIFTY ₹ FUT", 9, "NIFTY ₹ F"},
		{"₹₹", 4, "₹₹  "},
	}
	for _, c := range cases {
		if got := padOrTrunc(c.in, c.width); got != c.want {
			t.Errorf("padOrTrunc(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
		}
	}
}

func TestSplitSymbols(t *testing.T) {
	got := splitSymbols(" reliance, tcs ,, infy ")
	want := []string{"RELIANCE", "TCS", "INFY"}
	if len(got) != len(want) {
		t.Fatalf("splitSymbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitSymbols[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if out := splitSymbols(" , "); out != nil {
		t.Errorf("splitSymbols(blank) = %v, want nil", out)
	}
}
