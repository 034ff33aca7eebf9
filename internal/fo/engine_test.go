package fo

import (
	"slices"
	"testing"
	"time"

	"nsedesk/internal/api"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mkRow(symbol, expiry string, kind Kind) Row {
	rows := Normalize([]api.FORow{{TckrSymb: symbol, XpryDt: expiry}}, kind)
	return rows[0]
}

var defaultPriority = []string{"NIFTY", "BANKNIFTY"}

func TestNormalizeSymbolFallback(t *testing.T) {
	rows := Normalize([]api.FORow{
		{TckrSymb: "RELIANCE", XpryDt: "2024-03-28"},
		{TckrSymb: "", UndrlygVal: "tcs", XpryDt: "28-Mar-2024"},
		{TckrSymb: "  ", UndrlygVal: "", XpryDt: "2024-03-28"},
	}, Futures)

	if rows[0].Symbol != "RELIANCE" {
		t.Errorf("primary symbol = %q", rows[0].Symbol)
	}
	if rows[1].Symbol != "TCS" {
		t.Errorf("fallback symbol = %q, want upper-cased underlying", rows[1].Symbol)
	}
	if rows[2].Symbol != "" {
		t.Errorf("symbol = %q, want empty when both fields blank", rows[2].Symbol)
	}
	if !rows[0].Expiry.Equal(rows[1].Expiry) {
		t.Error("ISO and dd-MMM-yyyy expiries should parse to the same date")
	}
}

func TestSnapshotSelectsPriorityDefaultAndNearestExpiry(t *testing.T) {
	// The spec example: NIFTY on two expiries plus BANKNIFTY, split across
	// futures and options.
	e := NewEngine(defaultPriority)
	e.SetSnapshot(
		[]Row{
			mkRow("NIFTY", "2024-03-28", Futures),
			mkRow("BANKNIFTY", "2024-03-28", Futures),
		},
		[]Row{
			mkRow("NIFTY", "2024-03-21", Options),
		},
	)

	if got := e.Symbols(); !slices.Equal(got, []string{"BANKNIFTY", "NIFTY"}) {
		t.Errorf("Symbols = %v", got)
	}
	if e.SelectedSymbol() != "NIFTY" {
		t.Errorf("SelectedSymbol = %q, want NIFTY via priority", e.SelectedSymbol())
	}

	wantExpiries := []time.Time{day(2024, 3, 21), day(2024, 3, 28)}
	got := e.Expiries()
	if len(got) != 2 || !got[0].Equal(wantExpiries[0]) || !got[1].Equal(wantExpiries[1]) {
		t.Errorf("Expiries = %v, want ascending %v", got, wantExpiries)
	}
	if !e.SelectedExpiry().Equal(day(2024, 3, 21)) {
		t.Errorf("SelectedExpiry = %v, want nearest 2024-03-21", e.SelectedExpiry())
	}

	// Only the NIFTY/2024-03-21 option row survives the filter.
	if len(e.FilteredFutures()) != 0 {
		t.Errorf("FilteredFutures = %v", e.FilteredFutures())
	}
	if len(e.FilteredOptions()) != 1 {
		t.Fatalf("FilteredOptions = %v", e.FilteredOptions())
	}
}

func TestExpiriesSortedByDateNotLexically(t *testing.T) {
	// "28-Feb-2024" < "05-Mar-2024" by calendar but not as strings.
	e := NewEngine(nil)
	e.SetSnapshot([]Row{
		mkRow("RELIANCE", "05-Mar-2024", Futures),
		mkRow("RELIANCE", "28-Feb-2024", Futures),
		mkRow("RELIANCE", "25-Apr-2024", Futures),
	}, nil)

	got := e.Expiries()
	want := []time.Time{day(2024, 2, 28), day(2024, 3, 5), day(2024, 4, 25)}
	if len(got) != len(want) {
		t.Fatalf("Expiries = %v", got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("Expiries[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFilteredRowsMatchBothSelections(t *testing.T) {
	e := NewEngine(defaultPriority)
	e.SetSnapshot(
		[]Row{
			mkRow("NIFTY", "2024-03-21", Futures),
			mkRow("NIFTY", "2024-03-28", Futures),
			mkRow("BANKNIFTY", "2024-03-21", Futures),
		},
		[]Row{
			mkRow("NIFTY", "2024-03-21", Options),
			mkRow("NIFTY", "2024-03-21", Options),
			mkRow("BANKNIFTY", "2024-03-28", Options),
		},
	)

	for _, r := range append(e.FilteredFutures(), e.FilteredOptions()...) {
		if r.Symbol != e.SelectedSymbol() {
			t.Errorf("row symbol %q != selection %q", r.Symbol, e.SelectedSymbol())
		}
		if !r.Expiry.Equal(e.SelectedExpiry()) {
			t.Errorf("row expiry %v != selection %v", r.Expiry, e.SelectedExpiry())
		}
	}
	if len(e.FilteredFutures()) != 1 || len(e.FilteredOptions()) != 2 {
		t.Errorf("filtered counts = %d futures, %d options",
			len(e.FilteredFutures()), len(e.FilteredOptions()))
	}
}

func TestManualSymbolChangeCascades(t *testing.T) {
	e := NewEngine(defaultPriority)
	e.SetSnapshot([]Row{
		mkRow("NIFTY", "2024-03-21", Futures),
		mkRow("BANKNIFTY", "2024-03-13", Futures),
		mkRow("BANKNIFTY", "2024-03-20", Futures),
	}, nil)

	e.SelectSymbol("BANKNIFTY")
	if e.SelectedSymbol() != "BANKNIFTY" {
		t.Fatalf("SelectedSymbol = %q", e.SelectedSymbol())
	}
	if len(e.Expiries()) != 2 {
		t.Errorf("Expiries = %v, want BANKNIFTY's two dates", e.Expiries())
	}
	if !e.SelectedExpiry().Equal(day(2024, 3, 13)) {
		t.Errorf("SelectedExpiry = %v, want nearest after cascade", e.SelectedExpiry())
	}
	if len(e.FilteredFutures()) != 1 {
		t.Errorf("FilteredFutures = %v", e.FilteredFutures())
	}
}

func TestManualExpiryChangeOnlyRefilters(t *testing.T) {
	e := NewEngine(defaultPriority)
	e.SetSnapshot([]Row{
		mkRow("NIFTY", "2024-03-21", Futures),
		mkRow("NIFTY", "2024-03-28", Futures),
	}, nil)

	before := e.Expiries()
	e.SelectExpiry(day(2024, 3, 28))

	if !e.SelectedExpiry().Equal(day(2024, 3, 28)) {
		t.Errorf("SelectedExpiry = %v", e.SelectedExpiry())
	}
	if !slices.EqualFunc(before, e.Expiries(), func(a, b time.Time) bool { return a.Equal(b) }) {
		t.Error("expiry set must not change on a manual expiry selection")
	}
	if len(e.FilteredFutures()) != 1 || !e.FilteredFutures()[0].Expiry.Equal(day(2024, 3, 28)) {
		t.Errorf("FilteredFutures = %v", e.FilteredFutures())
	}
}

func TestInvalidSelectionsFallBack(t *testing.T) {
	e := NewEngine(defaultPriority)
	e.SetSnapshot([]Row{mkRow("RELIANCE", "2024-03-28", Futures)}, nil)

	e.SelectSymbol("NOSUCH")
	if e.SelectedSymbol() != "RELIANCE" {
		t.Errorf("SelectedSymbol = %q, want fallback to first available", e.SelectedSymbol())
	}

	e.SelectExpiry(day(2030, 1, 1))
	if !e.SelectedExpiry().Equal(day(2024, 3, 28)) {
		t.Errorf("SelectedExpiry = %v, want fallback to nearest", e.SelectedExpiry())
	}
}

func TestStaleSelectionResetAfterRefresh(t *testing.T) {
	e := NewEngine(defaultPriority)
	e.SetSnapshot([]Row{mkRow("RELIANCE", "2024-03-28", Futures)}, nil)
	e.SelectSymbol("RELIANCE")

	// New snapshot without RELIANCE: selection falls to the priority default.
	e.SetSnapshot([]Row{
		mkRow("NIFTY", "2024-04-25", Futures),
		mkRow("TCS", "2024-04-25", Futures),
	}, nil)

	if e.SelectedSymbol() != "NIFTY" {
		t.Errorf("SelectedSymbol = %q, want priority default", e.SelectedSymbol())
	}
	if !e.SelectedExpiry().Equal(day(2024, 4, 25)) {
		t.Errorf("SelectedExpiry = %v", e.SelectedExpiry())
	}
}

func TestEmptySnapshotResetsEverything(t *testing.T) {
	e := NewEngine(defaultPriority)
	e.SetSnapshot([]Row{mkRow("NIFTY", "2024-03-28", Futures)}, nil)

	e.SetSnapshot(nil, nil)
	if e.SelectedSymbol() != "" || !e.SelectedExpiry().IsZero() {
		t.Errorf("selections = %q/%v, want empty", e.SelectedSymbol(), e.SelectedExpiry())
	}
	if len(e.FilteredFutures()) != 0 || len(e.FilteredOptions()) != 0 {
		t.Error("filtered outputs must be empty")
	}
	if len(e.Symbols()) != 0 || len(e.Expiries()) != 0 {
		t.Error("derived sets must be empty")
	}
}

func TestSelectedSymbolAlwaysMember(t *testing.T) {
	snapshots := [][]Row{
		{mkRow("ZEE", "2024-03-28", Futures)},
		{mkRow("ACC", "2024-03-28", Futures), mkRow("WIPRO", "2024-03-28", Options)},
		{mkRow("BANKNIFTY", "2024-03-28", Futures), mkRow("ACC", "2024-03-28", Futures)},
	}
	e := NewEngine(defaultPriority)
	for i, snap := range snapshots {
		e.SetSnapshot(snap, nil)
		if !slices.Contains(e.Symbols(), e.SelectedSymbol()) {
			t.Errorf("snapshot %d: selection %q not in %v", i, e.SelectedSymbol(), e.Symbols())
		}
	}
}
