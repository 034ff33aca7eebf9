package fo

import (
	"slices"
	"time"
)

// Engine drives the symbol → expiry → filtered-rows cascade over one day's
// futures+options snapshot.
//
// Invariants after every operation:
//   - the selected symbol is a member of Symbols() when the snapshot is
//     non-empty, and "" otherwise;
//   - the selected expiry is a member of Expiries() when that set is
//     non-empty;
//   - every filtered row matches both selections exactly.
//
// A stale selection surviving a snapshot refresh is replaced by a computed
// default: the first match in the priority list (index names first), else
// the first symbol alphabetically; for expiries, the nearest date.
type Engine struct {
	priority []string

	futures []Row
	options []Row

	symbols  []string
	expiries []time.Time

	selSymbol string
	selExpiry time.Time

	filteredFutures []Row
	filteredOptions []Row
}

// NewEngine creates an Engine with the given symbol default priority, e.g.
// ["NIFTY", "BANKNIFTY"].
func NewEngine(priority []string) *Engine {
	return &Engine{priority: priority}
}

// SetSnapshot replaces the day's rows and revalidates both selections.
func (e *Engine) SetSnapshot(futures, options []Row) {
	e.futures = futures
	e.options = options

	e.symbols = distinctSymbols(futures, options)
	if len(e.symbols) == 0 {
		e.reset()
		return
	}

	e.validateSymbol()
	e.recomputeExpiries()
	e.validateExpiry()
	e.applyFilter()
}

// Reset clears the snapshot, selections, and filtered outputs, for use when
// a snapshot fetch fails. The error itself travels to the caller; the
// engine never retries.
func (e *Engine) Reset() {
	e.futures = nil
	e.options = nil
	e.symbols = nil
	e.reset()
}

func (e *Engine) reset() {
	e.selSymbol = ""
	e.selExpiry = time.Time{}
	e.expiries = nil
	e.filteredFutures = nil
	e.filteredOptions = nil
}

// SelectSymbol changes the selected symbol, cascading expiry recomputation
// and refiltering. A symbol outside the snapshot's set falls back to the
// computed default.
func (e *Engine) SelectSymbol(symbol string) {
	if len(e.symbols) == 0 {
		return
	}
	e.selSymbol = symbol
	e.validateSymbol()
	e.recomputeExpiries()
	e.validateExpiry()
	e.applyFilter()
}

// SelectExpiry changes the selected expiry and refilters. An expiry outside
// the current symbol's set falls back to the nearest date.
func (e *Engine) SelectExpiry(expiry time.Time) {
	if len(e.symbols) == 0 {
		return
	}
	e.selExpiry = expiry
	e.validateExpiry()
	e.applyFilter()
}

// Symbols returns the snapshot's distinct underlying symbols, sorted.
func (e *Engine) Symbols() []string { return e.symbols }

// Expiries returns the selected symbol's distinct expiries, ascending by
// calendar date.
func (e *Engine) Expiries() []time.Time { return e.expiries }

// SelectedSymbol returns the current symbol selection, "" when empty.
func (e *Engine) SelectedSymbol() string { return e.selSymbol }

// SelectedExpiry returns the current expiry selection, zero when empty.
func (e *Engine) SelectedExpiry() time.Time { return e.selExpiry }

// FilteredFutures returns futures rows matching both selections.
func (e *Engine) FilteredFutures() []Row { return e.filteredFutures }

// FilteredOptions returns options rows matching both selections.
func (e *Engine) FilteredOptions() []Row { return e.filteredOptions }

// ---------------------------------------------------------------------------
// Cascade steps
// ---------------------------------------------------------------------------

func (e *Engine) validateSymbol() {
	if slices.Contains(e.symbols, e.selSymbol) {
		return
	}
	for _, p := range e.priority {
		if slices.Contains(e.symbols, p) {
			e.selSymbol = p
			return
		}
	}
	e.selSymbol = e.symbols[0]
}

func (e *Engine) recomputeExpiries() {
	seen := make(map[time.Time]bool)
	var expiries []time.Time
	for _, r := range concatRows(e.futures, e.options) {
		if r.Symbol != e.selSymbol || r.Expiry.IsZero() || seen[r.Expiry] {
			continue
		}
		seen[r.Expiry] = true
		expiries = append(expiries, r.Expiry)
	}
	slices.SortFunc(expiries, func(a, b time.Time) int { return a.Compare(b) })
	e.expiries = expiries
}

func (e *Engine) validateExpiry() {
	for _, x := range e.expiries {
		if x.Equal(e.selExpiry) {
			return
		}
	}
	if len(e.expiries) == 0 {
		e.selExpiry = time.Time{}
		return
	}
	e.selExpiry = e.expiries[0] // nearest expiry
}

func (e *Engine) applyFilter() {
	e.filteredFutures = filterRows(e.futures, e.selSymbol, e.selExpiry)
	e.filteredOptions = filterRows(e.options, e.selSymbol, e.selExpiry)
}

func filterRows(rows []Row, symbol string, expiry time.Time) []Row {
	var out []Row
	for _, r := range rows {
		if r.Symbol == symbol && r.Expiry.Equal(expiry) {
			out = append(out, r)
		}
	}
	return out
}

func distinctSymbols(futures, options []Row) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, r := range concatRows(futures, options) {
		if r.Symbol == "" || seen[r.Symbol] {
			continue
		}
		seen[r.Symbol] = true
		symbols = append(symbols, r.Symbol)
	}
	slices.Sort(symbols)
	return symbols
}

func concatRows(a, b []Row) []Row {
	out := make([]Row, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
