package compare

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

// debouncer coalesces bursts of input into at most one fire per quiet
// period, suppressing consecutive identical queries.
type debouncer struct {
	quiet time.Duration
	fire  func(query string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	last    string
	primed  bool // false until the first fire
}

func newDebouncer(quiet time.Duration, fire func(string)) *debouncer {
	return &debouncer{quiet: quiet, fire: fire}
}

// Input schedules a fire for query after the quiet period, restarting the
// clock on every call. A query equal to the previously fired one is
// swallowed.
func (d *debouncer) Input(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.primed && query == d.last {
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
		return
	}

	d.pending = query
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	query := d.pending
	d.last = query
	d.primed = true
	d.timer = nil
	d.mu.Unlock()

	d.fire(query)
}

// Cancel drops any pending fire.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// lastToken returns the trimmed last comma-delimited token of input, the
// part of a multi-symbol entry the user is still typing.
func lastToken(input string) string {
	parts := strings.Split(input, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// replaceLastToken substitutes symbol for the last comma-delimited token,
// preserving the earlier tokens.
func replaceLastToken(input, symbol string) string {
	parts := strings.Split(input, ",")
	kept := make([]string, 0, len(parts))
	for _, p := range parts[:len(parts)-1] {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	kept = append(kept, symbol)
	return strings.Join(kept, ", ")
}

// ---------------------------------------------------------------------------
// Autocomplete flow
// ---------------------------------------------------------------------------

const suggestionLimit = 10

// TypeAhead feeds one keystroke's worth of input into the autocomplete
// pipeline. The query is the last comma-delimited token; an empty token
// clears the suggestions without any network call.
func (f *Flow) TypeAhead(input string) {
	token := lastToken(input)
	if len(token) < 1 {
		f.debounce.Cancel()
		f.mu.Lock()
		f.suggestions = nil
		f.showSugg = false
		f.mu.Unlock()
		return
	}
	f.debounce.Input(token)
}

// fetchSuggestions runs on the debounce timer goroutine once a query
// survives the quiet period.
func (f *Flow) fetchSuggestions(query string) {
	seq := f.searchSeq.Add(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	resp, err := f.client.Search(ctx, query, suggestionLimit)

	if seq != f.searchSeq.Load() {
		return // superseded by a newer query
	}

	f.mu.Lock()
	if err != nil {
		// Failures clear silently; suggestions are an enhancement, not a
		// surface for errors.
		f.suggestions = nil
		f.showSugg = false
	} else {
		f.suggestions = resp.Results
		f.showSugg = len(resp.Results) > 0
	}
	f.mu.Unlock()
	f.notify()
}

// Suggestions returns the current suggestion list and whether it should be
// visible.
func (f *Flow) Suggestions() ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.showSugg {
		return nil, false
	}
	out := make([]string, len(f.suggestions))
	for i, s := range f.suggestions {
		out[i] = s.Symbol
	}
	return out, true
}

// Accept commits a suggestion: the last comma-delimited token of input is
// replaced by symbol, earlier tokens are preserved, and the list hides.
// Any deferred blur-hide is cancelled first so the click always wins the
// blur race.
func (f *Flow) Accept(input, symbol string) string {
	f.mu.Lock()
	if f.blurTimer != nil {
		f.blurTimer.Stop()
		f.blurTimer = nil
	}
	f.suggestions = nil
	f.showSugg = false
	f.mu.Unlock()

	f.debounce.Cancel()
	return replaceLastToken(input, symbol)
}

// Blur schedules the suggestion list to hide after a short delay instead of
// immediately, leaving a window for a pending Accept to land first.
func (f *Flow) Blur() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.blurTimer != nil {
		f.blurTimer.Stop()
	}
	f.blurTimer = time.AfterFunc(f.blurWait, func() {
		f.mu.Lock()
		f.showSugg = false
		f.blurTimer = nil
		f.mu.Unlock()
		f.notify()
	})
}
