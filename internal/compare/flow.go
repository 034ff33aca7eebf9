// Package compare implements the two-date stock comparison flow and its
// debounced symbol autocomplete.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"nsedesk/internal/api"
	"nsedesk/internal/util"
)

// View selects which slice of a comparison result is displayed.
type View int

const (
	ViewGainers View = iota
	ViewLosers
	ViewAll
)

// ErrSuperseded reports that a newer submission replaced this one before
// its response arrived. The stale result was discarded; callers should
// ignore the attempt rather than treat it as success or failure.
var ErrSuperseded = errors.New("superseded by a newer request")

// ValidationError is a local input error: the action is blocked before any
// network call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// client is the slice of the API surface the flow needs.
type client interface {
	Compare(ctx context.Context, date1, date2 time.Time, symbols []string) (*api.CompareResponse, error)
	Search(ctx context.Context, query string, limit int) (*api.SearchResponse, error)
}

// Options tunes the flow's timers. Zero values take the production defaults.
type Options struct {
	Debounce  time.Duration // autocomplete quiet period, default 300ms
	BlurDelay time.Duration // blur-hide deferral, default 200ms
}

// Flow owns the comparison result, the view toggle, the local table filter,
// and the autocomplete suggestion state. Fetches replace results wholesale;
// a response that lost the race to a newer request is discarded.
type Flow struct {
	client   client
	log      *slog.Logger
	debounce *debouncer
	blurWait time.Duration

	compareSeq atomic.Uint64
	searchSeq  atomic.Uint64

	mu          sync.Mutex
	result      *api.CompareResponse
	view        View
	tableQuery  string
	suggestions []api.SearchResult
	showSugg    bool
	blurTimer   *time.Timer
	onChange    func()
}

// NewFlow creates a comparison flow over the given API client.
func NewFlow(c client, log *slog.Logger, opts Options) *Flow {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.BlurDelay <= 0 {
		opts.BlurDelay = 200 * time.Millisecond
	}
	f := &Flow{client: c, log: log, blurWait: opts.BlurDelay}
	f.debounce = newDebouncer(opts.Debounce, f.fetchSuggestions)
	return f
}

// SetOnChange registers a callback invoked after asynchronous state updates
// (suggestion arrivals, deferred hides), so the UI can redraw.
func (f *Flow) SetOnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

func (f *Flow) notify() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// Submit validates the dates and fetches a fresh comparison. Both dates are
// required: a missing one fails fast with a ValidationError and no network
// call. On success the previous result is replaced entirely; a response
// superseded by a newer Submit is dropped and reported as ErrSuperseded.
func (f *Flow) Submit(ctx context.Context, date1, date2 string, symbols []string) error {
	if strings.TrimSpace(date1) == "" || strings.TrimSpace(date2) == "" {
		return &ValidationError{Msg: "both dates are required"}
	}
	d1, err := util.ParseDay(date1)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	d2, err := util.ParseDay(date2)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}

	seq := f.compareSeq.Add(1)
	resp, err := f.client.Compare(ctx, d1, d2, symbols)
	if seq != f.compareSeq.Load() {
		// A newer submit is in flight or done; never resurrect stale data.
		return ErrSuperseded
	}
	if err != nil {
		return fmt.Errorf("comparing %s and %s: %w", date1, date2, err)
	}

	f.mu.Lock()
	f.result = resp
	f.mu.Unlock()
	return nil
}

// Result returns the last successful comparison, or nil.
func (f *Flow) Result() *api.CompareResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// SetView switches the displayed subset. Purely local.
func (f *Flow) SetView(v View) {
	f.mu.Lock()
	f.view = v
	f.mu.Unlock()
}

// CurrentView returns the active view toggle.
func (f *Flow) CurrentView() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

// SetTableQuery updates the live table filter applied to the "all" view.
// Purely local, never refetches.
func (f *Flow) SetTableQuery(q string) {
	f.mu.Lock()
	f.tableQuery = q
	f.mu.Unlock()
}

// Rows returns the rows for the current view. The "all" view is narrowed by
// a case-insensitive substring match of the table query against the symbol.
func (f *Flow) Rows() []api.CompareRow {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.result == nil {
		return nil
	}
	switch f.view {
	case ViewGainers:
		return f.result.Gainers
	case ViewLosers:
		return f.result.Losers
	}

	if f.tableQuery == "" {
		return f.result.Data
	}
	needle := strings.ToUpper(f.tableQuery)
	var out []api.CompareRow
	for _, r := range f.result.Data {
		if strings.Contains(strings.ToUpper(r.Symbol), needle) {
			out = append(out, r)
		}
	}
	return out
}
