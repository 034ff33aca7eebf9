package api

import (
	"context"
	"net/url"
	"strings"
	"time"

	"nsedesk/internal/util"
)

// FOData fetches the full F&O bhavcopy for a date, optionally restricted to
// one instrument type (FUTSTK, FUTIDX, OPTSTK, OPTIDX).
func (c *Client) FOData(ctx context.Context, date time.Time, instrumentType string) (*FODataResponse, error) {
	q := url.Values{}
	if instrumentType != "" {
		q.Set("instrument_type", strings.ToUpper(instrumentType))
	}

	var resp FODataResponse
	if err := c.get(ctx, "/fo/data/"+util.FormatDay(date), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Futures fetches futures rows for a symbol. A zero date lets the backend
// pick the latest session with data.
func (c *Client) Futures(ctx context.Context, symbol string, date time.Time) (*SymbolFOResponse, error) {
	q := url.Values{}
	if !date.IsZero() {
		q.Set("target_date", util.FormatDay(date))
	}

	var resp SymbolFOResponse
	if err := c.get(ctx, "/fo/futures/"+url.PathEscape(strings.ToUpper(symbol)), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Options fetches options rows for a symbol, optionally restricted to one
// side ("CE" or "PE"). A zero date lets the backend pick the latest session.
func (c *Client) Options(ctx context.Context, symbol string, date time.Time, optionType string) (*OptionsResponse, error) {
	q := url.Values{}
	if !date.IsZero() {
		q.Set("target_date", util.FormatDay(date))
	}
	if optionType != "" {
		q.Set("option_type", strings.ToUpper(optionType))
	}

	var resp OptionsResponse
	if err := c.get(ctx, "/fo/options/"+url.PathEscape(strings.ToUpper(symbol)), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Nifty fetches the combined NIFTY futures+options snapshot. A zero date
// lets the backend pick the latest session.
func (c *Client) Nifty(ctx context.Context, date time.Time) (*NiftyResponse, error) {
	q := url.Values{}
	if !date.IsZero() {
		q.Set("target_date", util.FormatDay(date))
	}

	var resp NiftyResponse
	if err := c.get(ctx, "/fo/nifty", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
