package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nsedesk/internal/util"
)

// Symbols fetches all known equity symbols.
func (c *Client) Symbols(ctx context.Context) (*SymbolsResponse, error) {
	var resp SymbolsResponse
	if err := c.get(ctx, "/stocks/symbols", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search fetches autocomplete suggestions matching q against symbols and
// company names. limit <= 0 uses the backend default.
func (c *Client) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp SearchResponse
	if err := c.get(ctx, "/stocks/search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Compare fetches the price comparison between two trading dates. symbols
// optionally restricts the result set.
func (c *Client) Compare(ctx context.Context, date1, date2 time.Time, symbols []string) (*CompareResponse, error) {
	q := url.Values{}
	q.Set("date1", util.FormatDay(date1))
	q.Set("date2", util.FormatDay(date2))
	if len(symbols) > 0 {
		q.Set("symbols", strings.Join(symbols, ","))
	}

	var resp CompareResponse
	if err := c.get(ctx, "/stocks/compare", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LiveSearch compares a specific symbol list between two dates, reporting
// which symbols had no data.
func (c *Client) LiveSearch(ctx context.Context, symbols []string, date1, date2 time.Time) (*LiveSearchResponse, error) {
	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))
	q.Set("date1", util.FormatDay(date1))
	q.Set("date2", util.FormatDay(date2))

	var resp LiveSearchResponse
	if err := c.get(ctx, "/stocks/live-search", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Bhavcopy fetches the equity bhavcopy for a date.
func (c *Client) Bhavcopy(ctx context.Context, date time.Time) (*BhavcopyResponse, error) {
	var resp BhavcopyResponse
	if err := c.get(ctx, "/stocks/bhavcopy/"+util.FormatDay(date), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
