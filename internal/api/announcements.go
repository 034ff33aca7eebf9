package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nsedesk/internal/util"
)

// NSEAnnouncements fetches corporate announcements for an NSE symbol,
// optionally bounded by a date range. Zero times mean no bound; limit <= 0
// uses the backend default.
func (c *Client) NSEAnnouncements(ctx context.Context, symbol string, from, to time.Time, limit int) (*NSEAnnouncementsResponse, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from_date", util.FormatDay(from))
	}
	if !to.IsZero() {
		q.Set("to_date", util.FormatDay(to))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp NSEAnnouncementsResponse
	if err := c.get(ctx, "/announcements/nse/"+url.PathEscape(strings.ToUpper(symbol)), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BSEAnnouncements fetches one page of BSE corporate announcements. An empty
// scripCode returns announcements across all scrips.
func (c *Client) BSEAnnouncements(ctx context.Context, scripCode string, from, to time.Time, page int) (*BSEAnnouncementsResponse, error) {
	q := url.Values{}
	if scripCode != "" {
		q.Set("scrip_code", scripCode)
	}
	if !from.IsZero() {
		q.Set("from_date", util.FormatDay(from))
	}
	if !to.IsZero() {
		q.Set("to_date", util.FormatDay(to))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var resp BSEAnnouncementsResponse
	if err := c.get(ctx, "/announcements/bse", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BSEScripCodes fetches the list of known BSE scrip codes.
func (c *Client) BSEScripCodes(ctx context.Context) (*ScripCodesResponse, error) {
	var resp ScripCodesResponse
	if err := c.get(ctx, "/announcements/bse/scrip-codes", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
