package util

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for trading dates across the backend API.
const DayFormat = "2006-01-02"

// expiryFormats lists the expiry date layouts seen in NSE F&O payloads. The
// UDiFF bhavcopy uses ISO dates; older files use dd-MMM-yyyy.
var expiryFormats = []string{
	"2006-01-02",
	"02-Jan-2006",
	"02-01-2006",
}

// ParseDay parses a YYYY-MM-DD trading date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDay formats t as a YYYY-MM-DD trading date.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseExpiry parses an F&O expiry date, trying each known exchange layout.
func ParseExpiry(s string) (time.Time, error) {
	for _, layout := range expiryFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised expiry date %q", s)
}

// PrevTradingDay returns the most recent weekday at or before t. Exchange
// holidays are not modelled; the backend already falls back across missing
// dates, this only skips the guaranteed-empty weekend fetches.
func PrevTradingDay(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, -1)
	}
	return t
}
