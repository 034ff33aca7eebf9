// Package fo implements the derivatives analysis pipeline: normalising raw
// F&O bhavcopy rows and the symbol/expiry selection cascade over a daily
// snapshot.
package fo

import (
	"strings"
	"time"

	"nsedesk/internal/api"
	"nsedesk/internal/util"
)

// Kind tags a row as a futures or options instrument.
type Kind int

const (
	Futures Kind = iota
	Options
)

// Row is the canonical derivative row. Raw payloads vary in which of
// TckrSymb/UndrlygVal is populated, so the symbol is resolved once here and
// branching per access is avoided everywhere else.
type Row struct {
	Symbol string
	Expiry time.Time // zero when the source date was unparseable
	Kind   Kind
	Raw    api.FORow
}

// Normalize converts raw API rows of one kind into canonical rows. The
// symbol is the primary ticker field, falling back to the underlying field
// when the primary is absent.
func Normalize(raw []api.FORow, kind Kind) []Row {
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		sym := strings.TrimSpace(r.TckrSymb)
		if sym == "" {
			sym = strings.TrimSpace(r.UndrlygVal)
		}

		var expiry time.Time
		if r.XpryDt != "" {
			if t, err := util.ParseExpiry(r.XpryDt); err == nil {
				expiry = t
			}
		}

		rows = append(rows, Row{
			Symbol: strings.ToUpper(sym),
			Expiry: expiry,
			Kind:   kind,
			Raw:    r,
		})
	}
	return rows
}
