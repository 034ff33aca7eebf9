package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Float decodes backend numeric fields that may arrive as JSON numbers,
// numeric strings, or "" (the backend serialises missing values as empty
// strings). Missing decodes to zero.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" || string(data) == `""` {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// Session is the authenticated user returned by GET /auth/me.
type Session struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	IsAdmin bool   `json:"is_admin"`
}

// ---------------------------------------------------------------------------
// Announcements
// ---------------------------------------------------------------------------

// NSEAnnouncement is one NSE corporate filing.
type NSEAnnouncement struct {
	Symbol         string `json:"symbol"`
	CompanyName    string `json:"company_name"`
	Subject        string `json:"subject"`
	BroadcastDate  string `json:"broadcast_date"`
	AttachmentLink string `json:"attachment_link"`
	Category       string `json:"category"`
}

// NSEAnnouncementsResponse is the response of GET /announcements/nse/{symbol}.
type NSEAnnouncementsResponse struct {
	Symbol        string            `json:"symbol"`
	FromDate      string            `json:"from_date"`
	ToDate        string            `json:"to_date"`
	Count         int               `json:"count"`
	Announcements []NSEAnnouncement `json:"announcements"`
	Message       string            `json:"message,omitempty"`
}

// BSEAnnouncement is one BSE corporate filing.
type BSEAnnouncement struct {
	ScripCode     json.Number `json:"scrip_code"`
	CompanyName   string      `json:"company_name"`
	Subject       string      `json:"subject"`
	NewsDate      string      `json:"news_date"`
	Category      string      `json:"category"`
	AttachmentURL string      `json:"attachment_url"`
	NewsID        string      `json:"news_id"`
}

// BSEAnnouncementsResponse is the paged response of GET /announcements/bse.
type BSEAnnouncementsResponse struct {
	ScripCode     string            `json:"scrip_code"`
	FromDate      string            `json:"from_date"`
	ToDate        string            `json:"to_date"`
	Announcements []BSEAnnouncement `json:"announcements"`
	TotalPages    int               `json:"total_pages"`
	CurrentPage   int               `json:"current_page"`
}

// ScripCodesResponse lists known BSE scrip codes. Column names in the
// backing CSV vary, so records stay generic.
type ScripCodesResponse struct {
	Count      int              `json:"count"`
	ScripCodes []map[string]any `json:"scrip_codes"`
}

// ---------------------------------------------------------------------------
// Futures & options
// ---------------------------------------------------------------------------

// FORow is one raw F&O bhavcopy record in NSE UDiFF column naming. The
// primary ticker is TckrSymb with UndrlygVal as the alternate underlying
// field; normalisation lives in internal/fo.
type FORow struct {
	TckrSymb        string `json:"TckrSymb"`
	FinInstrmTp     string `json:"FinInstrmTp"`
	FinInstrmNm     string `json:"FinInstrmNm"`
	XpryDt          string `json:"XpryDt"`
	UndrlygVal      string `json:"UndrlygVal"`
	OptnTp          string `json:"OptnTp"`
	StrkPric        Float  `json:"StrkPric"`
	OpnPric         Float  `json:"OpnPric"`
	HghPric         Float  `json:"HghPric"`
	LwPric          Float  `json:"LwPric"`
	ClsPric         Float  `json:"ClsPric"`
	SttlmPric       Float  `json:"SttlmPric"`
	OpnIntrst       Float  `json:"OpnIntrst"`
	ChngInOpnIntrst Float  `json:"ChngInOpnIntrst"`
	TtlTradgVol     Float  `json:"TtlTradgVol"`
}

// FODataResponse is the response of GET /fo/data/{date}.
type FODataResponse struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	Data  []FORow `json:"data"`
}

// SymbolFOResponse is the response of GET /fo/futures/{symbol}.
type SymbolFOResponse struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Count  int     `json:"count"`
	Data   []FORow `json:"data"`
}

// OptionsResponse is the response of GET /fo/options/{symbol}.
type OptionsResponse struct {
	Symbol     string  `json:"symbol"`
	Date       string  `json:"date"`
	OptionType string  `json:"option_type"`
	Count      int     `json:"count"`
	Data       []FORow `json:"data"`
}

// NiftyResponse is the combined futures+options response of GET /fo/nifty.
type NiftyResponse struct {
	Date         string  `json:"date"`
	FuturesCount int     `json:"futures_count"`
	OptionsCount int     `json:"options_count"`
	Futures      []FORow `json:"futures"`
	Options      []FORow `json:"options"`
}

// ---------------------------------------------------------------------------
// Stocks
// ---------------------------------------------------------------------------

// SymbolsResponse is the response of GET /stocks/symbols.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// SearchResult is one autocomplete suggestion.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// SearchResponse is the response of GET /stocks/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// CompareRow is one comparison record: closing price change between two
// trading dates for a symbol.
type CompareRow struct {
	Symbol         string `json:"Symbol"`
	InstrumentName string `json:"InstrumentName"`
	OldPrice       Float  `json:"OldPrice"`
	NewPrice       Float  `json:"NewPrice"`
	PctChange      Float  `json:"PctChange"`
	VolumeRatio    Float  `json:"VolumeRatio"`
	Volume         Float  `json:"Volume"`
}

// CompareResponse is the response of GET /stocks/compare.
type CompareResponse struct {
	Date1   string       `json:"date1"`
	Date2   string       `json:"date2"`
	Count   int          `json:"count"`
	Gainers []CompareRow `json:"gainers"`
	Losers  []CompareRow `json:"losers"`
	Data    []CompareRow `json:"data"`
}

// LiveSearchResponse is the response of GET /stocks/live-search.
type LiveSearchResponse struct {
	Date1           string       `json:"date1"`
	Date2           string       `json:"date2"`
	SearchedSymbols []string     `json:"searched_symbols"`
	FoundCount      int          `json:"found_count"`
	NotFound        []string     `json:"not_found"`
	Data            []CompareRow `json:"data"`
}

// BhavcopyRow is one equity bhavcopy record.
type BhavcopyRow struct {
	TckrSymb  string `json:"TckrSymb"`
	OpnPric   Float  `json:"OpnPric"`
	HghPric   Float  `json:"HghPric"`
	LwPric    Float  `json:"LwPric"`
	ClsPric   Float  `json:"ClsPric"`
	TtlTrdVol Float  `json:"TtlTrdVol"`
	TtlTrdVal Float  `json:"TtlTrdVal"`
}

// BhavcopyResponse is the response of GET /stocks/bhavcopy/{date}.
type BhavcopyResponse struct {
	Date  string        `json:"date"`
	Count int           `json:"count"`
	Data  []BhavcopyRow `json:"data"`
}
