package cache

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"nsedesk/internal/api"
)

// Exporter writes fetched snapshots to Parquet files on disk.
// Layout: <dataDir>/<kind>/<YYYY-MM-DD>.parquet
type Exporter struct {
	DataDir string
}

// NewExporter creates an Exporter rooted at dataDir.
func NewExporter(dataDir string) *Exporter {
	return &Exporter{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// EquityRecord is the Parquet schema for equity bhavcopy rows.
type EquityRecord struct {
	Symbol string  `parquet:"symbol"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume float64 `parquet:"volume"`
	Value  float64 `parquet:"value"`
}

// FORecord is the Parquet schema for F&O bhavcopy rows.
type FORecord struct {
	Symbol       string  `parquet:"symbol"`
	Instrument   string  `parquet:"instrument"`
	Expiry       string  `parquet:"expiry"`
	OptionType   string  `parquet:"option_type"`
	Strike       float64 `parquet:"strike"`
	Close        float64 `parquet:"close"`
	Settle       float64 `parquet:"settle"`
	OpenInterest float64 `parquet:"open_interest"`
	Volume       float64 `parquet:"volume"`
}

// ---------------------------------------------------------------------------
// Export
// ---------------------------------------------------------------------------

// WriteBhavcopy exports one day's equity rows and returns the file path.
func (e *Exporter) WriteBhavcopy(day string, rows []api.BhavcopyRow) (string, error) {
	records := make([]EquityRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, EquityRecord{
			Symbol: r.TckrSymb,
			Open:   float64(r.OpnPric),
			High:   float64(r.HghPric),
			Low:    float64(r.LwPric),
			Close:  float64(r.ClsPric),
			Volume: float64(r.TtlTrdVol),
			Value:  float64(r.TtlTrdVal),
		})
	}

	path := e.path(KindBhavcopy, day)
	if err := writeFile(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFO exports one day's F&O rows and returns the file path.
func (e *Exporter) WriteFO(day string, rows []api.FORow) (string, error) {
	records := make([]FORecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, FORecord{
			Symbol:       r.TckrSymb,
			Instrument:   r.FinInstrmTp,
			Expiry:       r.XpryDt,
			OptionType:   r.OptnTp,
			Strike:       float64(r.StrkPric),
			Close:        float64(r.ClsPric),
			Settle:       float64(r.SttlmPric),
			OpenInterest: float64(r.OpnIntrst),
			Volume:       float64(r.TtlTradgVol),
		})
	}

	path := e.path(KindFO, day)
	if err := writeFile(path, records); err != nil {
		return "", err
	}
	return path, nil
}

func (e *Exporter) path(kind, day string) string {
	return filepath.Join(e.DataDir, kind, day+".parquet")
}

func writeFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}
