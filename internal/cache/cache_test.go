package cache

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"nsedesk/internal/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := &api.BhavcopyResponse{
		Date:  "2024-03-28",
		Count: 1,
		Data:  []api.BhavcopyRow{{TckrSymb: "RELIANCE", ClsPric: 2971.5}},
	}
	if err := s.Put(ctx, KindBhavcopy, "2024-03-28", in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out api.BhavcopyResponse
	hit, err := s.Get(ctx, KindBhavcopy, "2024-03-28", DefaultTTL, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if out.Data[0].TckrSymb != "RELIANCE" || out.Data[0].ClsPric != 2971.5 {
		t.Errorf("round trip = %+v", out)
	}
}

func TestGetMissAndKindIsolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Put(ctx, KindFO, "2024-03-28", api.FODataResponse{Date: "2024-03-28"})

	var out api.BhavcopyResponse
	hit, err := s.Get(ctx, KindBhavcopy, "2024-03-28", DefaultTTL, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("payload stored under a different kind must not hit")
	}
}

func TestGetExpired(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Put(ctx, KindNifty, "2024-03-28", api.NiftyResponse{Date: "2024-03-28"})

	var out api.NiftyResponse
	hit, err := s.Get(ctx, KindNifty, "2024-03-28", time.Nanosecond, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("entry older than maxAge must be a miss")
	}

	// maxAge <= 0 disables expiry.
	hit, _ = s.Get(ctx, KindNifty, "2024-03-28", 0, &out)
	if !hit {
		t.Error("maxAge 0 should return the entry regardless of age")
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Put(ctx, KindBhavcopy, "2024-03-28", api.BhavcopyResponse{Count: 1})
	s.Put(ctx, KindBhavcopy, "2024-03-28", api.BhavcopyResponse{Count: 2})

	var out api.BhavcopyResponse
	if hit, _ := s.Get(ctx, KindBhavcopy, "2024-03-28", 0, &out); !hit {
		t.Fatal("expected hit")
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want the replacing entry", out.Count)
	}
}

func TestPurge(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.Put(ctx, KindBhavcopy, "2024-03-27", api.BhavcopyResponse{})
	s.Put(ctx, KindBhavcopy, "2024-03-28", api.BhavcopyResponse{})

	n, err := s.Purge(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 2 {
		t.Errorf("Purge removed %d entries, want 2", n)
	}

	var out api.BhavcopyResponse
	if hit, _ := s.Get(ctx, KindBhavcopy, "2024-03-28", 0, &out); hit {
		t.Error("purged entry still present")
	}
}

func TestExportBhavcopyParquet(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir)

	rows := []api.BhavcopyRow{
		{TckrSymb: "RELIANCE", OpnPric: 2950, HghPric: 2980, LwPric: 2940, ClsPric: 2971.5, TtlTrdVol: 5e6},
		{TckrSymb: "TCS", OpnPric: 3890, HghPric: 3910, LwPric: 3870, ClsPric: 3901, TtlTrdVol: 2e6},
	}
	path, err := e.WriteBhavcopy("2024-03-28", rows)
	if err != nil {
		t.Fatalf("WriteBhavcopy: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("bhavcopy", "2024-03-28.parquet")) {
		t.Errorf("path = %q", path)
	}

	records, err := parquet.ReadFile[EquityRecord](path)
	if err != nil {
		t.Fatalf("reading back parquet: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Symbol != "RELIANCE" || records[0].Close != 2971.5 {
		t.Errorf("records[0] = %+v", records[0])
	}
}

func TestExportFOParquet(t *testing.T) {
	e := NewExporter(t.TempDir())

	rows := []api.FORow{
		{TckrSymb: "NIFTY", FinInstrmTp: "OPTIDX", XpryDt: "2024-03-28", OptnTp: "CE", StrkPric: 22200, ClsPric: 105.3},
	}
	path, err := e.WriteFO("2024-03-28", rows)
	if err != nil {
		t.Fatalf("WriteFO: %v", err)
	}

	records, err := parquet.ReadFile[FORecord](path)
	if err != nil {
		t.Fatalf("reading back parquet: %v", err)
	}
	if len(records) != 1 || records[0].OptionType != "CE" || records[0].Strike != 22200 {
		t.Errorf("records = %+v", records)
	}
}
