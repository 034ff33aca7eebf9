// Command nsedesk-fetch pulls daily snapshots (equity bhavcopy, F&O
// bhavcopy, NIFTY combined) from the backend into the local cache, with
// optional Parquet export.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nsedesk/internal/api"
	"nsedesk/internal/auth"
	"nsedesk/internal/cache"
	"nsedesk/internal/config"
	"nsedesk/internal/util"
)

func main() {
	kind := flag.String("kind", cache.KindBhavcopy, "snapshot kind: bhavcopy, fo, or nifty")
	dateStr := flag.String("date", "", "trading date YYYY-MM-DD (default: latest weekday)")
	days := flag.Int("days", 1, "number of trading days to fetch, walking backwards")
	export := flag.Bool("export", false, "also write Parquet files to the data dir")
	force := flag.Bool("force", false, "refetch even when the cache has a fresh entry")
	flag.Parse()

	godotenv.Load()

	cfgPath := "config/nsedesk.yaml"
	if p := os.Getenv("NSEDESK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	tokens := auth.NewTokenStore(cfg.Auth.TokenPath)
	if tokens.Token() == "" {
		log.Fatal("no credential stored; run `nsedesk login` first")
	}
	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, tokens)

	store, err := cache.Open(cfg.Storage.CachePath)
	if err != nil {
		log.Fatalf("failed to open cache: %v", err)
	}
	defer store.Close()

	var exporter *cache.Exporter
	if *export {
		exporter = cache.NewExporter(cfg.Storage.DataDir)
	}

	start := util.PrevTradingDay(time.Now().UTC().Truncate(24 * time.Hour))
	if *dateStr != "" {
		start, err = util.ParseDay(*dateStr)
		if err != nil {
			log.Fatal(err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	limiter := util.NewRateLimiter(cfg.Fetch.RateLimitPerMin)

	day := start
	for i := 0; i < *days; i++ {
		if i > 0 {
			day = util.PrevTradingDay(day.AddDate(0, 0, -1))
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}
		if err := fetchDay(ctx, cfg, client, store, exporter, *kind, day, *force); err != nil {
			logger.Error("fetch failed", "kind", *kind, "date", util.FormatDay(day), "error", err)
			continue
		}
		logger.Info("fetched", "kind", *kind, "date", util.FormatDay(day))
	}
}

func fetchDay(ctx context.Context, cfg *config.Config, client *api.Client, store *cache.Store, exporter *cache.Exporter, kind string, day time.Time, force bool) error {
	dayStr := util.FormatDay(day)

	maxAge := cache.DefaultTTL
	if force {
		maxAge = time.Nanosecond
	}

	switch kind {
	case cache.KindBhavcopy:
		var cached api.BhavcopyResponse
		if hit, _ := store.Get(ctx, kind, dayStr, maxAge, &cached); hit {
			return exportBhavcopy(exporter, dayStr, cached.Data)
		}
		var resp *api.BhavcopyResponse
		err := util.Retry(ctx, cfg.Fetch.MaxAttempts, time.Second, func() error {
			var err error
			resp, err = client.Bhavcopy(ctx, day)
			return err
		})
		if err != nil {
			return err
		}
		if err := store.Put(ctx, kind, dayStr, resp); err != nil {
			return err
		}
		return exportBhavcopy(exporter, dayStr, resp.Data)

	case cache.KindFO:
		var cached api.FODataResponse
		if hit, _ := store.Get(ctx, kind, dayStr, maxAge, &cached); hit {
			return exportFO(exporter, dayStr, cached.Data)
		}
		var resp *api.FODataResponse
		err := util.Retry(ctx, cfg.Fetch.MaxAttempts, time.Second, func() error {
			var err error
			resp, err = client.FOData(ctx, day, "")
			return err
		})
		if err != nil {
			return err
		}
		if err := store.Put(ctx, kind, dayStr, resp); err != nil {
			return err
		}
		return exportFO(exporter, dayStr, resp.Data)

	case cache.KindNifty:
		var cached api.NiftyResponse
		if hit, _ := store.Get(ctx, kind, dayStr, maxAge, &cached); hit {
			return nil
		}
		var resp *api.NiftyResponse
		err := util.Retry(ctx, cfg.Fetch.MaxAttempts, time.Second, func() error {
			var err error
			resp, err = client.Nifty(ctx, day)
			return err
		})
		if err != nil {
			return err
		}
		return store.Put(ctx, kind, dayStr, resp)

	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
}

func exportBhavcopy(exporter *cache.Exporter, day string, rows []api.BhavcopyRow) error {
	if exporter == nil {
		return nil
	}
	_, err := exporter.WriteBhavcopy(day, rows)
	return err
}

func exportFO(exporter *cache.Exporter, day string, rows []api.FORow) error {
	if exporter == nil {
		return nil
	}
	_, err := exporter.WriteFO(day, rows)
	return err
}
