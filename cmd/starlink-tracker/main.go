package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/joakar/starlink-tracker/internal/api"
	"github.com/joakar/starlink-tracker/internal/auth"
	"github.com/joakar/starlink-tracker/internal/borders"
	"github.com/joakar/starlink-tracker/internal/catalog"
	"github.com/joakar/starlink-tracker/internal/engine"
	"github.com/joakar/starlink-tracker/internal/health"
	"github.com/joakar/starlink-tracker/internal/metrics"
	"github.com/joakar/starlink-tracker/internal/propagation"
	"github.com/joakar/starlink-tracker/internal/stats"
	"github.com/joakar/starlink-tracker/internal/tle"
)

const defaultBordersURL = "https://raw.githubusercontent.com/datasets/geo-countries/master/data/countries.geojson"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("STARLINK_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}
	trustProxy := loadBoolEnv(logger, "STARLINK_TRUST_PROXY", false)

	tleCfg := loadTLEConfig(logger)
	tleCache := tle.NewCache(tleCfg.CacheDir, tleCfg.MaxFiles)
	fetcher := tle.NewFetcher(tleCfg.SourceURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := tle.NewStore()
	dataset := loadDataset(ctx, logger, tleCfg, tleCache, fetcher)
	if dataset == nil {
		logger.Error("no TLE data available, cannot start")
		os.Exit(1)
	}
	store.Set(dataset)
	metrics.SetTLEDataset(len(dataset.Satellites))
	metrics.SetTLEAge(store.AgeSeconds())

	src := propagation.SGP4Source{}
	workers := loadWorkers(logger)
	cat := buildCatalog(ctx, logger, src, dataset, workers)
	metrics.SetObjectsTotal(cat.ValidObjects())
	logger.Info("catalog ready",
		"records", cat.TotalRecords(),
		"objects", cat.ValidObjects(),
		"groups", len(cat.Groups()),
	)

	rings := loadBorders(ctx, logger)

	pub := stats.NewPublisher()
	app, err := engine.NewApp(ctx, logger, cat, src, rings, pub)
	if err != nil {
		logger.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	health.SetReady()

	srv := api.NewServer(addr, app, pub, logger, authCfg, trustProxy)
	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			stop()
		}
	}()

	// Background refresh: fetch new elements, rebuild the catalog off the
	// frame goroutine, and hand it over as a command.
	go refreshLoop(ctx, logger, tleCfg, tleCache, fetcher, src, workers, app, store)

	// TLE age gauge needs periodic recomputation.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if ds := store.Get(); ds != nil {
					metrics.SetTLEDataset(len(ds.Satellites))
					metrics.SetTLEAge(store.AgeSeconds())
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	ebiten.SetWindowSize(1280, 800)
	ebiten.SetWindowTitle("starlink tracker")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	// RunGame blocks until Update returns ebiten.Termination, which
	// happens when the signal context is cancelled.
	if err := ebiten.RunGame(app); err != nil {
		logger.Error("frame loop error", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

// loadDataset returns cached elements when fresh enough, otherwise fetches.
func loadDataset(ctx context.Context, logger *slog.Logger, cfg tleConfig, cache *tle.Cache, fetcher *tle.Fetcher) *tle.Dataset {
	if data, ts, err := cache.LoadLatest(); err == nil && time.Since(ts) < cfg.MaxAge {
		entries, err := tle.Parse(bytes.NewReader(data), logger)
		if err == nil && len(entries) > 0 {
			logger.Info("loaded TLE data from cache", "count", len(entries), "cached_at", ts.Format(time.RFC3339))
			return buildDataset("cache", ts, entries)
		}
		logger.Warn("failed to parse cached TLE data", "error", err)
	}

	if !cfg.EnableFetch {
		logger.Warn("TLE fetch disabled and no usable cache")
		return nil
	}

	data, err := fetcher.Fetch(ctx)
	if err != nil {
		logger.Error("TLE fetch failed", "error", err)
		return nil
	}
	entries, err := tle.Parse(bytes.NewReader(data), logger)
	if err != nil || len(entries) == 0 {
		logger.Error("TLE parse failed", "error", err)
		return nil
	}
	now := time.Now()
	if err := cache.Write(data, now); err != nil {
		logger.Warn("failed to cache TLE data", "error", err)
	}
	logger.Info("fetched TLE data", "count", len(entries), "source", fetcher.SourceURL())
	return buildDataset(fetcher.SourceURL(), now, entries)
}

func buildDataset(source string, ts time.Time, entries []tle.Entry) *tle.Dataset {
	minEpoch, maxEpoch := entries[0].Epoch, entries[0].Epoch
	for _, e := range entries[1:] {
		if e.Epoch.Before(minEpoch) {
			minEpoch = e.Epoch
		}
		if e.Epoch.After(maxEpoch) {
			maxEpoch = e.Epoch
		}
	}
	return &tle.Dataset{
		Source:     source,
		FetchedAt:  ts,
		EpochRange: tle.EpochRange{Min: minEpoch, Max: maxEpoch},
		Satellites: entries,
	}
}

// buildCatalog turns parsed elements into gated catalog objects.
func buildCatalog(ctx context.Context, logger *slog.Logger, src propagation.SGP4Source, ds *tle.Dataset, workers int) *catalog.Catalog {
	records := make([]catalog.Record, 0, len(ds.Satellites))
	for _, e := range ds.Satellites {
		h, err := src.NewElements(e.Name, e.Line1, e.Line2)
		if err != nil {
			logger.Debug("rejecting element set", "name", e.Name, "error", err)
			h = nil
		}
		records = append(records, catalog.Record{
			Handle:         h,
			Name:           e.Name,
			InclinationDeg: e.InclinationDeg,
			Eccentricity:   e.Eccentricity,
			Decayed:        e.Decayed,
			DecayDate:      e.DecayDate,
		})
	}

	probe := func(handles []propagation.Handle) []bool {
		return propagation.CheckStability(ctx, src, handles, time.Now(), workers, logger)
	}
	return catalog.Ingest(records, probe)
}

func refreshLoop(ctx context.Context, logger *slog.Logger, cfg tleConfig, cache *tle.Cache, fetcher *tle.Fetcher, src propagation.SGP4Source, workers int, app *engine.App, store *tle.Store) {
	if !cfg.EnableFetch {
		return
	}
	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		data, err := fetcher.Fetch(ctx)
		if err != nil {
			logger.Warn("TLE refresh fetch failed", "error", err)
			continue
		}
		entries, err := tle.Parse(bytes.NewReader(data), logger)
		if err != nil || len(entries) == 0 {
			logger.Warn("TLE refresh parse failed", "error", err)
			continue
		}
		now := time.Now()
		if err := cache.Write(data, now); err != nil {
			logger.Warn("failed to cache refreshed TLE data", "error", err)
		}
		ds := buildDataset(fetcher.SourceURL(), now, entries)
		store.Set(ds)

		cat := buildCatalog(ctx, logger, src, ds, workers)
		metrics.SetObjectsTotal(cat.ValidObjects())
		metrics.SetTLEDataset(len(ds.Satellites))
		metrics.SetTLEAge(store.AgeSeconds())
		app.Enqueue(app.SwapCatalog(cat))
		logger.Info("TLE refresh complete", "count", len(entries))
	}
}

func loadBorders(ctx context.Context, logger *slog.Logger) []borders.Ring {
	if path := os.Getenv("STARLINK_BORDERS_FILE"); path != "" {
		rings, err := borders.LoadFile(path)
		if err != nil {
			logger.Error("failed to load borders file", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded borders", "source", path, "rings", len(rings))
		return rings
	}

	url := os.Getenv("STARLINK_BORDERS_URL")
	if url == "" {
		url = defaultBordersURL
	}
	rings, err := borders.Fetch(ctx, url)
	if err != nil {
		logger.Warn("failed to fetch borders, rendering without land outlines", "url", url, "error", err)
		return nil
	}
	logger.Info("loaded borders", "source", url, "rings", len(rings))
	return rings
}

type tleConfig struct {
	SourceURL       string
	CacheDir        string
	MaxFiles        int
	MaxAge          time.Duration
	RefreshInterval time.Duration
	EnableFetch     bool
}

func loadTLEConfig(logger *slog.Logger) tleConfig {
	cfg := tleConfig{
		CacheDir:        "/tmp/starlink-tracker/tle",
		MaxFiles:        5,
		MaxAge:          24 * time.Hour,
		RefreshInterval: 6 * time.Hour,
		EnableFetch:     true,
	}

	cfg.EnableFetch = loadBoolEnv(logger, "STARLINK_ENABLE_TLE_FETCH", cfg.EnableFetch)

	if v := os.Getenv("STARLINK_TLE_SOURCE_URL"); v != "" {
		cfg.SourceURL = v
	}
	if v := os.Getenv("STARLINK_TLE_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("STARLINK_TLE_MAX_AGE"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 1 {
			logger.Warn("invalid STARLINK_TLE_MAX_AGE value, defaulting to 86400", "value", v)
		} else {
			cfg.MaxAge = time.Duration(seconds) * time.Second
		}
	}
	if v := os.Getenv("STARLINK_TLE_REFRESH_INTERVAL"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 60 {
			logger.Warn("invalid STARLINK_TLE_REFRESH_INTERVAL value, defaulting to 21600", "value", v)
		} else {
			cfg.RefreshInterval = time.Duration(seconds) * time.Second
		}
	}

	logger.Info("TLE config",
		"cache_dir", cfg.CacheDir,
		"max_age_seconds", cfg.MaxAge.Seconds(),
		"refresh_interval_seconds", cfg.RefreshInterval.Seconds(),
		"fetch_enabled", cfg.EnableFetch,
	)
	return cfg
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	if v := os.Getenv("STARLINK_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.New("STARLINK_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("STARLINK_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("STARLINK_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadWorkers(logger *slog.Logger) int {
	workers := runtime.NumCPU()
	if v := os.Getenv("STARLINK_PROP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid STARLINK_PROP_WORKERS value, using default", "value", v, "default", workers)
		} else {
			workers = n
		}
	}
	return workers
}

func loadBoolEnv(logger *slog.Logger, key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid boolean value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}
