package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/example/calendar-engine/internal/config"
	"github.com/example/calendar-engine/internal/grid"
	"github.com/example/calendar-engine/internal/layout"
	"github.com/example/calendar-engine/internal/logging"
	"github.com/example/calendar-engine/internal/source"
	"github.com/example/calendar-engine/internal/source/ics"
	"github.com/example/calendar-engine/internal/source/local"
)

func main() {
	var (
		configPath = flag.String("config", "calendar.yaml", "path to the configuration file")
		monthFlag  = flag.String("month", "", "month to display as YYYY-MM (default: current)")
		watch      = flag.Bool("watch", false, "keep running and sync sources on the configured schedule")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	year, month, err := resolveMonth(*monthFlag, time.Now)
	if err != nil {
		logger.Error("invalid month", "error", err)
		os.Exit(1)
	}

	manager := source.NewManager(logger)
	defer func() {
		if cerr := manager.Close(); cerr != nil {
			logger.Error("failed to close sources", "error", cerr)
		}
	}()
	if err := registerSources(manager, cfg, logger); err != nil {
		logger.Error("failed to open sources", "error", err)
		os.Exit(1)
	}

	if err := manager.SyncAll(ctx); err != nil {
		logger.Warn("initial sync finished with errors", "error", err)
	}

	cache := grid.NewCache(cfg.FirstDayOfWeek(), time.Now)
	monthGrid, err := cache.SetCurrent(year, month)
	if err != nil {
		logger.Error("failed to build month grid", "error", err)
		os.Exit(1)
	}
	if err := cache.PrecacheSurrounding(cfg.CacheRadius, cfg.CacheRadius); err != nil {
		logger.Warn("failed to precache neighbouring months", "error", err)
	}

	if err := printMonth(ctx, manager, monthGrid, cfg.ShowWeekNumbers); err != nil {
		logger.Error("failed to render month", "error", err)
		os.Exit(1)
	}

	if !*watch {
		return
	}

	if err := manager.StartAutoSync(ctx, cfg.SyncSchedule); err != nil {
		logger.Error("failed to start auto sync", "error", err)
		os.Exit(1)
	}
	logger.Info("watching for changes", "schedule", cfg.SyncSchedule)
	<-ctx.Done()
	logger.Info("shutting down")
}

// registerSources opens every configured source and registers it with
// the manager. The first local source uses the configured storage path;
// further local calendars get sibling database files named by ID.
func registerSources(manager *source.Manager, cfg config.Config, logger *slog.Logger) error {
	localPathUsed := false
	for _, sc := range cfg.Sources {
		info := source.Info{
			ID:      sc.ID,
			Name:    sc.Name,
			Color:   sc.Color,
			Enabled: sc.IsEnabled(),
		}
		switch sc.Type {
		case "local":
			path := cfg.Storage.Path
			if localPathUsed {
				path = filepath.Join(filepath.Dir(path), sc.ID+".db")
			}
			localPathUsed = true
			cal, err := local.Open(path, info)
			if err != nil {
				return err
			}
			manager.Register(cal)
		case "ics":
			manager.Register(ics.NewRemote(info, sc.URL, nil, nil))
		default:
			logger.Warn("skipping source with unknown type", "id", sc.ID, "type", sc.Type)
		}
	}
	return nil
}

func printMonth(ctx context.Context, manager *source.Manager, g grid.MonthGrid, showWeekNumbers bool) error {
	events, err := manager.EventsForGrid(ctx, g)
	if err != nil {
		return err
	}
	segments, err := layout.CollectSegments(g, events)
	if err != nil {
		return err
	}
	if logger := logging.FromContext(ctx); logger != nil {
		logger.Debug("rendering month",
			"month", g.Title,
			"events", len(events),
			"segments", len(segments))
	}
	return renderMonth(os.Stdout, g, segments, showWeekNumbers)
}

// resolveMonth parses a YYYY-MM flag value, defaulting to the month the
// injected clock reports.
func resolveMonth(value string, now func() time.Time) (int, time.Month, error) {
	if value == "" {
		t := now()
		return t.Year(), t.Month(), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month %q: want YYYY-MM: %w", value, err)
	}
	return t.Year(), t.Month(), nil
}
