package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/vat/config"
	"github.com/pthm-cable/vat/genome"
	"github.com/pthm-cable/vat/sim"
	"github.com/pthm-cable/vat/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDB := flag.String("snapshot-db", "", "SQLite database for brain snapshots on exit")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *statsWindow > 0 {
		cfg.Telemetry.WindowSec = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	var output *telemetry.OutputManager
	if *outputDir != "" {
		var err error
		output, err = telemetry.NewOutputManager(*outputDir)
		if err != nil {
			slog.Error("failed to create output dir", "error", err)
			os.Exit(1)
		}
		defer output.Close()
		if err := output.WriteConfig(cfg); err != nil {
			slog.Warn("failed to write config snapshot", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := sim.New(cfg, rngSeed, output)
	defer s.Close()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"stats_window", cfg.Telemetry.WindowSec,
	)

	if err := s.Run(ctx, *maxTicks); err != nil {
		slog.Info("simulation interrupted", "tick", s.Tick(), "reason", err)
	} else {
		slog.Info("max ticks reached", "tick", s.Tick())
	}

	if *snapshotDB != "" {
		saveBrains(s, *snapshotDB)
	}
}

// saveBrains persists every living brain to a SQLite store.
func saveBrains(s *sim.Sim, path string) {
	store := genome.NewSQLiteStore(path)
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		slog.Error("failed to open snapshot db", "path", path, "error", err)
		return
	}
	defer store.Close()

	if err := s.SaveSnapshot(ctx, store); err != nil {
		slog.Error("failed to save brain snapshots", "error", err)
		return
	}
	slog.Info("brain snapshots saved", "path", path, "population", s.Population())
}
