package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/framectl/internal/config"
	"codeberg.org/mutker/framectl/internal/control"
	"codeberg.org/mutker/framectl/internal/ec"
	"codeberg.org/mutker/framectl/internal/history"
	"codeberg.org/mutker/framectl/internal/logger"
	"codeberg.org/mutker/framectl/internal/pid"
	"codeberg.org/mutker/framectl/internal/profile"
)

const cleanupTimeout = 5 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	initLogger()
	logger.Debug().Msg("Config loaded")
}

func initLogger() {
	logger.Init(cfg.LogLevel == "debug", cfg.LogLevel == "info", logger.IsService())
	if cfg.LogLevel == "error" {
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write PID file")
	}
	defer pid.Remove()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	store, err := profile.NewStore(cfg.ProfilePath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load fan profile")
		return
	}

	tool, err := ec.NewTool(cfg.ECTool)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize EC tool")
		return
	}

	applyChargeLimit(ctx, tool, store.Current())
	store.OnReload(func(p profile.Profile) {
		applyChargeLimit(ctx, tool, p)
	})

	go func() {
		if err := store.Watch(ctx); err != nil {
			logger.Warn().Err(err).Msg("Profile watching unavailable")
		}
	}()

	collector, err := history.NewService(historyConfig(), logger.Default())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize tick history")
		return
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close tick history")
		}
	}()

	controller, err := control.New(controlConfig(), store, tool, tool, collector)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize control loop")
		return
	}

	if err := controller.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Error in control loop")
	}

	cleanup(tool)
}

func controlConfig() control.Config {
	return control.Config{
		Interval:  time.Duration(cfg.Interval) * time.Second,
		Staleness: time.Duration(cfg.Staleness) * time.Second,
		Monitor:   cfg.Monitor,
	}
}

func historyConfig() history.Config {
	hc := history.DefaultConfig()
	hc.Enabled = cfg.History
	hc.DBPath = cfg.HistoryDB

	return hc
}

func applyChargeLimit(ctx context.Context, tool *ec.Tool, p profile.Profile) {
	if p.BatteryChargeLimitPercent == nil {
		return
	}

	limit := int(*p.BatteryChargeLimitPercent)
	if err := tool.SetChargeLimit(ctx, limit); err != nil {
		logger.Warn().Err(err).Int("limit", limit).Msg("Failed to apply battery charge limit")
		return
	}

	logger.Info().Int("limit", limit).Msg("Battery charge limit applied")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// cleanup returns fan control to the firmware so the machine is never
// left running a stale fixed duty after the daemon exits.
func cleanup(tool *ec.Tool) {
	if cfg.Monitor {
		logger.Info().Msg("Exiting...")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if err := tool.EnableAuto(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to enable auto fan control")
	}
	logger.Info().Msg("Exiting...")
}
