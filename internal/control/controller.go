package control

import (
	"context"
	"math"
	"sync"
	"time"

	"codeberg.org/mutker/framectl/internal/ec"
	"codeberg.org/mutker/framectl/internal/errors"
	"codeberg.org/mutker/framectl/internal/history"
	"codeberg.org/mutker/framectl/internal/logger"
	"codeberg.org/mutker/framectl/internal/profile"
)

const (
	// DefaultInterval is the tick period of the control loop.
	DefaultInterval = 5 * time.Second

	// DefaultStaleness bounds how long a curve-mode duty may go without
	// being reasserted even when the computed value is unchanged.
	DefaultStaleness = 60 * time.Second

	// applyTimeout caps a single actuator call so a hung external tool
	// cannot wedge the loop or shutdown.
	applyTimeout = 5 * time.Second

	// dutyUnknown marks the applied duty as not established, forcing the
	// next computed target through the debounce check.
	dutyUnknown = -1
)

// ProfileSource yields the active profile snapshot. Implementations must
// return a complete, validated value; the loop reads one snapshot at the
// top of each tick and never observes partial updates.
type ProfileSource interface {
	Current() profile.Profile
}

type Config struct {
	Interval  time.Duration
	Staleness time.Duration
	Monitor   bool
}

func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		Staleness: DefaultStaleness,
	}
}

// Controller is the periodic fan control task. All loop state is owned by
// the goroutine running Run; the profile source and the apply guard are
// the only shared points.
type Controller struct {
	cfg       Config
	profiles  ProfileSource
	source    ec.TelemetrySource
	actuator  ec.FanActuator
	collector history.Collector

	// Serializes actuation; at most one apply may be in flight.
	applyMu sync.Mutex

	lastMode      profile.Mode
	lastApplied   int
	lastAppliedAt time.Time
	lastSample    *ec.Sample
	autoPending   bool
}

func New(cfg Config, profiles ProfileSource, source ec.TelemetrySource, actuator ec.FanActuator, collector history.Collector) (*Controller, error) {
	errFactory := errors.New()

	if cfg.Interval <= 0 {
		return nil, errFactory.WithData(errors.ErrInvalidInterval, cfg.Interval)
	}
	if cfg.Staleness <= 0 {
		cfg.Staleness = DefaultStaleness
	}
	if profiles == nil || source == nil || actuator == nil {
		return nil, errFactory.New(errors.ErrInvalidArgument)
	}
	if collector == nil {
		collector = noopCollector{}
	}

	return &Controller{
		cfg:         cfg,
		profiles:    profiles,
		source:      source,
		actuator:    actuator,
		collector:   collector,
		lastApplied: dutyUnknown,
	}, nil
}

// Run executes the control loop until ctx is cancelled. Individual tick
// failures are logged and absorbed; one bad tick never terminates the
// loop.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	logger.Info().
		Dur("interval", c.cfg.Interval).
		Bool("monitor", c.cfg.Monitor).
		Msg("Control loop started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Controller) tick(ctx context.Context) {
	p := c.profiles.Current()

	if p.Mode != c.lastMode {
		logger.Info().
			Str("from", c.lastMode.String()).
			Str("to", p.Mode.String()).
			Msg("Fan control mode changed")

		// The previously applied duty belongs to the old mode.
		c.lastApplied = dutyUnknown
		c.lastAppliedAt = time.Time{}
		c.autoPending = p.Mode == profile.ModeAuto
		c.lastMode = p.Mode
	}

	sample := c.refreshTelemetry(ctx)

	var target int
	switch p.Mode {
	case profile.ModeAuto:
		c.tickAuto(ctx)
		target = dutyUnknown
	case profile.ModeManual:
		target = int(math.Round(p.ManualDutyPercent))
		c.tickManual(ctx, target)
	case profile.ModeCurve:
		target = c.tickCurve(ctx, p, sample)
	}

	c.record(ctx, p, sample, target)
}

// refreshTelemetry reads a new sample, falling back to the previous one
// when the source fails. Returns nil when no sample has ever been read.
func (c *Controller) refreshTelemetry(ctx context.Context) *ec.Sample {
	sample, err := c.source.Read(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("Telemetry unavailable this tick")
		return c.lastSample
	}

	c.lastSample = &sample

	return c.lastSample
}

func (c *Controller) tickAuto(ctx context.Context) {
	if !c.autoPending {
		return
	}
	if c.cfg.Monitor {
		return
	}

	if err := c.enableAuto(ctx); err != nil {
		// Keep autoPending so the next tick retries the handoff.
		logger.Error().Err(err).Msg("Failed to return fan control to firmware")
		return
	}

	c.autoPending = false
	logger.Info().Msg("Fan control returned to firmware")
}

func (c *Controller) tickManual(ctx context.Context, target int) {
	// A fixed duty needs no periodic reassertion; apply only when the
	// value actually differs from what the hardware holds.
	if target == c.lastApplied {
		return
	}

	c.apply(ctx, target)
}

func (c *Controller) tickCurve(ctx context.Context, p profile.Profile, sample *ec.Sample) int {
	if sample == nil {
		// Temperature unknown; better no actuation than a guessed duty.
		logger.Debug().Msg("No telemetry yet, skipping actuation")
		return dutyUnknown
	}

	target := int(math.Round(p.Curve.Interpolate(sample.MaxCPUTempCelsius)))

	stale := !c.lastAppliedAt.IsZero() && time.Since(c.lastAppliedAt) >= c.cfg.Staleness
	if target == c.lastApplied && !stale {
		return target
	}

	c.apply(ctx, target)

	return target
}

func (c *Controller) apply(ctx context.Context, target int) {
	if c.cfg.Monitor {
		logger.Info().Int("target_duty", target).Msg("Monitor mode, not actuating")
		return
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	if err := c.actuator.SetDuty(ctx, target); err != nil {
		// lastApplied stays put so the next tick retries the same duty.
		logger.Error().
			Err(err).
			Int("target_duty", target).
			Msg("Failed to apply fan duty")
		return
	}

	logger.Debug().
		Int("duty", target).
		Int("previous", c.lastApplied).
		Msg("Fan duty applied")

	c.lastApplied = target
	c.lastAppliedAt = time.Now()
}

func (c *Controller) enableAuto(ctx context.Context) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	return c.actuator.EnableAuto(ctx)
}

func (c *Controller) record(ctx context.Context, p profile.Profile, sample *ec.Sample, target int) {
	snapshot := &history.Snapshot{
		Timestamp:       time.Now(),
		Mode:            p.Mode.String(),
		TargetDuty:      target,
		AppliedDuty:     c.lastApplied,
		ActuatorHealthy: target == dutyUnknown || target == c.lastApplied,
	}
	if sample != nil {
		snapshot.TempCelsius = sample.MaxCPUTempCelsius
		for _, rpm := range sample.FanRPMs {
			if rpm > snapshot.MaxFanRPM {
				snapshot.MaxFanRPM = rpm
			}
		}
	}

	if err := c.collector.Record(ctx, snapshot); err != nil {
		logger.Debug().Err(err).Msg("Failed to record tick history")
	}

	if c.cfg.Monitor {
		logger.Info().
			Str("mode", p.Mode.String()).
			Float64("temperature", snapshot.TempCelsius).
			Int("max_fan_rpm", snapshot.MaxFanRPM).
			Int("target_duty", target).
			Int("applied_duty", c.lastApplied).
			Msg("")
	}
}

type noopCollector struct{}

func (noopCollector) Record(context.Context, *history.Snapshot) error { return nil }
func (noopCollector) Close() error                                    { return nil }
