package ec

import (
	"context"
	"time"
)

// Sample is one telemetry reading. Ephemeral; the control loop only keeps
// the most recent one.
type Sample struct {
	MaxCPUTempCelsius float64
	FanRPMs           []int
	Timestamp         time.Time
}

// TelemetrySource reads the current thermal state.
type TelemetrySource interface {
	Read(ctx context.Context) (Sample, error)
}

// FanActuator commands the hardware fan controller.
type FanActuator interface {
	// SetDuty applies a fixed duty cycle, 0-100 percent.
	SetDuty(ctx context.Context, percent int) error
	// EnableAuto hands fan control back to the EC firmware.
	EnableAuto(ctx context.Context) error
}

// ChargeLimiter caps the battery charge level.
type ChargeLimiter interface {
	SetChargeLimit(ctx context.Context, percent int) error
}
