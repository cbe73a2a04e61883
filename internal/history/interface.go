package history

import (
	"context"
	"time"
)

// Collector records control-loop ticks for later inspection.
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository defines the interface for history data storage
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot captures one control-loop tick.
type Snapshot struct {
	Timestamp       time.Time
	Mode            string
	TempCelsius     float64
	MaxFanRPM       int
	TargetDuty      int
	AppliedDuty     int
	ActuatorHealthy bool
}
