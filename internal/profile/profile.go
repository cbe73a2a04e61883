package profile

import (
	"codeberg.org/mutker/framectl/internal/curve"
	"codeberg.org/mutker/framectl/internal/errors"
)

// Mode selects which fan control strategy is active. Exactly one is live
// at a time; switching modes replaces the whole profile.
type Mode string

const (
	// ModeAuto hands fan control back to the EC firmware.
	ModeAuto Mode = "auto"
	// ModeManual holds a fixed duty cycle.
	ModeManual Mode = "manual"
	// ModeCurve re-evaluates the fan curve against telemetry every tick.
	ModeCurve Mode = "curve"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeAuto, ModeManual, ModeCurve:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}

const (
	minChargeLimitPercent = 25
	maxChargeLimitPercent = 100

	minThermalLimitCelsius = 40
	maxThermalLimitCelsius = 105
)

// Profile is the durable control state: the active mode, the fan curve,
// the manual duty, and pass-through power/battery limits. Treated as an
// immutable snapshot; every accepted change produces a new validated
// value that is persisted and atomically swapped in.
type Profile struct {
	Mode                      Mode
	ManualDutyPercent         float64
	Curve                     curve.Curve
	TDPWatts                  *float64
	ThermalLimitCelsius       *float64
	BatteryChargeLimitPercent *float64
}

// Default returns the first-run profile: firmware-controlled fan with the
// factory curve staged for when curve mode is selected.
func Default() Profile {
	return Profile{
		Mode:              ModeAuto,
		ManualDutyPercent: 50,
		Curve:             curve.Default(),
	}
}

// Validate checks every field of the profile.
func (p Profile) Validate() error {
	errFactory := errors.New()

	if !p.Mode.IsValid() {
		return errFactory.WithData(ErrInvalidMode, string(p.Mode))
	}
	if p.ManualDutyPercent < 0 || p.ManualDutyPercent > 100 {
		return errFactory.WithData(ErrInvalidManualDuty, p.ManualDutyPercent)
	}
	if !p.Curve.IsValid() {
		return errFactory.New(curve.ErrTooFewPoints)
	}
	if limit := p.BatteryChargeLimitPercent; limit != nil {
		if *limit < minChargeLimitPercent || *limit > maxChargeLimitPercent {
			return errFactory.WithData(ErrInvalidChargeLimit, *limit)
		}
	}
	if tdp := p.TDPWatts; tdp != nil && *tdp <= 0 {
		return errFactory.WithData(ErrInvalidPowerLimit, *tdp)
	}
	if thermal := p.ThermalLimitCelsius; thermal != nil {
		if *thermal < minThermalLimitCelsius || *thermal > maxThermalLimitCelsius {
			return errFactory.WithData(ErrInvalidPowerLimit, *thermal)
		}
	}

	return nil
}

// WithMode returns a copy of the profile with a different active mode.
func (p Profile) WithMode(mode Mode) Profile {
	p.Mode = mode
	return p
}

// WithManualDuty returns a copy of the profile with the manual duty set.
func (p Profile) WithManualDuty(dutyPercent float64) Profile {
	p.ManualDutyPercent = dutyPercent
	return p
}

// WithCurve returns a copy of the profile with a replacement curve.
func (p Profile) WithCurve(c curve.Curve) Profile {
	p.Curve = c
	return p
}
