package profile

import (
	"os"
	"path/filepath"

	"codeberg.org/mutker/framectl/internal/curve"
	"codeberg.org/mutker/framectl/internal/errors"
	"codeberg.org/mutker/framectl/internal/logger"
	"github.com/pelletier/go-toml/v2"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	tmpSuffix     = ".tmp"
	corruptSuffix = ".corrupt"
)

// document is the on-disk TOML shape of a profile. Curve points are stored
// as [temperature, duty] pairs.
type document struct {
	Mode                      string       `toml:"mode"`
	Curve                     [][2]float64 `toml:"curve"`
	ManualDutyPercent         float64      `toml:"manual_duty_percent"`
	TDPWatts                  *float64     `toml:"tdp_watts,omitempty"`
	ThermalLimitCelsius       *float64     `toml:"thermal_limit_celsius,omitempty"`
	BatteryChargeLimitPercent *float64     `toml:"battery_charge_limit_percent,omitempty"`
}

func toDocument(p Profile) document {
	points := p.Curve.Points()
	pairs := make([][2]float64, len(points))
	for i, point := range points {
		pairs[i] = [2]float64{point.TemperatureCelsius, point.DutyPercent}
	}

	return document{
		Mode:                      string(p.Mode),
		Curve:                     pairs,
		ManualDutyPercent:         p.ManualDutyPercent,
		TDPWatts:                  p.TDPWatts,
		ThermalLimitCelsius:       p.ThermalLimitCelsius,
		BatteryChargeLimitPercent: p.BatteryChargeLimitPercent,
	}
}

func fromDocument(doc document) (Profile, error) {
	points := make([]curve.Point, len(doc.Curve))
	for i, pair := range doc.Curve {
		points[i] = curve.Point{TemperatureCelsius: pair[0], DutyPercent: pair[1]}
	}

	c, err := curve.Validate(points)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		Mode:                      Mode(doc.Mode),
		ManualDutyPercent:         doc.ManualDutyPercent,
		Curve:                     c,
		TDPWatts:                  doc.TDPWatts,
		ThermalLimitCelsius:       doc.ThermalLimitCelsius,
		BatteryChargeLimitPercent: doc.BatteryChargeLimitPercent,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

// Load reads the profile at path. A missing file yields the default
// profile. A file that cannot be parsed or validated is renamed aside
// with a .corrupt suffix for diagnostics and the defaults are substituted.
func Load(path string) (Profile, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug().Str("path", path).Msg("No profile file, using defaults")
		return Default(), nil
	}
	if err != nil {
		return Profile{}, errFactory.Wrap(ErrLoadFailed, err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		quarantine(path, err)
		return Default(), nil
	}

	p, err := fromDocument(doc)
	if err != nil {
		quarantine(path, err)
		return Default(), nil
	}

	return p, nil
}

// Save validates the profile and writes it to path atomically: the
// document goes to a temporary file which is then renamed over the
// original, so a crash mid-write never leaves a corrupt profile behind.
func Save(path string, p Profile) error {
	errFactory := errors.New()

	if err := p.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(toDocument(p))
	if err != nil {
		return errFactory.Wrap(ErrPersistFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return errFactory.Wrap(ErrPersistFailed, err)
	}

	tmpPath := path + tmpSuffix
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaultFilePerm)
	if err != nil {
		return errFactory.Wrap(ErrPersistFailed, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return errFactory.Wrap(ErrPersistFailed, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return errFactory.Wrap(ErrPersistFailed, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return errFactory.Wrap(ErrPersistFailed, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errFactory.Wrap(ErrPersistFailed, err)
	}

	return nil
}

func quarantine(path string, cause error) {
	logger.Warn().
		Str("path", path).
		Err(cause).
		Msg("Malformed profile file, substituting defaults")

	if err := os.Rename(path, path+corruptSuffix); err != nil {
		logger.Debug().Err(err).Msg("Failed to set aside malformed profile")
	}
}
