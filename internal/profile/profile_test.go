package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/framectl/internal/curve"
	"codeberg.org/mutker/framectl/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func testProfile(t *testing.T) profile.Profile {
	t.Helper()

	c, err := curve.Validate([]curve.Point{
		{TemperatureCelsius: 45, DutyPercent: 15},
		{TemperatureCelsius: 65, DutyPercent: 55},
		{TemperatureCelsius: 85, DutyPercent: 95},
	})
	require.NoError(t, err)

	return profile.Profile{
		Mode:                      profile.ModeCurve,
		ManualDutyPercent:         75,
		Curve:                     c,
		TDPWatts:                  floatPtr(28),
		ThermalLimitCelsius:       floatPtr(90),
		BatteryChargeLimitPercent: floatPtr(80),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	original := testProfile(t)

	require.NoError(t, profile.Save(path, original))

	loaded, err := profile.Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Mode, loaded.Mode)
	assert.Equal(t, original.ManualDutyPercent, loaded.ManualDutyPercent)
	assert.Equal(t, original.Curve.Points(), loaded.Curve.Points())
	require.NotNil(t, loaded.TDPWatts)
	assert.Equal(t, 28.0, *loaded.TDPWatts)
	require.NotNil(t, loaded.ThermalLimitCelsius)
	assert.Equal(t, 90.0, *loaded.ThermalLimitCelsius)
	require.NotNil(t, loaded.BatteryChargeLimitPercent)
	assert.Equal(t, 80.0, *loaded.BatteryChargeLimitPercent)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	loaded, err := profile.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, profile.ModeAuto, loaded.Mode)
	assert.True(t, loaded.Curve.IsValid())
	assert.Nil(t, loaded.BatteryChargeLimitPercent)
}

func TestLoadMalformedFileQuarantined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml {{{"), 0o600))

	loaded, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, profile.ModeAuto, loaded.Mode, "defaults substituted for malformed file")

	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err, "malformed file renamed aside")
}

func TestLoadInvalidProfileQuarantined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := []byte("mode = \"manual\"\nmanual_duty_percent = 140.0\ncurve = [[40.0, 20.0], [80.0, 80.0]]\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	loaded, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, profile.ModeAuto, loaded.Mode)
}

func TestSaveRejectsInvalidProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")

	p := testProfile(t)
	p.Mode = profile.Mode("turbo")
	err := profile.Save(path, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile_invalid_mode")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing persisted for invalid profile")
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	require.NoError(t, profile.Save(path, testProfile(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "profile.toml", entries[0].Name())
}

func TestValidate(t *testing.T) {
	p := testProfile(t)
	require.NoError(t, p.Validate())

	bad := p
	bad.ManualDutyPercent = -5
	require.Error(t, bad.Validate())

	bad = p
	bad.BatteryChargeLimitPercent = floatPtr(10)
	require.Error(t, bad.Validate())

	bad = p
	bad.ThermalLimitCelsius = floatPtr(200)
	require.Error(t, bad.Validate())
}

func TestStoreReplaceSwapsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	store, err := profile.NewStore(path)
	require.NoError(t, err)

	assert.Equal(t, profile.ModeAuto, store.Current().Mode)

	next := store.Current().WithMode(profile.ModeManual).WithManualDuty(60)
	require.NoError(t, store.Replace(next))

	assert.Equal(t, profile.ModeManual, store.Current().Mode)
	assert.Equal(t, 60.0, store.Current().ManualDutyPercent)

	// The replacement must be durable.
	reloaded, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, profile.ModeManual, reloaded.Mode)
}

func TestStoreReplaceRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	store, err := profile.NewStore(path)
	require.NoError(t, err)

	bad := store.Current().WithManualDuty(150)
	require.Error(t, store.Replace(bad))
	assert.Equal(t, profile.ModeAuto, store.Current().Mode, "snapshot unchanged after rejected replace")
}
