package curve_test

import (
	"testing"

	"codeberg.org/mutker/framectl/internal/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPoints() []curve.Point {
	return []curve.Point{
		{TemperatureCelsius: 40, DutyPercent: 20},
		{TemperatureCelsius: 50, DutyPercent: 30},
		{TemperatureCelsius: 60, DutyPercent: 40},
		{TemperatureCelsius: 70, DutyPercent: 60},
		{TemperatureCelsius: 80, DutyPercent: 80},
		{TemperatureCelsius: 90, DutyPercent: 100},
	}
}

func TestValidateSortsPoints(t *testing.T) {
	c, err := curve.Validate([]curve.Point{
		{TemperatureCelsius: 80, DutyPercent: 80},
		{TemperatureCelsius: 40, DutyPercent: 20},
		{TemperatureCelsius: 60, DutyPercent: 40},
	})
	require.NoError(t, err)

	points := c.Points()
	require.Len(t, points, 3)
	assert.Equal(t, 40.0, points[0].TemperatureCelsius)
	assert.Equal(t, 60.0, points[1].TemperatureCelsius)
	assert.Equal(t, 80.0, points[2].TemperatureCelsius)
}

func TestValidateRejectsDuplicateTemperature(t *testing.T) {
	_, err := curve.Validate([]curve.Point{
		{TemperatureCelsius: 50, DutyPercent: 30},
		{TemperatureCelsius: 50, DutyPercent: 60},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_duplicate_temperature")
}

func TestValidateRejectsDuplicateAfterRounding(t *testing.T) {
	// 49.6 and 50.4 both round to 50 at the EC's 1°C resolution.
	_, err := curve.Validate([]curve.Point{
		{TemperatureCelsius: 49.6, DutyPercent: 30},
		{TemperatureCelsius: 50.4, DutyPercent: 60},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_duplicate_temperature")
}

func TestValidateRejectsDutyOutOfRange(t *testing.T) {
	_, err := curve.Validate([]curve.Point{
		{TemperatureCelsius: 40, DutyPercent: -1},
		{TemperatureCelsius: 80, DutyPercent: 80},
	})
	require.Error(t, err)

	_, err = curve.Validate([]curve.Point{
		{TemperatureCelsius: 40, DutyPercent: 20},
		{TemperatureCelsius: 80, DutyPercent: 101},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_out_of_range")
}

func TestValidateRejectsBadPointCount(t *testing.T) {
	_, err := curve.Validate([]curve.Point{{TemperatureCelsius: 40, DutyPercent: 20}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_too_few_points")

	points := make([]curve.Point, 0, curve.MaxPoints+1)
	for i := 0; i <= curve.MaxPoints; i++ {
		points = append(points, curve.Point{
			TemperatureCelsius: float64(30 + i*5),
			DutyPercent:        float64(i * 9),
		})
	}
	_, err = curve.Validate(points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_too_many_points")
}

func TestAddPoint(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	updated, err := c.AddPoint(curve.Point{TemperatureCelsius: 45, DutyPercent: 25})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Len())
	assert.Equal(t, 6, c.Len(), "original curve must be unchanged")

	points := updated.Points()
	assert.Equal(t, 45.0, points[1].TemperatureCelsius)
}

func TestAddPointRejectsEleventh(t *testing.T) {
	points := make([]curve.Point, 0, curve.MaxPoints)
	for i := 0; i < curve.MaxPoints; i++ {
		points = append(points, curve.Point{
			TemperatureCelsius: float64(30 + i*5),
			DutyPercent:        float64(i * 10),
		})
	}
	c, err := curve.Validate(points)
	require.NoError(t, err)

	_, err = c.AddPoint(curve.Point{TemperatureCelsius: 100, DutyPercent: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_too_many_points")
}

func TestRemovePoint(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	updated, err := c.RemovePoint(0)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Len())
	assert.Equal(t, 50.0, updated.Points()[0].TemperatureCelsius)
}

func TestRemovePointRejectsBelowMinimum(t *testing.T) {
	c, err := curve.Validate([]curve.Point{
		{TemperatureCelsius: 40, DutyPercent: 20},
		{TemperatureCelsius: 80, DutyPercent: 80},
	})
	require.NoError(t, err)

	_, err = c.RemovePoint(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curve_too_few_points")
}

func TestRemovePointRejectsBadIndex(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	_, err = c.RemovePoint(-1)
	require.Error(t, err)
	_, err = c.RemovePoint(6)
	require.Error(t, err)
}

func TestInterpolateMidpoint(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	// Halfway between (60,40) and (70,60).
	assert.InDelta(t, 50.0, c.Interpolate(65), 1e-9)
}

func TestInterpolateClampsBelowFirstKnot(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	assert.Equal(t, 20.0, c.Interpolate(35))
	assert.Equal(t, 20.0, c.Interpolate(-10))
}

func TestInterpolateClampsAboveLastKnot(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	assert.Equal(t, 100.0, c.Interpolate(95))
	assert.Equal(t, 100.0, c.Interpolate(140))
}

func TestInterpolateExactAtKnots(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	for _, p := range c.Points() {
		assert.InDelta(t, p.DutyPercent, c.Interpolate(p.TemperatureCelsius), 1e-9,
			"expected exact duty at %v°C", p.TemperatureCelsius)
	}
}

func TestInterpolateMonotonic(t *testing.T) {
	c, err := curve.Validate(testPoints())
	require.NoError(t, err)

	previous := c.Interpolate(30)
	for temp := 30.5; temp <= 100; temp += 0.5 {
		duty := c.Interpolate(temp)
		assert.GreaterOrEqual(t, duty, previous, "duty decreased at %v°C", temp)
		previous = duty
	}
}

func TestDefaultCurve(t *testing.T) {
	c := curve.Default()
	require.True(t, c.IsValid())
	assert.Equal(t, 6, c.Len())
	assert.InDelta(t, 50.0, c.Interpolate(65), 1e-9)
}
