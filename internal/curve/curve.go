package curve

import (
	"math"
	"sort"

	"codeberg.org/mutker/framectl/internal/errors"
)

const (
	// MinPoints and MaxPoints bound the number of knots a curve may hold.
	MinPoints = 2
	MaxPoints = 10

	// Temperatures outside this window are rejected as instrument noise.
	minTemperature = -20.0
	maxTemperature = 150.0

	minDuty = 0.0
	maxDuty = 100.0

	// Smallest temperature resolution the EC reports. Two knots landing on
	// the same whole degree would make the segment between them undefined.
	temperatureResolution = 1.0
)

// Point is a single knot of the piecewise-linear fan curve.
type Point struct {
	TemperatureCelsius float64
	DutyPercent        float64
}

// Curve is a validated, immutable sequence of points sorted ascending by
// temperature. The zero value is invalid; construct one through Validate.
type Curve struct {
	points []Point
}

// Default returns the factory fan curve.
func Default() Curve {
	c, err := Validate([]Point{
		{TemperatureCelsius: 40, DutyPercent: 20},
		{TemperatureCelsius: 50, DutyPercent: 30},
		{TemperatureCelsius: 60, DutyPercent: 40},
		{TemperatureCelsius: 70, DutyPercent: 60},
		{TemperatureCelsius: 80, DutyPercent: 80},
		{TemperatureCelsius: 90, DutyPercent: 100},
	})
	if err != nil {
		panic(err) // static input, cannot fail
	}

	return c
}

// Validate checks the given points and returns them as a Curve sorted
// ascending by temperature. The input slice is not modified.
func Validate(points []Point) (Curve, error) {
	errFactory := errors.New()

	if len(points) < MinPoints {
		return Curve{}, errFactory.WithData(ErrTooFewPoints, len(points))
	}
	if len(points) > MaxPoints {
		return Curve{}, errFactory.WithData(ErrTooManyPoints, len(points))
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TemperatureCelsius < sorted[j].TemperatureCelsius
	})

	for i, p := range sorted {
		if p.DutyPercent < minDuty || p.DutyPercent > maxDuty {
			return Curve{}, errFactory.WithData(ErrOutOfRange, p)
		}
		if p.TemperatureCelsius < minTemperature || p.TemperatureCelsius > maxTemperature {
			return Curve{}, errFactory.WithData(ErrOutOfRange, p)
		}
		if i > 0 && sameTemperature(sorted[i-1], p) {
			return Curve{}, errFactory.WithData(ErrDuplicateTemperature, p.TemperatureCelsius)
		}
	}

	return Curve{points: sorted}, nil
}

// AddPoint returns a new curve with p inserted.
func (c Curve) AddPoint(p Point) (Curve, error) {
	if len(c.points) >= MaxPoints {
		return Curve{}, errors.New().WithData(ErrTooManyPoints, len(c.points)+1)
	}

	points := make([]Point, 0, len(c.points)+1)
	points = append(points, c.points...)
	points = append(points, p)

	return Validate(points)
}

// RemovePoint returns a new curve with the point at index removed.
func (c Curve) RemovePoint(index int) (Curve, error) {
	errFactory := errors.New()

	if index < 0 || index >= len(c.points) {
		return Curve{}, errFactory.WithData(ErrIndexOutOfRange, index)
	}
	if len(c.points) <= MinPoints {
		return Curve{}, errFactory.WithData(ErrTooFewPoints, len(c.points)-1)
	}

	points := make([]Point, 0, len(c.points)-1)
	points = append(points, c.points[:index]...)
	points = append(points, c.points[index+1:]...)

	return Validate(points)
}

// Points returns a copy of the curve's knots.
func (c Curve) Points() []Point {
	points := make([]Point, len(c.points))
	copy(points, c.points)

	return points
}

// Len returns the number of knots.
func (c Curve) Len() int {
	return len(c.points)
}

// IsValid reports whether the curve was built through Validate.
func (c Curve) IsValid() bool {
	return len(c.points) >= MinPoints
}

func sameTemperature(a, b Point) bool {
	return math.Round(a.TemperatureCelsius/temperatureResolution) ==
		math.Round(b.TemperatureCelsius/temperatureResolution)
}
