package curve

// Interpolate maps a temperature to a fan duty percentage. Temperatures at
// or below the first knot clamp to its duty, at or above the last knot to
// the last duty, and anything in between is linearly interpolated over the
// surrounding pair. Total over validated curves; never fails.
func (c Curve) Interpolate(temperatureCelsius float64) float64 {
	first := c.points[0]
	last := c.points[len(c.points)-1]

	if temperatureCelsius <= first.TemperatureCelsius {
		return first.DutyPercent
	}
	if temperatureCelsius >= last.TemperatureCelsius {
		return last.DutyPercent
	}

	for i := 0; i < len(c.points)-1; i++ {
		lower, upper := c.points[i], c.points[i+1]
		if temperatureCelsius < lower.TemperatureCelsius || temperatureCelsius > upper.TemperatureCelsius {
			continue
		}

		// Unreachable for validated curves; avoids dividing by zero.
		if upper.TemperatureCelsius == lower.TemperatureCelsius {
			return lower.DutyPercent
		}

		ratio := (temperatureCelsius - lower.TemperatureCelsius) /
			(upper.TemperatureCelsius - lower.TemperatureCelsius)

		return lower.DutyPercent + (upper.DutyPercent-lower.DutyPercent)*ratio
	}

	return last.DutyPercent
}
