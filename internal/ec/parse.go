package ec

import (
	"bufio"
	"strconv"
	"strings"

	"codeberg.org/mutker/framectl/internal/errors"
)

// parseThermal extracts temperatures and fan RPMs from the tool's thermal
// report. Lines look like:
//
//	F75303_CPU: 58 C
//	APU: 64 C
//	Fan Speed: 2840 RPM
//
// Sensors the EC reports as absent or errored are omitted by the tool and
// simply don't appear. At least one temperature is required.
func parseThermal(output string) (Sample, error) {
	var (
		sample     Sample
		hasTemp    bool
		maxTempC   float64
		scanner    = bufio.NewScanner(strings.NewReader(output))
		errFactory = errors.New()
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		_, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch {
		case strings.HasSuffix(value, " C"):
			temp, err := strconv.ParseFloat(strings.TrimSuffix(value, " C"), 64)
			if err != nil {
				continue
			}
			if !hasTemp || temp > maxTempC {
				maxTempC = temp
			}
			hasTemp = true
		case strings.HasSuffix(value, " RPM"):
			rpm, err := strconv.Atoi(strings.TrimSuffix(value, " RPM"))
			if err != nil {
				continue
			}
			sample.FanRPMs = append(sample.FanRPMs, rpm)
		}
	}

	if !hasTemp {
		return Sample{}, errFactory.WithMessage(ErrParseFailed, "no temperature sensors in thermal output")
	}

	sample.MaxCPUTempCelsius = maxTempC

	return sample, nil
}
