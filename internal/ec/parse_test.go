package ec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThermal(t *testing.T) {
	output := `  F75303_Local: 41 C
  F75303_CPU: 58 C
  F75303_DDR: 39 C
  APU: 64 C
  Fan Speed: 2840 RPM
`
	sample, err := parseThermal(output)
	require.NoError(t, err)

	assert.Equal(t, 64.0, sample.MaxCPUTempCelsius)
	assert.Equal(t, []int{2840}, sample.FanRPMs)
}

func TestParseThermalMultipleFans(t *testing.T) {
	output := `APU: 52 C
Fan Speed: 1200 RPM
Fan Speed: 0 RPM
`
	sample, err := parseThermal(output)
	require.NoError(t, err)

	assert.Equal(t, 52.0, sample.MaxCPUTempCelsius)
	assert.Equal(t, []int{1200, 0}, sample.FanRPMs)
}

func TestParseThermalSkipsUnparsableLines(t *testing.T) {
	output := `EC versions mismatch
APU: 47 C
garbage: not-a-number C
`
	sample, err := parseThermal(output)
	require.NoError(t, err)
	assert.Equal(t, 47.0, sample.MaxCPUTempCelsius)
}

func TestParseThermalNoSensors(t *testing.T) {
	_, err := parseThermal("Fan Speed: 1000 RPM\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no temperature sensors")
}

func TestNewToolRequiresCommand(t *testing.T) {
	_, err := NewTool("")
	require.Error(t, err)

	tool, err := NewTool("/usr/bin/framework_tool")
	require.NoError(t, err)
	assert.NotNil(t, tool)
}
