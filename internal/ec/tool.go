package ec

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"codeberg.org/mutker/framectl/internal/errors"
	"codeberg.org/mutker/framectl/internal/logger"
)

const defaultCallTimeout = 10 * time.Second

// Tool drives the Framework EC through an external command-line utility
// (framework_tool or compatible). The command path comes from
// configuration; no lookup beyond what the OS does with the given path.
// Every invocation carries a bounded timeout so a wedged tool cannot stall
// the control loop or shutdown.
type Tool struct {
	command string
	timeout time.Duration
}

// NewTool returns a Tool that invokes the given command.
func NewTool(command string) (*Tool, error) {
	if command == "" {
		return nil, errors.New().New(ErrNoCommand)
	}

	return &Tool{
		command: command,
		timeout: defaultCallTimeout,
	}, nil
}

// Read implements TelemetrySource by running the tool's thermal report.
func (t *Tool) Read(ctx context.Context) (Sample, error) {
	output, err := t.run(ctx, "--thermal")
	if err != nil {
		return Sample{}, err
	}

	sample, err := parseThermal(output)
	if err != nil {
		return Sample{}, err
	}
	sample.Timestamp = time.Now()

	return sample, nil
}

// SetDuty implements FanActuator.
func (t *Tool) SetDuty(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return errors.New().WithData(errors.ErrInvalidArgument, percent)
	}

	_, err := t.run(ctx, "--fansetduty", strconv.Itoa(percent))
	if err == nil {
		logger.Debug().Int("duty", percent).Msg("Set fan duty")
	}

	return err
}

// EnableAuto implements FanActuator.
func (t *Tool) EnableAuto(ctx context.Context) error {
	_, err := t.run(ctx, "--autofanctrl")
	if err == nil {
		logger.Debug().Msg("Auto fan control: enabled")
	}

	return err
}

// SetChargeLimit implements ChargeLimiter.
func (t *Tool) SetChargeLimit(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return errors.New().WithData(errors.ErrInvalidArgument, percent)
	}

	_, err := t.run(ctx, "--charge-limit", strconv.Itoa(percent))
	if err == nil {
		logger.Debug().Int("limit", percent).Msg("Set battery charge limit")
	}

	return err
}

func (t *Tool) run(ctx context.Context, args ...string) (string, error) {
	errFactory := errors.New()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, t.command, args...).CombinedOutput()
	if err == nil {
		return string(output), nil
	}

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return "", errFactory.WithData(ErrToolMissing, t.command)
	case os.IsPermission(err):
		return "", errFactory.WithData(ErrPermissionDenied, t.command)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "", errFactory.Wrap(errors.ErrTimeout, ctx.Err())
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errFactory.WithData(ErrNonZeroExit, exitErr.ExitCode())
		}
		return "", errFactory.Wrap(ErrUnavailable, err)
	}
}
