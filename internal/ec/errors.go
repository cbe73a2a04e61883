package ec

import "codeberg.org/mutker/framectl/internal/errors"

const (
	// Telemetry Errors
	ErrUnavailable = errors.ErrorCode("ec_tool_unavailable")
	ErrParseFailed = errors.ErrorCode("ec_parse_failed")

	// Actuation Errors
	ErrToolMissing      = errors.ErrorCode("ec_tool_missing")
	ErrPermissionDenied = errors.ErrorCode("ec_permission_denied")
	ErrNonZeroExit      = errors.ErrorCode("ec_nonzero_exit")

	// Configuration Errors
	ErrNoCommand = errors.ErrorCode("ec_no_command")
)
