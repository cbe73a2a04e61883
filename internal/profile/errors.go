package profile

import "codeberg.org/mutker/framectl/internal/errors"

const (
	// Validation Errors
	ErrInvalidMode        = errors.ErrorCode("profile_invalid_mode")
	ErrInvalidManualDuty  = errors.ErrorCode("profile_invalid_manual_duty")
	ErrInvalidChargeLimit = errors.ErrorCode("profile_invalid_charge_limit")
	ErrInvalidPowerLimit  = errors.ErrorCode("profile_invalid_power_limit")

	// Persistence Errors
	ErrPersistFailed = errors.ErrorCode("profile_persist_failed")
	ErrLoadFailed    = errors.ErrorCode("profile_load_failed")

	// Watch Errors
	ErrWatchFailed = errors.ErrorCode("profile_watch_failed")
)
