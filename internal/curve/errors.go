package curve

import "codeberg.org/mutker/framectl/internal/errors"

const (
	// Validation Errors
	ErrDuplicateTemperature = errors.ErrorCode("curve_duplicate_temperature")
	ErrOutOfRange           = errors.ErrorCode("curve_out_of_range")
	ErrTooFewPoints         = errors.ErrorCode("curve_too_few_points")
	ErrTooManyPoints        = errors.ErrorCode("curve_too_many_points")
	ErrIndexOutOfRange      = errors.ErrorCode("curve_index_out_of_range")
)
