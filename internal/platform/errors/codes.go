// Package errors provides structured error handling with localized messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Argument errors
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeFlipBiasOutOfRange Code = "FLIP_BIAS_OUT_OF_RANGE"
	CodeRollInvalidSpan    Code = "ROLL_INVALID_SPAN"
	CodeRollAmbiguousRange Code = "ROLL_AMBIGUOUS_RANGE"
	CodeCountOutOfRange    Code = "COUNT_OUT_OF_RANGE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Replay errors
	CodeReplayMismatch Code = "REPLAY_MISMATCH"
)

// IsInvalidArgument reports whether the code describes bad caller input.
func (c Code) IsInvalidArgument() bool {
	switch c {
	case CodeInvalidArgument,
		CodeFlipBiasOutOfRange,
		CodeRollInvalidSpan,
		CodeRollAmbiguousRange,
		CodeCountOutOfRange:
		return true
	default:
		return false
	}
}
