package kernel

import (
	"math/rand/v2"

	"dispatch/internal/pkg/errs"
)

const (
	// MinVerificationCode and MaxVerificationCode bound the 6-digit code space.
	MinVerificationCode int = 0
	MaxVerificationCode int = 999999
)

// VerificationCode is the 6-digit number a courier must present to confirm
// a specific delivery. Codes are stored and compared as integers everywhere;
// zero-padding is a presentation concern only.
type VerificationCode int

// NewVerificationCode creates a code from its integer value.
// Returns an error if the value is outside the 6-digit range.
func NewVerificationCode(value int) (VerificationCode, error) {
	if value < MinVerificationCode || value > MaxVerificationCode {
		return 0, errs.NewValueIsOutOfRangeError("verification code", value, MinVerificationCode, MaxVerificationCode)
	}
	return VerificationCode(value), nil
}

// GenerateVerificationCode draws a uniformly random 6-digit code.
func GenerateVerificationCode() VerificationCode {
	return VerificationCode(rand.IntN(MaxVerificationCode + 1)) //nolint:gosec // it's ok
}

// Int returns the code's integer value.
func (c VerificationCode) Int() int {
	return int(c)
}

// Matches compares the code against a submitted integer value.
func (c VerificationCode) Matches(submitted int) bool {
	return int(c) == submitted
}
