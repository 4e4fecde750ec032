package queries

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetCourierByPhoneQueryIsNotConstructed = errors.New(
	"GetCourierByPhoneQuery must be created via NewGetCourierByPhoneQuery constructor",
)

// GetCourierByPhoneQuery finds a courier by a phone number fragment. The
// fragment is normalized to digits and matched against the end of the
// stored number, so a local number finds a courier stored with a country
// prefix.
type GetCourierByPhoneQuery struct { //nolint:recvcheck //using for validation
	digits string

	guard guard.ConstructorGuard
}

// NewGetCourierByPhoneQuery creates a query for the given phone fragment.
// Returns an error when the fragment contains no digits.
func NewGetCourierByPhoneQuery(phone string) (GetCourierByPhoneQuery, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return GetCourierByPhoneQuery{}, errs.NewValueIsRequiredError("phone")
	}

	return GetCourierByPhoneQuery{
		digits: digits.String(),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCourierByPhoneQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierByPhoneQueryIsNotConstructed)
}

// Digits returns the normalized digits of the phone fragment.
func (q GetCourierByPhoneQuery) Digits() string {
	return q.digits
}
