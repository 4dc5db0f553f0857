// Package validate contains the field validators applied to form input
// before any service call. Each validator takes a raw value plus a
// human-readable field label, returns the normalized value, and fails with
// an apperror.ValidationError whose message is the exact string surfaced to
// the user. These messages are part of the external contract and are
// covered literally by tests.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/reviewboard-go/apperror"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// NonEmpty checks that value is a non-empty string after trimming and
// returns the trimmed value.
func NonEmpty(value, label string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperror.NewValidationError(fmt.Sprintf("%s must be a non-empty string", label), nil)
	}
	return trimmed, nil
}

// Email checks that value matches a standard email-address pattern. Case is
// preserved; canonicalization is the account store's concern.
func Email(value string) (string, error) {
	if !emailPattern.MatchString(value) {
		return "", apperror.NewValidationError("Email is not a valid email address", nil)
	}
	return value, nil
}

// Present checks only that value is non-empty. Used for raw password fields
// before the policy check, so that whitespace-only passwords are not
// silently trimmed away.
func Present(value, label string) error {
	if value == "" {
		return apperror.NewValidationError(fmt.Sprintf("%s is required", label), nil)
	}
	return nil
}

// Password checks the password policy: a configurable minimum length.
func Password(value string, minLength int) error {
	if len(value) < minLength {
		return apperror.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", minLength), nil)
	}
	return nil
}

// Number parses an integer from the raw value.
func Number(value, label string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("%s must be a number", label), nil)
	}
	return n, nil
}

// Age checks that n falls within the accepted range. Both bounds are
// inclusive.
func Age(n, min, max int) error {
	if n < min || n > max {
		return apperror.NewValidationError(fmt.Sprintf("Age must be between %d and %d", min, max), nil)
	}
	return nil
}

// Rating checks that n falls within the accepted range. Both bounds are
// inclusive.
func Rating(n, min, max int) error {
	if n < min || n > max {
		return apperror.NewValidationError(fmt.Sprintf("Rating must be between %d and %d", min, max), nil)
	}
	return nil
}
