package novault

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSecretLength   = errors.New("invalid master secret length")
	ErrInvalidFormatTemplate = errors.New("invalid format template")
	ErrInvalidSiteName       = errors.New("invalid site name")
	ErrInvalidSalt           = errors.New("invalid site salt")
	ErrDuplicateSalt         = fmt.Errorf("%w: already used by another site", ErrInvalidSalt)
	ErrSiteExists            = errors.New("site already exists")
	ErrSiteNotFound          = errors.New("site not found")
	ErrCheckFailed           = errors.New("incorrect master secret, the stored checkhash does not match")
	ErrInvalidCostParameters = errors.New("invalid cost parameters")
)

// SecretLengthError reports a master secret outside the LengthPolicy bounds.
type SecretLengthError struct {
	Len, Min, Max int
}

func (e *SecretLengthError) Error() string {
	return fmt.Sprintf("%s: must be between %d and %d bytes, found %d. A long phrase that's easy to remember is better than a short one with lots of symbols",
		ErrInvalidSecretLength, e.Min, e.Max, e.Len)
}

func (e *SecretLengthError) Unwrap() error { return ErrInvalidSecretLength }

// FormatError identifies a template that failed rendering or the entropy check.
type FormatError struct {
	Template string
	Reason   string
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%q is an invalid format: it must contain {p} and use at least 4 characters of the password", e.Template)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormatTemplate }
