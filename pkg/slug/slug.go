package slug

import (
	"errors"
	"regexp"
)

const (
	// MinLength is the minimum slug length in characters.
	MinLength = 3
	// MaxLength is the maximum slug length, matching the DNS label limit.
	MaxLength = 63
)

var (
	ErrTooShort      = errors.New("slug: shorter than 3 characters")
	ErrTooLong       = errors.New("slug: longer than 63 characters")
	ErrInvalidFormat = errors.New("slug: must be lowercase alphanumeric with inner hyphens")
)

// Slugs are DNS labels: lowercase alphanumeric with hyphens, alnum on both ends.
var slugRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// Validate checks that s is a well-formed tenant slug.
// Returns nil on success or one of the package sentinel errors.
func Validate(s string) error {
	if len(s) < MinLength {
		return ErrTooShort
	}
	if len(s) > MaxLength {
		return ErrTooLong
	}
	if !slugRe.MatchString(s) {
		return ErrInvalidFormat
	}
	return nil
}

// IsValid reports whether s is a well-formed tenant slug.
func IsValid(s string) bool {
	return Validate(s) == nil
}
