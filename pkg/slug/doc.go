// Package slug validates tenant slugs used as subdomain labels.
//
// A slug is the short identifier a tenant picks for its subdomain
// (my-guesthouse.platform.io). Because slugs become DNS labels, the rules
// follow the DNS label grammar: lowercase alphanumeric characters and
// hyphens, 3 to 63 characters, starting and ending with an alphanumeric
// character.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/tenantgate/pkg/slug"
//
//	if err := slug.Validate("my-guesthouse"); err != nil {
//		// reject the slug
//	}
//
// Validation failures are reported as sentinel errors so callers can map
// them to user-facing messages:
//
//   - ErrTooShort: fewer than 3 characters
//   - ErrTooLong: more than 63 characters
//   - ErrInvalidFormat: uppercase, disallowed characters, or a leading or
//     trailing hyphen
//
// Reservation checks (www, api, admin, ...) are a platform concern and live
// in the hostname classifier, not here.
package slug
