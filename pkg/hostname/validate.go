package hostname

import "errors"

var (
	ErrEmptyDomain   = errors.New("hostname: empty domain")
	ErrDomainTooLong = errors.New("hostname: domain exceeds 253 characters")
	ErrInvalidDomain = errors.New("hostname: not a valid DNS hostname")
)

// ValidateDomain performs a syntactic hostname check on a candidate custom
// domain: at least two labels, ASCII letters/digits/hyphens per label with
// alphanumeric ends, labels up to 63 characters, and a TLD of at least two
// letters. It does not resolve anything.
func ValidateDomain(domain string) error {
	domain = Normalize(domain)
	if domain == "" {
		return ErrEmptyDomain
	}
	if len(domain) > 253 {
		return ErrDomainTooLong
	}

	labels := splitLabels(domain)
	if len(labels) < 2 {
		return ErrInvalidDomain
	}
	for _, label := range labels {
		if !validLabel(label) {
			return ErrInvalidDomain
		}
	}
	if !validTLD(labels[len(labels)-1]) {
		return ErrInvalidDomain
	}
	return nil
}

// IsValidDomain reports whether domain passes ValidateDomain.
func IsValidDomain(domain string) bool {
	return ValidateDomain(domain) == nil
}

func splitLabels(domain string) []string {
	var labels []string
	start := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			labels = append(labels, domain[start:i])
			start = i + 1
		}
	}
	return labels
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-':
			if i == 0 || i == len(label)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// validTLD requires at least two characters, all letters.
func validTLD(label string) bool {
	if len(label) < 2 {
		return false
	}
	for i := 0; i < len(label); i++ {
		if label[i] < 'a' || label[i] > 'z' {
			return false
		}
	}
	return true
}
