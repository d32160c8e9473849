package errors

import (
	"strings"
	"unicode"
)

// maxLocationLength bounds batch-file lines and CLI locations.
const maxLocationLength = 2048

// ValidateLocation checks a manifest location (URL or local path) before it is
// classified. Empty strings and strings carrying control characters are rejected.
func ValidateLocation(location string) error {
	if location == "" {
		return New(ErrCodeInvalidInput, "location cannot be empty")
	}
	if len(location) > maxLocationLength {
		return New(ErrCodeInvalidInput, "location too long (max %d characters)", maxLocationLength)
	}
	for _, r := range location {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "location contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Schemes are case-insensitive.
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
