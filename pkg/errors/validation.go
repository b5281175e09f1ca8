package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateNetlistFilename validates a netlist filename supplied by a client.
// It ensures the filename is a simple basename without path components; the
// name is only used to pick a parser from its extension.
func ValidateNetlistFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "netlist filename cannot be empty")
	}

	if len(filename) > 256 {
		return New(ErrCodeInvalidInput, "netlist filename too long (max 256 characters)")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "netlist filename contains invalid control characters")
		}
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "netlist filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "netlist filename cannot be a hidden file")
	}

	return nil
}

// ValidatePrecision checks a rounding precision in decimal places.
// Negative values disable rounding and are accepted.
func ValidatePrecision(places int) error {
	const maxPlaces = 15
	if places > maxPlaces {
		return New(ErrCodeInvalidInput, "precision %d exceeds %d decimal places", places, maxPlaces)
	}
	return nil
}

// ValidateFinite rejects NaN and infinite component values.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidFormat, "%s must be finite, got %v", field, v)
	}
	return nil
}
