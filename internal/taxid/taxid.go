// Package taxid implements format validation, masking, and canonical
// formatting for taxpayer identification numbers (SSN-style nine-digit
// identifiers). Values handled here are regulated identifiers: they exist only
// transiently in memory and must never be logged unmasked.
package taxid

import (
	"strings"
)

// maskedPlaceholder is returned when too few digits remain to reveal a suffix.
const maskedPlaceholder = "***-**-****"

// Validate reports whether raw is a well-formed taxpayer identification number.
//
// Non-digit characters are stripped first, so both "123456789" and
// "123-45-6789" are accepted. The value must be exactly nine digits with:
//   - area (digits 1-3) not 000, not 666, and not starting with 9
//   - group (digits 4-5) not 00
//   - serial (digits 6-9) not 0000
func Validate(raw string) bool {
	digits := extractDigits(raw)
	if len(digits) != 9 {
		return false
	}

	area := digits[:3]
	group := digits[3:5]
	serial := digits[5:]

	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	if group == "00" {
		return false
	}
	if serial == "0000" {
		return false
	}

	return true
}

// Mask returns a display-safe form of raw that reveals at most the last four
// digits ("***-**-6789"). If fewer than four digits remain after stripping,
// the fully masked placeholder is returned.
func Mask(raw string) string {
	digits := extractDigits(raw)
	if len(digits) < 4 {
		return maskedPlaceholder
	}

	return "***-**-" + digits[len(digits)-4:]
}

// Canonicalize returns raw in the dashed canonical form "AAA-GG-SSSS".
// If the value does not contain exactly nine digits, the input is returned
// unchanged; callers are expected to Validate first.
func Canonicalize(raw string) string {
	digits := extractDigits(raw)
	if len(digits) != 9 {
		return raw
	}

	return digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
}

// extractDigits strips every non-digit character from s.
func extractDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
