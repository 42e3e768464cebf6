package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

var (
	// ErrInvalidSensitiveValue indicates a sensitive field holds a malformed
	// taxpayer identification number. The error surfaces before any field is
	// mutated, so a rejected record is returned to the caller unchanged.
	ErrInvalidSensitiveValue = errors.Wrap(errors.ErrInvalidInput, "invalid taxpayer identification number")
)
