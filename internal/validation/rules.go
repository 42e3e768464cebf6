// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/taxid"
)

var (
	// hexKeyRegex matches a 256-bit key encoded as 64 hexadecimal digits.
	hexKeyRegex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

	// entityTypeRegex keeps entity types to a safe identifier alphabet.
	entityTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// HexKey validates that a string is a 64-character hexadecimal encryption key.
var HexKey = validation.NewStringRuleWithError(
	func(s string) bool {
		return hexKeyRegex.MatchString(s)
	},
	validation.NewError("validation_hex_key", "must be 64 hexadecimal characters"),
)

// EntityType validates snake_case entity type identifiers such as "tax_return".
var EntityType = validation.NewStringRuleWithError(
	func(s string) bool {
		return entityTypeRegex.MatchString(s)
	},
	validation.NewError("validation_entity_type", "must be a lowercase identifier"),
)

// TaxID validates a taxpayer identification number against issuance rules.
var TaxID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_tax_id_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !taxid.Validate(s) {
		return validation.NewError("validation_tax_id", "must be a valid taxpayer identification number")
	}
	return nil
})

// RFC3339Time validates that a string parses as an RFC 3339 timestamp.
var RFC3339Time = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_rfc3339_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return validation.NewError("validation_rfc3339", "must be an RFC 3339 timestamp")
	}
	return nil
})

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
