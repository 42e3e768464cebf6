// Package domain defines the typed contract for traversing untyped tax
// records and locating sensitive fields by name convention.
package domain

import (
	"strings"
)

// Record is an untyped mapping from field name to value, as decoded from a
// JSON document. Values are scalars, nested lists, or nested maps.
type Record map[string]any

// Field naming conventions recognized by the classifier.
const (
	// SensitiveFieldMarker identifies fields holding a taxpayer
	// identification number. Matching is a case-insensitive substring test,
	// so "ssn", "spouseSSN", and "ssnLast4" all qualify.
	SensitiveFieldMarker = "ssn"

	// DependentsField is the one recognized nested shape: an array of
	// sub-records, each of which may contain its own sensitive field.
	DependentsField = "dependents"
)

// FieldKind classifies how the field walker treats a record field.
type FieldKind int

const (
	// FieldScalar is any field without special handling; the walker passes
	// it through untouched.
	FieldScalar FieldKind = iota

	// FieldSensitive is a field holding a regulated identifier that must be
	// encrypted at rest.
	FieldSensitive

	// FieldNestedList is the dependents array of sub-records.
	FieldNestedList
)

// Classify determines the field kind from the key name and value shape.
// A key matching the sensitive marker wins over the nested-list shape.
func Classify(key string, value any) FieldKind {
	if strings.Contains(strings.ToLower(key), SensitiveFieldMarker) {
		return FieldSensitive
	}

	if key == DependentsField {
		if _, ok := value.([]any); ok {
			return FieldNestedList
		}
	}

	return FieldScalar
}

// Clone returns a copy of the record with the dependents list and its
// sub-records copied as well, so the walker can replace field values without
// mutating the caller's map.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	clone := make(Record, len(r))
	for key, value := range r {
		if Classify(key, value) == FieldNestedList {
			list := value.([]any)
			copied := make([]any, len(list))
			for i, element := range list {
				if sub, ok := element.(map[string]any); ok {
					subCopy := make(map[string]any, len(sub))
					for k, v := range sub {
						subCopy[k] = v
					}
					copied[i] = subCopy
				} else {
					copied[i] = element
				}
			}
			clone[key] = copied
			continue
		}
		clone[key] = value
	}

	return clone
}
