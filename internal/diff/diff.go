// Package diff computes ordered field-level changes between two snapshots of
// an untyped record. The output feeds the audit trail: each change becomes one
// audit row.
package diff

import (
	"reflect"
	"sort"
)

// FieldChange is one field-level delta between two snapshots.
//
// Old and New hold arbitrary scalar/JSON values. OldDefined distinguishes a
// key that was absent from the old snapshot (false) from a key explicitly set
// to null (true with Old == nil); the audit store persists the former as SQL
// NULL-without-value semantics and the latter as JSON null.
type FieldChange struct {
	Field      string
	Old        any
	New        any
	OldDefined bool
}

// ByKeys compares two snapshots and returns one change per differing key.
//
// Only keys present in the new snapshot are considered: keys removed from new
// versus old are never reported. Field names are prefixed with the given
// namespace ("profile.hasW2"). Keys are visited in sorted order so output is
// deterministic across calls.
func ByKeys(oldSnapshot, newSnapshot map[string]any, namespace string) []FieldChange {
	keys := make([]string, 0, len(newSnapshot))
	for key := range newSnapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, key := range keys {
		newValue := newSnapshot[key]
		oldValue, oldDefined := oldSnapshot[key]

		if oldDefined && valuesEqual(oldValue, newValue) {
			continue
		}

		changes = append(changes, FieldChange{
			Field:      qualify(namespace, key),
			Old:        oldValue,
			New:        newValue,
			OldDefined: oldDefined,
		})
	}

	return changes
}

// SingleField compares one scalar attribute between two snapshots. A change is
// emitted only when the new snapshot defines the field and its value differs:
// an absent new value means "not updating this field", not "clear it".
func SingleField(oldSnapshot, newSnapshot map[string]any, field string) []FieldChange {
	newValue, newDefined := newSnapshot[field]
	if !newDefined {
		return nil
	}

	oldValue, oldDefined := oldSnapshot[field]
	if oldDefined && valuesEqual(oldValue, newValue) {
		return nil
	}

	return []FieldChange{{
		Field:      field,
		Old:        oldValue,
		New:        newValue,
		OldDefined: oldDefined,
	}}
}

// qualify prefixes a key with the snapshot namespace.
func qualify(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "." + key
}

// valuesEqual compares two snapshot values. Comparable scalars use ==;
// composite values (nested maps or lists from decoded JSON) fall back to
// deep equality.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta.Comparable() && tb.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}
