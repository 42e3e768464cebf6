package dto

import (
	"github.com/allisson/fieldvault/internal/diff"
)

// RecordResponse wraps a processed record in API responses.
type RecordResponse struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Record     map[string]any `json:"record"`
}

// FieldChangeResponse represents one detected field change in API responses.
// OldDefined false means the field was absent from the previous snapshot,
// which is distinct from an explicit null old value.
type FieldChangeResponse struct {
	Field      string `json:"field"`
	Old        any    `json:"old"`
	OldDefined bool   `json:"old_defined"`
	New        any    `json:"new"`
}

// ChangesResponse represents the list of detected field changes.
type ChangesResponse struct {
	Data []FieldChangeResponse `json:"data"`
}

// MapChangesToResponse converts detected field changes to an API response.
func MapChangesToResponse(changes []diff.FieldChange) ChangesResponse {
	data := make([]FieldChangeResponse, 0, len(changes))
	for _, change := range changes {
		data = append(data, FieldChangeResponse{
			Field:      change.Field,
			Old:        change.Old,
			OldDefined: change.OldDefined,
			New:        change.New,
		})
	}
	return ChangesResponse{Data: data}
}
