// Package dto contains request and response types for the records HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"
)

// EncryptRecordRequest is the payload for record encryption and decryption
// endpoints. The record is the untyped entity snapshot to walk.
type EncryptRecordRequest struct {
	Record map[string]any `json:"record"`
}

// Validate validates the encrypt/decrypt request.
func (r EncryptRecordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Record, validation.Required),
	)
}

// ChangesRequest is the payload for the change-tracking endpoint. Old and New
// are flat snapshots of the same entity before and after an update; Namespace
// optionally prefixes every recorded field name (e.g. "spouse").
type ChangesRequest struct {
	Old       map[string]any `json:"old"`
	New       map[string]any `json:"new"`
	Namespace string         `json:"namespace"`
}

// Validate validates the changes request. Old may be empty (a brand-new
// entity has no previous snapshot) but New is required.
func (r ChangesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.New, validation.Required),
	)
}
