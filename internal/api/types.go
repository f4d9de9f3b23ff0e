package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SubItem describes one weighted component of a module.
type SubItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name,omitempty"`
	Status         string  `json:"status"`
	EstimatedHours float64 `json:"estimatedHours,omitempty"`
}

// Module is a reconciled module in a transport-friendly format.
type Module struct {
	ID               string    `json:"id"`
	Name             string    `json:"name,omitempty"`
	Category         string    `json:"category,omitempty"`
	Status           string    `json:"status"`
	Priority         string    `json:"priority,omitempty"`
	EstimatedHours   float64   `json:"estimatedHours"`
	ExecutionOrder   int       `json:"executionOrder,omitempty"`
	SubItems         []SubItem `json:"subItems,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	UpdatedAt        string    `json:"updatedAt,omitempty"`
	EffectivePercent int       `json:"effectivePercent"`
}

// ModulesEnvelope wraps a module collection.
type ModulesEnvelope struct {
	Modules []Module `json:"modules"`
}

// RawEnvelope wraps undecoded module records.
type RawEnvelope struct {
	Modules []json.RawMessage `json:"modules"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ResetResponse reports how many records a reset removed.
type ResetResponse struct {
	Removed int64 `json:"removed"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Records int    `json:"records"`
}

// Attachment is one stored file.
type Attachment struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}

// Attachments lists a module's files by category. Every category key is
// present even when empty.
type Attachments struct {
	ID    string                  `json:"id"`
	Files map[string][]Attachment `json:"files"`
}
