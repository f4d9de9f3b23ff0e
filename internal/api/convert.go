package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"roadmap/internal/attachments"
	"roadmap/internal/catalog"
	"roadmap/internal/derive"
)

// ErrMissingID is returned when a record carries no usable id.
var ErrMissingID = errors.New("record has no id")

// FromModule converts a reconciled module to its API representation.
func FromModule(m catalog.Module) Module {
	dto := Module{
		ID:               m.ID,
		Name:             m.Name,
		Category:         string(m.Category),
		Status:           string(m.Status),
		Priority:         string(m.Priority),
		EstimatedHours:   m.EstimatedHours,
		ExecutionOrder:   m.ExecutionOrder,
		Notes:            m.Notes,
		EffectivePercent: derive.EffectivePercent(m),
	}
	if len(m.SubItems) > 0 {
		dto.SubItems = make([]SubItem, 0, len(m.SubItems))
		for _, item := range m.SubItems {
			dto.SubItems = append(dto.SubItems, SubItem{
				ID:             item.ID,
				Name:           item.Name,
				Status:         string(item.Status),
				EstimatedHours: item.EstimatedHours,
			})
		}
	}
	if !m.UpdatedAt.IsZero() {
		dto.UpdatedAt = m.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromModules converts a module slice, never returning nil.
func FromModules(modules []catalog.Module) []Module {
	out := make([]Module, 0, len(modules))
	for _, m := range modules {
		out = append(out, FromModule(m))
	}
	return out
}

// RecordID extracts the id of a raw record.
func RecordID(raw json.RawMessage) (string, error) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("decode record: %w", err)
	}
	var id string
	if err := json.Unmarshal(probe.ID, &id); err != nil || strings.TrimSpace(id) == "" {
		return "", ErrMissingID
	}
	return strings.TrimSpace(id), nil
}

// ToPatch decodes a raw remote record field by field. It returns false when
// the record is not an object or has no id; any other malformed field is
// dropped and left nil.
func ToPatch(raw json.RawMessage) (catalog.Patch, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return catalog.Patch{}, false
	}
	id, ok := decodeString(fields["id"])
	if !ok || strings.TrimSpace(id) == "" {
		return catalog.Patch{}, false
	}

	patch := catalog.Patch{ID: strings.TrimSpace(id)}
	if status, ok := decodeStatus(fields["status"]); ok {
		patch.Status = &status
	}
	if order, ok := decodeInt(fields["executionOrder"]); ok {
		patch.ExecutionOrder = &order
	}
	if notes, ok := decodeString(fields["notes"]); ok {
		patch.Notes = &notes
	}
	if value, ok := decodeString(fields["updatedAt"]); ok {
		if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
			patch.UpdatedAt = &ts
		}
	}

	var items []json.RawMessage
	if data, present := fields["subItems"]; present && json.Unmarshal(data, &items) == nil {
		for _, item := range items {
			var sub map[string]json.RawMessage
			if json.Unmarshal(item, &sub) != nil {
				continue
			}
			subID, ok := decodeString(sub["id"])
			if !ok || subID == "" {
				continue
			}
			sp := catalog.SubItemPatch{ID: subID}
			if status, ok := decodeStatus(sub["status"]); ok {
				sp.Status = &status
			}
			patch.SubItems = append(patch.SubItems, sp)
		}
	}
	return patch, true
}

// ToPatches decodes every record, skipping malformed ones. It returns the
// number skipped so callers can log it.
func ToPatches(records []json.RawMessage) ([]catalog.Patch, int) {
	out := make([]catalog.Patch, 0, len(records))
	skipped := 0
	for _, raw := range records {
		patch, ok := ToPatch(raw)
		if !ok {
			skipped++
			continue
		}
		out = append(out, patch)
	}
	return out, skipped
}

func absent(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

func decodeString(data json.RawMessage) (string, bool) {
	if absent(data) {
		return "", false
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return "", false
	}
	return value, true
}

func decodeStatus(data json.RawMessage) (catalog.Status, bool) {
	value, ok := decodeString(data)
	if !ok {
		return "", false
	}
	return catalog.ParseStatus(value)
}

func decodeInt(data json.RawMessage) (int, bool) {
	if absent(data) {
		return 0, false
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return 0, false
	}
	if value != math.Trunc(value) || value < 0 || value > math.MaxInt32 {
		return 0, false
	}
	return int(value), true
}

// FromListing converts an attachment listing.
func FromListing(id string, listing attachments.Listing) Attachments {
	out := Attachments{ID: id, Files: make(map[string][]Attachment, len(listing))}
	for _, category := range attachments.Categories() {
		files := make([]Attachment, 0, len(listing[category]))
		for _, f := range listing[category] {
			item := Attachment{Name: f.Name, Size: f.Size}
			if !f.ModifiedAt.IsZero() {
				item.ModifiedAt = f.ModifiedAt.UTC().Format(dateTimeFormat)
			}
			files = append(files, item)
		}
		out.Files[string(category)] = files
	}
	return out
}
