package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownStatus is returned when a status string is not part of the enum.
var ErrUnknownStatus = errors.New("unknown status")

// Status is the build status of a module or sub-item.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusSpecReady  Status = "spec-ready"
	StatusProgress10 Status = "progress-10"
	StatusProgress50 Status = "progress-50"
	StatusProgress80 Status = "progress-80"
	StatusUIOnly     Status = "ui-only"
	StatusCompleted  Status = "completed"
)

var allStatuses = []Status{
	StatusNotStarted,
	StatusSpecReady,
	StatusProgress10,
	StatusProgress50,
	StatusProgress80,
	StatusUIOnly,
	StatusCompleted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns every status in display order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus normalizes a user or wire supplied status string.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Valid reports whether s is a member of the enum.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Percent returns the flat completion percentage for the status. spec-ready
// (15) intentionally ranks above progress-10 (10).
func (s Status) Percent() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusSpecReady:
		return 15
	case StatusProgress10:
		return 10
	case StatusProgress50:
		return 50
	case StatusProgress80:
		return 80
	case StatusUIOnly:
		return 80
	case StatusCompleted:
		return 100
	default:
		return 0
	}
}

// CascadesToSubItems reports whether setting a module to s also overwrites
// the status of every sub-item.
func (s Status) CascadesToSubItems() bool {
	switch s {
	case StatusCompleted, StatusNotStarted, StatusUIOnly, StatusSpecReady:
		return true
	default:
		return false
	}
}

// UnmarshalYAML rejects statuses outside the enum.
func (s *Status) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	parsed, ok := ParseStatus(raw)
	if !ok {
		return fmt.Errorf("line %d: %w %q", node.Line, ErrUnknownStatus, raw)
	}
	*s = parsed
	return nil
}
