package catalog

import (
	"errors"
	"time"
)

// ErrUnknownModule is returned when an operation names an id that is not in
// the catalog.
var ErrUnknownModule = errors.New("unknown module")

// SubItem is a weighted component of a module.
type SubItem struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Status         Status  `yaml:"status"`
	EstimatedHours float64 `yaml:"estimatedHours"`
}

// Weight returns the sub-item's aggregation weight. Missing or zero hours
// count as one.
func (s SubItem) Weight() float64 {
	if s.EstimatedHours > 0 {
		return s.EstimatedHours
	}
	return 1
}

// Module is a catalog definition. The same shape carries reconciled state:
// Status then holds the effective status and Notes/UpdatedAt come from the
// remote snapshot. ExecutionOrder is the 1-based queue position; zero means
// the module holds no slot.
type Module struct {
	ID             string    `yaml:"id"`
	Name           string    `yaml:"name"`
	Category       Category  `yaml:"category"`
	Status         Status    `yaml:"status"`
	Priority       Priority  `yaml:"priority"`
	EstimatedHours float64   `yaml:"estimatedHours"`
	SubItems       []SubItem `yaml:"subItems,omitempty"`
	ExecutionOrder int       `yaml:"executionOrder,omitempty"`
	Notes          string    `yaml:"-"`
	UpdatedAt      time.Time `yaml:"-"`
}

// Clone returns a deep copy of the module.
func (m Module) Clone() Module {
	out := m
	if m.SubItems != nil {
		out.SubItems = make([]SubItem, len(m.SubItems))
		copy(out.SubItems, m.SubItems)
	}
	return out
}

// Weight returns the module's aggregation weight for progress summaries.
func (m Module) Weight() float64 {
	if m.EstimatedHours > 0 {
		return m.EstimatedHours
	}
	return 1
}

// Queued reports whether the module currently holds an execution slot.
func (m Module) Queued() bool {
	return m.Status == StatusSpecReady && m.ExecutionOrder > 0
}

// CascadeStatus overwrites every sub-item status with status.
func (m *Module) CascadeStatus(status Status) {
	for i := range m.SubItems {
		m.SubItems[i].Status = status
	}
}

// CloneModules deep copies a module slice.
func CloneModules(modules []Module) []Module {
	if modules == nil {
		return nil
	}
	out := make([]Module, len(modules))
	for i, m := range modules {
		out[i] = m.Clone()
	}
	return out
}

// IndexOf returns the position of id in modules or -1.
func IndexOf(modules []Module, id string) int {
	for i := range modules {
		if modules[i].ID == id {
			return i
		}
	}
	return -1
}

// SubItemPatch is the remote view of a sub-item. Only the status is user
// editable; names and weights always come from the catalog.
type SubItemPatch struct {
	ID     string
	Status *Status
}

// Patch is a remote snapshot record after tolerant decoding. Nil fields were
// missing or malformed and must be treated as absent.
type Patch struct {
	ID             string
	Status         *Status
	ExecutionOrder *int
	Notes          *string
	UpdatedAt      *time.Time
	SubItems       []SubItemPatch
}
