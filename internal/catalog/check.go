package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is an authored invariant broken by the catalog file.
type Violation struct {
	ModuleID string
	Message  string
}

func (v Violation) String() string {
	if v.ModuleID == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.ModuleID, v.Message)
}

// Check reports authored invariant violations. An empty result means the
// catalog is well formed.
func (c *Catalog) Check() []Violation {
	if c == nil {
		return nil
	}
	var out []Violation
	add := func(id, format string, args ...any) {
		out = append(out, Violation{ModuleID: id, Message: fmt.Sprintf(format, args...)})
	}

	seen := make(map[string]int, len(c.Modules))
	var orders []int
	for i, m := range c.Modules {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			add("", "module #%d has no id", i+1)
			continue
		}
		if id != m.ID {
			add(m.ID, "id has surrounding whitespace")
		}
		if prev, dup := seen[id]; dup {
			add(id, "duplicate id (first defined as module #%d)", prev+1)
		} else {
			seen[id] = i
		}
		if strings.TrimSpace(m.Name) == "" {
			add(id, "missing name")
		}
		if !m.Category.Valid() {
			add(id, "unknown category %q", m.Category)
		}
		if !m.Priority.Valid() {
			add(id, "unknown priority %q", m.Priority)
		}
		if m.EstimatedHours < 0 {
			add(id, "negative estimatedHours %.1f", m.EstimatedHours)
		}
		switch {
		case m.ExecutionOrder < 0:
			add(id, "negative executionOrder %d", m.ExecutionOrder)
		case m.ExecutionOrder > 0 && m.Status != StatusSpecReady:
			add(id, "executionOrder %d set on a %s module", m.ExecutionOrder, m.Status)
		case m.Status == StatusSpecReady:
			if m.ExecutionOrder == 0 {
				add(id, "spec-ready module has no executionOrder")
			} else {
				orders = append(orders, m.ExecutionOrder)
			}
		}
		subSeen := make(map[string]struct{}, len(m.SubItems))
		for j, item := range m.SubItems {
			if strings.TrimSpace(item.ID) == "" {
				add(id, "sub-item #%d has no id", j+1)
				continue
			}
			if _, dup := subSeen[item.ID]; dup {
				add(id, "duplicate sub-item id %q", item.ID)
			}
			subSeen[item.ID] = struct{}{}
			if item.EstimatedHours < 0 {
				add(id, "sub-item %q has negative estimatedHours", item.ID)
			}
		}
	}

	if !contiguous(orders) {
		sort.Ints(orders)
		add("", "spec-ready executionOrder values %v are not exactly 1..%d", orders, len(orders))
	}
	return out
}

func contiguous(orders []int) bool {
	seen := make([]bool, len(orders)+1)
	for _, o := range orders {
		if o < 1 || o > len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
