package catalog

import "strings"

// Category groups modules by product area.
type Category string

const (
	CategoryCore         Category = "core"
	CategoryCommerce     Category = "commerce"
	CategoryContent      Category = "content"
	CategoryCommunity    Category = "community"
	CategoryAnalytics    Category = "analytics"
	CategoryAdmin        Category = "admin"
	CategoryIntegrations Category = "integrations"
)

var allCategories = []Category{
	CategoryCore,
	CategoryCommerce,
	CategoryContent,
	CategoryCommunity,
	CategoryAnalytics,
	CategoryAdmin,
	CategoryIntegrations,
}

// AllCategories returns every category in display order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory normalizes a category string.
func ParseCategory(value string) (Category, bool) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range allCategories {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is a member of the enum.
func (c Category) Valid() bool {
	for _, candidate := range allCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Priority ranks modules for scheduling.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var allPriorities = []Priority{
	PriorityCritical,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
}

// ParsePriority normalizes a priority string.
func ParsePriority(value string) (Priority, bool) {
	normalized := Priority(strings.ToLower(strings.TrimSpace(value)))
	for _, p := range allPriorities {
		if p == normalized {
			return p, true
		}
	}
	return "", false
}

// Valid reports whether p is a member of the enum.
func (p Priority) Valid() bool {
	for _, candidate := range allPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank orders priorities from most (0) to least urgent.
func (p Priority) Rank() int {
	for i, candidate := range allPriorities {
		if candidate == p {
			return i
		}
	}
	return len(allPriorities)
}
