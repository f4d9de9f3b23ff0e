// Package derive computes effective module statuses from the catalog and the
// build manifest, and aggregates completion percentages.
//
// Derivation is pure: it never consults the remote snapshot. A module covered
// by at least one genuine manifest entry gets a forced status (completed when
// any covering view persists data, ui-only otherwise) that cascades to every
// sub-item. Uncovered modules keep their manual status.
package derive

import (
	"math"

	"roadmap/internal/catalog"
	"roadmap/internal/manifest"
)

// Resolution is the outcome of deriving one module.
type Resolution struct {
	Status  catalog.Status
	Covered bool
	Entries []manifest.Entry
}

// Forced reports whether the manifest overrides the manual status.
func (r Resolution) Forced() bool {
	return r.Covered
}

// Resolve derives the status of a single definition against the coverage
// index.
func Resolve(def catalog.Module, idx manifest.Index) Resolution {
	entries := idx[def.ID]
	if len(entries) == 0 {
		return Resolution{Status: def.Status}
	}
	status := catalog.StatusUIOnly
	for _, entry := range entries {
		if entry.Persistent {
			status = catalog.StatusCompleted
			break
		}
	}
	return Resolution{Status: status, Covered: true, Entries: entries}
}

// Apply returns a copy of def with the derived status applied.
func Apply(def catalog.Module, idx manifest.Index) catalog.Module {
	return ApplyResolution(def, Resolve(def, idx))
}

// ApplyResolution applies an already computed resolution to a copy of m.
func ApplyResolution(m catalog.Module, res Resolution) catalog.Module {
	out := m.Clone()
	if res.Forced() {
		out.Status = res.Status
		out.CascadeStatus(res.Status)
		if res.Status != catalog.StatusSpecReady {
			out.ExecutionOrder = 0
		}
	}
	return out
}

// ApplyAll derives every definition, preserving catalog order.
func ApplyAll(defs []catalog.Module, man *manifest.Manifest) []catalog.Module {
	idx := man.Index()
	out := make([]catalog.Module, 0, len(defs))
	for _, def := range defs {
		out = append(out, Apply(def, idx))
	}
	return out
}

// EffectivePercent returns the module's completion percentage. Without
// sub-items it is the flat percent of the status; with sub-items it is the
// hours-weighted mean of sub-item percents, rounded half away from zero.
func EffectivePercent(m catalog.Module) int {
	if len(m.SubItems) == 0 {
		return m.Status.Percent()
	}
	var sum, weights float64
	for _, item := range m.SubItems {
		w := item.Weight()
		sum += float64(item.Status.Percent()) * w
		weights += w
	}
	return int(math.Round(sum / weights))
}
