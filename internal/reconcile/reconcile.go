// Package reconcile merges the remote snapshot with the derived catalog.
//
// The pipeline per module is: derive from catalog and manifest, lay the
// remote record over the derived base, re-apply any manifest-forced status,
// then repair the one known staleness case (an uncovered module whose
// hand-set status was overwritten remotely with not-started). Reconcile is
// pure; callers decide whether to write the result back.
package reconcile

import (
	"sort"

	"roadmap/internal/catalog"
	"roadmap/internal/derive"
	"roadmap/internal/manifest"
	"roadmap/internal/queue"
)

// StatusChange records a module whose merged status differs from the status
// last stored remotely. Remote is empty when the record carried no usable
// status.
type StatusChange struct {
	ID     string         `json:"id"`
	Remote catalog.Status `json:"remote"`
	Merged catalog.Status `json:"merged"`
}

// Drift describes how far the remote snapshot is from the merged view.
type Drift struct {
	NewIDs        []string       `json:"newIds,omitempty"`
	Diverged      []StatusChange `json:"diverged,omitempty"`
	StaleRepaired []string       `json:"staleRepaired,omitempty"`
	Unknown       []string       `json:"unknown,omitempty"`
}

// Empty reports whether the snapshot needs no attention at all.
func (d Drift) Empty() bool {
	return len(d.NewIDs) == 0 && len(d.Diverged) == 0 && len(d.StaleRepaired) == 0 && len(d.Unknown) == 0
}

// Result is the outcome of one reconciliation.
type Result struct {
	Modules     []catalog.Module
	MustResync  bool
	RemoteEmpty bool
	Drift       Drift
}

// Reconcile merges remote over the derived catalog. Remote records for ids
// the catalog does not define are dropped and reported as unknown; when an id
// repeats, the last record wins. An empty remote yields the derived catalog
// and always requires a write.
func Reconcile(defs []catalog.Module, man *manifest.Manifest, remote []catalog.Patch) Result {
	idx := man.Index()
	known := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		known[def.ID] = struct{}{}
	}

	byID := make(map[string]catalog.Patch, len(remote))
	unknown := make(map[string]struct{})
	for _, patch := range remote {
		if patch.ID == "" {
			continue
		}
		if _, ok := known[patch.ID]; !ok {
			unknown[patch.ID] = struct{}{}
			continue
		}
		byID[patch.ID] = patch
	}

	var res Result
	res.RemoteEmpty = len(byID) == 0 && len(unknown) == 0
	res.Modules = make([]catalog.Module, 0, len(defs))

	for _, def := range defs {
		resolution := derive.Resolve(def, idx)
		merged := derive.ApplyResolution(def, resolution)

		patch, ok := byID[def.ID]
		if !ok {
			res.Drift.NewIDs = append(res.Drift.NewIDs, def.ID)
			res.Modules = append(res.Modules, merged)
			continue
		}

		merged = overlay(merged, patch)
		merged = derive.ApplyResolution(merged, resolution)
		if stale(def, resolution, patch) {
			merged.Status = def.Status
			if def.Status.CascadesToSubItems() {
				merged.CascadeStatus(def.Status)
			}
			res.Drift.StaleRepaired = append(res.Drift.StaleRepaired, def.ID)
		}

		remoteStatus := remoteStatusOf(patch)
		if remoteStatus != merged.Status {
			res.Drift.Diverged = append(res.Drift.Diverged, StatusChange{
				ID:     def.ID,
				Remote: remoteStatus,
				Merged: merged.Status,
			})
		}
		res.Modules = append(res.Modules, merged)
	}

	res.Modules = queue.Renumber(res.Modules)
	for id := range unknown {
		res.Drift.Unknown = append(res.Drift.Unknown, id)
	}
	sort.Strings(res.Drift.Unknown)

	res.MustResync = res.RemoteEmpty || len(res.Drift.NewIDs) > 0 || len(res.Drift.Diverged) > 0
	return res
}

// overlay fills m with every usable field of patch. Sub-item statuses are
// matched by id; remote sub-items the catalog does not define are ignored.
func overlay(m catalog.Module, patch catalog.Patch) catalog.Module {
	out := m.Clone()
	if patch.Status != nil && patch.Status.Valid() {
		out.Status = *patch.Status
	}
	if patch.ExecutionOrder != nil {
		out.ExecutionOrder = max(*patch.ExecutionOrder, 0)
	}
	if patch.Notes != nil {
		out.Notes = *patch.Notes
	}
	if patch.UpdatedAt != nil {
		out.UpdatedAt = *patch.UpdatedAt
	}
	for _, sp := range patch.SubItems {
		if sp.Status == nil || !sp.Status.Valid() {
			continue
		}
		for i := range out.SubItems {
			if out.SubItems[i].ID == sp.ID {
				out.SubItems[i].Status = *sp.Status
			}
		}
	}
	return out
}

// stale reports the narrow staleness case: the module is not covered by the
// manifest, its catalog status was set by hand to something other than
// not-started, and the remote claims not-started. The repair restores the
// module status only; remote sub-item statuses stand unless the restored
// status cascades.
func stale(def catalog.Module, resolution derive.Resolution, patch catalog.Patch) bool {
	if resolution.Covered || def.Status == catalog.StatusNotStarted {
		return false
	}
	return patch.Status != nil && *patch.Status == catalog.StatusNotStarted
}

func remoteStatusOf(patch catalog.Patch) catalog.Status {
	if patch.Status == nil || !patch.Status.Valid() {
		return ""
	}
	return *patch.Status
}
