// Package audit compares catalog ids against manifest coverage and reports
// four partitions: covered, missing, orphans, and placeholders.
//
// The comparator is a pure read over its inputs and is recomputed on demand.
// Covered and missing together hold every catalog id exactly once. Covered ids
// and orphan ids together hold every id a genuine entry declares.
package audit

import (
	"fmt"
	"sort"

	"roadmap/internal/manifest"
)

// Coverage lists the genuine entries that cover one catalog id.
type Coverage struct {
	ID      string           `json:"id"`
	Entries []manifest.Entry `json:"entries"`
}

// Orphan is one (entry, id) pair where the entry covers an id the catalog
// does not define.
type Orphan struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	View    string `json:"view"`
}

// Ref renders the owning entry as section/view.
func (o Orphan) Ref() string {
	return o.Section + "/" + o.View
}

// Report holds the four partitions.
type Report struct {
	Covered      []Coverage       `json:"covered"`
	Missing      []string         `json:"missing"`
	Orphans      []Orphan         `json:"orphans"`
	Placeholders []manifest.Entry `json:"placeholders"`
}

// Run builds the report. Covered and missing keep catalog order; orphans keep
// manifest order.
func Run(catalogIDs []string, man *manifest.Manifest) Report {
	idx := man.Index()
	known := make(map[string]struct{}, len(catalogIDs))

	report := Report{
		Covered:      []Coverage{},
		Missing:      []string{},
		Orphans:      []Orphan{},
		Placeholders: man.Placeholders(),
	}
	if report.Placeholders == nil {
		report.Placeholders = []manifest.Entry{}
	}

	for _, id := range catalogIDs {
		if _, dup := known[id]; dup {
			continue
		}
		known[id] = struct{}{}
		if entries, ok := idx[id]; ok {
			report.Covered = append(report.Covered, Coverage{ID: id, Entries: entries})
			continue
		}
		report.Missing = append(report.Missing, id)
	}

	if man != nil {
		for _, entry := range man.Entries {
			if !entry.Genuine {
				continue
			}
			for _, id := range entry.Covers {
				if _, ok := known[id]; !ok {
					report.Orphans = append(report.Orphans, Orphan{ID: id, Section: entry.Section, View: entry.View})
				}
			}
		}
	}
	return report
}

// Summary is the count view of a report.
type Summary struct {
	Catalog      int `json:"catalog"`
	Covered      int `json:"covered"`
	Missing      int `json:"missing"`
	Orphans      int `json:"orphans"`
	Placeholders int `json:"placeholders"`
}

// Summary counts each partition.
func (r Report) Summary() Summary {
	return Summary{
		Catalog:      len(r.Covered) + len(r.Missing),
		Covered:      len(r.Covered),
		Missing:      len(r.Missing),
		Orphans:      len(r.Orphans),
		Placeholders: len(r.Placeholders),
	}
}

// CoveragePercent is the share of catalog ids reached by a genuine entry.
func (r Report) CoveragePercent() int {
	total := len(r.Covered) + len(r.Missing)
	if total == 0 {
		return 0
	}
	return len(r.Covered) * 100 / total
}

// OrphanIDs returns the distinct orphan ids, sorted.
func (r Report) OrphanIDs() []string {
	seen := make(map[string]struct{}, len(r.Orphans))
	var out []string
	for _, o := range r.Orphans {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o.ID)
	}
	sort.Strings(out)
	return out
}

func (s Summary) String() string {
	return fmt.Sprintf("%d catalog ids: %d covered, %d missing, %d orphans, %d placeholders",
		s.Catalog, s.Covered, s.Missing, s.Orphans, s.Placeholders)
}
