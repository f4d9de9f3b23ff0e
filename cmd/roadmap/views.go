package main

import (
	"strconv"

	"roadmap/internal/api"
	"roadmap/internal/catalog"
	"roadmap/internal/derive"
	"roadmap/internal/reconcile"
)

type categoryView struct {
	Category  string  `json:"category"`
	Modules   int     `json:"modules"`
	Completed int     `json:"completed"`
	Queued    int     `json:"queued"`
	Hours     float64 `json:"hours"`
	Percent   int     `json:"percent"`
}

type progressView struct {
	Modules    int            `json:"modules"`
	Completed  int            `json:"completed"`
	Queued     int            `json:"queued"`
	Hours      float64        `json:"hours"`
	Percent    int            `json:"percent"`
	ByStatus   map[string]int `json:"byStatus"`
	Categories []categoryView `json:"categories"`
}

type statusView struct {
	Offline  bool         `json:"offline"`
	Progress progressView `json:"progress"`
	Modules  []api.Module `json:"modules"`
}

type driftView struct {
	RemoteEmpty bool            `json:"remoteEmpty"`
	MustResync  bool            `json:"mustResync"`
	Drift       reconcile.Drift `json:"drift"`
}

func newProgressView(p derive.Progress) progressView {
	view := progressView{
		Modules:    p.Modules,
		Completed:  p.Completed,
		Queued:     p.Queued,
		Hours:      p.Hours,
		Percent:    p.Percent,
		ByStatus:   make(map[string]int, len(p.ByStatus)),
		Categories: make([]categoryView, 0, len(p.Categories)),
	}
	for status, count := range p.ByStatus {
		view.ByStatus[string(status)] = count
	}
	for _, c := range p.Categories {
		view.Categories = append(view.Categories, categoryView{
			Category:  string(c.Category),
			Modules:   c.Modules,
			Completed: c.Completed,
			Queued:    c.Queued,
			Hours:     c.Hours,
			Percent:   c.Percent,
		})
	}
	return view
}

// filterCategory keeps modules in category; an empty category keeps all.
func filterCategory(modules []catalog.Module, category catalog.Category) []catalog.Module {
	if category == "" {
		return modules
	}
	out := make([]catalog.Module, 0, len(modules))
	for _, m := range modules {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// statusCounts returns the non-zero status counts in lifecycle order.
func statusCounts(byStatus map[catalog.Status]int) [][2]string {
	var out [][2]string
	for _, s := range catalog.AllStatuses() {
		if n := byStatus[s]; n > 0 {
			out = append(out, [2]string{string(s), strconv.Itoa(n)})
		}
	}
	return out
}
