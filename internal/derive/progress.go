package derive

import (
	"math"

	"roadmap/internal/catalog"
)

// CategoryProgress aggregates one category.
type CategoryProgress struct {
	Category  catalog.Category
	Modules   int
	Completed int
	Queued    int
	Hours     float64
	Percent   int
}

// Progress aggregates the whole roadmap.
type Progress struct {
	Modules    int
	Completed  int
	Queued     int
	Hours      float64
	Percent    int
	ByStatus   map[catalog.Status]int
	Categories []CategoryProgress
}

type accumulator struct {
	modules, completed, queued int
	hours, weighted, weights   float64
}

func (a *accumulator) add(m catalog.Module) {
	a.modules++
	if m.Status == catalog.StatusCompleted {
		a.completed++
	}
	if m.Queued() {
		a.queued++
	}
	a.hours += m.EstimatedHours
	w := m.Weight()
	a.weighted += float64(EffectivePercent(m)) * w
	a.weights += w
}

func (a *accumulator) percent() int {
	if a.weights == 0 {
		return 0
	}
	return int(math.Round(a.weighted / a.weights))
}

// Summarize computes hours-weighted progress overall and per category.
// Categories appear in enum order followed by any unknown categories in
// first-seen order; empty categories are omitted.
func Summarize(modules []catalog.Module) Progress {
	var total accumulator
	byStatus := make(map[catalog.Status]int)
	perCategory := make(map[catalog.Category]*accumulator)
	var unknown []catalog.Category

	for _, m := range modules {
		total.add(m)
		byStatus[m.Status]++
		acc, ok := perCategory[m.Category]
		if !ok {
			acc = &accumulator{}
			perCategory[m.Category] = acc
			if !m.Category.Valid() {
				unknown = append(unknown, m.Category)
			}
		}
		acc.add(m)
	}

	order := append(catalog.AllCategories(), unknown...)
	categories := make([]CategoryProgress, 0, len(perCategory))
	for _, category := range order {
		acc, ok := perCategory[category]
		if !ok {
			continue
		}
		categories = append(categories, CategoryProgress{
			Category:  category,
			Modules:   acc.modules,
			Completed: acc.completed,
			Queued:    acc.queued,
			Hours:     acc.hours,
			Percent:   acc.percent(),
		})
	}

	return Progress{
		Modules:    total.modules,
		Completed:  total.completed,
		Queued:     total.queued,
		Hours:      total.hours,
		Percent:    total.percent(),
		ByStatus:   byStatus,
		Categories: categories,
	}
}
