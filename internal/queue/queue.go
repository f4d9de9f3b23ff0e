// Package queue maintains the execution queue: the spec-ready modules ordered
// by their 1-based execution order.
//
// Every function is copy-on-write over a module slice and leaves the input
// untouched. After any operation the orders held by spec-ready modules are
// exactly {1..N} and every other module holds order 0.
package queue

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"roadmap/internal/catalog"
)

// ErrNotQueued is returned when moving a module that holds no queue slot.
var ErrNotQueued = errors.New("module is not in the execution queue")

// Direction is a single-step queue move.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection normalizes "up"/"down".
func ParseDirection(value string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(value))) {
	case Up:
		return Up, true
	case Down:
		return Down, true
	default:
		return "", false
	}
}

// Ordered returns copies of the spec-ready modules in queue order. Spec-ready
// modules without an order sort last, in input order.
func Ordered(modules []catalog.Module) []catalog.Module {
	idx := orderedIndexes(modules)
	out := make([]catalog.Module, 0, len(idx))
	for _, i := range idx {
		out = append(out, modules[i].Clone())
	}
	return out
}

func orderedIndexes(modules []catalog.Module) []int {
	var idx []int
	for i, m := range modules {
		if m.Status == catalog.StatusSpecReady {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		oa, ob := modules[idx[a]].ExecutionOrder, modules[idx[b]].ExecutionOrder
		switch {
		case oa <= 0 && ob <= 0:
			return false
		case oa <= 0:
			return false
		case ob <= 0:
			return true
		default:
			return oa < ob
		}
	})
	return idx
}

// Renumber reassigns spec-ready orders to 1..N preserving relative order and
// clears the order of every module that is not spec-ready.
func Renumber(modules []catalog.Module) []catalog.Module {
	out := catalog.CloneModules(modules)
	renumber(out)
	return out
}

func renumber(modules []catalog.Module) {
	for i := range modules {
		if modules[i].Status != catalog.StatusSpecReady {
			modules[i].ExecutionOrder = 0
		}
	}
	for pos, i := range orderedIndexes(modules) {
		modules[i].ExecutionOrder = pos + 1
	}
}

func maxOrder(modules []catalog.Module, skip int) int {
	highest := 0
	for i, m := range modules {
		if i == skip || m.Status != catalog.StatusSpecReady {
			continue
		}
		if m.ExecutionOrder > highest {
			highest = m.ExecutionOrder
		}
	}
	return highest
}

// SetStatus changes one module's status and keeps the queue consistent:
// entering spec-ready appends the module at max+1, leaving spec-ready clears
// its order and closes the gap. Cascading statuses overwrite every sub-item.
func SetStatus(modules []catalog.Module, id string, status catalog.Status) ([]catalog.Module, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w %q", catalog.ErrUnknownStatus, status)
	}
	idx := catalog.IndexOf(modules, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownModule, id)
	}

	out := catalog.CloneModules(modules)
	target := &out[idx]
	previous := target.Status
	target.Status = status
	if status.CascadesToSubItems() {
		target.CascadeStatus(status)
	}

	switch {
	case status == catalog.StatusSpecReady && (previous != catalog.StatusSpecReady || target.ExecutionOrder <= 0):
		target.ExecutionOrder = maxOrder(out, idx) + 1
	case status != catalog.StatusSpecReady:
		target.ExecutionOrder = 0
		if previous == catalog.StatusSpecReady {
			renumber(out)
		}
	}
	return out, nil
}

// Enter puts a module into the queue at the end.
func Enter(modules []catalog.Module, id string) ([]catalog.Module, error) {
	return SetStatus(modules, id, catalog.StatusSpecReady)
}

// Leave takes a module out of the queue by moving it to next.
func Leave(modules []catalog.Module, id string, next catalog.Status) ([]catalog.Module, error) {
	if next == catalog.StatusSpecReady {
		return nil, fmt.Errorf("leave %s: next status must not be %s", id, next)
	}
	return SetStatus(modules, id, next)
}

// Move swaps a queued module with its neighbour in direction dir. Moving the
// first module up or the last module down is a no-op and reports false.
func Move(modules []catalog.Module, id string, dir Direction) ([]catalog.Module, bool, error) {
	if dir != Up && dir != Down {
		return nil, false, fmt.Errorf("invalid direction %q", dir)
	}
	if catalog.IndexOf(modules, id) < 0 {
		return nil, false, fmt.Errorf("%w: %s", catalog.ErrUnknownModule, id)
	}

	out := catalog.CloneModules(modules)
	renumber(out)
	order := orderedIndexes(out)
	pos := -1
	for p, i := range order {
		if out[i].ID == id {
			pos = p
			break
		}
	}
	if pos < 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrNotQueued, id)
	}

	neighbour := pos - 1
	if dir == Down {
		neighbour = pos + 1
	}
	if neighbour < 0 || neighbour >= len(order) {
		return out, false, nil
	}
	a, b := order[pos], order[neighbour]
	out[a].ExecutionOrder, out[b].ExecutionOrder = out[b].ExecutionOrder, out[a].ExecutionOrder
	return out, true, nil
}

// Check verifies that spec-ready orders are exactly {1..N} and that no other
// module holds an order.
func Check(modules []catalog.Module) error {
	var orders []int
	for _, m := range modules {
		if m.Status == catalog.StatusSpecReady {
			orders = append(orders, m.ExecutionOrder)
		} else if m.ExecutionOrder != 0 {
			return fmt.Errorf("module %s is %s but holds execution order %d", m.ID, m.Status, m.ExecutionOrder)
		}
	}
	sort.Ints(orders)
	for i, o := range orders {
		if o != i+1 {
			return fmt.Errorf("execution orders %v are not exactly 1..%d", orders, len(orders))
		}
	}
	return nil
}
