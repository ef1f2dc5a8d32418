// Package query is the record pipeline shared by every role-scoped listing:
// scope → filter → aggregate → paginate.
//
// Every function is pure. Inputs are never mutated and output order is the
// input order; nothing here sorts.
package query

// DefaultPageSize is used when a caller passes a non-positive page size
const DefaultPageSize = 20

// Predicate reports whether a record is kept
type Predicate[T any] func(T) bool

// Scope keeps the records the role may see. A nil predicate keeps nothing.
func Scope[T any](records []T, visible Predicate[T]) []T {
	out := make([]T, 0, len(records))
	if visible == nil {
		return out
	}
	for _, r := range records {
		if visible(r) {
			out = append(out, r)
		}
	}
	return out
}

// Filter keeps records matching every non-nil predicate
func Filter[T any](records []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if matchAll(r, active) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll[T any](r T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// Plan describes one listing: the role scope, the user filters and how to summarise
type Plan[T any, S any] struct {
	Scope     Predicate[T]
	Filters   []Predicate[T]
	Aggregate func([]T) S
}

// Result is fully derived from the inputs of Run and never stored
type Result[T any, S any] struct {
	Visible []T
	Stats   S
	Page    Page[T]
}

// Run applies the plan in its fixed order. Stats describe the whole filtered set,
// not the requested page.
func Run[T any, S any](records []T, plan Plan[T, S], page, size int) Result[T, S] {
	scoped := Scope(records, plan.Scope)
	visible := Filter(scoped, plan.Filters...)

	var stats S
	if plan.Aggregate != nil {
		stats = plan.Aggregate(visible)
	}

	return Result[T, S]{
		Visible: visible,
		Stats:   stats,
		Page:    Paginate(visible, page, size),
	}
}
