package pagination

import (
	"context"
	"sort"
)

var _ Store[Cursorable] = (*SliceStore[Cursorable])(nil)

// SliceStore serves windows from a snapshot of items, ordering them by the
// string form of the requested field. In-memory repositories return it.
type SliceStore[T Cursorable] struct {
	items []T
}

func NewSliceStore[T Cursorable](items []T) *SliceStore[T] {
	return &SliceStore[T]{items: items}
}

func (s *SliceStore[T]) Window(_ context.Context, w Window) ([]T, error) {
	ordered := make([]T, 0, len(s.items))
	for _, item := range s.items {
		value := item.CursorValue(w.Field)
		if w.After != nil && !beyond(value, *w.After, w.Desc) {
			continue
		}
		if w.Before != nil && !beyond(*w.Before, value, w.Desc) {
			continue
		}
		ordered = append(ordered, item)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return beyond(ordered[j].CursorValue(w.Field), ordered[i].CursorValue(w.Field), w.Desc)
	})

	if w.FromEnd {
		return ordered[max(len(ordered)-w.Limit, 0):], nil
	}
	ordered = ordered[min(w.Offset, len(ordered)):]
	return ordered[:min(w.Limit, len(ordered))], nil
}

func (s *SliceStore[T]) Count(context.Context) (int, error) {
	return len(s.items), nil
}

// beyond reports whether a comes strictly after b in sort order.
func beyond(a, b string, desc bool) bool {
	if desc {
		return a < b
	}
	return a > b
}
