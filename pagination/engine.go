package pagination

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/pkg/errors"
)

const DefaultMaxLimit = 50

// Window is what a Store is asked for. Values are decoded cursor values.
type Window struct {
	Field   string
	Desc    bool
	After   *string // strictly beyond this value in sort order
	Before  *string // strictly prior to this value in sort order
	FromEnd bool    // take the last Limit items instead of the first
	Offset  int     // skipped from the start, forward windows only
	Limit   int
}

// Store is an ordered collection that can cut windows itself, like a SQL table.
// Window returns items in sort order.
type Store[T any] interface {
	Window(ctx context.Context, w Window) ([]T, error)
	Count(ctx context.Context) (int, error)
}

// Engine holds the limits applied to every connection.
type Engine struct {
	maxLimit           int
	requireFirstOrLast bool
	legacyPageInfo     bool
}

type EngineOption func(*Engine)

func WithMaxLimit(limit int) EngineOption {
	return func(e *Engine) {
		e.maxLimit = limit
	}
}

// WithFirstOrLastRequired rejects requests that give neither first nor last.
func WithFirstOrLastRequired(required bool) EngineOption {
	return func(e *Engine) {
		e.requireFirstOrLast = required
	}
}

// WithLegacyPageInfo reports hasPreviousPage and hasNextPage as always true
// and skips the lookahead item.
func WithLegacyPageInfo() EngineOption {
	return func(e *Engine) {
		e.legacyPageInfo = true
	}
}

func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{maxLimit: DefaultMaxLimit}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *Engine) MaxLimit() int {
	return e.maxLimit
}

// Validate checks args for the connection called name.
func (e *Engine) Validate(name string, args Args) error {
	first, last := args.First, args.Last

	if e.requireFirstOrLast && first == nil && last == nil {
		return apperrors.NewValidationError("", fmt.Sprintf(
			"You must provide a `first` or `last` value to properly paginate the `%s` connection.", name))
	}
	if first != nil && *first < 0 {
		return apperrors.NewValidationError("first", "Argument `first` must be a non-negative integer.")
	}
	if last != nil && *last < 0 {
		return apperrors.NewValidationError("last", "Argument `last` must be a non-negative integer.")
	}
	if e.maxLimit > 0 {
		if first != nil && *first > e.maxLimit {
			return apperrors.NewValidationError("", fmt.Sprintf(
				"Requesting %d records on the `%s` connection exceeds the `first` limit of %d records.", *first, name, e.maxLimit))
		}
		if last != nil && *last > e.maxLimit {
			return apperrors.NewValidationError("", fmt.Sprintf(
				"Requesting %d records on the `%s` connection exceeds the `last` limit of %d records.", *last, name, e.maxLimit))
		}
	}
	if args.Offset != nil && args.Before != nil {
		return apperrors.NewValidationError("", fmt.Sprintf(
			"You can't provide a `before` value at the same time as an `offset` value to properly paginate the `%s` connection.", name))
	}
	return nil
}

// plan resolves args into a window, decoding cursors. After wins over before.
func (e *Engine) plan(orderBy string, args Args) (Window, error) {
	field, desc := ParseOrder(orderBy)
	w := Window{Field: field, Desc: desc, Limit: e.limit(args)}

	if args.After != nil {
		after, err := DecodeCursor(*args.After)
		if err != nil {
			return w, apperrors.NewValidationError("after", "Invalid cursor.")
		}
		w.After = &after
	} else if args.Before != nil {
		before, err := DecodeCursor(*args.Before)
		if err != nil {
			return w, apperrors.NewValidationError("before", "Invalid cursor.")
		}
		w.Before = &before
	}
	if args.Offset != nil && *args.Offset > 0 {
		w.Offset = *args.Offset
	}
	w.FromEnd = w.Before != nil || (args.Last != nil && w.After == nil)
	return w, nil
}

func (e *Engine) limit(args Args) int {
	limit := e.maxLimit
	switch {
	case args.First != nil && *args.First > 0:
		limit = *args.First
	case args.Last != nil && *args.Last > 0:
		limit = *args.Last
	case args.First != nil || args.Last != nil:
		limit = 0
	}
	if e.maxLimit > 0 && limit > e.maxLimit {
		limit = e.maxLimit
	}
	return limit
}

// FromStore pages a store-backed collection ordered by orderBy ("-field" for descending).
func FromStore[T Cursorable](ctx context.Context, e *Engine, store Store[T], name, orderBy string, args Args) (*Connection[T], error) {
	if err := e.Validate(name, args); err != nil {
		return nil, err
	}
	w, err := e.plan(orderBy, args)
	if err != nil {
		return nil, err
	}

	query := w
	if !e.legacyPageInfo {
		query.Limit++
	}
	items, err := store.Window(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "pagination.FromStore %s", name)
	}

	items, hasPrevious, hasNext := trim(items, w, e.legacyPageInfo)
	c := newConnection(items, w.Field, hasPrevious, hasNext)
	c.count = store.Count
	return c, nil
}

// FromSlice pages items in the order given, reversed for a descending
// orderBy. Cursors are located by a linear scan; a cursor that matches no
// item is ignored. The size of items is the connection's Length.
func FromSlice[T Cursorable](e *Engine, items []T, name, orderBy string, args Args) (*Connection[T], error) {
	if err := e.Validate(name, args); err != nil {
		return nil, err
	}
	w, err := e.plan(orderBy, args)
	if err != nil {
		return nil, err
	}

	total := len(items)
	objects := make([]T, total)
	copy(objects, items)
	if w.Desc {
		for i, j := 0, len(objects)-1; i < j; i, j = i+1, j-1 {
			objects[i], objects[j] = objects[j], objects[i]
		}
	}

	switch {
	case w.After != nil:
		if idx := indexOf(objects, w.Field, *w.After); idx >= 0 {
			objects = objects[idx+1:]
		}
	case w.Before != nil:
		if idx := indexOf(objects, w.Field, *w.Before); idx >= 0 {
			objects = objects[:idx]
		}
	}
	if !w.FromEnd && w.Offset > 0 {
		objects = objects[min(w.Offset, len(objects)):]
	}

	limit := w.Limit
	if !e.legacyPageInfo {
		limit++
	}
	if w.FromEnd {
		objects = objects[max(len(objects)-limit, 0):]
	} else {
		objects = objects[:min(limit, len(objects))]
	}

	objects, hasPrevious, hasNext := trim(objects, w, e.legacyPageInfo)
	c := newConnection(objects, w.Field, hasPrevious, hasNext)
	c.Length = &total
	return c, nil
}

// trim drops the lookahead item and derives the page flags. The far side of
// the window is known from the lookahead; the near side has items whenever the
// window was cut at a cursor or offset.
func trim[T any](items []T, w Window, legacy bool) ([]T, bool, bool) {
	if legacy {
		return items, true, true
	}
	more := len(items) > w.Limit
	if w.FromEnd {
		if more {
			items = items[len(items)-w.Limit:]
		}
		return items, more, w.Before != nil
	}
	if more {
		items = items[:w.Limit]
	}
	return items, w.After != nil || w.Offset > 0, more
}

func indexOf[T Cursorable](items []T, field, value string) int {
	for i, item := range items {
		if item.CursorValue(field) == value {
			return i
		}
	}
	return -1
}
