package pagination

import (
	"context"
	"strings"
)

// Args are the relay connection arguments, shared by REST query parameters
// and GraphQL connection fields.
type Args struct {
	First  *int
	Last   *int
	Offset *int
	After  *string
	Before *string
}

type Edge[T any] struct {
	Node   T
	Cursor string
}

type PageInfo struct {
	StartCursor     *string
	EndCursor       *string
	HasPreviousPage bool
	HasNextPage     bool
}

// Connection is one page of an ordered collection.
type Connection[T any] struct {
	Edges    []Edge[T]
	PageInfo PageInfo

	// Length, when set, is reported as the total count instead of counting
	// the whole collection.
	Length *int
	count  func(ctx context.Context) (int, error)
}

// TotalCount returns Length when known, else the size of the whole
// collection the page was cut from. The count is only computed on demand.
func (c *Connection[T]) TotalCount(ctx context.Context) (int, error) {
	if c.Length != nil {
		return *c.Length, nil
	}
	if c.count == nil {
		return len(c.Edges), nil
	}
	return c.count(ctx)
}

// Nodes returns the items of the page in order.
func (c *Connection[T]) Nodes() []T {
	nodes := make([]T, len(c.Edges))
	for i, e := range c.Edges {
		nodes[i] = e.Node
	}
	return nodes
}

// ParseOrder splits "-field" into the field name and a descending flag.
func ParseOrder(orderBy string) (field string, desc bool) {
	if strings.HasPrefix(orderBy, "-") {
		return orderBy[1:], true
	}
	return orderBy, false
}

func newConnection[T Cursorable](items []T, field string, hasPrevious, hasNext bool) *Connection[T] {
	c := &Connection[T]{
		Edges: make([]Edge[T], len(items)),
		PageInfo: PageInfo{
			HasPreviousPage: hasPrevious,
			HasNextPage:     hasNext,
		},
	}
	for i, item := range items {
		c.Edges[i] = Edge[T]{Node: item, Cursor: EncodeCursor(item.CursorValue(field))}
	}
	if len(c.Edges) > 0 {
		start := c.Edges[0].Cursor
		end := c.Edges[len(c.Edges)-1].Cursor
		c.PageInfo.StartCursor = &start
		c.PageInfo.EndCursor = &end
	}
	return c
}
