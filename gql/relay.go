package gql

import (
	"encoding/base64"
	"strings"

	"github.com/graphql-go/graphql"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/pagination"
)

// ToGlobalID encodes a node id as base64("Type:id").
func ToGlobalID(typeName, id string) string {
	return base64.StdEncoding.EncodeToString([]byte(typeName + ":" + id))
}

// FromGlobalID returns the type name and id carried by a global id.
func FromGlobalID(globalID string) (typeName, id string, ok bool) {
	raw, err := base64.StdEncoding.DecodeString(globalID)
	if err != nil {
		return "", "", false
	}
	typeName, id, ok = strings.Cut(string(raw), ":")
	return typeName, id, ok && id != ""
}

// nodeID decodes the global id passed as argument name, which must point at
// a node of typeName.
func nodeID(args map[string]any, name, typeName string) (string, error) {
	globalID, _ := args[name].(string)
	gotType, id, ok := FromGlobalID(globalID)
	if !ok || gotType != typeName {
		return "", apperrors.NewValidationError(name, "Invalid id.")
	}
	return id, nil
}

var connectionArgs = graphql.FieldConfigArgument{
	"first":  &graphql.ArgumentConfig{Type: graphql.Int},
	"last":   &graphql.ArgumentConfig{Type: graphql.Int},
	"after":  &graphql.ArgumentConfig{Type: graphql.String},
	"before": &graphql.ArgumentConfig{Type: graphql.String},
}

// withConnectionArgs returns the connection arguments plus extra.
func withConnectionArgs(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for name, arg := range connectionArgs {
		args[name] = arg
	}
	for name, arg := range extra {
		args[name] = arg
	}
	return args
}

func pageArgs(args map[string]any) pagination.Args {
	return pagination.Args{
		First:  intArg(args, "first"),
		Last:   intArg(args, "last"),
		After:  stringArg(args, "after"),
		Before: stringArg(args, "before"),
	}
}

type edge struct {
	node   any
	cursor string
}

// connection is a page handed to the connection object types.
type connection struct {
	edges    []edge
	pageInfo pagination.PageInfo
	total    func(p graphql.ResolveParams) (int, error)
}

// resolveConnection cuts a page out of store, ordered by id.
func resolveConnection[T pagination.Cursorable](p graphql.ResolveParams, engine *pagination.Engine, store pagination.Store[T], name string) (*connection, error) {
	page, err := pagination.FromStore(p.Context, engine, store, name, "id", pageArgs(p.Args))
	if err != nil {
		return nil, err
	}
	return newConnection(page), nil
}

func newConnection[T any](page *pagination.Connection[T]) *connection {
	c := &connection{
		edges:    make([]edge, len(page.Edges)),
		pageInfo: page.PageInfo,
		total: func(p graphql.ResolveParams) (int, error) {
			return page.TotalCount(p.Context)
		},
	}
	for i, e := range page.Edges {
		c.edges[i] = edge{node: e.Node, cursor: e.Cursor}
	}
	return c
}

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     field(graphql.NewNonNull(graphql.Boolean), func(pi pagination.PageInfo) any { return pi.HasNextPage }),
		"hasPreviousPage": field(graphql.NewNonNull(graphql.Boolean), func(pi pagination.PageInfo) any { return pi.HasPreviousPage }),
		"startCursor":     field(graphql.String, func(pi pagination.PageInfo) any { return pi.StartCursor }),
		"endCursor":       field(graphql.String, func(pi pagination.PageInfo) any { return pi.EndCursor }),
	},
})

// connectionType builds the <Name>Connection and <Name>Edge types for node.
func connectionType(node *graphql.Object) *graphql.Object {
	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: node.Name() + "Edge",
		Fields: graphql.Fields{
			"node":   field(node, func(e edge) any { return e.node }),
			"cursor": field(graphql.NewNonNull(graphql.String), func(e edge) any { return e.cursor }),
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: node.Name() + "Connection",
		Fields: graphql.Fields{
			"edges":    field(graphql.NewList(edgeType), func(c *connection) any { return c.edges }),
			"pageInfo": field(graphql.NewNonNull(pageInfoType), func(c *connection) any { return c.pageInfo }),
			"totalCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					c, ok := p.Source.(*connection)
					if !ok {
						return nil, nil
					}
					return c.total(p)
				},
			},
		},
	})
}

// field resolves from a source of type T.
func field[T any](typ graphql.Output, get func(T) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			source, ok := p.Source.(T)
			if !ok {
				return nil, nil
			}
			return get(source), nil
		},
	}
}

func intArg(args map[string]any, name string) *int {
	if v, ok := args[name].(int); ok {
		return &v
	}
	return nil
}

func stringArg(args map[string]any, name string) *string {
	if v, ok := args[name].(string); ok {
		return &v
	}
	return nil
}

func boolArg(args map[string]any, name string) *bool {
	if v, ok := args[name].(bool); ok {
		return &v
	}
	return nil
}

func str(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}
