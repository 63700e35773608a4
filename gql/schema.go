package gql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/common"
	"github.com/jrsteele09/go-notes-server/fruits"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/pkg/errors"
)

// Resolvers are the services behind the schema.
type Resolvers struct {
	Accounts *accounts.Service
	Common   *common.Service
	Engine   *pagination.Engine // connection limits, first or last required
}

type schemaBuilder struct {
	Resolvers
	types *types
}

// NewSchema builds the executable schema.
func NewSchema(r Resolvers) (graphql.Schema, error) {
	if r.Engine == nil {
		r.Engine = pagination.NewEngine(pagination.WithFirstOrLastRequired(true))
	}
	b := &schemaBuilder{Resolvers: r, types: newTypes(r.Accounts)}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: b.queries(),
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: b.mutations(),
		}),
	})
	if err != nil {
		return graphql.Schema{}, errors.Wrap(err, "gql.NewSchema")
	}
	return schema, nil
}

// invocation wraps a resolver call for the accounts and common services.
func invocation(p graphql.ResolveParams) *auth.Invocation {
	return &auth.Invocation{Request: auth.RequestFrom(p.Context), Args: p.Args}
}

func (b *schemaBuilder) queries() graphql.Fields {
	t := b.types
	return graphql.Fields{
		"me": &graphql.Field{
			Type: t.user,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.Me(p.Context, invocation(p))
			},
		},
		"users": &graphql.Field{
			Type: t.users,
			Args: connectionArgs,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				store, err := b.Accounts.Users(p.Context, invocation(p))
				if err != nil {
					return nil, err
				}
				return resolveConnection(p, b.Engine, store, "users")
			},
		},
		"user": &graphql.Field{
			Type: t.user,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "User")
				if err != nil {
					return nil, err
				}
				return b.Accounts.User(p.Context, invocation(p), id)
			},
		},
		"notes": &graphql.Field{
			Type: t.notes,
			Args: connectionArgs,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				store, err := b.Accounts.Notes(p.Context, invocation(p))
				if err != nil {
					return nil, err
				}
				return resolveConnection(p, b.Engine, store, "notes")
			},
		},
		"note": &graphql.Field{
			Type: t.note,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Note")
				if err != nil {
					return nil, err
				}
				return b.Accounts.Note(p.Context, invocation(p), id)
			},
		},
		"userNotes": &graphql.Field{
			Type: t.notes,
			Args: withConnectionArgs(graphql.FieldConfigArgument{
				"user": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			}),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				userID, err := nodeID(p.Args, "user", "User")
				if err != nil {
					return nil, err
				}
				store, err := b.Accounts.UserNotes(p.Context, invocation(p), userID)
				if err != nil {
					return nil, err
				}
				return resolveConnection(p, b.Engine, store, "userNotes")
			},
		},
		"comments": &graphql.Field{
			Type: t.comments,
			Args: connectionArgs,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return resolveConnection(p, b.Engine, b.Accounts.Comments(p.Context), "comments")
			},
		},
		"comment": &graphql.Field{
			Type: t.comment,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Comment")
				if err != nil {
					return nil, err
				}
				comment, err := b.Accounts.Comment(p.Context, id)
				if err != nil {
					return nil, err
				}
				return comment.Note, nil
			},
		},
		"fruits": &graphql.Field{
			Type: t.fruits,
			Args: withConnectionArgs(graphql.FieldConfigArgument{
				"search": &graphql.ArgumentConfig{Type: graphql.String},
			}),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				page, err := b.Common.Fruits(b.Engine, str(p.Args, "search"), pageArgs(p.Args))
				if err != nil {
					return nil, err
				}
				return newConnection(page), nil
			},
		},
		"fruit": &graphql.Field{
			Type: t.fruit,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Fruit")
				if err != nil {
					return nil, err
				}
				if fruit := b.Common.Fruit(id); fruit != nil {
					return fruit, nil
				}
				return nil, nil
			},
		},
		"localtime": &graphql.Field{
			Type: graphql.DateTime,
			Resolve: func(graphql.ResolveParams) (any, error) {
				return b.Common.Localtime(), nil
			},
		},
	}
}

func idArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
}

// stringArgs declares optional string arguments. Required values are
// checked by the services so that a missing value is reported per field.
func stringArgs(names ...string) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for _, name := range names {
		args[name] = &graphql.ArgumentConfig{Type: graphql.String}
	}
	return args
}

func profileInput(args map[string]any) (accounts.ProfileInput, error) {
	in := accounts.ProfileInput{
		FirstName:  stringArg(args, "firstName"),
		MiddleName: stringArg(args, "middleName"),
		LastName:   stringArg(args, "lastName"),
	}
	if birthday := stringArg(args, "birthday"); birthday != nil {
		parsed, err := time.Parse(dateLayout, *birthday)
		if err != nil {
			return in, apperrors.NewValidationError("birthday", "Enter a valid date.")
		}
		in.Birthday = &parsed
	}
	return in, nil
}

func fruitType(args map[string]any) fruits.Type {
	return fruits.Type(str(args, "type"))
}
