package gql

import (
	"github.com/graphql-go/graphql"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/common"
)

// done is returned by mutations that only succeed or fail.
func done(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return true, nil
}

func (b *schemaBuilder) mutations() graphql.Fields {
	fields := graphql.Fields{}
	for _, group := range []graphql.Fields{b.accountMutations(), b.userMutations(), b.noteMutations(), b.commonMutations()} {
		for name, f := range group {
			fields[name] = f
		}
	}
	return fields
}

func (b *schemaBuilder) accountMutations() graphql.Fields {
	t := b.types
	return graphql.Fields{
		"signin": &graphql.Field{
			Type: t.signin,
			Args: stringArgs("username", "password", "tfaCode"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.Signin(p.Context, invocation(p), accounts.SigninInput{
					Username: str(p.Args, "username"),
					Password: str(p.Args, "password"),
					TFACode:  str(p.Args, "tfaCode"),
				})
			},
		},
		"socialSignin": &graphql.Field{
			Type: t.signin,
			Args: stringArgs("social", "token", "tfaCode"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.SocialSignin(p.Context, invocation(p), accounts.SocialSigninInput{
					Social:  str(p.Args, "social"),
					Token:   str(p.Args, "token"),
					TFACode: str(p.Args, "tfaCode"),
				})
			},
		},
		"refreshToken": &graphql.Field{
			Type: t.signin,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.RefreshToken(p.Context, invocation(p))
			},
		},
		"enableTfa": &graphql.Field{
			Type: t.tfa,
			Args: stringArgs("password"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.EnableTFA(p.Context, invocation(p), str(p.Args, "password"))
			},
		},
		"disableTfa": &graphql.Field{
			Type: t.tfa,
			Args: stringArgs("password", "tfaCode"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.DisableTFA(p.Context, invocation(p), str(p.Args, "password"), str(p.Args, "tfaCode"))
			},
		},
		"checkUser": &graphql.Field{
			Type: graphql.Boolean,
			Args: stringArgs("username"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.CheckUser(p.Context, invocation(p), str(p.Args, "username"))
			},
		},
		"sendSignupToken": &graphql.Field{
			Type: graphql.Boolean,
			Args: stringArgs("username", "email", "phone"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return done(b.Accounts.SendSignupToken(p.Context, invocation(p), accounts.SignupTokenInput{
					Username: str(p.Args, "username"),
					Email:    str(p.Args, "email"),
					Phone:    str(p.Args, "phone"),
				}))
			},
		},
		"checkSignupToken": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return done(b.Accounts.CheckSignupToken(p.Context, invocation(p)))
			},
		},
		"signup": &graphql.Field{
			Type: t.user,
			Args: stringArgs("password", "firstName", "middleName", "lastName", "birthday"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				profile, err := profileInput(p.Args)
				if err != nil {
					return nil, err
				}
				return b.Accounts.Signup(p.Context, invocation(p), accounts.SignupInput{
					Password: str(p.Args, "password"),
					Profile:  profile,
				})
			},
		},
		"changePassword": &graphql.Field{
			Type: t.user,
			Args: withBool(stringArgs("current", "password"), "expireKeys"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.ChangePassword(p.Context, invocation(p), accounts.ChangePasswordInput{
					Current:    str(p.Args, "current"),
					Password:   str(p.Args, "password"),
					ExpireKeys: boolArg(p.Args, "expireKeys"),
				})
			},
		},
		"sendPasswordToken": &graphql.Field{
			Type: graphql.Boolean,
			Args: stringArgs("username"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return done(b.Accounts.SendPasswordToken(p.Context, invocation(p), str(p.Args, "username")))
			},
		},
		"checkPasswordToken": &graphql.Field{
			Type: graphql.Boolean,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return done(b.Accounts.CheckPasswordToken(p.Context, invocation(p)))
			},
		},
		"resetPassword": &graphql.Field{
			Type: t.user,
			Args: stringArgs("password"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.ResetPassword(p.Context, invocation(p), str(p.Args, "password"))
			},
		},
		"updateMe": &graphql.Field{
			Type: t.user,
			Args: stringArgs("firstName", "middleName", "lastName", "birthday"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				profile, err := profileInput(p.Args)
				if err != nil {
					return nil, err
				}
				return b.Accounts.UpdateMe(p.Context, invocation(p), profile)
			},
		},
	}
}

// userMutations are staff only, each behind its own permission.
func (b *schemaBuilder) userMutations() graphql.Fields {
	t := b.types
	return graphql.Fields{
		"createUser": &graphql.Field{
			Type: t.user,
			Args: stringArgs("username", "password"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.CreateUser(p.Context, invocation(p), accounts.CreateUserInput{
					Username: str(p.Args, "username"),
					Password: str(p.Args, "password"),
				})
			},
		},
		"updateUser": &graphql.Field{
			Type: t.user,
			Args: withID(stringArgs("firstName", "middleName", "lastName", "birthday")),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "User")
				if err != nil {
					return nil, err
				}
				profile, err := profileInput(p.Args)
				if err != nil {
					return nil, err
				}
				return b.Accounts.UpdateUser(p.Context, invocation(p), id, profile)
			},
		},
		"deleteUser": &graphql.Field{
			Type: graphql.Boolean,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "User")
				if err != nil {
					return nil, err
				}
				return done(b.Accounts.DeleteUser(p.Context, invocation(p), id))
			},
		},
	}
}

func (b *schemaBuilder) noteMutations() graphql.Fields {
	t := b.types
	return graphql.Fields{
		"createNote": &graphql.Field{
			Type: t.note,
			Args: stringArgs("content"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Accounts.CreateNote(p.Context, invocation(p), str(p.Args, "content"))
			},
		},
		"updateNote": &graphql.Field{
			Type: t.note,
			Args: withID(stringArgs("content")),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Note")
				if err != nil {
					return nil, err
				}
				return b.Accounts.UpdateNote(p.Context, invocation(p), id, stringArg(p.Args, "content"))
			},
		},
		"deleteNote": &graphql.Field{
			Type: graphql.Boolean,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Note")
				if err != nil {
					return nil, err
				}
				return done(b.Accounts.DeleteNote(p.Context, invocation(p), id))
			},
		},
		"createComment": &graphql.Field{
			Type: t.comment,
			Args: graphql.FieldConfigArgument{
				"content": &graphql.ArgumentConfig{Type: graphql.String},
				"user":    &graphql.ArgumentConfig{Type: t.personInput},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				comment, err := b.Accounts.CreateComment(p.Context, invocation(p), commentInput(p.Args))
				if err != nil {
					return nil, err
				}
				return comment.Note, nil
			},
		},
		"updateComment": &graphql.Field{
			Type: t.comment,
			Args: withID(graphql.FieldConfigArgument{
				"content": &graphql.ArgumentConfig{Type: graphql.String},
				"user":    &graphql.ArgumentConfig{Type: t.personInput},
			}),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Comment")
				if err != nil {
					return nil, err
				}
				comment, err := b.Accounts.UpdateComment(p.Context, invocation(p), id, commentInput(p.Args))
				if err != nil {
					return nil, err
				}
				return comment.Note, nil
			},
		},
		"deleteComment": &graphql.Field{
			Type: graphql.Boolean,
			Args: idArgs(),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				id, err := nodeID(p.Args, "id", "Comment")
				if err != nil {
					return nil, err
				}
				return done(b.Accounts.DeleteComment(p.Context, invocation(p), id))
			},
		},
	}
}

func (b *schemaBuilder) commonMutations() graphql.Fields {
	return graphql.Fields{
		"createFruit": &graphql.Field{
			Type: b.types.fruit,
			Args: stringArgs("name", "type"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Common.CreateFruit(common.CreateFruitInput{
					Name: str(p.Args, "name"),
					Type: fruitType(p.Args),
				})
			},
		},
		"echo": &graphql.Field{
			Type: graphql.String,
			Args: stringArgs("message"),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return b.Common.Echo(p.Context, invocation(p), str(p.Args, "message"))
			},
		},
	}
}

func withID(args graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args["id"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	return args
}

func withBool(args graphql.FieldConfigArgument, name string) graphql.FieldConfigArgument {
	args[name] = &graphql.ArgumentConfig{Type: graphql.Boolean}
	return args
}

func commentInput(args map[string]any) accounts.CommentInput {
	in := accounts.CommentInput{Content: stringArg(args, "content")}
	if person, ok := args["user"].(map[string]any); ok {
		in.User = &accounts.PersonInput{
			Email:     stringArg(person, "email"),
			FirstName: stringArg(person, "firstName"),
			LastName:  stringArg(person, "lastName"),
		}
	}
	return in
}
