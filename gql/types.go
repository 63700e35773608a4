package gql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/fruits"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/users"
)

const dateLayout = "2006-01-02"

// types holds the object types shared by queries and mutations.
type types struct {
	user        *graphql.Object
	note        *graphql.Object
	comment     *graphql.Object
	fruit       *graphql.Object
	signin      *graphql.Object
	tfa         *graphql.Object
	users       *graphql.Object
	notes       *graphql.Object
	comments    *graphql.Object
	fruits      *graphql.Object
	personInput *graphql.InputObject
}

func newTypes(accountService *accounts.Service) *types {
	t := &types{}

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":         field(graphql.NewNonNull(graphql.ID), func(u *users.User) any { return ToGlobalID("User", u.ID) }),
			"username":   field(graphql.NewNonNull(graphql.String), func(u *users.User) any { return u.Username }),
			"email":      field(graphql.String, func(u *users.User) any { return u.Email }),
			"phone":      field(graphql.String, func(u *users.User) any { return u.Phone }),
			"firstName":  field(graphql.String, func(u *users.User) any { return u.FirstName }),
			"middleName": field(graphql.String, func(u *users.User) any { return u.MiddleName }),
			"lastName":   field(graphql.String, func(u *users.User) any { return u.LastName }),
			"birthday":   field(graphql.String, func(u *users.User) any { return formatDate(u.Birthday) }),
			"avatar":     field(graphql.String, func(u *users.User) any { return u.Avatar }),
			"hasTfa":     field(graphql.NewNonNull(graphql.Boolean), func(u *users.User) any { return u.TFAActive() }),
			"lastLogin":  field(graphql.DateTime, func(u *users.User) any { return u.LastLogin }),
			"dateJoined": field(graphql.DateTime, func(u *users.User) any { return u.DateJoined }),
		},
	})

	t.note = graphql.NewObject(graphql.ObjectConfig{
		Name: "Note",
		Fields: graphql.Fields{
			"id":       field(graphql.NewNonNull(graphql.ID), func(n *notes.Note) any { return ToGlobalID("Note", n.ID) }),
			"content":  field(graphql.NewNonNull(graphql.String), func(n *notes.Note) any { return n.Content }),
			"created":  field(graphql.DateTime, func(n *notes.Note) any { return n.Created }),
			"modified": field(graphql.DateTime, func(n *notes.Note) any { return n.Modified }),
		},
	})

	author := graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"firstName": field(graphql.String, func(u *users.User) any { return u.FirstName }),
			"lastName":  field(graphql.String, func(u *users.User) any { return u.LastName }),
		},
	})
	t.comment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.Fields{
			"id":       field(graphql.NewNonNull(graphql.ID), func(n *notes.Note) any { return ToGlobalID("Comment", n.ID) }),
			"content":  field(graphql.NewNonNull(graphql.String), func(n *notes.Note) any { return n.Content }),
			"created":  field(graphql.DateTime, func(n *notes.Note) any { return n.Created }),
			"modified": field(graphql.DateTime, func(n *notes.Note) any { return n.Modified }),
			"user": &graphql.Field{
				Type: author,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					note, ok := p.Source.(*notes.Note)
					if !ok {
						return nil, nil
					}
					return accountService.Author(p.Context, note)
				},
			},
		},
	})

	t.fruit = graphql.NewObject(graphql.ObjectConfig{
		Name: "Fruit",
		Fields: graphql.Fields{
			"id":      field(graphql.NewNonNull(graphql.ID), func(f *fruits.Fruit) any { return ToGlobalID("Fruit", f.ID) }),
			"name":    field(graphql.NewNonNull(graphql.String), func(f *fruits.Fruit) any { return f.Name }),
			"type":    field(graphql.NewNonNull(graphql.String), func(f *fruits.Fruit) any { return string(f.Type) }),
			"created": field(graphql.DateTime, func(f *fruits.Fruit) any { return f.Created }),
		},
	})

	t.signin = graphql.NewObject(graphql.ObjectConfig{
		Name: "SigninPayload",
		Fields: graphql.Fields{
			"token":        field(graphql.NewNonNull(graphql.String), func(r *accounts.SigninResult) any { return r.Token }),
			"refreshToken": field(graphql.String, func(r *accounts.SigninResult) any { return nonEmpty(r.RefreshToken) }),
			"user":         field(t.user, func(r *accounts.SigninResult) any { return r.User }),
		},
	})

	t.tfa = graphql.NewObject(graphql.ObjectConfig{
		Name: "TfaPayload",
		Fields: graphql.Fields{
			"tfaSecret": field(graphql.String, func(r *accounts.TFAResult) any { return nonEmpty(r.Secret) }),
			"qrCode":    field(graphql.String, func(r *accounts.TFAResult) any { return nonEmpty(r.QRCode) }),
			"user":      field(t.user, func(r *accounts.TFAResult) any { return r.User }),
		},
	})

	t.users = connectionType(t.user)
	t.notes = connectionType(t.note)
	t.comments = connectionType(t.comment)
	t.fruits = connectionType(t.fruit)

	t.personInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PersonInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"firstName": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"lastName":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	return t
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
