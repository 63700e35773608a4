package auth

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-notes-server/token"
	"github.com/pkg/errors"
)

const (
	PermissionDenied     = "Permission denied."
	AuthenticationFailed = "Authentication failed."
)

// Guard lets a handler run or fails before it does.
type Guard interface {
	Check(ctx context.Context, req *Request) error
}

type GuardFunc func(ctx context.Context, req *Request) error

func (f GuardFunc) Check(ctx context.Context, req *Request) error {
	return f(ctx, req)
}

// Test is a guard predicate. Returning an *AuthError fails authentication.
type Test func(ctx context.Context, req *Request) (bool, error)

// PassTest fails with field and message when test is false. Credential
// failures from test are reported under field with their own message.
// A false test on the "auth" field is an authentication failure, anything
// else is a permission failure.
func PassTest(test Test, field, message string) Guard {
	return GuardFunc(func(ctx context.Context, req *Request) error {
		ok, err := test(ctx, req)
		var authErr *AuthError
		switch {
		case errors.As(err, &authErr):
			return &AuthError{Field: field, Message: authErr.Message}
		case err != nil:
			return err
		case ok:
			return nil
		case field == "auth":
			return &AuthError{Field: field, Message: message}
		}
		return &PermissionError{Field: field, Message: message}
	})
}

// All runs guards in order, stopping at the first failure.
func All(guards ...Guard) Guard {
	return GuardFunc(func(ctx context.Context, req *Request) error {
		for _, g := range guards {
			if err := g.Check(ctx, req); err != nil {
				return err
			}
		}
		return nil
	})
}

func (a *Authenticator) tokenRequired(kind token.Kind) Guard {
	return PassTest(func(ctx context.Context, req *Request) (bool, error) {
		principal, err := a.Authenticate(ctx, req, kind)
		if err != nil {
			return false, err
		}
		return principal.IsAuthenticated(), nil
	}, "auth", AuthenticationFailed)
}

// AuthRequired needs a valid access token.
func (a *Authenticator) AuthRequired() Guard {
	return a.tokenRequired(token.Access)
}

func (a *Authenticator) RefreshTokenRequired() Guard {
	return a.tokenRequired(token.Refresh)
}

func (a *Authenticator) SignupTokenRequired() Guard {
	return a.tokenRequired(token.Signup)
}

func (a *Authenticator) PasswdTokenRequired() Guard {
	return a.tokenRequired(token.PasswordReset)
}

// Optional authenticates when it can and never fails on bad credentials.
func (a *Authenticator) Optional() Guard {
	return GuardFunc(func(ctx context.Context, req *Request) error {
		_, err := a.AuthenticateOptional(ctx, req)
		return err
	})
}

func (a *Authenticator) StaffRequired() Guard {
	return All(a.AuthRequired(), PassTest(func(_ context.Context, req *Request) (bool, error) {
		return req.Principal().Staff, nil
	}, "perm", "Staff permission is required to perform this action."))
}

func (a *Authenticator) SuperuserRequired() Guard {
	return All(a.AuthRequired(), PassTest(func(_ context.Context, req *Request) (bool, error) {
		return req.Principal().Superuser, nil
	}, "perm", "Superuser permission is required to perform this action."))
}

// HasPerm needs a valid access token whose user holds perm.
func (a *Authenticator) HasPerm(perm string) Guard {
	return All(a.AuthRequired(), PassTest(func(_ context.Context, req *Request) (bool, error) {
		return req.Principal().HasPerm(perm), nil
	}, "perm", fmt.Sprintf("\"%s\" permission is required to perform this action.", perm)))
}
