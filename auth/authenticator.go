package auth

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultKeyword = "Bearer"

// UserLookup is the part of users.UserRepo authentication needs.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// FailureRecorder is told why authentication failed. internal/metrics implements it.
type FailureRecorder interface {
	AuthFailed(kind string)
}

type nopFailureRecorder struct{}

func (nopFailureRecorder) AuthFailed(string) {}

// Authenticator resolves bearer tokens into principals.
type Authenticator struct {
	tokens   *token.Manager
	users    UserLookup
	keyword  string
	recorder FailureRecorder
}

type AuthenticatorOption func(*Authenticator)

// WithKeyword sets the Authorization scheme keyword (case sensitive)
func WithKeyword(keyword string) AuthenticatorOption {
	return func(a *Authenticator) {
		a.keyword = keyword
	}
}

func WithFailureRecorder(recorder FailureRecorder) AuthenticatorOption {
	return func(a *Authenticator) {
		a.recorder = recorder
	}
}

func NewAuthenticator(tokens *token.Manager, users UserLookup, options ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		tokens:   tokens,
		users:    users,
		keyword:  DefaultKeyword,
		recorder: nopFailureRecorder{},
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *Authenticator) Keyword() string {
	return a.keyword
}

// Authenticate resolves the request's token as a token of the given kind.
// The outcome, success or failure, is cached on req.
func (a *Authenticator) Authenticate(ctx context.Context, req *Request, kind token.Kind) (*Principal, error) {
	if res, ok := req.cached(kind); ok {
		return res.principal, res.err
	}

	principal, err := a.authenticate(ctx, req.Header, kind)
	var authErr *AuthError
	if err != nil && !errors.As(err, &authErr) {
		// lookup failures are not cached, the next guard may retry
		return nil, err
	}
	if authErr != nil {
		a.recorder.AuthFailed(kind.String())
		log.Debug().Str("kind", kind.String()).Str("reason", authErr.Message).Msg("authentication failed")
	}
	req.store(kind, result{principal: principal, err: err})
	return principal, err
}

// AuthenticateOptional is Authenticate, except a credential failure leaves
// the request anonymous instead of failing.
func (a *Authenticator) AuthenticateOptional(ctx context.Context, req *Request) (*Principal, error) {
	principal, err := a.Authenticate(ctx, req, token.Access)
	var authErr *AuthError
	if errors.As(err, &authErr) {
		req.setAnonymous()
		return req.Principal(), nil
	}
	return principal, err
}

func (a *Authenticator) authenticate(ctx context.Context, header string, kind token.Kind) (*Principal, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || parts[0] != a.keyword {
		return nil, NewAuthError("The token was not provided.")
	}
	if len(parts) != 2 {
		return nil, NewAuthError("The token should not contain spaces.")
	}
	raw := parts[1]
	if !utf8.ValidString(raw) {
		return nil, NewAuthError("The token should not contain invalid characters.")
	}

	claims, err := a.tokens.Decode(raw)
	if err != nil {
		return nil, NewAuthError("The token provided is wrong.")
	}
	if !a.tokens.Is(claims, kind) {
		return nil, NewAuthError(fmt.Sprintf("The token type should be \"%s\".", a.tokens.Type(kind)))
	}

	if kind == token.Signup {
		return EphemeralPrincipal(claims.Subject, claims.Email, claims.Phone), nil
	}

	user, err := a.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) || apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, NewAuthError("The user does not exist.")
		}
		return nil, errors.Wrap(err, "Authenticator.authenticate user lookup")
	}
	if !user.Active {
		return nil, NewAuthError("The user is inactive.")
	}
	if claims.Renewed == nil || *claims.Renewed != user.Rnd() {
		return nil, NewAuthError("The token has been revoked.")
	}
	return PersistedPrincipal(user), nil
}
