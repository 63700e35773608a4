package accounts

import (
	"context"
	"time"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/locks"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/social"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

// Service implements the account, note and comment operations shared by the
// REST, GraphQL and WebSocket surfaces. Every operation declares its own
// lock, throttle and guard steps, so a surface only has to build the
// invocation.
type Service struct {
	users   users.UserRepo
	notes   notes.Repo
	tokens  *token.Manager
	authn   *auth.Authenticator
	limiter *locks.Limiter
	socials *social.Registry
	mailer  Mailer
	files   FileStore
	nowFunc func() time.Time
}

type ServiceOption func(*Service)

func WithSocialRegistry(registry *social.Registry) ServiceOption {
	return func(s *Service) {
		s.socials = registry
	}
}

func WithMailer(mailer Mailer) ServiceOption {
	return func(s *Service) {
		s.mailer = mailer
	}
}

func WithFileStore(files FileStore) ServiceOption {
	return func(s *Service) {
		s.files = files
	}
}

func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func NewService(userRepo users.UserRepo, noteRepo notes.Repo, tokens *token.Manager, authn *auth.Authenticator, limiter *locks.Limiter, options ...ServiceOption) *Service {
	s := &Service{
		users:   userRepo,
		notes:   noteRepo,
		tokens:  tokens,
		authn:   authn,
		limiter: limiter,
		socials: social.NewRegistry(),
		mailer:  NewLogMailer(""),
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.nowFunc().UTC()
}

func (s *Service) lock(name string) auth.Step {
	return auth.Lock(s.limiter, locks.LockSpec{Name: name})
}

// lockBy keys the lock on one argument instead of the caller's address.
func (s *Service) lockBy(name, field string) auth.Step {
	return auth.Lock(s.limiter, locks.LockSpec{Name: name, Identity: locks.ByField(field)})
}

func (s *Service) throttle(name string, limit int, timeout time.Duration) auth.Step {
	return auth.Throttle(s.limiter, locks.ThrottleSpec{Name: name, Limit: limit, Timeout: timeout})
}

func require(guards ...auth.Guard) auth.Step {
	return auth.Require(auth.All(guards...))
}

// run executes fn behind steps and hands back its result.
func run[T any](ctx context.Context, inv *auth.Invocation, steps []auth.Step, fn func() (T, error)) (T, error) {
	var result T
	err := auth.Run(ctx, inv, steps, func() error {
		var err error
		result, err = fn()
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// withArg returns a copy of inv carrying one more argument.
func withArg(inv *auth.Invocation, key string, value any) *auth.Invocation {
	args := make(map[string]any, len(inv.Args)+1)
	for k, v := range inv.Args {
		args[k] = v
	}
	args[key] = value
	return &auth.Invocation{Request: inv.Request, Args: args}
}

// currentUser returns a copy of the authenticated user. Guards have already
// rejected anything but a persisted principal.
func currentUser(inv *auth.Invocation) (*users.User, error) {
	user := inv.Request.Principal().User()
	if user == nil {
		return nil, errors.Wrap(apperrors.ErrUserNotFound, "accounts.currentUser")
	}
	return user, nil
}

func (s *Service) save(ctx context.Context, user *users.User) error {
	if err := s.users.Upsert(ctx, user); err != nil {
		return errors.Wrapf(err, "Service.save %s", user.Username)
	}
	return nil
}
