package accounts

import (
	"context"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Service) staff(perm string) auth.Step {
	return require(s.authn.StaffRequired(), s.authn.HasPerm(perm))
}

// Users pages over the active users.
func (s *Service) Users(ctx context.Context, inv *auth.Invocation) (pagination.Store[*users.User], error) {
	return run(ctx, inv, []auth.Step{s.staff(users.PermViewUser)}, func() (pagination.Store[*users.User], error) {
		return s.users.Store(ctx), nil
	})
}

func (s *Service) User(ctx context.Context, inv *auth.Invocation, id string) (*users.User, error) {
	return run(ctx, inv, []auth.Step{s.staff(users.PermViewUser)}, func() (*users.User, error) {
		return s.users.GetByID(ctx, id)
	})
}

func (s *Service) CreateUser(ctx context.Context, inv *auth.Invocation, in CreateUserInput) (*users.User, error) {
	steps := []auth.Step{
		s.lock("CreateUser"),
		s.staff(users.PermAddUser),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		v := &apperrors.ValidationError{}
		validUsername(v, "username", in.Username)
		validPassword(v, "password", in.Password)
		if v.HasErrors() {
			return nil, v
		}

		now := s.now()
		user := users.New(in.Username, now)
		if err := user.SetPassword(in.Password, false, now); err != nil {
			return nil, err
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			if apperrors.Is(err, apperrors.ErrUserExists) {
				return nil, apperrors.NewValidationError("username", MsgUserExists)
			}
			return nil, errors.Wrap(err, "Service.CreateUser")
		}
		return user, nil
	})
}

func (s *Service) UpdateUser(ctx context.Context, inv *auth.Invocation, id string, in ProfileInput) (*users.User, error) {
	inv = withArg(inv, "id", id)
	steps := []auth.Step{
		s.lockBy("UpdateUser", "id"),
		s.staff(users.PermChangeUser),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		v := &apperrors.ValidationError{}
		if in.validate(v); v.HasErrors() {
			return nil, v
		}
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		in.apply(user)
		if err := s.save(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	})
}

func (s *Service) DeleteUser(ctx context.Context, inv *auth.Invocation, id string) error {
	inv = withArg(inv, "id", id)
	steps := []auth.Step{
		s.lockBy("DeleteUser", "id"),
		s.staff(users.PermDeleteUser),
	}
	return auth.Run(ctx, inv, steps, func() error {
		return s.users.Delete(ctx, id)
	})
}

// UserNotes pages over the notes of any user.
func (s *Service) UserNotes(ctx context.Context, inv *auth.Invocation, userID string) (pagination.Store[*notes.Note], error) {
	return run(ctx, inv, []auth.Step{s.staff(users.PermViewNote)}, func() (pagination.Store[*notes.Note], error) {
		return s.notes.Store(ctx, userID), nil
	})
}
