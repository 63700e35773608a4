package accounts

import (
	"context"
	"io"
	"time"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

// ProfileInput holds the editable profile fields. Nil fields are left unchanged.
type ProfileInput struct {
	FirstName  *string    `json:"first_name"`
	MiddleName *string    `json:"middle_name"`
	LastName   *string    `json:"last_name"`
	Birthday   *time.Time `json:"birthday"`
}

func (p ProfileInput) validate(v *apperrors.ValidationError) {
	for field, value := range map[string]*string{
		"first_name":  p.FirstName,
		"middle_name": p.MiddleName,
		"last_name":   p.LastName,
	} {
		if value != nil {
			maxLength(v, field, *value, maxNameLength)
		}
	}
}

func (p ProfileInput) apply(user *users.User) {
	if p.FirstName != nil {
		user.FirstName = *p.FirstName
	}
	if p.MiddleName != nil {
		user.MiddleName = *p.MiddleName
	}
	if p.LastName != nil {
		user.LastName = *p.LastName
	}
	if p.Birthday != nil {
		birthday := *p.Birthday
		user.Birthday = &birthday
	}
}

func (s *Service) Me(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
	return run(ctx, inv, []auth.Step{require(s.authn.AuthRequired())}, func() (*users.User, error) {
		return currentUser(inv)
	})
}

func (s *Service) UpdateMe(ctx context.Context, inv *auth.Invocation, in ProfileInput) (*users.User, error) {
	steps := []auth.Step{
		s.lock("UpdateMe"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		v := &apperrors.ValidationError{}
		if in.validate(v); v.HasErrors() {
			return nil, v
		}
		user, err := currentUser(inv)
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

// ChangeAvatar stores a png or jpeg image of at most MaxAvatarSize bytes as the caller's avatar.
func (s *Service) ChangeAvatar(ctx context.Context, inv *auth.Invocation, content io.Reader) (*users.User, error) {
	steps := []auth.Step{
		s.lock("ChangeAvatar"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		if s.files == nil {
			return nil, errors.Wrap(apperrors.ErrUnsupported, "Service.ChangeAvatar no file store")
		}
		if content == nil {
			return nil, apperrors.NewValidationError("avatar", MsgRequired)
		}
		image, ext, err := readAvatar(content)
		if err != nil {
			return nil, err
		}
		user, err := currentUser(inv)
		if err != nil {
			return nil, err
		}

		url, err := s.files.Save(ctx, avatarName(user.ID, ext), image)
		if err != nil {
			return nil, errors.Wrap(err, "Service.ChangeAvatar")
		}
		previous := user.Avatar
		user.Avatar = url
		if err := s.save(ctx, user); err != nil {
			return nil, err
		}
		if previous != "" {
			s.files.Remove(ctx, previous)
		}
		return user, nil
	})
}
