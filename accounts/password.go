package accounts

import (
	"context"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

type ChangePasswordInput struct {
	Current    string `json:"current"`
	Password   string `json:"password"`
	ExpireKeys *bool  `json:"expire_keys"` // defaults to true
}

// ChangePassword replaces the caller's password. Unless told otherwise it
// also revokes every token issued so far.
func (s *Service) ChangePassword(ctx context.Context, inv *auth.Invocation, in ChangePasswordInput) (*users.User, error) {
	steps := []auth.Step{
		s.lock("ChangePassword"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		v := &apperrors.ValidationError{}
		required(v, "current", in.Current)
		validPassword(v, "password", in.Password)
		if v.HasErrors() {
			return nil, v
		}
		user, err := currentUser(inv)
		if err != nil {
			return nil, err
		}
		if !user.CheckPassword(in.Current) {
			return nil, apperrors.NewValidationError("current", MsgWrongPassword)
		}
		if in.Current == in.Password {
			return nil, apperrors.NewValidationError("password", MsgSamePassword)
		}

		expireKeys := in.ExpireKeys == nil || *in.ExpireKeys
		if err := user.SetPassword(in.Password, expireKeys, s.now()); err != nil {
			return nil, err
		}
		if err := s.save(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	})
}

// SendPasswordToken mails a password reset link to the owner of username.
func (s *Service) SendPasswordToken(ctx context.Context, inv *auth.Invocation, username string) error {
	steps := []auth.Step{
		s.lock("SendPasswordToken"),
		s.throttle("SendPasswordToken", sendTokenLimit, sendTokenTimeout),
	}
	return auth.Run(ctx, inv, steps, func() error {
		v := &apperrors.ValidationError{}
		if !required(v, "username", username) {
			return v
		}
		user, err := s.users.GetByUsername(ctx, username)
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.NewValidationError("username", MsgUserNotFound)
		}
		if err != nil {
			return errors.Wrap(err, "Service.SendPasswordToken")
		}

		passwdToken, err := s.tokens.Issue(token.PasswordReset, user.ID, user.Rnd())
		if err != nil {
			return errors.Wrap(err, "Service.SendPasswordToken")
		}
		s.sendMail(ctx, "accounts.send_passwd_reset_mail", user.Username, func(ctx context.Context) error {
			return s.mailer.SendPasswordResetMail(ctx, passwdToken, user.Username, user.Email)
		})
		return nil
	})
}

func (s *Service) CheckPasswordToken(ctx context.Context, inv *auth.Invocation) error {
	return auth.Run(ctx, inv, []auth.Step{require(s.authn.PasswdTokenRequired())}, func() error {
		return nil
	})
}

// ResetPassword sets a new password for the owner of a password reset token
// and revokes every token issued so far, the reset token included.
func (s *Service) ResetPassword(ctx context.Context, inv *auth.Invocation, password string) (*users.User, error) {
	steps := []auth.Step{
		s.lock("ResetPassword"),
		require(s.authn.PasswdTokenRequired()),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		v := &apperrors.ValidationError{}
		if !validPassword(v, "password", password) {
			return nil, v
		}
		user, err := currentUser(inv)
		if err != nil {
			return nil, err
		}
		if err := user.SetPassword(password, true, s.now()); err != nil {
			return nil, err
		}
		if err := s.save(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	})
}
