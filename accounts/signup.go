package accounts

import (
	"context"
	"time"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

const (
	sendTokenLimit   = 1
	sendTokenTimeout = 300 * time.Second
)

type SignupTokenInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type SignupInput struct {
	Password string       `json:"password"`
	Profile  ProfileInput `json:"profile"`
}

// CheckUser reports whether username is still available.
func (s *Service) CheckUser(ctx context.Context, inv *auth.Invocation, username string) (bool, error) {
	return run(ctx, inv, []auth.Step{s.lock("CheckUser")}, func() (bool, error) {
		v := &apperrors.ValidationError{}
		if !validUsername(v, "username", username) {
			return false, v
		}
		exists, err := s.users.ExistsUsername(ctx, username)
		if err != nil {
			return false, errors.Wrap(err, "Service.CheckUser")
		}
		return !exists, nil
	})
}

// SendSignupToken mails a signup token that carries the provisional profile.
func (s *Service) SendSignupToken(ctx context.Context, inv *auth.Invocation, in SignupTokenInput) error {
	steps := []auth.Step{
		s.lock("SendSignupToken"),
		s.throttle("SendSignupToken", sendTokenLimit, sendTokenTimeout),
	}
	return auth.Run(ctx, inv, steps, func() error {
		v := &apperrors.ValidationError{}
		if validUsername(v, "username", in.Username) {
			exists, err := s.users.ExistsUsername(ctx, in.Username)
			if err != nil {
				return errors.Wrap(err, "Service.SendSignupToken")
			}
			if exists {
				v.Add("username", MsgUsernameInUse)
			}
		}
		validEmail(v, "email", in.Email, true)
		maxLength(v, "phone", in.Phone, maxPhoneLength)
		if v.HasErrors() {
			return v
		}

		signupToken, err := s.tokens.IssueSignup(in.Username, in.Email, in.Phone)
		if err != nil {
			return errors.Wrap(err, "Service.SendSignupToken")
		}
		s.sendMail(ctx, "accounts.send_signup_mail", in.Email, func(ctx context.Context) error {
			return s.mailer.SendSignupMail(ctx, signupToken, in.Email)
		})
		return nil
	})
}

func (s *Service) CheckSignupToken(ctx context.Context, inv *auth.Invocation) error {
	return auth.Run(ctx, inv, []auth.Step{require(s.authn.SignupTokenRequired())}, func() error {
		return nil
	})
}

// Signup stores the user described by the signup token.
func (s *Service) Signup(ctx context.Context, inv *auth.Invocation, in SignupInput) (*users.User, error) {
	steps := []auth.Step{
		s.lock("Signup"),
		require(s.authn.SignupTokenRequired()),
	}
	return run(ctx, inv, steps, func() (*users.User, error) {
		v := &apperrors.ValidationError{}
		validPassword(v, "password", in.Password)
		in.Profile.validate(v)
		if v.HasErrors() {
			return nil, v
		}

		principal := inv.Request.Principal()
		exists, err := s.users.ExistsUsername(ctx, principal.Username)
		if err != nil {
			return nil, errors.Wrap(err, "Service.Signup")
		}
		if exists {
			return nil, apperrors.NewValidationError("token", MsgInvalidToken)
		}

		now := s.now()
		user := users.New(principal.Username, now)
		user.Email = principal.Email
		user.Phone = principal.Phone
		in.Profile.apply(user)
		if err := user.SetPassword(in.Password, false, now); err != nil {
			return nil, err
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			if apperrors.Is(err, apperrors.ErrUserExists) {
				return nil, apperrors.NewValidationError("token", MsgInvalidToken)
			}
			return nil, errors.Wrap(err, "Service.Signup")
		}
		return user, nil
	})
}
