package accounts

import (
	"context"
	"time"

	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/social"
	"github.com/jrsteele09/go-notes-server/token"
	"github.com/jrsteele09/go-notes-server/users"
	"github.com/pkg/errors"
)

const (
	signinLimit   = 3
	signinTimeout = 600 * time.Second
)

type SigninInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TFACode  string `json:"tfa_code"`
}

type SocialSigninInput struct {
	Social  string `json:"social"`
	Token   string `json:"token"`
	TFACode string `json:"tfa_code"`
}

type SigninResult struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         *users.User `json:"user"`
}

type TFAResult struct {
	Secret string      `json:"tfa_secret"`
	QRCode string      `json:"qr_code,omitempty"`
	User   *users.User `json:"user"`
}

func (s *Service) Signin(ctx context.Context, inv *auth.Invocation, in SigninInput) (*SigninResult, error) {
	steps := []auth.Step{
		s.lock("Signin"),
		s.throttle("Signin", signinLimit, signinTimeout),
	}
	return run(ctx, inv, steps, func() (*SigninResult, error) {
		v := &apperrors.ValidationError{}
		required(v, "username", in.Username)
		required(v, "password", in.Password)
		if v.HasErrors() {
			return nil, v
		}

		user, err := s.users.GetByUsername(ctx, in.Username)
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewValidationError("username", MsgUserNotFound)
		}
		if err != nil {
			return nil, errors.Wrap(err, "Service.Signin lookup")
		}
		if !user.Active {
			return nil, apperrors.NewValidationError("username", MsgUserInactive)
		}
		if !user.CheckPassword(in.Password) {
			return nil, apperrors.NewValidationError("password", MsgWrongPassword)
		}
		if err := s.checkTFA(user, in.TFACode); err != nil {
			return nil, err
		}
		return s.signedIn(ctx, user, true)
	})
}

func (s *Service) SocialSignin(ctx context.Context, inv *auth.Invocation, in SocialSigninInput) (*SigninResult, error) {
	steps := []auth.Step{
		s.lock("SocialSignin"),
		s.throttle("SocialSignin", signinLimit, signinTimeout),
	}
	return run(ctx, inv, steps, func() (*SigninResult, error) {
		v := &apperrors.ValidationError{}
		required(v, "social", in.Social)
		required(v, "token", in.Token)
		if v.HasErrors() {
			return nil, v
		}
		backend, ok := s.socials.Get(in.Social)
		if !ok {
			return nil, apperrors.NewValidationError("social", MsgSocialNotImplemented)
		}

		profile, err := backend.Profile(ctx, in.Token)
		var socialErr *social.Error
		if errors.As(err, &socialErr) {
			return nil, apperrors.NewValidationError(socialErr.Field, socialErr.Message)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Service.SocialSignin %s", in.Social)
		}

		user, err := s.socialUser(ctx, profile)
		if err != nil {
			return nil, err
		}
		if !user.Active {
			return nil, apperrors.NewValidationError("username", MsgUserInactive)
		}
		if err := s.checkTFA(user, in.TFACode); err != nil {
			return nil, err
		}
		return s.signedIn(ctx, user, true)
	})
}

// RefreshToken trades a refresh token for a new access token.
func (s *Service) RefreshToken(ctx context.Context, inv *auth.Invocation) (*SigninResult, error) {
	steps := []auth.Step{
		s.lock("RefreshToken"),
		require(s.authn.RefreshTokenRequired()),
	}
	return run(ctx, inv, steps, func() (*SigninResult, error) {
		user, err := currentUser(inv)
		if err != nil {
			return nil, err
		}
		return s.signedIn(ctx, user, false)
	})
}

func (s *Service) EnableTFA(ctx context.Context, inv *auth.Invocation, password string) (*TFAResult, error) {
	steps := []auth.Step{
		s.lock("EnableTFA"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*TFAResult, error) {
		v := &apperrors.ValidationError{}
		if !required(v, "password", password) {
			return nil, v
		}
		user, err := currentUser(inv)
		if err != nil {
			return nil, err
		}
		if user.TFAActive() {
			return nil, apperrors.NewValidationError("tfa_secret", MsgTFAEnabled)
		}
		if !user.CheckPassword(password) {
			return nil, apperrors.NewValidationError("password", MsgWrongPassword)
		}

		secret, err := user.EnableTFA()
		if err != nil {
			return nil, errors.Wrap(err, "Service.EnableTFA")
		}
		qrCode, err := user.TFAQRCode()
		if err != nil {
			return nil, errors.Wrap(err, "Service.EnableTFA")
		}
		if err := s.save(ctx, user); err != nil {
			return nil, err
		}
		return &TFAResult{Secret: secret, QRCode: qrCode, User: user}, nil
	})
}

func (s *Service) DisableTFA(ctx context.Context, inv *auth.Invocation, password, tfaCode string) (*TFAResult, error) {
	steps := []auth.Step{
		s.lock("DisableTFA"),
		require(s.authn.AuthRequired()),
	}
	return run(ctx, inv, steps, func() (*TFAResult, error) {
		v := &apperrors.ValidationError{}
		required(v, "password", password)
		if required(v, "tfa_code", tfaCode) {
			maxLength(v, "tfa_code", tfaCode, tfaCodeLength)
		}
		if v.HasErrors() {
			return nil, v
		}
		user, err := currentUser(inv)
		if err != nil {
			return nil, err
		}
		if !user.TFAActive() {
			return nil, apperrors.NewValidationError("tfa_secret", MsgTFANotEnabled)
		}
		if !user.CheckPassword(password) {
			return nil, apperrors.NewValidationError("password", MsgWrongPassword)
		}
		if !user.CheckTFACode(tfaCode, s.now()) {
			return nil, apperrors.NewValidationError("tfa_code", MsgWrongTFACode)
		}

		user.DisableTFA()
		if err := s.save(ctx, user); err != nil {
			return nil, err
		}
		return &TFAResult{User: user}, nil
	})
}

// checkTFA asks for the second factor when the user enabled it.
func (s *Service) checkTFA(user *users.User, code string) error {
	if !user.TFAActive() {
		return nil
	}
	if code == "" {
		return apperrors.NewValidationError("tfa_code", MsgRequired)
	}
	if !user.CheckTFACode(code, s.now()) {
		return apperrors.NewValidationError("tfa_code", MsgWrongTFACode)
	}
	return nil
}

// socialUser returns the user behind a provider profile, creating it on first sign in.
func (s *Service) socialUser(ctx context.Context, profile *social.Profile) (*users.User, error) {
	user, err := s.users.GetByUsername(ctx, profile.Username)
	if err == nil {
		return user, nil
	}
	if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, errors.Wrap(err, "Service.socialUser lookup")
	}

	user = users.New(profile.Username, s.now())
	user.Email = profile.Email
	user.FirstName = profile.FirstName
	user.MiddleName = profile.MiddleName
	user.LastName = profile.LastName
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// signedIn issues the tokens handed out after a successful sign in.
func (s *Service) signedIn(ctx context.Context, user *users.User, withRefresh bool) (*SigninResult, error) {
	result := &SigninResult{User: user}
	var err error
	if result.Token, err = s.tokens.Issue(token.Access, user.ID, user.Rnd()); err != nil {
		return nil, errors.Wrap(err, "Service.signedIn access")
	}
	if !withRefresh {
		return result, nil
	}
	if result.RefreshToken, err = s.tokens.Issue(token.Refresh, user.ID, user.Rnd()); err != nil {
		return nil, errors.Wrap(err, "Service.signedIn refresh")
	}
	user.UpdateLastLogin(s.now())
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return result, nil
}
