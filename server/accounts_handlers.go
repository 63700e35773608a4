package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/users"
)

const (
	birthdayLayout   = "2006-01-02"
	msgInvalidDate   = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgNoFile        = "No file was submitted."
	maxMultipartSize = 2 << 20
)

// profileRequest is the JSON form of accounts.ProfileInput. Birthdays travel
// as plain dates.
type profileRequest struct {
	FirstName  *string `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name"`
	Birthday   *string `json:"birthday"`
}

func (p profileRequest) input() (accounts.ProfileInput, error) {
	in := accounts.ProfileInput{
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		LastName:   p.LastName,
	}
	if p.Birthday != nil && *p.Birthday != "" {
		birthday, err := time.Parse(birthdayLayout, *p.Birthday)
		if err != nil {
			return in, apperrors.NewValidationError("birthday", msgInvalidDate)
		}
		in.Birthday = &birthday
	}
	return in, nil
}

func (s *Server) registerAccountRoutes(r chi.Router, prefix string) {
	s.handleFunc(r, prefix, "POST", RouteCheckUser, s.CheckUserHandler())
	s.handleFunc(r, prefix, "POST", RouteSendSignupToken, s.SendSignupTokenHandler())
	s.handleFunc(r, prefix, "POST", RouteCheckSignupToken, s.CheckSignupTokenHandler())
	s.handleFunc(r, prefix, "POST", RouteSignup, s.SignupHandler())
	s.handleFunc(r, prefix, "POST", RouteSignin, s.SigninHandler())
	s.handleFunc(r, prefix, "POST", RouteSocialSignin, s.SocialSigninHandler())

	s.handleFunc(r, prefix, "GET", RouteMe, s.MeHandler())
	s.handleFunc(r, prefix, "PATCH", RouteMe, s.UpdateMeHandler())
	s.handleFunc(r, prefix, "PUT", RouteChangeAvatar, s.ChangeAvatarHandler())
	s.handleFunc(r, prefix, "POST", RouteRefreshToken, s.RefreshTokenHandler())
	s.handleFunc(r, prefix, "POST", RouteEnableTFA, s.EnableTFAHandler())
	s.handleFunc(r, prefix, "POST", RouteDisableTFA, s.DisableTFAHandler())

	s.handleFunc(r, prefix, "POST", RouteChangePassword, s.ChangePasswordHandler())
	s.handleFunc(r, prefix, "POST", RouteSendPasswordToken, s.SendPasswordTokenHandler())
	s.handleFunc(r, prefix, "POST", RouteCheckPasswordToken, s.CheckPasswordTokenHandler())
	s.handleFunc(r, prefix, "POST", RouteResetPassword, s.ResetPasswordHandler())

	s.handleFunc(r, prefix, "GET", RouteUsers, s.UsersHandler())
	s.handleFunc(r, prefix, "POST", RouteUsers, s.CreateUserHandler())
	s.handleFunc(r, prefix, "GET", RouteUser, s.UserHandler())
	s.handleFunc(r, prefix, "PATCH", RouteUser, s.UpdateUserHandler())
	s.handleFunc(r, prefix, "DELETE", RouteUser, s.DeleteUserHandler())
	s.handleFunc(r, prefix, "GET", RouteUserNotes, s.UserNotesHandler())
}

// CheckUserHandler answers 204 when the username is free and 400 when it is taken.
func (s *Server) CheckUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			available, err := s.services.Accounts.CheckUser(ctx, inv, body.Username)
			if err != nil {
				return err
			}
			if !available {
				return apperrors.NewValidationError("username", accounts.MsgUsernameInUse)
			}
			return nil
		})
	}
}

func (s *Server) SendSignupTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.SignupTokenInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			return s.services.Accounts.SendSignupToken(ctx, inv, in)
		})
	}
}

func (s *Server) CheckSignupTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, s.services.Accounts.CheckSignupToken)
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
			profileRequest
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		profile, err := body.input()
		if err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusCreated, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.Signup(ctx, inv, accounts.SignupInput{Password: body.Password, Profile: profile})
		})
	}
}

func (s *Server) SigninHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.SigninInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*accounts.SigninResult, error) {
			return s.services.Accounts.Signin(ctx, inv, in)
		})
	}
}

func (s *Server) SocialSigninHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.SocialSigninInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*accounts.SigninResult, error) {
			return s.services.Accounts.SocialSignin(ctx, inv, in)
		})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, http.StatusOK, s.services.Accounts.Me)
	}
}

func (s *Server) UpdateMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body profileRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		in, err := body.input()
		if err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.UpdateMe(ctx, inv, in)
		})
	}
}

// ChangeAvatarHandler reads the image from the multipart field "avatar".
func (s *Server) ChangeAvatarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxMultipartSize)
		file, _, err := r.FormFile("avatar")
		if err != nil {
			writeError(w, r, apperrors.NewValidationError("avatar", msgNoFile))
			return
		}
		defer file.Close()

		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.ChangeAvatar(ctx, inv, file)
		})
	}
}

func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, http.StatusOK, s.services.Accounts.RefreshToken)
	}
}

func (s *Server) EnableTFAHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*accounts.TFAResult, error) {
			return s.services.Accounts.EnableTFA(ctx, inv, body.Password)
		})
	}
}

func (s *Server) DisableTFAHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
			TFACode  string `json:"tfa_code"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*accounts.TFAResult, error) {
			return s.services.Accounts.DisableTFA(ctx, inv, body.Password, body.TFACode)
		})
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.ChangePasswordInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.ChangePassword(ctx, inv, in)
		})
	}
}

func (s *Server) SendPasswordTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			return s.services.Accounts.SendPasswordToken(ctx, inv, body.Username)
		})
	}
}

func (s *Server) CheckPasswordTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, s.services.Accounts.CheckPasswordToken)
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.ResetPassword(ctx, inv, body.Password)
		})
	}
}

func (s *Server) UsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := s.services.Accounts.Users(r.Context(), invocation(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeList(s, w, r, store, "users")
	}
}

func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.CreateUserInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusCreated, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.CreateUser(ctx, inv, in)
		})
	}
}

func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.User(ctx, inv, chi.URLParam(r, "id"))
		})
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body profileRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		in, err := body.input()
		if err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*users.User, error) {
			return s.services.Accounts.UpdateUser(ctx, inv, chi.URLParam(r, "id"), in)
		})
	}
}

func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			return s.services.Accounts.DeleteUser(ctx, inv, chi.URLParam(r, "id"))
		})
	}
}

func (s *Server) UserNotesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := s.services.Accounts.UserNotes(r.Context(), invocation(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeList(s, w, r, store, "notes")
	}
}
