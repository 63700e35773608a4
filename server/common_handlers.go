package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/common"
	"github.com/jrsteele09/go-notes-server/fruits"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
)

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) registerCommonRoutes(r chi.Router, prefix string) {
	s.handleFunc(r, prefix, "GET", RouteFruits, s.FruitsHandler())
	s.handleFunc(r, prefix, "POST", RouteFruits, s.CreateFruitHandler())
	s.handleFunc(r, prefix, "GET", RouteFruit, s.FruitHandler())
	s.handleFunc(r, prefix, "GET", RouteLocaltime, s.LocaltimeHandler())
	s.handleFunc(r, prefix, "POST", RouteEcho, s.EchoHandler())
	s.handleFunc(r, prefix, "POST", RouteRoomSend, s.RoomSendHandler())
}

// FruitsHandler pages the fixture, filtered by the "search" query parameter.
func (s *Server) FruitsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args, err := s.pageArgs(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, err := s.services.Common.Fruits(s.pages, r.URL.Query().Get("search"), args)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePage(w, r, page)
	}
}

func (s *Server) FruitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fruit := s.services.Common.Fruit(chi.URLParam(r, "id"))
		if fruit == nil {
			writeError(w, r, apperrors.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, fruit)
	}
}

func (s *Server) CreateFruitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in common.CreateFruitInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusCreated, func(context.Context, *auth.Invocation) (*fruits.Fruit, error) {
			return s.services.Common.CreateFruit(in)
		})
	}
}

func (s *Server) LocaltimeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"localtime": s.services.Common.Localtime().Format(time.RFC3339Nano),
		})
	}
}

func (s *Server) EchoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body messageRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (messageRequest, error) {
			echoed, err := s.services.Common.Echo(ctx, inv, body.Message)
			return messageRequest{Message: echoed}, err
		})
	}
}

// RoomSendHandler broadcasts a message to the sockets of a room on behalf of the caller.
func (s *Server) RoomSendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body messageRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			if body.Message == "" {
				return apperrors.NewValidationError("message", "This field is required.")
			}
			principal, err := s.services.Authn.AuthenticateOptional(ctx, inv.Request)
			if err != nil {
				return err
			}
			s.rooms.broadcast(chi.URLParam(r, "id"), chatMessage{User: displayName(principal), Message: body.Message})
			return nil
		})
	}
}
