package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-notes-server/accounts"
	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/notes"
	"github.com/jrsteele09/go-notes-server/pagination"
)

type noteRequest struct {
	Content *string `json:"content"`
}

func (s *Server) registerNoteRoutes(r chi.Router, prefix string) {
	s.handleFunc(r, prefix, "GET", RouteNotes, s.NotesHandler())
	s.handleFunc(r, prefix, "POST", RouteNotes, s.CreateNoteHandler())
	s.handleFunc(r, prefix, "GET", RouteNote, s.NoteHandler())
	s.handleFunc(r, prefix, "PATCH", RouteNote, s.UpdateNoteHandler())
	s.handleFunc(r, prefix, "DELETE", RouteNote, s.DeleteNoteHandler())

	s.handleFunc(r, prefix, "GET", RouteComments, s.CommentsHandler())
	s.handleFunc(r, prefix, "POST", RouteComments, s.CreateCommentHandler())
	s.handleFunc(r, prefix, "GET", RouteComment, s.CommentHandler())
	s.handleFunc(r, prefix, "PATCH", RouteComment, s.UpdateCommentHandler())
	s.handleFunc(r, prefix, "DELETE", RouteComment, s.DeleteCommentHandler())
}

func (s *Server) NotesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := s.services.Accounts.Notes(r.Context(), invocation(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeList(s, w, r, store, "notes")
	}
}

func (s *Server) CreateNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body noteRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		var content string
		if body.Content != nil {
			content = *body.Content
		}
		serve(w, r, http.StatusCreated, func(ctx context.Context, inv *auth.Invocation) (*notes.Note, error) {
			return s.services.Accounts.CreateNote(ctx, inv, content)
		})
	}
}

func (s *Server) NoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*notes.Note, error) {
			return s.services.Accounts.Note(ctx, inv, chi.URLParam(r, "id"))
		})
	}
}

func (s *Server) UpdateNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body noteRequest
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*notes.Note, error) {
			return s.services.Accounts.UpdateNote(ctx, inv, chi.URLParam(r, "id"), body.Content)
		})
	}
}

func (s *Server) DeleteNoteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			return s.services.Accounts.DeleteNote(ctx, inv, chi.URLParam(r, "id"))
		})
	}
}

// CommentsHandler lists comments together with their authors.
func (s *Server) CommentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args, err := s.pageArgs(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := r.Context()
		conn, err := pagination.FromStore(ctx, s.pages, s.services.Accounts.Comments(ctx), "comments", "id", args)
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, err := newListResponse(ctx, conn)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := listResponse[*accounts.Comment]{
			TotalCount: page.TotalCount,
			PageInfo:   page.PageInfo,
			Results:    make([]*accounts.Comment, 0, len(page.Results)),
		}
		for _, note := range page.Results {
			author, err := s.services.Accounts.Author(ctx, note)
			if err != nil {
				writeError(w, r, err)
				return
			}
			resp.Results = append(resp.Results, &accounts.Comment{Note: note, Author: author})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) CreateCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.CommentInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusCreated, func(ctx context.Context, inv *auth.Invocation) (*accounts.Comment, error) {
			return s.services.Accounts.CreateComment(ctx, inv, in)
		})
	}
}

func (s *Server) CommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, http.StatusOK, func(ctx context.Context, _ *auth.Invocation) (*accounts.Comment, error) {
			return s.services.Accounts.Comment(ctx, chi.URLParam(r, "id"))
		})
	}
}

func (s *Server) UpdateCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in accounts.CommentInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		serve(w, r, http.StatusOK, func(ctx context.Context, inv *auth.Invocation) (*accounts.Comment, error) {
			return s.services.Accounts.UpdateComment(ctx, inv, chi.URLParam(r, "id"), in)
		})
	}
}

func (s *Server) DeleteCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		noContent(w, r, func(ctx context.Context, inv *auth.Invocation) error {
			return s.services.Accounts.DeleteComment(ctx, inv, chi.URLParam(r, "id"))
		})
	}
}
