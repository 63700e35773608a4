package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/pagination"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	msgServerError = "A server error occurred."
	msgNotFound    = "Not found."
	msgParseError  = "JSON parse error."
	msgInvalidInt  = "A valid integer is required."
)

// errorBody renders errors the REST way: messages grouped per field.
type errorBody map[string][]string

type pageInfo struct {
	StartCursor     *string `json:"start_cursor"`
	EndCursor       *string `json:"end_cursor"`
	HasPreviousPage bool    `json:"has_previous_page"`
	HasNextPage     bool    `json:"has_next_page"`
}

type listResponse[T any] struct {
	TotalCount int      `json:"total_count"`
	PageInfo   pageInfo `json:"page_info"`
	Results    []T      `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a field grouped body. Errors
// the client is not meant to see are logged and reported as a server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)
	if fieldErrors, ok := apperrors.FieldErrors(err); ok {
		body := errorBody{}
		for _, fe := range fieldErrors {
			field := fe.Field
			if field == "" {
				field = "non_field_errors"
			}
			body[field] = append(body[field], fe.Message)
		}
		writeJSON(w, status, body)
		return
	}
	if status == http.StatusNotFound {
		writeJSON(w, status, errorBody{"detail": {msgNotFound}})
		return
	}

	log.Error().Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{"detail": {msgServerError}})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperrors.NewValidationError("", msgParseError)
}

// invocation builds the guarded call for r. URL parameters become arguments
// so that locks and throttles can key on them.
func invocation(r *http.Request) *auth.Invocation {
	args := map[string]any{}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			args[key] = rctx.URLParams.Values[i]
		}
	}
	return &auth.Invocation{Request: auth.NewHTTPRequest(r), Args: args}
}

// pageArgs reads the pagination query parameters. limit is an alias of first,
// and a request without first or last gets the default page size.
func (s *Server) pageArgs(r *http.Request) (pagination.Args, error) {
	query := r.URL.Query()
	args := pagination.Args{}
	v := &apperrors.ValidationError{}

	intParam := func(name string) *int {
		raw := query.Get(name)
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			v.Add(name, msgInvalidInt)
			return nil
		}
		return &n
	}
	stringParam := func(name string) *string {
		if raw := query.Get(name); raw != "" {
			return &raw
		}
		return nil
	}

	args.First = intParam("first")
	if limit := intParam("limit"); args.First == nil {
		args.First = limit
	}
	args.Last = intParam("last")
	args.Offset = intParam("offset")
	args.After = stringParam("after")
	args.Before = stringParam("before")
	if err := v.Err(); err != nil {
		return args, err
	}

	if args.First == nil && args.Last == nil {
		size := s.config.GetPageSize()
		args.First = &size
	}
	return args, nil
}

// writeList pages store by id and writes the list response.
func writeList[T pagination.Cursorable](s *Server, w http.ResponseWriter, r *http.Request, store pagination.Store[T], name string) {
	args, err := s.pageArgs(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	conn, err := pagination.FromStore(r.Context(), s.pages, store, name, "id", args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, r, conn)
}

func writePage[T any](w http.ResponseWriter, r *http.Request, conn *pagination.Connection[T]) {
	resp, err := newListResponse(r.Context(), conn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func newListResponse[T any](ctx context.Context, conn *pagination.Connection[T]) (*listResponse[T], error) {
	total, err := conn.TotalCount(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "newListResponse total count")
	}
	return &listResponse[T]{
		TotalCount: total,
		PageInfo: pageInfo{
			StartCursor:     conn.PageInfo.StartCursor,
			EndCursor:       conn.PageInfo.EndCursor,
			HasPreviousPage: conn.PageInfo.HasPreviousPage,
			HasNextPage:     conn.PageInfo.HasNextPage,
		},
		Results: conn.Nodes(),
	}, nil
}

// serve runs fn for r and writes its result with status.
func serve[T any](w http.ResponseWriter, r *http.Request, status int, fn func(ctx context.Context, inv *auth.Invocation) (T, error)) {
	result, err := fn(r.Context(), invocation(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, result)
}

func noContent(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, inv *auth.Invocation) error) {
	if err := fn(r.Context(), invocation(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
