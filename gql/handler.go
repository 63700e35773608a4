package gql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/source"
	"github.com/jrsteele09/go-notes-server/auth"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxBodySize = 1 << 20

var (
	errUnreadableBody = errors.New("Unable to read the request body.")
	errInvalidJSON    = errors.New("POST body sent invalid JSON.")
)

type requestBody struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type response struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Handler serves GraphQL over HTTP. Transport problems (method, body, size)
// keep their HTTP status; everything else is reported in "errors" with 200.
type Handler struct {
	schema graphql.Schema
	guard  *Guard
	limits Limits
	cache  *IntrospectionCache
}

type HandlerOption func(*Handler)

// WithIntrospectionCache shares a schema cache, e.g. to reset it in tests.
func WithIntrospectionCache(cache *IntrospectionCache) HandlerOption {
	return func(h *Handler) {
		h.cache = cache
	}
}

func NewHandler(schema graphql.Schema, limits Limits, options ...HandlerOption) *Handler {
	h := &Handler{
		schema: schema,
		guard:  NewGuard(limits),
		limits: limits,
	}
	for _, opt := range options {
		opt(h)
	}
	if h.cache == nil {
		h.cache = NewIntrospectionCache()
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		w.Header().Set("Allow", http.MethodPost)
		writeErrors(w, http.StatusMethodNotAllowed, messageError("Only POST requests are allowed."))
		return
	default:
		w.Header().Set("Allow", "GET, POST")
		writeErrors(w, http.StatusMethodNotAllowed, messageError("Only GET and POST requests are allowed."))
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, messageError(err.Error()))
		return
	}
	if body.Query == "" {
		writeErrors(w, http.StatusBadRequest, messageError("Query string is required."))
		return
	}
	if size := utf8.RuneCountInString(body.Query); size > h.limits.MaxSize {
		writeErrors(w, http.StatusBadRequest, messageError(fmt.Sprintf(
			"Query string size of %d exceeds the limit of %d.", size, h.limits.MaxSize)))
		return
	}

	introspection := h.limits.Introspection && strings.Contains(body.Query, "__schema")
	if introspection {
		if data, ok := h.cache.Get(); ok {
			writeJSON(w, http.StatusOK, response{Data: data})
			return
		}
		body = requestBody{Query: IntrospectionQuery}
	}

	ctx := auth.WithRequest(r.Context(), auth.NewHTTPRequest(r))
	result, rejected := h.execute(ctx, body)
	if rejected != nil {
		writeJSON(w, http.StatusOK, response{Errors: rejected})
		return
	}

	resp := response{Data: result.Data, Errors: formatErrors(result.Errors)}
	if introspection && len(result.Errors) == 0 {
		if data, ok := result.Data.(map[string]any); ok && data["__schema"] != nil {
			h.cache.Set(result.Data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// execute parses, guards and validates the document before running it, so a
// rejected document never reaches a resolver.
func (h *Handler) execute(ctx context.Context, body requestBody) (*graphql.Result, []Error) {
	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{Body: []byte(body.Query), Name: "GraphQL request"}),
	})
	if err != nil {
		return nil, formatErrors([]gqlerrors.FormattedError{gqlerrors.FormatError(err)})
	}
	if err := h.guard.Check(doc); err != nil {
		fieldErrors, _ := apperrors.FieldErrors(err)
		return nil, fieldErrorsOf(fieldErrors)
	}
	validation := graphql.ValidateDocument(&h.schema, doc, nil)
	if !validation.IsValid && len(validation.Errors) > 0 {
		return nil, formatErrors(validation.Errors[:1])
	}
	return graphql.Execute(graphql.ExecuteParams{
		Schema:        h.schema,
		AST:           doc,
		OperationName: body.OperationName,
		Args:          body.Variables,
		Context:       ctx,
	}), nil
}

func readBody(r *http.Request) (requestBody, error) {
	var body requestBody
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return body, errUnreadableBody
	}
	if mediaType == "application/graphql" {
		body.Query = string(raw)
		return body, nil
	}
	if len(raw) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return body, errInvalidJSON
	}
	return body, nil
}

func writeErrors(w http.ResponseWriter, status int, errs []Error) {
	writeJSON(w, status, response{Errors: errs})
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Err(err).Msg("gql.writeJSON")
	}
}
