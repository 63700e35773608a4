package social

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Profile is what a provider tells us about the person behind a token.
type Profile struct {
	Username   string // provider-scoped, e.g. "go.<sub>"
	Email      string
	FirstName  string
	MiddleName string
	LastName   string
}

// Backend turns a provider access token into a profile. Provider failures
// are returned as *Error.
type Backend interface {
	Profile(ctx context.Context, token string) (*Profile, error)
}

// Error is a sign in failure reported against one input field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

func (e *Error) StatusCode() int {
	return http.StatusBadRequest
}

func (e *Error) FieldError() apperrors.FieldError {
	return apperrors.FieldError{Field: e.Field, Message: e.Message}
}

// Registry maps provider names to backends.
type Registry struct {
	backends map[string]Backend
}

func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

func (r *Registry) Register(name string, backend Backend) {
	r.backends[name] = backend
}

func (r *Registry) Get(name string) (Backend, bool) {
	backend, ok := r.backends[name]
	return backend, ok
}

// Names returns the registered provider names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dummy accepts any token. It is meant for development and tests.
type Dummy struct{}

func (Dummy) Profile(_ context.Context, token string) (*Profile, error) {
	sum := md5.Sum([]byte(token))
	return &Profile{
		Username: "dummy." + hex.EncodeToString(sum[:]),
		Email:    "dummy@mail.com",
	}, nil
}

// fetchMe calls url with token as bearer credential and decodes the JSON body.
// Transport and status failures are reported under the provider's field.
func fetchMe(ctx context.Context, httpClient *http.Client, provider, url, token string) (map[string]any, error) {
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "social.fetchMe request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Field: provider, Message: "Connection error"}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &Error{Field: provider, Message: "Unauthorized"}
	case resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Field: provider, Message: "Access denied"}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &Error{Field: provider, Message: "Unprocessed entity"}
	case resp.StatusCode == 499:
		return nil, &Error{Field: provider, Message: "Unknown error"}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{Field: provider, Message: "Client error"}
	}

	me := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, &Error{Field: provider, Message: "Client error"}
	}
	if apiErr, ok := me["error"].(map[string]any); ok {
		message, _ := apiErr["message"].(string)
		return nil, &Error{Field: provider, Message: message}
	}
	return me, nil
}

func requireFields(provider string, me map[string]any, required ...string) error {
	for _, field := range required {
		if _, ok := me[field]; !ok {
			got := make([]string, 0, len(me))
			for key := range me {
				got = append(got, key)
			}
			sort.Strings(got)
			return &Error{
				Field: "token",
				Message: fmt.Sprintf("Invalid %s fields \"%s\", must be \"%s\".",
					provider, strings.Join(got, ", "), strings.Join(required, ", ")),
			}
		}
	}
	return nil
}

func str(me map[string]any, key string) string {
	switch v := me[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
