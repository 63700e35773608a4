package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-notes-server/locks"
	"github.com/jrsteele09/go-notes-server/token"
)

type ctxKey struct{}

type result struct {
	principal *Principal
	err       error
}

// Request is the per-request authentication state. Each token kind is
// resolved at most once, however many guards ask.
type Request struct {
	Header   string // raw Authorization header
	ClientIP string

	lock      sync.Mutex
	results   map[token.Kind]result
	principal *Principal
}

func NewRequest(header, clientIP string) *Request {
	return &Request{
		Header:   header,
		ClientIP: clientIP,
		results:  make(map[token.Kind]result),
	}
}

func NewHTTPRequest(r *http.Request) *Request {
	return NewRequest(r.Header.Get("Authorization"), locks.ClientIP(r))
}

// WithRequest attaches req to ctx.
func WithRequest(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, ctxKey{}, req)
}

// RequestFrom returns the request attached to ctx, or an empty anonymous one.
func RequestFrom(ctx context.Context) *Request {
	if req, ok := ctx.Value(ctxKey{}).(*Request); ok {
		return req
	}
	return NewRequest("", "")
}

// Principal returns the principal resolved so far, anonymous if none.
func (r *Request) Principal() *Principal {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.principal == nil {
		return AnonymousPrincipal()
	}
	return r.principal
}

func (r *Request) cached(kind token.Kind) (result, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	res, ok := r.results[kind]
	return res, ok
}

func (r *Request) store(kind token.Kind, res result) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.results[kind] = res
	if res.err == nil {
		r.principal = res.principal
	}
}

func (r *Request) setAnonymous() {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.principal == nil {
		r.principal = AnonymousPrincipal()
	}
}
