package social

import (
	"context"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

const DefaultGoogleIssuer = "https://accounts.google.com"

// Google resolves access tokens through the OpenID userinfo endpoint found
// by discovery on the issuer.
type Google struct {
	issuer      string
	userInfoURL string
	httpClient  *http.Client
	lock        sync.Mutex
}

type GoogleOption func(*Google)

func WithGoogleIssuer(issuer string) GoogleOption {
	return func(g *Google) {
		g.issuer = issuer
	}
}

// WithUserInfoURL skips discovery
func WithUserInfoURL(url string) GoogleOption {
	return func(g *Google) {
		g.userInfoURL = url
	}
}

func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(g *Google) {
		g.httpClient = client
	}
}

func NewGoogle(options ...GoogleOption) *Google {
	g := &Google{issuer: DefaultGoogleIssuer}
	for _, opt := range options {
		opt(g)
	}
	return g
}

func (g *Google) Profile(ctx context.Context, token string) (*Profile, error) {
	url, err := g.endpoint(ctx)
	if err != nil {
		return nil, &Error{Field: "google", Message: "Connection error"}
	}
	me, err := fetchMe(ctx, g.httpClient, "google", url, token)
	if err != nil {
		return nil, err
	}
	if err := requireFields("google", me, "sub", "email"); err != nil {
		return nil, err
	}
	return &Profile{
		Username:   "go." + str(me, "sub"),
		Email:      str(me, "email"),
		FirstName:  str(me, "given_name"),
		MiddleName: str(me, "family_name"),
	}, nil
}

// endpoint discovers the userinfo url once. A failed discovery is retried on the next call.
func (g *Google) endpoint(ctx context.Context) (string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.userInfoURL != "" {
		return g.userInfoURL, nil
	}
	if g.httpClient != nil {
		ctx = oidc.ClientContext(ctx, g.httpClient)
	}
	provider, err := oidc.NewProvider(ctx, g.issuer)
	if err != nil {
		return "", errors.Wrap(err, "Google.endpoint discovery")
	}
	g.userInfoURL = provider.UserInfoEndpoint()
	if g.userInfoURL == "" {
		return "", errors.New("Google.endpoint issuer has no userinfo endpoint")
	}
	return g.userInfoURL, nil
}
