package social

import (
	"context"
	"net/http"
	"strings"
)

const DefaultFacebookGraphURL = "https://graph.facebook.com/v3.3"

const facebookFields = "id,name,first_name,middle_name,last_name,email,birthday"

type Facebook struct {
	graphURL   string
	httpClient *http.Client
}

type FacebookOption func(*Facebook)

func WithGraphURL(url string) FacebookOption {
	return func(f *Facebook) {
		f.graphURL = strings.TrimSuffix(url, "/")
	}
}

func WithFacebookHTTPClient(client *http.Client) FacebookOption {
	return func(f *Facebook) {
		f.httpClient = client
	}
}

func NewFacebook(options ...FacebookOption) *Facebook {
	f := &Facebook{graphURL: DefaultFacebookGraphURL}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *Facebook) Profile(ctx context.Context, token string) (*Profile, error) {
	me, err := fetchMe(ctx, f.httpClient, "facebook", f.graphURL+"/me?fields="+facebookFields, token)
	if err != nil {
		return nil, err
	}
	if err := requireFields("facebook", me, "id", "email"); err != nil {
		return nil, err
	}
	return &Profile{
		Username:   "fb." + str(me, "id"),
		Email:      str(me, "email"),
		FirstName:  str(me, "first_name"),
		MiddleName: str(me, "middle_name"),
		LastName:   str(me, "last_name"),
	}, nil
}
