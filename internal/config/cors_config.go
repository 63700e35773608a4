package config

import (
	"strings"
	"time"
)

type Cors struct{}

var _ CorsConfig = Cors{}

const anyOrigin = "*"

// AllowedOrigins is the set of origins a browser may call the API from.
type AllowedOrigins map[string]struct{}

// Allows reports the value for Access-Control-Allow-Origin, and whether
// credentials may be shared with that origin. An empty value means the
// origin is refused.
func (a AllowedOrigins) Allows(origin string) (allowOrigin string, credentials bool) {
	if _, ok := a[origin]; ok {
		return origin, true
	}
	if a.Any() {
		return anyOrigin, false
	}
	return "", false
}

// Any reports whether every origin is allowed.
func (a AllowedOrigins) Any() bool {
	_, ok := a[anyOrigin]
	return ok
}

func (a AllowedOrigins) String() string {
	origins := make([]string, 0, len(a))
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins reads CORS_ALLOWED_ORIGINS, a comma separated list ("*" allows any origin).
func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, origin := range splitList(GetEnv("CORS_ALLOWED_ORIGINS", anyOrigin)) {
		origins[origin] = struct{}{}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return strings.Join(splitList(GetEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")), ", ")
}

func (Cors) GetAllowedHeaders() string {
	return strings.Join(splitList(GetEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-Request-Id")), ", ")
}

// GetCorsMaxAge is how long browsers may cache a preflight answer.
func (Cors) GetCorsMaxAge() time.Duration {
	return GetEnvSeconds("CORS_MAX_AGE", 86400)
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
