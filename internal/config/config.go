package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	TokenConfig
	GQLConfig
	PaginationConfig
	CacheConfig
	DatabaseConfig
	SocialConfig
	WebSocketConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetSecretKey() string
	GetSecretKeyFallbacks() []string
	GetLogLevel() string
	GetEnv() string
	GetAdminUsername() string
	GetAdminPassword() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
	GetCorsMaxAge() time.Duration
}

type CacheConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type DatabaseConfig interface {
	GetDatabaseURL() string
	GetRunMigrations() bool
}

type SocialConfig interface {
	GetGoogleIssuer() string
	GetFacebookGraphURL() string
}

type WebSocketConfig interface {
	GetWSMessageRate() float64
	GetWSMessageBurst() int
	GetWSWriteTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Cors
	Tokens
	GQL
	Pagination
	Cache
	Database
	Social
	WebSocket
}

func New() Config {
	return mainConfig{}
}
