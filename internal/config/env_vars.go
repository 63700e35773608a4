package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	baseURLVar   = "BASE_URL"
	secretKeyVar = "SECRET_KEY"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Notes Server")
}

// GetDataFolder is where uploaded files (avatars) are written.
func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

// GetBaseURL returns the public URL of the server, used to build file URLs.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetSecretKey() string {
	return GetEnv(secretKeyVar, "insecure-development-secret")
}

// GetSecretKeyFallbacks lists retired secrets, comma separated. Tokens
// signed with them still verify.
func (EnvVars) GetSecretKeyFallbacks() []string {
	return splitList(GetEnv("SECRET_KEY_FALLBACKS", ""))
}

func (EnvVars) GetLogLevel() string {
	return GetEnv("LOG_LEVEL", "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetAdminUsername() string {
	return GetEnv("ADMIN_USERNAME", "admin")
}

// GetAdminPassword is the bootstrap superuser password. Empty generates one.
func (EnvVars) GetAdminPassword() string {
	return GetEnv("ADMIN_PASSWORD", "")
}

type Cache struct{}

var _ CacheConfig = Cache{}

// GetRedisAddr returns a comma separated address list. Empty selects the in-memory cache.
func (Cache) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Cache) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Cache) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

type Database struct{}

var _ DatabaseConfig = Database{}

// GetDatabaseURL returns the postgres URL. Empty selects the in-memory repositories.
func (Database) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

func (Database) GetRunMigrations() bool {
	return GetEnvBool("DATABASE_MIGRATE", true)
}

type Social struct{}

var _ SocialConfig = Social{}

func (Social) GetGoogleIssuer() string {
	return GetEnv("GOOGLE_ISSUER", "https://accounts.google.com")
}

func (Social) GetFacebookGraphURL() string {
	return GetEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v3.3")
}

type WebSocket struct{}

var _ WebSocketConfig = WebSocket{}

// GetWSMessageRate is the sustained number of inbound frames per second per connection.
func (WebSocket) GetWSMessageRate() float64 {
	return GetEnvFloat("WS_MESSAGE_RATE", 5)
}

func (WebSocket) GetWSMessageBurst() int {
	return GetEnvInt("WS_MESSAGE_BURST", 10)
}

func (WebSocket) GetWSWriteTimeout() time.Duration {
	return GetEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvFloat(envVar string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(envVar), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvBool accepts the strconv.ParseBool spellings ("1", "true", "False", ...).
func GetEnvBool(envVar string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration accepts time.ParseDuration strings ("90s", "5m").
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvSeconds reads an integer number of seconds.
func GetEnvSeconds(envVar string, defaultSeconds int) time.Duration {
	return time.Duration(GetEnvInt(envVar, defaultSeconds)) * time.Second
}
