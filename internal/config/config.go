// Package config loads client configuration from environment variables.  A
// .env file in the working directory is honoured when present so the CLI can
// be pointed at different backends without exporting variables by hand.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the client needs.  Unlike a server
// deployment, a missing variable is never fatal: sensible defaults point at a
// local development backend.
type Config struct {
	APIBaseURL    string        // REST base, e.g. http://localhost:8080/api/v1
	SocketBaseURL string        // push-channel base; derived from APIBaseURL unless overridden
	LoginURL      string        // login surface the client navigates to on session loss
	HTTPTimeout   time.Duration // per-request timeout for REST calls

	RedisAddr     string // optional shared session store (kiosk deployments)
	RedisPassword string
	RedisDB       int

	AMQPURL string // optional broker-backed seat feed
}

// Load reads the environment (and .env, if any) into a Config.
func Load() Config {
	_ = godotenv.Load() // absence of .env is fine

	api := strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8080/api/v1"), "/")
	sock := os.Getenv("SOCKET_BASE_URL")
	if sock == "" {
		sock = deriveSocketBase(api)
	}
	return Config{
		APIBaseURL:    api,
		SocketBaseURL: strings.TrimRight(sock, "/"),
		LoginURL:      getenv("LOGIN_URL", deriveSocketBase(api)+"/login"),
		HTTPTimeout:   time.Duration(getenvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		AMQPURL:       os.Getenv("AMQP_URL"),
	}
}

// deriveSocketBase strips the path suffix from the API base URL, leaving only
// scheme and host: http://host:8080/api/v1 -> http://host:8080.
func deriveSocketBase(apiBase string) string {
	rest := apiBase
	scheme := ""
	if i := strings.Index(rest, "://"); i >= 0 {
		scheme = rest[:i+3]
		rest = rest[i+3:]
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return scheme + rest
}

// getenv returns the value of key or def when unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt is like getenv but parses the value as an integer.
func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
