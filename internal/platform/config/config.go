package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"vertical/internal/platform/database"
	"vertical/pkg/platform/middleware/metadata"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	MetricsAddr     string
	LogLevel        string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	AuditIgnore     []string
	TrustedProxies  []netip.Prefix

	AuthDB   database.Config
	HunterDB database.Config
	Hunter   Hunter
}

// Hunter configures the reliability evaluator.
type Hunter struct {
	Schema         string
	Table          string
	DeltaDays      int
	QueryTimeout   time.Duration
	HashSalt       string
	HashIterations int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) (Server, error) {
	e := env{get: getenv}

	authMax := e.int("AUTH_DB_MAX_SIZE", 5)
	hunterPool := e.int("HUNTER_DB_POOL_SIZE", 5)

	cfg := Server{
		Addr:            net.JoinHostPort(e.str("HOST", "127.0.0.1"), e.str("PORT", "8080")),
		MetricsAddr:     e.str("METRICS_ADDR", ":9090"),
		LogLevel:        e.str("LOG_LEVEL", "info"),
		MaxBodyBytes:    int64(e.int("MAX_BODY_BYTES", 1<<20)),
		ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		AuditIgnore:     e.list("AUDIT_IGNORE_PATHS", []string{"/ping"}),
		AuthDB: database.Config{
			URL:             e.get("AUTH_DB_URL"),
			MaxOpenConns:    authMax,
			MaxIdleConns:    e.int("AUTH_DB_MIN_SIZE", 0),
			ConnMaxLifetime: e.duration("AUTH_DB_MAX_LIFETIME", time.Hour),
			AcquireTimeout:  e.duration("AUTH_DB_TIMEOUT", 10*time.Second),
			CommandTimeout:  e.duration("AUTH_DB_COMMAND_TIMEOUT", 5*time.Second),
		},
		HunterDB: database.Config{
			URL:             e.get("HUNTER_DB_URL"),
			MaxOpenConns:    hunterPool + e.int("HUNTER_DB_MAX_OVERFLOW", 5),
			MaxIdleConns:    hunterPool,
			ConnMaxLifetime: e.duration("HUNTER_DB_POOL_RECYCLE", time.Hour),
			AcquireTimeout:  e.duration("HUNTER_DB_POOL_TIMEOUT", 10*time.Second),
		},
		Hunter: Hunter{
			Schema:         e.str("HUNTER_DB_SCHEMA", "yavert"),
			Table:          e.str("HUNTER_DB_TABLE", "hundata"),
			DeltaDays:      e.int("HUNTER_DELTA_DAYS", 180),
			QueryTimeout:   e.duration("HUNTER_QUERY_TIMEOUT", 10*time.Second),
			HashSalt:       e.str("HUNTER_HASH_SALT", "vertical"),
			HashIterations: e.int("HUNTER_HASH_ITERATIONS", 1000),
		},
	}

	proxies, err := metadata.ParsePrefixes(e.list("TRUSTED_PROXIES", nil))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	cfg.TrustedProxies = proxies

	if cfg.AuthDB.URL == "" {
		e.errs = append(e.errs, errors.New("AUTH_DB_URL is required"))
	}
	if cfg.HunterDB.URL == "" {
		e.errs = append(e.errs, errors.New("HUNTER_DB_URL is required"))
	}
	if cfg.Hunter.DeltaDays < 0 {
		e.errs = append(e.errs, errors.New("HUNTER_DELTA_DAYS must not be negative"))
	}
	if cfg.Hunter.HashIterations < 1 {
		e.errs = append(e.errs, errors.New("HUNTER_HASH_ITERATIONS must be positive"))
	}
	if cfg.AuthDB.MaxOpenConns < 1 {
		e.errs = append(e.errs, errors.New("AUTH_DB_MAX_SIZE must be positive"))
	}
	if cfg.HunterDB.MaxOpenConns < 1 {
		e.errs = append(e.errs, errors.New("HUNTER_DB_POOL_SIZE plus HUNTER_DB_MAX_OVERFLOW must be positive"))
	}
	return cfg, errors.Join(e.errs...)
}

type env struct {
	get  func(string) string
	errs []error
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	raw := strings.TrimSpace(e.get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return v
}

// duration accepts Go duration syntax ("1m30s") or bare seconds ("90", "1.5").
func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(e.get(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return time.Duration(secs * float64(time.Second))
}

func (e *env) list(key string, def []string) []string {
	raw := strings.TrimSpace(e.get(key))
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
