// Package config parses command-line flags and environment variables for
// cmd/enginediag, following the same flag-over-env-over-default precedence
// as the teacher's cmd/scaler/config and cmd/forecaster/config.
package config

import (
	"flag"
	"os"
)

// Config holds enginediag's runtime configuration.
type Config struct {
	GRPCListen string
	HTTPListen string
	LogFormat  string
	LogLevel   string

	// CacheAddr, when set, points at the Redis-backed feature cache
	// (internal/cache.RedisCache) this sidecar's /readyz reports on. Empty
	// disables the cache readiness check; /readyz then reports "ok" with no
	// components, same as process-only liveness.
	CacheAddr     string
	CachePassword string
	CacheDB       int

	// CacheTLS enables mTLS to the cache backend using the cert/key/CA
	// triple below, built via pkg/tls.NewClientTLSConfig.
	CacheTLS    bool
	CacheCert   string
	CacheKey    string
	CacheCAFile string
}

// ParseFlags parses flags and environment variables into a Config.
func ParseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.GRPCListen, "grpc-listen", getEnv("ENGINEDIAG_GRPC_LISTEN", ":50061"), "gRPC health/reflection listen address")
	flag.StringVar(&cfg.HTTPListen, "http-listen", getEnv("ENGINEDIAG_HTTP_LISTEN", ":8082"), "HTTP /healthz and /metrics listen address")
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.StringVar(&cfg.CacheAddr, "cache-addr", getEnv("ENGINEDIAG_CACHE_ADDR", ""), "Redis feature-cache address to report readiness on (empty disables the check)")
	flag.StringVar(&cfg.CachePassword, "cache-password", getEnv("ENGINEDIAG_CACHE_PASSWORD", ""), "Redis feature-cache password")
	flag.IntVar(&cfg.CacheDB, "cache-db", 0, "Redis feature-cache database number")
	flag.BoolVar(&cfg.CacheTLS, "cache-tls", getEnv("ENGINEDIAG_CACHE_TLS", "") == "true", "Enable mutual TLS to the feature-cache backend")
	flag.StringVar(&cfg.CacheCert, "cache-tls-cert", getEnv("ENGINEDIAG_CACHE_TLS_CERT", ""), "Client certificate for cache mTLS")
	flag.StringVar(&cfg.CacheKey, "cache-tls-key", getEnv("ENGINEDIAG_CACHE_TLS_KEY", ""), "Client key for cache mTLS")
	flag.StringVar(&cfg.CacheCAFile, "cache-tls-ca", getEnv("ENGINEDIAG_CACHE_TLS_CA", ""), "CA certificate for cache mTLS")

	flag.Parse()
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
