// Command enginediag is an optional diagnostic sidecar for a host embedding
// this engine. It is never on the hot path of a single Forecast call; it
// exposes a standard gRPC health/reflection service plus an HTTP /healthz,
// /readyz, and /metrics trio, so an operator can watch optimizer
// convergence, group-by worker coordination, backtest fold outcomes, and
// the shared feature cache backend's reachability the same way the
// teacher's scaler exposes its own operational surface.
//
// Environment variables:
//
//	ENGINEDIAG_GRPC_LISTEN    - gRPC listen address (default: :50061)
//	ENGINEDIAG_HTTP_LISTEN    - HTTP listen address (default: :8082)
//	ENGINEDIAG_CACHE_ADDR     - Redis feature-cache address for /readyz (optional)
//	ENGINEDIAG_CACHE_PASSWORD - Redis feature-cache password
//	ENGINEDIAG_CACHE_TLS      - "true" to mTLS the feature-cache connection
//	ENGINEDIAG_CACHE_TLS_CERT - client certificate for cache mTLS
//	ENGINEDIAG_CACHE_TLS_KEY  - client key for cache mTLS
//	ENGINEDIAG_CACHE_TLS_CA   - CA certificate for cache mTLS
//	LOG_LEVEL                 - Logging level: debug, info, warn, error (default: info)
//	LOG_FORMAT                - Logging format: text, json (default: text)
package main

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anofox/tsforge/cmd/enginediag/config"
	"github.com/anofox/tsforge/internal/cache"
	"github.com/anofox/tsforge/internal/obslog"
	"github.com/anofox/tsforge/internal/telemetry"
	"github.com/anofox/tsforge/pkg/httpx"
	enginetls "github.com/anofox/tsforge/pkg/tls"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

var version = "dev"

func main() {
	cfg := config.ParseFlags()
	logger := obslog.NewDefault(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting enginediag", "version", version, "grpc_listen", cfg.GRPCListen, "http_listen", cfg.HTTPListen)

	registry := prometheus.NewRegistry()
	telemetry.New(registry)

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCListen)
	if err != nil {
		logger.Error("failed to listen", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("grpc server listening", "address", cfg.GRPCListen)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server failed", "error", err)
			os.Exit(1)
		}
	}()

	var cacheComponent httpx.CacheComponent
	if cfg.CacheAddr != "" {
		var tlsConfig *tls.Config
		if cfg.CacheTLS {
			tlsConfig, err = enginetls.NewClientTLSConfig(cfg.CacheCert, cfg.CacheKey, cfg.CacheCAFile)
			if err != nil {
				logger.Error("failed to build cache mTLS config", "error", err)
				os.Exit(1)
			}
		}
		redisCache, err := cache.NewRedisCache(cfg.CacheAddr, cfg.CachePassword, cfg.CacheDB, 0, tlsConfig)
		if err != nil {
			logger.Error("failed to connect to feature cache", "error", err, "addr", cfg.CacheAddr)
			os.Exit(1)
		}
		defer redisCache.Close()
		cacheComponent = redisCache
		logger.Info("feature cache readiness check enabled", "addr", cfg.CacheAddr, "tls", cfg.CacheTLS)
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", httpx.HealthHandler())
	mux.Handle("/readyz", httpx.ReadinessHandler(cacheComponent))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	httpServer := httpx.NewServer(cfg.HTTPListen, httpx.LoggingMiddleware(logger)(mux), logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error("http server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	grpcServer.GracefulStop()
	if err := httpServer.Stop(10 * time.Second); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
