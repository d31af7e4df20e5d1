package main

import (
	"context"
	stdliberrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/telemetry"
)

func metricsRouter(metrics *telemetry.Metrics) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	return router
}

// serveMetrics binds addr before returning so a bad address fails startup.
func serveMetrics(addr string, metrics *telemetry.Metrics, logger *logging.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, lerrors.Wrap(err, lerrors.ErrCodeInvalidInput, "listen for metrics").WithContext("addr", addr)
	}
	srv := &http.Server{
		Handler:           metricsRouter(metrics),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !stdliberrors.Is(err, http.ErrServerClosed) {
			logger.Error(logging.CategoryLifecycle, "metrics_failed", "metrics server stopped", map[string]any{"error": err.Error()})
		}
	}()
	logger.Info(logging.CategoryLifecycle, "metrics", "serving metrics", map[string]any{"addr": ln.Addr().String()})
	return srv, nil
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
