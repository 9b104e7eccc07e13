package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vadimbarashkov/snip/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/snip/internal/config"
	"github.com/vadimbarashkov/snip/internal/metrics"
	"github.com/vadimbarashkov/snip/internal/usecase"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/snip/internal/adapter/delivery/http"
)

// NewHandler assembles the store, the use case and the router described by cfg.
func NewHandler(cfg *config.Config, logger *httplog.Logger) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	urlRepo := memory.NewURLRepository(
		memory.WithClickHistoryLimit(cfg.Store.ClickHistoryLimit),
	)

	urlUseCase := usecase.NewURLUseCase(urlRepo, m,
		usecase.WithShortCodeLength(cfg.ShortCodeLength),
		usecase.WithTopURLsLimit(cfg.Store.TopURLsLimit),
		usecase.WithClicksByDayWindow(cfg.Store.ClicksByDayWindow),
		usecase.WithReservedShortCodes(delivery.ReservedShortCodes()...),
	)

	return delivery.NewRouter(logger, m, urlUseCase, delivery.Options{
		BaseURL:        cfg.BaseURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
}

func NewLogger(cfg *config.Config) *httplog.Logger {
	return httplog.NewLogger("snip", httplog.Options{
		LogLevel: cfg.Log.SlogLevel(),
		JSON:     cfg.Log.JSON,
		Concise:  !cfg.Log.JSON,
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := NewLogger(cfg)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        NewHandler(cfg, logger),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
