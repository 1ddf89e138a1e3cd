package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/weberyanglalala/gpt-chart-express-server/internal/config"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/httpapi"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/logging"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/metrics"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/render"
	"github.com/weberyanglalala/gpt-chart-express-server/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	port       string
	validation string
}

func newServeCmd(envFiles *[]string) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFiles, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&opts.port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&opts.validation, "validation", "", "chart validation mode: strict or passthrough (overrides CHART_VALIDATION)")
	return cmd
}

func loadConfig(envFiles []string, opts *serveOptions) (*config.Config, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		if opts.port != "" {
			cfg.Port = opts.port
		}
		if opts.validation != "" {
			cfg.ChartValidation = strings.ToLower(opts.validation)
		}
	}
	return cfg, cfg.Validate()
}

// newServer assembles the HTTP server for cfg. Incomplete storage settings
// are not fatal: storage requests fail until they are set.
func newServer(cfg *config.Config, logger log.Logger, reg *prometheus.Registry) (*http.Server, error) {
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	var store storage.ObjectStore
	if missing := cfg.Storage.Missing(); len(missing) > 0 {
		level.Warn(logger).Log("msg", "storage settings incomplete, storage requests will fail", "missing", strings.Join(missing, ","))
	} else {
		minioStore, err := storage.NewMinioStore(cfg.Storage, logging.Component(logger, "storage"))
		if err != nil {
			return nil, err
		}
		store = minioStore
		level.Info(logger).Log("msg", "storage initialized", "endpoint", cfg.Storage.EndpointURL, "bucket", cfg.Storage.BucketName)
	}

	renderer := render.NewGoChartRenderer(cfg.ChartWidth, cfg.ChartHeight)
	handler := httpapi.NewHTTPHandler(cfg, renderer, store,
		httpapi.WithLogger(logging.Component(logger, "httpapi")),
		httpapi.WithMetrics(m),
	)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(handler, m, logging.Component(logger, "access")),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := newServer(cfg, logger, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "chart server listening", "addr", srv.Addr, "validation", cfg.ChartValidation)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	level.Info(logger).Log("msg", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
