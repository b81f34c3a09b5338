package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nfam/gzipenc/internal/compression"
	"github.com/nfam/gzipenc/internal/config"
	"github.com/nfam/gzipenc/internal/logging"
	"github.com/nfam/gzipenc/internal/metrics"
	"github.com/nfam/gzipenc/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory with encoded responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if dir != "" {
				cfg.Root = dir
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dir, "root", "", "directory to serve (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	reg := prometheus.NewRegistry()
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: newHandler(cfg, logger, reg),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", cfg.Addr),
			zap.String("root", cfg.Root),
			zap.Bool("gzip", cfg.Compression.Gzip.Enabled),
			zap.Bool("brotli", cfg.Compression.Brotli.Enabled),
		)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newHandler(cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) http.Handler {
	manager := compression.NewManager(compression.Config{
		Gzip:   compression.GzipConfig(cfg.Compression.Gzip),
		Brotli: compression.CompressorConfig(cfg.Compression.Brotli),
	})
	compress := middleware.CompressionMiddleware(manager, middleware.Options{
		MinSize: cfg.Compression.MinSize,
		Logger:  logger,
		Metrics: metrics.NewCollector(reg),
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", compress(http.FileServer(http.Dir(cfg.Root))))
	return mux
}
