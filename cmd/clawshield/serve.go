package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clawshield/clawshield/internal/api"
	"github.com/clawshield/clawshield/internal/config"
	"github.com/clawshield/clawshield/internal/logging"
	"github.com/clawshield/clawshield/internal/observability"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
	maxHeaderBytes  = 64 << 10
)

func newServeCmd() *cobra.Command {
	var configPath string
	var listenOverride string
	var packOverride string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			if listenOverride != "" {
				cfg.Server.Listen = listenOverride
			}
			if packOverride != "" {
				cfg.Scan.DefaultPack = config.NormalizePack(packOverride)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (optional)")
	cmd.Flags().StringVar(&listenOverride, "listen", "", "Override server.listen")
	cmd.Flags().StringVar(&packOverride, "pack", "", "Override scan.defaultPack")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	srv, err := api.New(cfg)
	if err != nil {
		return err
	}
	srv.SetLogger(log)

	if cfg.Logging.ScanLog != "" {
		scanLog, closer, err := logging.OpenScanLog(cfg.ResolvePath(cfg.Logging.ScanLog))
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		srv.SetScanLogger(scanLog)
	}

	metricsSrv := startMetricsServer(cfg, srv, log)
	defer func() {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(context.Background())
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RateLimit.Enabled {
		go srv.SweepLimiter(signalCtx, sweepInterval)
	}

	serverErr := make(chan error, 1)
	go func() {
		if cfg.Server.TLS.Enabled {
			serverErr <- httpSrv.ListenAndServeTLS(cfg.ResolvePath(cfg.Server.TLS.CertFile), cfg.ResolvePath(cfg.Server.TLS.KeyFile))
			return
		}
		serverErr <- httpSrv.ListenAndServe()
	}()

	log.Infow("clawshield listening",
		"listen", cfg.Server.Listen,
		"tls", cfg.Server.TLS.Enabled,
		"default_pack", cfg.Scan.DefaultPack,
		"rate_limit", cfg.RateLimit.Enabled,
	)

	select {
	case <-signalCtx.Done():
		log.Infow("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func startMetricsServer(cfg *config.Config, srv *api.Server, log *zap.SugaredLogger) *http.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	srv.SetMetrics(metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	metricsSrv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server stopped", "listen", cfg.Metrics.Listen, "error", err)
		}
	}()
	log.Infow("metrics listening", "listen", cfg.Metrics.Listen)
	return metricsSrv
}
