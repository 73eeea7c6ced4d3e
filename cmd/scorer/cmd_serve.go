package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/objective-scoring/scorer/internal/evidence"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/logging"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/pipeline"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/rpc"
	"github.com/danielpatrickdp/objective-scoring/scorer/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ScoringService over gRPC and Prometheus metrics over HTTP",
	Long: `Load every objective in the objectives directory, open the results store and
serve scoring.v1.ScoringService on the configured listen address. Metrics are
exposed at /metrics on metrics_listen when it is set.

Settings come from the config file and SCORER_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := logging.New("serve")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	p := pipeline.New(evidence.NewCollector(cfg.Evidence()), pipeline.Config{
		Publishers: []pipeline.Publisher{st},
		Logger:     logging.New("pipeline"),
	})
	srv, err := rpc.NewServerFromDir(cfg.ObjectivesDir, p, logging.New("rpc"))
	if err != nil {
		return fmt.Errorf("load objectives from %s: %w", cfg.ObjectivesDir, err)
	}
	gs := rpc.NewGRPCServer(srv)

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", "addr", lis.Addr().String(), "db", cfg.DBPath)
		return gs.Serve(lis)
	})

	var metricsSrv *http.Server
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.MetricsListen)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		gs.GracefulStop()
		if metricsSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}
