package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lawrencelj/mdsearch/internal/server"
	"github.com/lawrencelj/mdsearch/pkg/health"
	"github.com/lawrencelj/mdsearch/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Index a markdown tree and serve the search API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		log := logger.WithComponent("serve")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, mon, src, m := buildEngine(cfg, prometheus.DefaultRegisterer)

		start := time.Now()
		count, err := indexCorpus(ctx, eng, src)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", cfg.Source.Root, err)
		}
		log.Info("corpus indexed",
			"root", cfg.Source.Root,
			"documents", count,
			"duration_ms", time.Since(start).Milliseconds())

		checker := health.NewChecker()
		checker.Register("engine", func(ctx context.Context) health.ComponentHealth {
			if eng.Statistics().DocumentsIndexed == 0 {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
		checker.Register("source", func(ctx context.Context) health.ComponentHealth {
			if _, err := os.Stat(src.Root()); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})

		if cfg.Metrics.Enabled && cfg.Metrics.Port != cfg.Server.Port {
			shutdown := m.StartServer(cfg.Metrics.Port)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				shutdown(shutdownCtx)
			}()
		}

		handler := server.NewHandler(eng, src, mon, cfg.Search)
		router := server.NewRouter(handler, checker, m, cfg.Server.RequestTimeout)
		srv := server.New(cfg.Server, router)

		log.Info("search API listening", "port", cfg.Server.Port)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
