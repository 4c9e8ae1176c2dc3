// Command papertrade runs the browser trading simulator. It serves a web UI
// backed by a virtual portfolio, a stochastic price engine and optional live
// crypto quotes (Binance, Bybit).
//
// Usage:
//
//	papertrade --config config.yaml
//	papertrade setup   (interactive first-run wizard)
//	papertrade         (uses CLI arguments)
//
// Optional environment variables:
//
//	PREDICTION_API_URL, PREDICTION_API_KEY for the remote prediction service
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/papertrade/config"
	"github.com/vadiminshakov/papertrade/internal"
	"github.com/vadiminshakov/papertrade/internal/setup"
	"github.com/vadiminshakov/papertrade/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		os.Args = []string{os.Args[0], "--config", setup.GeneratedConfigFile}
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sim, err := internal.NewSimulator(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build simulator", zap.Error(err))
	}
	defer sim.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(cfg.ListenAddr, sim, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.Run(ctx) })
	g.Go(func() error { return server.Start(ctx) })

	logger.Info("papertrade started", zap.String("addr", cfg.ListenAddr))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("simulator stopped", zap.Error(err))
	}
}
