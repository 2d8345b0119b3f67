// Command paperdesk runs a simulated exchange desk over live market data.
// Balances and trades are mock-only; market prices, order books, trades and
// candles come from the chosen exchange's public API.
//
// Usage:
//
//	paperdesk --config config.yaml
//	paperdesk (uses CLI arguments)
//	paperdesk --init (interactive configuration wizard)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tanonw/paperdesk/config"
	"github.com/tanonw/paperdesk/internal"
	"github.com/tanonw/paperdesk/internal/setup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--init" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	desk, err := internal.NewDesk(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create desk", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := desk.Run(ctx); err != nil {
		logger.Fatal("desk stopped with error", zap.Error(err))
	}
	logger.Info("desk stopped")
}
