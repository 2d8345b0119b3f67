// Package internal wires the desk together: ledger, market data provider,
// price poller and web surface.
package internal

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tanonw/paperdesk/config"
	"github.com/tanonw/paperdesk/internal/clients"
	"github.com/tanonw/paperdesk/internal/events"
	"github.com/tanonw/paperdesk/internal/services/ledger"
	"github.com/tanonw/paperdesk/internal/services/market"
	"github.com/tanonw/paperdesk/internal/services/poller"
	"github.com/tanonw/paperdesk/internal/storage/favorites"
	"github.com/tanonw/paperdesk/internal/web"
)

// Desk represents a running simulated trading desk instance.
type Desk struct {
	Ledger    *ledger.Ledger
	Market    market.Provider
	Favorites *favorites.Store
	config    *config.Config
	poller    *poller.PricePoller
	web       *web.Server
	logger    *zap.Logger
}

// NewDesk creates a desk from the configuration.
func NewDesk(cfg *config.Config, logger *zap.Logger) (*Desk, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := createProvider(cfg.Platform)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create market data provider")
	}

	broadcaster := events.NewLedgerBroadcaster(256)
	book := ledger.New(cfg.Quote, cfg.StartingCash, cfg.SeedHoldings(), cfg.HistoryCap,
		broadcaster, logger.Named("ledger"))
	favStore := favorites.NewStore(cfg.FavoritesPath, cfg.Assets, cfg.DefaultFavorites,
		logger.Named("favorites"))
	pricePoller := poller.New(provider, book, cfg.Quote, cfg.Assets, cfg.PollPriceInterval,
		logger.Named("poller"))
	limits := web.Limits{
		KlineInterval: cfg.KlinesInterval,
		KlineLimit:    cfg.KlinesLimit,
		BookDepth:     cfg.OrderBookDepth,
		TradesLimit:   cfg.TradesLimit,
	}
	server := web.NewServer(cfg.ListenAddr, book, provider, favStore, broadcaster,
		limits, logger.Named("web"))

	return &Desk{
		Ledger:    book,
		Market:    provider,
		Favorites: favStore,
		config:    cfg,
		poller:    pricePoller,
		web:       server,
		logger:    logger,
	}, nil
}

// Run starts the price poller and the web server, blocking until the context
// is cancelled or either of them fails.
func (d *Desk) Run(ctx context.Context) error {
	d.logger.Info("starting desk",
		zap.String("platform", d.config.Platform),
		zap.String("listen", d.config.ListenAddr))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := d.poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "price poller failed")
		}
		return nil
	})
	g.Go(func() error {
		if err := d.web.Start(ctx); err != nil {
			return errors.Wrap(err, "web server failed")
		}
		return nil
	})
	return g.Wait()
}

func createProvider(platform string) (market.Provider, error) {
	switch platform {
	case "binance":
		return market.NewBinanceProvider(clients.NewBinanceClient()), nil
	case "bybit":
		return market.NewBybitProvider(clients.NewBybitClient()), nil
	default:
		return nil, errors.Errorf("unsupported platform: %s", platform)
	}
}
