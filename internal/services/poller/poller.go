// Package poller periodically refreshes ledger prices from the market data
// provider. Fetches happen off the ledger's critical path; failed cycles are
// skipped silently so the worst case is stale data, never an error dialog.
package poller

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanonw/paperdesk/internal/domain"
	"github.com/tanonw/paperdesk/internal/services/market"
)

// PriceSink consumes partial price maps produced by a poll cycle.
type PriceSink interface {
	ApplyPriceUpdate(prices map[string]decimal.Decimal)
}

// PricePoller polls 24h tickers for a fixed asset set on an interval and
// feeds the observed last prices into the sink.
type PricePoller struct {
	provider market.Provider
	sink     PriceSink
	logger   *zap.Logger
	quote    string
	assets   []string
	interval time.Duration
}

// New creates a price poller for the given assets against the quote asset.
func New(provider market.Provider, sink PriceSink, quote string, assets []string,
	interval time.Duration, logger *zap.Logger) *PricePoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricePoller{
		provider: provider,
		sink:     sink,
		logger:   logger,
		quote:    quote,
		assets:   append([]string(nil), assets...),
		interval: interval,
	}
}

// Run polls until the context is cancelled. The first cycle fires
// immediately so views are not stuck at "price unknown" for a full interval.
func (p *PricePoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("starting price poller",
		zap.Strings("assets", p.assets),
		zap.Duration("interval", p.interval))

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("context done, stopping price poller")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches tickers for every asset and applies whatever succeeded as one
// partial update. Fetch failures only suppress that asset for this cycle.
func (p *PricePoller) poll(ctx context.Context) {
	updated := make(map[string]decimal.Decimal, len(p.assets))
	for _, asset := range p.assets {
		pair := domain.Pair{From: asset, To: p.quote}
		stats, err := p.provider.Ticker24h(ctx, pair)
		if err != nil {
			p.logger.Debug("skip price refresh", zap.String("pair", pair.String()), zap.Error(err))
			continue
		}
		if stats.LastPrice.LessThanOrEqual(decimal.Zero) {
			continue
		}
		updated[asset] = stats.LastPrice
	}
	if ctx.Err() != nil {
		// poller was stopped mid-cycle, discard the stale result
		return
	}
	if len(updated) == 0 {
		p.logger.Warn("no prices fetched this cycle, keeping previous data")
		return
	}
	p.sink.ApplyPriceUpdate(updated)
}
