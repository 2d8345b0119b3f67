package market

import (
	"context"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/tanonw/paperdesk/internal/domain"
)

// BybitProvider implements Provider for the Bybit exchange.
type BybitProvider struct {
	client *bybit.Client
}

// NewBybitProvider creates a Bybit market data provider.
func NewBybitProvider(client *bybit.Client) *BybitProvider {
	return &BybitProvider{client: client}
}

// Ticker24h fetches rolling 24-hour statistics from Bybit.
func (p *BybitProvider) Ticker24h(ctx context.Context, pair domain.Pair) (*domain.TickerStats, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &symbol,
	})
	if err != nil {
		return nil, err
	}
	if len(result.Result.Spot.List) == 0 {
		return nil, errors.Errorf("bybit API returned empty ticker for %s", pair.String())
	}

	t := result.Result.Spot.List[0]
	last, err := decimal.NewFromString(t.LastPrice)
	if err != nil {
		return nil, err
	}
	high, err := decimal.NewFromString(t.HighPrice24H)
	if err != nil {
		return nil, err
	}
	low, err := decimal.NewFromString(t.LowPrice24H)
	if err != nil {
		return nil, err
	}

	return &domain.TickerStats{
		Pair:      pair,
		LastPrice: last,
		HighPrice: high,
		LowPrice:  low,
	}, nil
}

// OrderBook fetches bid/ask depth from Bybit.
func (p *BybitProvider) OrderBook(context.Context, domain.Pair, int) (*domain.OrderBook, error) {
	return nil, errors.Wrap(domain.ErrDataUnavailable,
		"Bybit order book provider is not yet implemented - please use the Binance platform")
}

// RecentTrades fetches the latest public trades from Bybit.
func (p *BybitProvider) RecentTrades(context.Context, domain.Pair, int) ([]domain.MarketTrade, error) {
	return nil, errors.Wrap(domain.ErrDataUnavailable,
		"Bybit recent trades provider is not yet implemented - please use the Binance platform")
}

// Klines fetches candlestick data from Bybit.
func (p *BybitProvider) Klines(context.Context, domain.Pair, string, int) ([]domain.MarketCandle, error) {
	return nil, errors.Wrap(domain.ErrDataUnavailable,
		"Bybit kline provider is not yet implemented - please use the Binance platform")
}
