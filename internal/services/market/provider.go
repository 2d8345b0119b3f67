// Package market provides read-only access to public exchange market data:
// 24h tickers, order book depth, recent trades and candlesticks.
package market

import (
	"context"

	"github.com/tanonw/paperdesk/internal/domain"
)

// Provider defines the interface for fetching public market data.
// Every call may fail after its retry budget; callers are expected to skip
// the refresh cycle on error rather than surface it to the user.
type Provider interface {
	// Ticker24h fetches rolling 24-hour statistics for the pair.
	Ticker24h(ctx context.Context, pair domain.Pair) (*domain.TickerStats, error)
	// OrderBook fetches bid/ask depth up to the given number of levels.
	OrderBook(ctx context.Context, pair domain.Pair, depth int) (*domain.OrderBook, error)
	// RecentTrades fetches the latest public trades.
	RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.MarketTrade, error)
	// Klines fetches historical candlestick data.
	// interval specifies the kline interval (e.g., "1m", "5m", "1h", "4h").
	Klines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.MarketCandle, error)
}
