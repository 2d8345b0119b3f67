package market

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/tanonw/paperdesk/internal/domain"
	"github.com/tanonw/paperdesk/pkg/retrier"
)

const requestTimeout = 10 * time.Second

// BinanceProvider implements Provider on the Binance public REST API.
// No API keys are required for public market data.
type BinanceProvider struct {
	client  *binance.Client
	retrier *retrier.Retrier
}

// NewBinanceProvider creates a Binance market data provider.
func NewBinanceProvider(client *binance.Client) *BinanceProvider {
	return &BinanceProvider{
		client:  client,
		retrier: retrier.New(retrier.WithAttempts(3), retrier.WithInterval(time.Second)),
	}
}

// Ticker24h fetches rolling 24-hour statistics for the pair.
func (p *BinanceProvider) Ticker24h(ctx context.Context, pair domain.Pair) (*domain.TickerStats, error) {
	stats, err := retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) ([]*binance.PriceChangeStats, error) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return p.client.NewListPriceChangeStatsService().Symbol(pair.Symbol()).Do(reqCtx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch 24h ticker from Binance for %s", pair.String())
	}
	if len(stats) == 0 {
		return nil, errors.Errorf("binance API returned empty ticker for %s", pair.String())
	}

	s := stats[0]
	out := &domain.TickerStats{Pair: pair}
	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&out.LastPrice, s.LastPrice},
		{&out.PriceChange, s.PriceChange},
		{&out.ChangePercent, s.PriceChangePercent},
		{&out.BidPrice, s.BidPrice},
		{&out.AskPrice, s.AskPrice},
		{&out.HighPrice, s.HighPrice},
		{&out.LowPrice, s.LowPrice},
		{&out.QuoteVolume, s.QuoteVolume},
	} {
		v, err := decimal.NewFromString(field.src)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse ticker field for %s", pair.String())
		}
		*field.dst = v
	}
	return out, nil
}

// OrderBook fetches bid/ask depth up to the given number of levels.
func (p *BinanceProvider) OrderBook(ctx context.Context, pair domain.Pair, depth int) (*domain.OrderBook, error) {
	res, err := retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) (*binance.DepthResponse, error) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return p.client.NewDepthService().Symbol(pair.Symbol()).Limit(depth).Do(reqCtx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch depth from Binance for %s", pair.String())
	}

	book := &domain.OrderBook{
		Pair: pair,
		Bids: make([]domain.BookLevel, 0, len(res.Bids)),
		Asks: make([]domain.BookLevel, 0, len(res.Asks)),
	}
	for _, b := range res.Bids {
		level, err := parseBookLevel(b.Price, b.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse bid level for %s", pair.String())
		}
		book.Bids = append(book.Bids, level)
	}
	for _, a := range res.Asks {
		level, err := parseBookLevel(a.Price, a.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse ask level for %s", pair.String())
		}
		book.Asks = append(book.Asks, level)
	}
	return book, nil
}

// RecentTrades fetches the latest public trades.
func (p *BinanceProvider) RecentTrades(ctx context.Context, pair domain.Pair, limit int) ([]domain.MarketTrade, error) {
	trades, err := retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) ([]*binance.Trade, error) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return p.client.NewRecentTradesService().Symbol(pair.Symbol()).Limit(limit).Do(reqCtx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch recent trades from Binance for %s", pair.String())
	}

	result := make([]domain.MarketTrade, len(trades))
	for i, t := range trades {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse trade price at index %d", i)
		}
		qty, err := decimal.NewFromString(t.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse trade quantity at index %d", i)
		}
		result[i] = domain.MarketTrade{
			Pair:         pair,
			Time:         time.Unix(0, t.Time*int64(time.Millisecond)),
			Price:        price,
			Quantity:     qty,
			IsBuyerMaker: t.IsBuyerMaker,
		}
	}
	return result, nil
}

// Klines fetches candlestick data from Binance.
func (p *BinanceProvider) Klines(ctx context.Context, pair domain.Pair, interval string, limit int) ([]domain.MarketCandle, error) {
	klines, err := retrier.DoWithData(p.retrier, ctx, func(ctx context.Context) ([]*binance.Kline, error) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return p.client.NewKlinesService().
			Symbol(pair.Symbol()).
			Interval(interval).
			Limit(limit).
			Do(reqCtx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", pair.String())
	}

	result := make([]domain.MarketCandle, len(klines))
	for i, k := range klines {
		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse open price at index %d", i)
		}
		high, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse high price at index %d", i)
		}
		low, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse low price at index %d", i)
		}
		close, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse volume at index %d", i)
		}

		result[i] = domain.MarketCandle{
			OpenTime:  time.Unix(0, k.OpenTime*int64(time.Millisecond)),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
			CloseTime: time.Unix(0, k.CloseTime*int64(time.Millisecond)),
		}
	}
	return result, nil
}

func parseBookLevel(priceStr, qtyStr string) (domain.BookLevel, error) {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.BookLevel{}, err
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return domain.BookLevel{}, err
	}
	return domain.BookLevel{Price: price, Quantity: qty}, nil
}
