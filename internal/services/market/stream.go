package market

import (
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanonw/paperdesk/internal/domain"
)

// TickerHandler receives live 24h ticker updates from the stream.
type TickerHandler func(stats domain.TickerStats)

// TradeHandler receives live aggregated trades from the stream.
type TradeHandler func(trade domain.MarketTrade)

// Stream is a handle to a running websocket subscription. Stop tears the
// connection down; the subscription lifecycle follows panel visibility, so
// streams are stopped when a view is hidden and recreated when shown again.
type Stream struct {
	stopC chan struct{}
	doneC chan struct{}
}

// Stop closes the underlying websocket connection and waits for teardown.
func (s *Stream) Stop() {
	select {
	case <-s.stopC:
	default:
		close(s.stopC)
	}
	<-s.doneC
}

// StreamTicker subscribes to the live 24h ticker stream for the pair.
// Malformed frames and transport errors are logged and otherwise dropped.
func StreamTicker(pair domain.Pair, handler TickerHandler, logger *zap.Logger) (*Stream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	wsHandler := func(event *binance.WsMarketStatEvent) {
		stats := domain.TickerStats{Pair: pair}
		var err error
		if stats.LastPrice, err = decimal.NewFromString(event.LastPrice); err != nil {
			logger.Debug("skip malformed ticker frame", zap.String("pair", pair.String()), zap.Error(err))
			return
		}
		if stats.ChangePercent, err = decimal.NewFromString(event.PriceChangePercent); err != nil {
			logger.Debug("skip malformed ticker frame", zap.String("pair", pair.String()), zap.Error(err))
			return
		}
		if stats.HighPrice, err = decimal.NewFromString(event.HighPrice); err != nil {
			logger.Debug("skip malformed ticker frame", zap.String("pair", pair.String()), zap.Error(err))
			return
		}
		if stats.LowPrice, err = decimal.NewFromString(event.LowPrice); err != nil {
			logger.Debug("skip malformed ticker frame", zap.String("pair", pair.String()), zap.Error(err))
			return
		}
		handler(stats)
	}
	errHandler := func(err error) {
		logger.Warn("ticker stream error", zap.String("pair", pair.String()), zap.Error(err))
	}

	doneC, stopC, err := binance.WsMarketStatServe(pair.Symbol(), wsHandler, errHandler)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ticker stream for %s", pair.String())
	}
	return &Stream{stopC: stopC, doneC: doneC}, nil
}

// StreamTrades subscribes to the live aggregated trade stream for the pair.
func StreamTrades(pair domain.Pair, handler TradeHandler, logger *zap.Logger) (*Stream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	wsHandler := func(event *binance.WsAggTradeEvent) {
		price, err := decimal.NewFromString(event.Price)
		if err != nil {
			logger.Debug("skip malformed trade frame", zap.String("pair", pair.String()), zap.Error(err))
			return
		}
		qty, err := decimal.NewFromString(event.Quantity)
		if err != nil {
			logger.Debug("skip malformed trade frame", zap.String("pair", pair.String()), zap.Error(err))
			return
		}
		handler(domain.MarketTrade{
			Pair:         pair,
			Time:         time.Unix(0, event.TradeTime*int64(time.Millisecond)),
			Price:        price,
			Quantity:     qty,
			IsBuyerMaker: event.IsBuyerMaker,
		})
	}
	errHandler := func(err error) {
		logger.Warn("trade stream error", zap.String("pair", pair.String()), zap.Error(err))
	}

	doneC, stopC, err := binance.WsAggTradeServe(pair.Symbol(), wsHandler, errHandler)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open trade stream for %s", pair.String())
	}
	return &Stream{stopC: stopC, doneC: doneC}, nil
}
