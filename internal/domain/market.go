package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickerStats 24-hour rolling statistics for a trading pair.
type TickerStats struct {
	Pair          Pair
	LastPrice     decimal.Decimal
	PriceChange   decimal.Decimal
	ChangePercent decimal.Decimal
	BidPrice      decimal.Decimal
	AskPrice      decimal.Decimal
	HighPrice     decimal.Decimal
	LowPrice      decimal.Decimal
	QuoteVolume   decimal.Decimal
}

// BookLevel is one price level of an order book side.
type BookLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook bid/ask depth for a trading pair, best levels first.
type OrderBook struct {
	Pair Pair
	Bids []BookLevel
	Asks []BookLevel
}

// MarketTrade a single public trade from the exchange feed.
type MarketTrade struct {
	Pair     Pair
	Time     time.Time
	Price    decimal.Decimal
	Quantity decimal.Decimal
	// IsBuyerMaker true means the aggressor was a seller.
	IsBuyerMaker bool
}

// MarketCandle a single OHLCV candlestick.
type MarketCandle struct {
	OpenTime  time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	CloseTime time.Time
}
