package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is an immutable record of one executed simulated trade.
type TradeRecord struct {
	// ID unique identifier of the trade.
	ID string
	// Timestamp execution time.
	Timestamp time.Time
	// Side buy or sell.
	Side Side
	// Asset base asset symbol.
	Asset string
	// Quantity of the base asset, always positive.
	Quantity decimal.Decimal
	// Price per unit at execution time, always positive.
	Price decimal.Decimal
	// Notional is Quantity * Price in the quote asset.
	Notional decimal.Decimal
}

// String returns a human-readable string representation.
func (t *TradeRecord) String() string {
	return fmt.Sprintf("%s %s %s @ %s (notional %s)",
		t.Side.String(), t.Quantity.String(), t.Asset, t.Price.String(), t.Notional.String())
}
