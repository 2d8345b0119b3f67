package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerSnapshot is an immutable copy of the ledger state at a point in time.
type LedgerSnapshot struct {
	Timestamp time.Time
	// Cash quote-asset balance.
	Cash decimal.Decimal
	// Holdings quantity per asset, keys are the configured asset set.
	Holdings map[string]decimal.Decimal
	// Prices last observed price per asset, zero means unknown.
	Prices map[string]decimal.Decimal
	// TotalValue is Cash plus every holding priced at its last price.
	TotalValue decimal.Decimal
}

// NewLedgerSnapshot builds a snapshot, deriving TotalValue from the inputs.
func NewLedgerSnapshot(ts time.Time, cash decimal.Decimal, holdings, prices map[string]decimal.Decimal) LedgerSnapshot {
	total := cash
	for asset, qty := range holdings {
		total = total.Add(qty.Mul(prices[asset]))
	}
	return LedgerSnapshot{
		Timestamp:  ts,
		Cash:       cash,
		Holdings:   copyDecimalMap(holdings),
		Prices:     copyDecimalMap(prices),
		TotalValue: total,
	}
}

func copyDecimalMap(src map[string]decimal.Decimal) map[string]decimal.Decimal {
	dst := make(map[string]decimal.Decimal, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
