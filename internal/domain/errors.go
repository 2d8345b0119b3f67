package domain

import "github.com/pkg/errors"

// Validation and availability errors returned by the ledger and market layer.
// They are compared with errors.Is, so callers can map them to user-facing
// status messages without string matching.
var (
	// ErrInvalidAmount amount is non-numeric, zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPriceUnavailable trade against an asset whose last price is unknown.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrInsufficientCash buy or withdraw exceeds available cash.
	ErrInsufficientCash = errors.New("insufficient cash")
	// ErrInsufficientHoldings sell exceeds held quantity.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrUnknownAsset asset is outside the configured set.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrDataUnavailable market data fetch failed after its retry budget.
	ErrDataUnavailable = errors.New("market data unavailable")
)
