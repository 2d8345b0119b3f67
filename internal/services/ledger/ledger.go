// Package ledger owns the simulated wallet state: a quote-asset cash balance
// and per-asset holdings, mutated only through validated trade, deposit and
// withdraw operations. It is the single source of truth for every view;
// consumers subscribe to change events instead of holding their own copy.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanonw/paperdesk/internal/domain"
	"github.com/tanonw/paperdesk/internal/events"
)

// DefaultHistoryCap bounds the in-memory trade history.
const DefaultHistoryCap = 30

// Ledger holds the simulated cash balance and holdings for a fixed asset set.
type Ledger struct {
	mu          sync.RWMutex
	logger      *zap.Logger
	quote       string
	cash        decimal.Decimal
	holdings    map[string]decimal.Decimal
	prices      map[string]decimal.Decimal
	history     []domain.TradeRecord
	historyCap  int
	broadcaster *events.LedgerBroadcaster
}

// New creates a ledger seeded with the configured starting cash and holdings.
// Assets present in holdings define the tradable set; prices start at zero
// (unknown) until the first price update arrives.
func New(quote string, startingCash decimal.Decimal, startingHoldings map[string]decimal.Decimal,
	historyCap int, broadcaster *events.LedgerBroadcaster, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyCap < 1 {
		historyCap = DefaultHistoryCap
	}
	holdings := make(map[string]decimal.Decimal, len(startingHoldings))
	prices := make(map[string]decimal.Decimal, len(startingHoldings))
	for asset, qty := range startingHoldings {
		holdings[asset] = qty
		prices[asset] = decimal.Zero
	}
	l := &Ledger{
		logger:      logger,
		quote:       quote,
		cash:        startingCash,
		holdings:    holdings,
		prices:      prices,
		historyCap:  historyCap,
		broadcaster: broadcaster,
	}
	logger.Info("ledger init",
		zap.String("quote", quote),
		zap.String("cash", startingCash.String()),
		zap.Int("assets", len(holdings)))
	return l
}

// Quote returns the quote asset symbol.
func (l *Ledger) Quote() string {
	return l.quote
}

// Assets returns the configured tradable asset symbols.
func (l *Ledger) Assets() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	assets := make([]string, 0, len(l.holdings))
	for asset := range l.holdings {
		assets = append(assets, asset)
	}
	return assets
}

// ExecuteTrade validates and applies a buy or sell of the given asset.
// Preconditions are checked in a fixed order and the first failure wins:
// amount validity, asset membership, price availability, then sufficiency
// of cash or holdings.
// On failure the state is left untouched.
func (l *Ledger) ExecuteTrade(side domain.Side, asset string, quantity decimal.Decimal) (domain.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if quantity.LessThanOrEqual(decimal.Zero) {
		return domain.TradeRecord{}, domain.ErrInvalidAmount
	}
	if _, ok := l.holdings[asset]; !ok {
		return domain.TradeRecord{}, domain.ErrUnknownAsset
	}
	price := l.prices[asset]
	if price.LessThanOrEqual(decimal.Zero) {
		return domain.TradeRecord{}, domain.ErrPriceUnavailable
	}

	notional := quantity.Mul(price)
	switch side {
	case domain.SideBuy:
		if notional.GreaterThan(l.cash) {
			return domain.TradeRecord{}, domain.ErrInsufficientCash
		}
		l.cash = l.cash.Sub(notional)
		l.holdings[asset] = l.holdings[asset].Add(quantity)
	case domain.SideSell:
		if quantity.GreaterThan(l.holdings[asset]) {
			return domain.TradeRecord{}, domain.ErrInsufficientHoldings
		}
		l.holdings[asset] = l.holdings[asset].Sub(quantity)
		l.cash = l.cash.Add(notional)
	default:
		return domain.TradeRecord{}, domain.ErrInvalidAmount
	}

	record := domain.TradeRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Side:      side,
		Asset:     asset,
		Quantity:  quantity,
		Price:     price,
		Notional:  notional,
	}
	l.prependHistory(record)

	l.logger.Info("trade executed",
		zap.String("id", record.ID),
		zap.String("side", side.String()),
		zap.String("asset", asset),
		zap.String("quantity", quantity.String()),
		zap.String("price", price.String()))

	l.publish(events.ReasonTrade, &record)
	return record, nil
}

// Deposit adds cash to the ledger. The amount must be positive.
func (l *Ledger) Deposit(amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	l.cash = l.cash.Add(amount)

	l.logger.Info("deposit applied", zap.String("amount", amount.String()))
	l.publish(events.ReasonDeposit, nil)
	return nil
}

// Withdraw removes cash from the ledger. The amount must be positive and
// must not exceed the available cash balance.
func (l *Ledger) Withdraw(amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if amount.GreaterThan(l.cash) {
		return domain.ErrInsufficientCash
	}
	l.cash = l.cash.Sub(amount)

	l.logger.Info("withdraw applied", zap.String("amount", amount.String()))
	l.publish(events.ReasonWithdraw, nil)
	return nil
}

// ApplyPriceUpdate merges observed prices into the ledger. Only assets present
// in the payload are touched; assets outside the configured set are ignored.
// An update always fires a change event so derived totals stay current.
func (l *Ledger) ApplyPriceUpdate(prices map[string]decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for asset, price := range prices {
		if _, ok := l.holdings[asset]; !ok {
			continue
		}
		if price.LessThan(decimal.Zero) {
			continue
		}
		l.prices[asset] = price
	}
	l.publish(events.ReasonPrices, nil)
}

// Snapshot returns an immutable copy of the ledger state.
func (l *Ledger) Snapshot() domain.LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.NewLedgerSnapshot(time.Now(), l.cash, l.holdings, l.prices)
}

// History returns the bounded trade history, most recent first.
func (l *Ledger) History() []domain.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.TradeRecord, len(l.history))
	copy(out, l.history)
	return out
}

// prependHistory inserts the record at the front and trims to the cap.
// Caller must hold the write lock.
func (l *Ledger) prependHistory(record domain.TradeRecord) {
	l.history = append([]domain.TradeRecord{record}, l.history...)
	if len(l.history) > l.historyCap {
		l.history = l.history[:l.historyCap]
	}
}

// publish emits a ledger update to subscribers. Caller must hold the lock.
func (l *Ledger) publish(reason string, record *domain.TradeRecord) {
	if l.broadcaster == nil {
		return
	}
	holdings := make(map[string]string, len(l.holdings))
	total := l.cash
	for asset, qty := range l.holdings {
		holdings[asset] = qty.String()
		total = total.Add(qty.Mul(l.prices[asset]))
	}
	prices := make(map[string]string, len(l.prices))
	for asset, price := range l.prices {
		prices[asset] = price.String()
	}
	update := events.LedgerUpdate{
		Timestamp:  time.Now(),
		Reason:     reason,
		Cash:       l.cash.String(),
		Holdings:   holdings,
		Prices:     prices,
		TotalValue: total.String(),
	}
	if record != nil {
		update.Trade = &events.TradeInfo{
			ID:       record.ID,
			Side:     record.Side.String(),
			Asset:    record.Asset,
			Quantity: record.Quantity.String(),
			Price:    record.Price.String(),
			Notional: record.Notional.String(),
		}
	}
	l.broadcaster.Publish(update)
}
