package events

import (
	"sync"
	"time"
)

// TradeInfo trade fields of an update, already formatted for consumers.
type TradeInfo struct {
	ID       string `json:"id"`
	Side     string `json:"side"`
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Notional string `json:"notional"`
}

// LedgerUpdate is a domain event describing the ledger state after a change.
// Uses string fields to avoid float precision issues when consumed by web/UI layers.
type LedgerUpdate struct {
	Timestamp  time.Time         `json:"ts"`
	Reason     string            `json:"reason"`
	Cash       string            `json:"cash"`
	Holdings   map[string]string `json:"holdings"`
	Prices     map[string]string `json:"prices"`
	TotalValue string            `json:"total_value"`
	Trade      *TradeInfo        `json:"trade,omitempty"`
}

// Reasons attached to ledger updates.
const (
	ReasonTrade    = "trade"
	ReasonDeposit  = "deposit"
	ReasonWithdraw = "withdraw"
	ReasonPrices   = "prices"
)

// LedgerBroadcaster fans out updates to all subscribers via buffered channels.
type LedgerBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan LedgerUpdate]struct{}
	buffer int
}

// NewLedgerBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewLedgerBroadcaster(buffer int) *LedgerBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &LedgerBroadcaster{
		subs:   make(map[chan LedgerUpdate]struct{}),
		buffer: buffer,
	}
}

// Publish sends the update to all subscribers, dropping if a reader is slow.
func (b *LedgerBroadcaster) Publish(u LedgerUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives updates until Unsubscribe is called.
func (b *LedgerBroadcaster) Subscribe() chan LedgerUpdate {
	ch := make(chan LedgerUpdate, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *LedgerBroadcaster) Unsubscribe(ch chan LedgerUpdate) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
