package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_PublishReachesAllSubscribers(t *testing.T) {
	b := NewLedgerBroadcaster(4)
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer b.Unsubscribe(sub1)
	defer b.Unsubscribe(sub2)

	b.Publish(LedgerUpdate{Reason: ReasonDeposit, Cash: "100"})

	for _, sub := range []chan LedgerUpdate{sub1, sub2} {
		select {
		case u := <-sub:
			assert.Equal(t, ReasonDeposit, u.Reason)
			assert.Equal(t, "100", u.Cash)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive update")
		}
	}
}

func TestBroadcaster_SlowConsumerDoesNotBlockPublish(t *testing.T) {
	b := NewLedgerBroadcaster(1)
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// second publish must be dropped, not block
		b.Publish(LedgerUpdate{Reason: ReasonPrices})
		b.Publish(LedgerUpdate{Reason: ReasonPrices})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow consumer")
	}
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewLedgerBroadcaster(4)
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	_, ok := <-sub
	require.False(t, ok)

	// unsubscribing twice is a no-op
	b.Unsubscribe(sub)
}
