package vm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultd/logs"
	"vaultd/types"
)

func TestEventBusDelivers(t *testing.T) {
	bus := NewEventBus(4, logs.NewNopLogger())
	defer bus.Close()

	ch := make(chan types.VaultEvent, 4)
	sub := bus.Subscribe(ch)
	defer sub.Unsubscribe()

	bus.Publish(sampleEvent(0), sampleEvent(1))
	for i := uint32(0); i < 2; i++ {
		select {
		case ev := <-ch:
			assert.Equal(t, i, ev.Index)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
	assert.Zero(t, bus.Dropped())
}

func TestEventBusDropsWhenFull(t *testing.T) {
	bus := NewEventBus(1, logs.NewNopLogger())

	// 订阅者不读，分发协程卡在第一条上，缓冲随后被填满
	ch := make(chan types.VaultEvent)
	sub := bus.Subscribe(ch)

	for i := uint32(0); i < 10; i++ {
		bus.Publish(sampleEvent(i))
	}
	assert.Greater(t, bus.Dropped(), uint64(0))
	_, c := bus.Pending()
	assert.Equal(t, 1, c)

	sub.Unsubscribe()
	bus.Close()
	bus.Publish(sampleEvent(99))
}

func TestEventBusCloseIdempotent(t *testing.T) {
	bus := NewEventBus(0, nil)
	bus.Close()
	bus.Close()
	bus.Publish(sampleEvent(0))
	n, _ := bus.Pending()
	require.Zero(t, n)
}
