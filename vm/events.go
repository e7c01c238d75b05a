package vm

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/event"

	"vaultd/logs"
	"vaultd/types"
)

// EventBus 已提交事件的广播。
// Publish 不阻塞执行路径：事件先进缓冲，由分发协程通过 event.Feed 送给订阅者；
// 缓冲满时丢弃并计数，持久化的事件日志不受影响（ListEvents 可补读）。
type EventBus struct {
	feed    event.Feed
	ch      chan types.VaultEvent
	quit    chan struct{}
	wg      sync.WaitGroup
	closed  atomic.Bool
	dropped atomic.Uint64
	logger  logs.Logger
}

func NewEventBus(buffer int, logger logs.Logger) *EventBus {
	if buffer <= 0 {
		buffer = 1024
	}
	if logger == nil {
		logger = logs.NewNopLogger()
	}
	b := &EventBus{
		ch:     make(chan types.VaultEvent, buffer),
		quit:   make(chan struct{}),
		logger: logger,
	}
	b.wg.Add(1)
	go b.loop()
	return b
}

func (b *EventBus) loop() {
	defer b.wg.Done()
	for {
		select {
		case ev := <-b.ch:
			b.feed.Send(ev)
		case <-b.quit:
			return
		}
	}
}

// Subscribe ch 的元素类型必须是 types.VaultEvent
func (b *EventBus) Subscribe(ch chan<- types.VaultEvent) event.Subscription {
	return b.feed.Subscribe(ch)
}

func (b *EventBus) Publish(evs ...types.VaultEvent) {
	if b.closed.Load() {
		return
	}
	for _, ev := range evs {
		select {
		case b.ch <- ev:
		default:
			n := b.dropped.Add(1)
			b.logger.Warn("[EventBus] buffer full, dropped %s tx=%s (total dropped %d)", ev.Type, ev.TxID, n)
		}
	}
}

// Dropped 因缓冲满被丢弃的事件数
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Pending 缓冲中待分发的事件数与容量
func (b *EventBus) Pending() (int, int) {
	return len(b.ch), cap(b.ch)
}

func (b *EventBus) Close() {
	if b.closed.Swap(true) {
		return
	}
	close(b.quit)
	b.wg.Wait()
}
