package bus

import (
	"container/list"
	"context"
	"sync"
)

// MessageBus is the concrete hub channel adapters and the agent runtime
// talk through. It implements EventPublisher (broadcast/subscribe for
// WebSocket-style listeners) and MessageRouter (inbound/outbound message
// queues between channels and the gateway). Queues are unbounded linked
// lists guarded by a mutex with a condition variable for blocking
// consumers, the same shape as the bounded priority mailboxes in
// internal/msgbus, minus the priority ordering this traffic doesn't need.
type MessageBus struct {
	subMu       sync.RWMutex
	subscribers map[string]EventHandler

	inMu   sync.Mutex
	inCond *sync.Cond
	inbox  *list.List

	outMu   sync.Mutex
	outCond *sync.Cond
	outbox  *list.List

	closed bool
}

// New creates a ready-to-use MessageBus.
func New() *MessageBus {
	b := &MessageBus{
		subscribers: make(map[string]EventHandler),
		inbox:       list.New(),
		outbox:      list.New(),
	}
	b.inCond = sync.NewCond(&b.inMu)
	b.outCond = sync.NewCond(&b.outMu)
	return b
}

// Subscribe registers handler under id to receive every broadcast Event.
// Re-subscribing the same id replaces its handler.
func (b *MessageBus) Subscribe(id string, handler EventHandler) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subscribers[id] = handler
}

// Unsubscribe removes id's handler, if any.
func (b *MessageBus) Unsubscribe(id string) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	delete(b.subscribers, id)
}

// Broadcast delivers event to every current subscriber synchronously.
func (b *MessageBus) Broadcast(event Event) {
	b.subMu.RLock()
	handlers := make([]EventHandler, 0, len(b.subscribers))
	for _, h := range b.subscribers {
		handlers = append(handlers, h)
	}
	b.subMu.RUnlock()
	for _, h := range handlers {
		h(event)
	}
}

// PublishInbound enqueues msg for the gateway's consumer loop.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.inMu.Lock()
	b.inbox.PushBack(msg)
	b.inCond.Signal()
	b.inMu.Unlock()
}

// ConsumeInbound blocks until a message is available or ctx is done,
// returning (msg, true) on delivery or (zero, false) if ctx was canceled
// first.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	return consume[InboundMessage](ctx, &b.inMu, b.inCond, b.inbox, &b.closed)
}

// PublishOutbound enqueues msg for delivery back out to its channel.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.outMu.Lock()
	b.outbox.PushBack(msg)
	b.outCond.Signal()
	b.outMu.Unlock()
}

// SubscribeOutbound blocks until an outbound message is available or ctx
// is done, returning (msg, true) on delivery or (zero, false) otherwise.
func (b *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	return consume[OutboundMessage](ctx, &b.outMu, b.outCond, b.outbox, &b.closed)
}

// Close wakes every blocked ConsumeInbound/SubscribeOutbound caller so
// they return (zero, false) and shut down cleanly.
func (b *MessageBus) Close() {
	b.inMu.Lock()
	b.closed = true
	b.inCond.Broadcast()
	b.inMu.Unlock()

	b.outMu.Lock()
	b.closed = true
	b.outCond.Broadcast()
	b.outMu.Unlock()
}

// consume pops the front element of q, blocking on cond until one is
// pushed, ctx is canceled, or the bus is closed. A watcher goroutine
// translates ctx.Done() into a Broadcast so the waiter doesn't block
// past cancellation.
func consume[T any](ctx context.Context, mu *sync.Mutex, cond *sync.Cond, q *list.List, closed *bool) (T, bool) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mu.Lock()
			cond.Broadcast()
			mu.Unlock()
		case <-done:
		}
	}()

	mu.Lock()
	defer mu.Unlock()
	for q.Len() == 0 {
		if *closed || ctx.Err() != nil {
			var zero T
			return zero, false
		}
		cond.Wait()
	}
	front := q.Remove(q.Front())
	return front.(T), true
}
