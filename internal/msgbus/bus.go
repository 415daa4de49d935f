package msgbus

import (
	"bytes"
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// BusError classifies a failed send.
type BusError struct {
	Code    string
	Message string
}

func (e *BusError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

var (
	// ErrUnknownRecipient is returned when to_agent is not registered.
	ErrUnknownRecipient = &BusError{Code: "UnknownRecipient", Message: "recipient is not registered"}
	// ErrMailboxFull is returned when a mailbox is at capacity.
	ErrMailboxFull = &BusError{Code: "MailboxFull", Message: "mailbox is at capacity"}
)

// entry is one item in a mailbox's priority heap.
type entry struct {
	envelope Envelope
	seq      uint64 // enqueue order, used to break priority ties FIFO
}

// mailboxHeap is a max-heap ordered by (priority desc, seq asc).
type mailboxHeap []entry

func (h mailboxHeap) Len() int { return len(h) }
func (h mailboxHeap) Less(i, j int) bool {
	if h[i].envelope.Priority != h[j].envelope.Priority {
		return h[i].envelope.Priority > h[j].envelope.Priority
	}
	return h[i].seq < h[j].seq
}
func (h mailboxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mailboxHeap) Push(x any)        { *h = append(*h, x.(entry)) }
func (h *mailboxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// mailbox is a single agent's bounded, priority-ordered queue.
type mailbox struct {
	mu       sync.Mutex
	items    mailboxHeap
	capacity int
	nextSeq  uint64
}

func newMailbox(capacity int) *mailbox {
	mb := &mailbox{capacity: capacity}
	heap.Init(&mb.items)
	return mb
}

func (mb *mailbox) push(e Envelope) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.capacity > 0 && len(mb.items) >= mb.capacity {
		return ErrMailboxFull
	}
	heap.Push(&mb.items, entry{envelope: e, seq: mb.nextSeq})
	mb.nextSeq++
	return nil
}

func (mb *mailbox) pop() (Envelope, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.items) == 0 {
		return Envelope{}, false
	}
	e := heap.Pop(&mb.items).(entry)
	return e.envelope, true
}

func (mb *mailbox) len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.items)
}

// Bus is the per-agent priority mailbox system described by the
// message-bus component of the spec. Registration and the mailbox
// directory are guarded by a coarse mutex; each mailbox has its own
// lock so concurrent sends to distinct mailboxes proceed in parallel
// while per-mailbox ordering is preserved.
type Bus struct {
	mu          sync.RWMutex
	mailboxes   map[uuid.UUID]*mailbox
	capacity    int // default capacity for new mailboxes; 0 = unbounded
}

// New creates a Bus. capacity bounds every mailbox registered on it
// (0 means unbounded), matching the bus_capacity setting in spec.md §4.E.
func New(capacity int) *Bus {
	return &Bus{
		mailboxes: make(map[uuid.UUID]*mailbox),
		capacity:  capacity,
	}
}

// Register creates an empty mailbox for agentID. Re-registering an
// already-registered agent is a no-op that preserves its existing
// mailbox contents.
func (b *Bus) Register(agentID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.mailboxes[agentID]; ok {
		return
	}
	b.mailboxes[agentID] = newMailbox(b.capacity)
}

// Unregister drops agentID's mailbox and any messages queued in it.
func (b *Bus) Unregister(agentID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.mailboxes, agentID)
}

// IsRegistered reports whether agentID currently has a mailbox.
func (b *Bus) IsRegistered(agentID uuid.UUID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.mailboxes[agentID]
	return ok
}

// Send enqueues envelope into its recipient's mailbox. It fails with
// ErrUnknownRecipient if To is not registered, or ErrMailboxFull if the
// recipient's mailbox is at capacity. No message is ever silently
// dropped: Send either succeeds or returns one of these two errors.
func (b *Bus) Send(envelope Envelope) error {
	b.mu.RLock()
	mb, ok := b.mailboxes[envelope.To]
	b.mu.RUnlock()
	if !ok {
		slog.Warn("msgbus: send to unregistered recipient", "to", envelope.To)
		return ErrUnknownRecipient
	}
	if err := mb.push(envelope); err != nil {
		slog.Warn("msgbus: mailbox full", "to", envelope.To)
		return err
	}
	return nil
}

// Receive removes and returns the highest-priority, earliest-enqueued
// envelope for agentID, or false if its mailbox is empty or unregistered.
func (b *Bus) Receive(agentID uuid.UUID) (Envelope, bool) {
	b.mu.RLock()
	mb, ok := b.mailboxes[agentID]
	b.mu.RUnlock()
	if !ok {
		return Envelope{}, false
	}
	return mb.pop()
}

// PendingCount returns the number of queued envelopes for agentID (0 if
// unregistered).
func (b *Bus) PendingCount(agentID uuid.UUID) int {
	b.mu.RLock()
	mb, ok := b.mailboxes[agentID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	return mb.len()
}

// RegisteredAgents returns the set of currently registered agent IDs in
// ascending UUID order, matching the orchestrator's deterministic
// per-pass visitation order (spec.md §4.H).
func (b *Bus) RegisteredAgents() []uuid.UUID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(b.mailboxes))
	for id := range b.mailboxes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// IsBusError reports whether err is one of the BusError sentinels.
func IsBusError(err error) (*BusError, bool) {
	var be *BusError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
