package accretion

import "github.com/l1jgo/accretion/internal/core/ecs"

// LedgerEntry is one attached collectible and its attach order.
type LedgerEntry struct {
	ID    ecs.EntityID
	Order uint64
}

// Ledger is the FIFO of currently attached collectibles, oldest first.
type Ledger struct {
	entries []LedgerEntry
	head    int
	next    uint64
}

func NewLedger(capacity int) *Ledger {
	return &Ledger{entries: make([]LedgerEntry, 0, capacity+1)}
}

// Push appends id and returns its order index.
func (l *Ledger) Push(id ecs.EntityID) uint64 {
	l.next++
	l.entries = append(l.entries, LedgerEntry{ID: id, Order: l.next})
	return l.next
}

// Pop removes and returns the oldest entry.
func (l *Ledger) Pop() (LedgerEntry, bool) {
	if l.Len() == 0 {
		return LedgerEntry{}, false
	}
	e := l.entries[l.head]
	l.entries[l.head] = LedgerEntry{}
	l.head++
	if l.head == len(l.entries) {
		l.entries = l.entries[:0]
		l.head = 0
	} else if l.head > cap(l.entries)/2 {
		n := copy(l.entries, l.entries[l.head:])
		l.entries = l.entries[:n]
		l.head = 0
	}
	return e, true
}

// Remove deletes id wherever it sits, preserving the order of the rest.
func (l *Ledger) Remove(id ecs.EntityID) bool {
	for i := l.head; i < len(l.entries); i++ {
		if l.entries[i].ID == id {
			copy(l.entries[i:], l.entries[i+1:])
			l.entries = l.entries[:len(l.entries)-1]
			return true
		}
	}
	return false
}

func (l *Ledger) Len() int {
	return len(l.entries) - l.head
}

// Each visits entries oldest first.
func (l *Ledger) Each(fn func(LedgerEntry)) {
	for _, e := range l.entries[l.head:] {
		fn(e)
	}
}

// IDs returns a snapshot of attached IDs, oldest first.
func (l *Ledger) IDs() []ecs.EntityID {
	out := make([]ecs.EntityID, 0, l.Len())
	l.Each(func(e LedgerEntry) { out = append(out, e.ID) })
	return out
}
