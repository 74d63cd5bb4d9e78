// Package orderbook implements the PriceLevel, SideBook and OrderIndex
// components: the per-side price->queue map, its FIFO queues, and the
// id-addressed directory that makes cancellation O(1).
package orderbook

import "github.com/nathanyu/stock-exchange/internal/store"

// PriceLevel is the FIFO queue of resting orders at one price. It owns no
// orders itself — Head/Tail are handles into the shared OrderStore — and
// tracks only the aggregate resting quantity, so a level can be checked for
// emptiness and volume without walking its chain.
type PriceLevel struct {
	Price         int64
	Head          store.Handle
	Tail          store.Handle
	TotalQuantity int64
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{Price: price, Head: store.Nil, Tail: store.Nil}
}

// pushBack appends h to the tail of the queue. O(1).
func (l *PriceLevel) pushBack(s *store.Store, h store.Handle, qty int64) {
	rec := s.Get(h)
	rec.Prev = l.Tail
	rec.Next = store.Nil

	if l.Tail == store.Nil {
		l.Head = h
	} else {
		s.Get(l.Tail).Next = h
	}
	l.Tail = h
	l.TotalQuantity += qty
}

// unlink splices h out of the chain, adjusting neighbours and the level's
// Head/Tail as needed, and subtracts qty (the order's residual quantity at
// the time of removal) from TotalQuantity. O(1).
func (l *PriceLevel) unlink(s *store.Store, h store.Handle, qty int64) {
	rec := s.Get(h)

	if rec.Prev != store.Nil {
		s.Get(rec.Prev).Next = rec.Next
	} else {
		l.Head = rec.Next
	}

	if rec.Next != store.Nil {
		s.Get(rec.Next).Prev = rec.Prev
	} else {
		l.Tail = rec.Prev
	}

	rec.Prev = store.Nil
	rec.Next = store.Nil
	l.TotalQuantity -= qty
}

// front peeks the head handle, or store.Nil if the level is empty.
func (l *PriceLevel) front() store.Handle {
	return l.Head
}

// empty reports whether the level has no resting orders left.
func (l *PriceLevel) empty() bool {
	return l.Head == store.Nil
}
