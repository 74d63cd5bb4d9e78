// Package store is the OrderStore: a dense arena of order records
// addressed by stable handles, with intrusive forward/back links so a
// PriceLevel's FIFO queue costs no per-node heap allocation.
//
// The arena knows nothing about price levels or books; linkage (Prev/Next)
// is maintained by the caller (internal/orderbook). This mirrors the
// intrusive slot-array pattern used by fixed-capacity matching cores —
// pool plus free-list plus handle-indirection — generalized here to grow
// on demand instead of a fixed capacity ceiling.
package store

// Handle is a stable reference into the arena, valid from Insert until the
// matching Remove. A released handle must never be dereferenced again —
// the slot it named may already have been recycled for a different order.
type Handle int32

// Nil is the zero value of a handle field that names "no order" (an empty
// PriceLevel's head/tail, or an order with no neighbour in its queue).
const Nil Handle = -1

// Record is one arena slot: the order's resting data plus its intrusive
// links within whatever PriceLevel queue currently holds it.
type Record struct {
	ID       uint64
	Price    int64
	Quantity int64
	Prev     Handle
	Next     Handle
}

// Store is the arena. It grows like a normal Go slice (via append); freed
// slots are recycled via a LIFO free list before the slice is grown again.
type Store struct {
	records []Record
	free    []Handle
}

// New returns an empty arena pre-sized for n resident orders.
func New(n int) *Store {
	return &Store{
		records: make([]Record, 0, n),
	}
}

// Insert places a new record in a free slot (or grows the arena) and
// returns its handle. O(1) amortised.
func (s *Store) Insert(id uint64, price, quantity int64) Handle {
	rec := Record{ID: id, Price: price, Quantity: quantity, Prev: Nil, Next: Nil}

	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.records[h] = rec
		return h
	}

	s.records = append(s.records, rec)
	return Handle(len(s.records) - 1)
}

// Get returns a pointer to the record named by h. Undefined if h was
// released or never issued by this store.
func (s *Store) Get(h Handle) *Record {
	return &s.records[h]
}

// Remove returns h's slot to the free list. The caller must already have
// unlinked the record from any PriceLevel chain it belonged to.
func (s *Store) Remove(h Handle) {
	s.free = append(s.free, h)
}

// Len reports the number of slots ever allocated, including freed ones
// still sitting in the backing slice (used only by tests to sanity-check
// slot reuse).
func (s *Store) Len() int {
	return len(s.records)
}
