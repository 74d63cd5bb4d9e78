package orderbook

import (
	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/store"
)

// indexEntry is one order-index record: enough to find an order's level and
// splice it out without scanning anything.
type indexEntry struct {
	side   domain.Side
	price  int64
	handle store.Handle
}

// Match is one resting order consumed during a sweep, before the engine
// layer stamps it with a symbol, timestamp and sequence id.
type Match struct {
	MakerID  uint64
	Price    int64
	Quantity int64
}

// Book is the full two-sided book for a single symbol: one SideBook per
// side, the shared order-store arena backing both, and an order index
// tying order ids to their resting location. Those three pieces are held
// together here so every mutation keeps them consistent.
type Book struct {
	store *store.Store
	bid   *SideBook
	ask   *SideBook
	index map[uint64]indexEntry
}

// New creates an empty two-sided book.
func New() *Book {
	return &Book{
		store: store.New(64),
		bid:   newSideBook(domain.SideBuy),
		ask:   newSideBook(domain.SideSell),
		index: make(map[uint64]indexEntry),
	}
}

func (b *Book) sideBook(s domain.Side) *SideBook {
	if s == domain.SideBuy {
		return b.bid
	}
	return b.ask
}

// Has reports whether id currently names a resting order. Order ids are
// unique across both sides of the book simultaneously, so one map
// serves both.
func (b *Book) Has(id uint64) bool {
	_, ok := b.index[id]
	return ok
}

// Rest inserts a brand-new maker order at (side, price), appending it to
// the tail of that level's queue. The caller (the engine) must already
// have rejected a duplicate id.
func (b *Book) Rest(id uint64, side domain.Side, price, quantity int64) {
	h := b.store.Insert(id, price, quantity)
	level := b.sideBook(side).getOrCreateMut(price)
	level.pushBack(b.store, h, quantity)
	b.index[id] = indexEntry{side: side, price: price, handle: h}
}

// Cancel removes a resting order by id, returning its residual quantity.
// Reports false if id is not resting.
func (b *Book) Cancel(id uint64) (int64, bool) {
	entry, ok := b.index[id]
	if !ok {
		return 0, false
	}

	rec := b.store.Get(entry.handle)
	residual := rec.Quantity

	level, _ := b.sideBook(entry.side).getMut(entry.price)
	level.unlink(b.store, entry.handle, residual)
	b.sideBook(entry.side).dropIfEmpty(level)

	b.store.Remove(entry.handle)
	delete(b.index, id)

	return residual, true
}

// Sweep consumes resting liquidity on the side opposite takerSide,
// best-price first and FIFO within each level, until quantity is exhausted
// or the opposite side runs dry: price priority across levels, arrival
// order within a level, execution at the maker's resting price.
func (b *Book) Sweep(takerSide domain.Side, quantity int64) ([]Match, int64) {
	opposite := b.sideBook(takerSide.Opposite())

	remaining := quantity
	var matches []Match

	for remaining > 0 {
		level, ok := opposite.bestMut()
		if !ok {
			break
		}

		for remaining > 0 && !level.empty() {
			h := level.front()
			rec := b.store.Get(h)

			tradeQty := min(remaining, rec.Quantity)
			matches = append(matches, Match{MakerID: rec.ID, Price: rec.Price, Quantity: tradeQty})

			remaining -= tradeQty
			rec.Quantity -= tradeQty
			level.TotalQuantity -= tradeQty

			if rec.Quantity == 0 {
				level.unlink(b.store, h, 0)
				delete(b.index, rec.ID)
				b.store.Remove(h)
			}
		}

		if level.empty() {
			opposite.dropIfEmpty(level)
		}
	}

	return matches, remaining
}

// BestBid / BestAsk return the top-of-book aggregate for each side.
func (b *Book) BestBid() (domain.PriceLevelView, bool) {
	return bestView(b.bid)
}

func (b *Book) BestAsk() (domain.PriceLevelView, bool) {
	return bestView(b.ask)
}

func bestView(sb *SideBook) (domain.PriceLevelView, bool) {
	lvl, ok := sb.best()
	if !ok {
		return domain.PriceLevelView{}, false
	}
	return domain.PriceLevelView{Price: lvl.Price, Quantity: lvl.TotalQuantity}, true
}

// Depth returns up to n price levels best-first for the given side.
func (b *Book) Depth(side domain.Side, n int) []domain.PriceLevelView {
	return b.sideBook(side).depth(n)
}
