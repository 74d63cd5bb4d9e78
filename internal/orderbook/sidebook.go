package orderbook

import (
	"github.com/tidwall/btree"

	"github.com/nathanyu/stock-exchange/internal/domain"
)

// SideBook is a sorted map from price to PriceLevel for one side of a
// symbol's book. Iteration in best-first order is the reason this is a
// sorted container rather than a hash map: a heap would give O(1) best
// access but neither O(log L) removal of an arbitrary emptied level nor
// ordered depth traversal, and both are needed here.
//
// Backed by github.com/tidwall/btree.
type SideBook struct {
	side   domain.Side
	levels *btree.BTreeG[*PriceLevel]
}

func newSideBook(side domain.Side) *SideBook {
	var less func(a, b *PriceLevel) bool
	if side == domain.SideBuy {
		// Bids: best-first means highest price first.
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	} else {
		// Asks: best-first means lowest price first.
		less = func(a, b *PriceLevel) bool { return a.Price < b.Price }
	}
	return &SideBook{side: side, levels: btree.NewBTreeG(less)}
}

// probe builds a throwaway PriceLevel carrying only the key a lookup needs.
func probe(price int64) *PriceLevel {
	return &PriceLevel{Price: price}
}

// getOrCreateMut returns the level at price, creating an empty one first if
// none exists. O(log L).
func (b *SideBook) getOrCreateMut(price int64) *PriceLevel {
	if lvl, ok := b.levels.GetMut(probe(price)); ok {
		return lvl
	}
	lvl := newPriceLevel(price)
	b.levels.Set(lvl)
	return lvl
}

// getMut looks up the level at price without creating it.
func (b *SideBook) getMut(price int64) (*PriceLevel, bool) {
	return b.levels.GetMut(probe(price))
}

// dropIfEmpty erases lvl's entry once its queue has drained; empty levels
// are removed eagerly rather than left as tombstones.
func (b *SideBook) dropIfEmpty(lvl *PriceLevel) {
	if lvl.empty() {
		b.levels.Delete(probe(lvl.Price))
	}
}

// best returns the top-of-book level, or false if the side is empty.
func (b *SideBook) best() (*PriceLevel, bool) {
	return b.levels.Min()
}

// bestMut is best's mutable counterpart, used when the matching sweep needs
// to modify the level it just read.
func (b *SideBook) bestMut() (*PriceLevel, bool) {
	return b.levels.MinMut()
}

// depth returns up to n price levels best-first as read-only views. n<=0
// means "all levels".
func (b *SideBook) depth(n int) []domain.PriceLevelView {
	views := make([]domain.PriceLevelView, 0, max(n, 8))
	b.levels.Scan(func(lvl *PriceLevel) bool {
		views = append(views, domain.PriceLevelView{Price: lvl.Price, Quantity: lvl.TotalQuantity})
		return n <= 0 || len(views) < n
	})
	return views
}

