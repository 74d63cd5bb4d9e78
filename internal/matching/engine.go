// Package matching implements the Engine façade: the three public
// operations — place_limit, cancel, execute_market — plus the read-only
// best-bid/best-ask/depth queries, composed over one symbol's orderbook.Book.
//
// One Engine instance owns exactly one symbol's book and shares nothing
// with any other instance. A caller wanting to parallelise across symbols
// should instantiate one engine per symbol — see internal/registry for
// that multiplexer.
package matching

import (
	"time"

	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/orderbook"
)

// Engine is the matching engine for a single symbol. All operations are
// synchronous and run to completion before returning — there is no
// internal suspension.
type Engine struct {
	Symbol string
	book   *orderbook.Book
}

// NewEngine creates an engine for symbol with an empty book.
func NewEngine(symbol string) *Engine {
	return &Engine{Symbol: symbol, book: orderbook.New()}
}

// PlaceLimit rests a new maker order. It never matches against the
// opposite side, even if its price would cross — crossing limits are a
// deliberate non-goal; a caller wanting taker behaviour issues
// ExecuteMarket instead.
func (e *Engine) PlaceLimit(id domain.OrderID, side domain.Side, price, quantity int64) error {
	if price <= 0 {
		return domain.ErrInvalidPrice
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if e.book.Has(uint64(id)) {
		return domain.ErrDuplicateOrderID
	}

	e.book.Rest(uint64(id), side, price, quantity)
	return nil
}

// Cancel removes a resting order by id, returning the residual quantity
// that was cancelled.
func (e *Engine) Cancel(id domain.OrderID) (int64, error) {
	qty, ok := e.book.Cancel(uint64(id))
	if !ok {
		return 0, domain.ErrUnknownOrderID
	}
	return qty, nil
}

// ExecuteMarket sweeps the side opposite takerSide, best price first and
// FIFO within a level, until quantity is exhausted or the book runs dry.
// A sweep against an empty opposite side is not an error: it simply
// returns zero fills and a residual equal to the input quantity.
func (e *Engine) ExecuteMarket(takerSide domain.Side, quantity int64) ([]domain.Fill, int64, error) {
	if quantity <= 0 {
		return nil, 0, domain.ErrInvalidQuantity
	}

	matches, residual := e.book.Sweep(takerSide, quantity)
	if len(matches) == 0 {
		return nil, residual, nil
	}

	now := time.Now()
	fills := make([]domain.Fill, len(matches))
	for i, m := range matches {
		fills[i] = domain.Fill{
			MakerID:   domain.OrderID(m.MakerID),
			Symbol:    e.Symbol,
			Price:     m.Price,
			Quantity:  m.Quantity,
			Timestamp: now,
		}
	}
	return fills, residual, nil
}

// BestBid / BestAsk return the top-of-book aggregate for each side, or
// false if that side is empty.
func (e *Engine) BestBid() (domain.PriceLevelView, bool) {
	return e.book.BestBid()
}

func (e *Engine) BestAsk() (domain.PriceLevelView, bool) {
	return e.book.BestAsk()
}

// Depth returns up to n resting price levels best-first for side. n<=0
// returns every level.
func (e *Engine) Depth(side domain.Side, n int) []domain.PriceLevelView {
	return e.book.Depth(side, n)
}
