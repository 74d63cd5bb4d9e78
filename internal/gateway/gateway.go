// Package gateway sits between the HTTP handlers and the sequencer. It
// assigns order ids, tracks each order's last known status for query
// endpoints, and forwards validated requests into the sequencer's
// synchronous Reply-channel pipeline. It owns no matching state of its
// own — it is a thin, stateful front door in front of the matching core,
// with no wallet or risk-limit bookkeeping attached.
package gateway

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/telemetry"
)

// Gateway validates and forwards order requests, and remembers the last
// observed status of every order it has seen so status queries don't need
// to round-trip through the sequencer.
type Gateway struct {
	mu     sync.RWMutex
	orders map[domain.OrderID]*domain.Order

	OrderOut chan *domain.OrderEvent
	// reply buffering per event is allocated per-call; this channel is
	// only the pipe into the sequencer's single-writer loop.
}

// NewGateway creates a gateway that forwards onto orderOut — normally a
// Sequencer's OrderIn channel.
func NewGateway(orderOut chan *domain.OrderEvent) *Gateway {
	return &Gateway{
		orders:   make(map[domain.OrderID]*domain.Order),
		OrderOut: orderOut,
	}
}

// NextOrderID derives a non-zero OrderID from a fresh UUID. The matching
// core imposes no id generation policy of its own — this is where that
// policy lives.
func NextOrderID() domain.OrderID {
	id := uuid.New()
	for {
		v := binary.BigEndian.Uint64(id[:8])
		if v != 0 {
			return domain.OrderID(v)
		}
		id = uuid.New()
	}
}

// PlaceLimit validates and submits a new resting order, blocking until the
// single-writer sequencer has processed it.
func (g *Gateway) PlaceLimit(symbol string, side domain.Side, price, quantity int64) (*domain.Order, error) {
	if price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	id := NextOrderID()
	reply := make(chan domain.OrderResult, 1)
	event := &domain.OrderEvent{
		Action:   domain.OrderActionPlaceLimit,
		Symbol:   symbol,
		ID:       id,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Reply:    reply,
	}

	if !g.send(event) {
		return nil, fmt.Errorf("gateway: order pipeline full")
	}
	res := <-reply
	if res.Err != nil {
		telemetry.OrderErrorsTotal.WithLabelValues(errorReason(res.Err), symbol).Inc()
		return nil, res.Err
	}
	telemetry.OrdersTotal.WithLabelValues(string(domain.OrderActionPlaceLimit), symbol).Inc()

	order := &domain.Order{
		ID:                id,
		Symbol:            symbol,
		Side:              side,
		Price:             price,
		Quantity:          quantity,
		RemainingQuantity: quantity,
		Status:            domain.OrderStatusResting,
		CreatedAt:         time.Now(),
	}

	g.mu.Lock()
	g.orders[id] = order
	g.mu.Unlock()

	return order, nil
}

// Cancel submits a cancel for an order this gateway placed.
func (g *Gateway) Cancel(id domain.OrderID) (*domain.Order, error) {
	g.mu.RLock()
	order, known := g.orders[id]
	g.mu.RUnlock()
	if !known {
		return nil, domain.ErrUnknownOrderID
	}

	reply := make(chan domain.OrderResult, 1)
	event := &domain.OrderEvent{
		Action:   domain.OrderActionCancel,
		Symbol:   order.Symbol,
		CancelID: id,
		Reply:    reply,
	}
	if !g.send(event) {
		return nil, fmt.Errorf("gateway: order pipeline full")
	}
	res := <-reply
	if res.Err != nil {
		telemetry.OrderErrorsTotal.WithLabelValues(errorReason(res.Err), order.Symbol).Inc()
		return nil, res.Err
	}
	telemetry.OrdersTotal.WithLabelValues(string(domain.OrderActionCancel), order.Symbol).Inc()

	g.mu.Lock()
	order.Status = domain.OrderStatusCanceled
	order.RemainingQuantity = res.Residual
	g.mu.Unlock()

	return order, nil
}

// ExecuteMarket submits an incoming market sweep for symbol.
func (g *Gateway) ExecuteMarket(symbol string, side domain.Side, quantity int64) ([]domain.Fill, int64, error) {
	if quantity <= 0 {
		return nil, 0, domain.ErrInvalidQuantity
	}

	reply := make(chan domain.OrderResult, 1)
	event := &domain.OrderEvent{
		Action:    domain.OrderActionExecuteMarket,
		Symbol:    symbol,
		TakerSide: side,
		Quantity:  quantity,
		Reply:     reply,
	}
	if !g.send(event) {
		return nil, 0, fmt.Errorf("gateway: order pipeline full")
	}
	res := <-reply
	if res.Err != nil {
		telemetry.OrderErrorsTotal.WithLabelValues(errorReason(res.Err), symbol).Inc()
		return nil, 0, res.Err
	}
	telemetry.OrdersTotal.WithLabelValues(string(domain.OrderActionExecuteMarket), symbol).Inc()

	g.updateMakerStatuses(symbol, res.Fills)
	return res.Fills, res.Residual, nil
}

// GetOrder returns the last known snapshot of an order this gateway has
// seen, or nil if unknown.
func (g *Gateway) GetOrder(id domain.OrderID) *domain.Order {
	g.mu.RLock()
	defer g.mu.RUnlock()
	order, exists := g.orders[id]
	if !exists {
		return nil
	}
	cp := *order
	return &cp
}

func (g *Gateway) updateMakerStatuses(symbol string, fills []domain.Fill) {
	if len(fills) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, fill := range fills {
		maker, exists := g.orders[fill.MakerID]
		if !exists {
			continue
		}
		maker.FilledQuantity += fill.Quantity
		maker.RemainingQuantity -= fill.Quantity
		if maker.RemainingQuantity <= 0 {
			maker.Status = domain.OrderStatusFilled
		} else {
			maker.Status = domain.OrderStatusPartiallyFilled
		}
	}
}

func (g *Gateway) send(event *domain.OrderEvent) bool {
	select {
	case g.OrderOut <- event:
		return true
	default:
		log.Println("[gateway] WARN: order output channel full")
		return false
	}
}

// errorReason maps a sentinel error to a stable, low-cardinality metric
// label instead of the error string, which could vary.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrDuplicateOrderID):
		return "duplicate_order_id"
	case errors.Is(err, domain.ErrUnknownOrderID):
		return "unknown_order_id"
	default:
		return "other"
	}
}
