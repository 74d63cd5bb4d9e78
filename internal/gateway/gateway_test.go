package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/stock-exchange/internal/domain"
)

// respondWith drains the next event off orderOut and replies to it,
// standing in for the sequencer in isolation.
func respondWith(t *testing.T, orderOut chan *domain.OrderEvent, res domain.OrderResult) *domain.OrderEvent {
	t.Helper()
	event := <-orderOut
	event.Reply <- res
	return event
}

func TestPlaceLimit_ValidatesBeforeSending(t *testing.T) {
	g := NewGateway(make(chan *domain.OrderEvent, 10))

	_, err := g.PlaceLimit("AAPL", domain.SideBuy, 0, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = g.PlaceLimit("AAPL", domain.SideBuy, 10010, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	select {
	case <-g.OrderOut:
		t.Fatal("invalid request must never reach the sequencer")
	default:
	}
}

func TestPlaceLimit_AssignsIDAndTracksOrder(t *testing.T) {
	orderOut := make(chan *domain.OrderEvent, 10)
	g := NewGateway(orderOut)

	done := make(chan struct{})
	var order *domain.Order
	var err error
	go func() {
		order, err = g.PlaceLimit("AAPL", domain.SideSell, 10010, 100)
		close(done)
	}()

	event := respondWith(t, orderOut, domain.OrderResult{})
	<-done

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotZero(t, order.ID)
	assert.Equal(t, event.ID, order.ID)
	assert.Equal(t, domain.OrderStatusResting, order.Status)

	stored := g.GetOrder(order.ID)
	require.NotNil(t, stored)
	assert.Equal(t, order.ID, stored.ID)
}

func TestCancel_UnknownOrderRejectedLocally(t *testing.T) {
	g := NewGateway(make(chan *domain.OrderEvent, 10))

	_, err := g.Cancel(999)
	assert.ErrorIs(t, err, domain.ErrUnknownOrderID)
}

func TestCancel_UpdatesLocalStatus(t *testing.T) {
	orderOut := make(chan *domain.OrderEvent, 10)
	g := NewGateway(orderOut)

	placed := make(chan struct{})
	var order *domain.Order
	go func() {
		order, _ = g.PlaceLimit("AAPL", domain.SideSell, 10010, 100)
		close(placed)
	}()
	respondWith(t, orderOut, domain.OrderResult{})
	<-placed

	canceled := make(chan struct{})
	var cancelErr error
	go func() {
		_, cancelErr = g.Cancel(order.ID)
		close(canceled)
	}()
	respondWith(t, orderOut, domain.OrderResult{Residual: 40})
	<-canceled

	require.NoError(t, cancelErr)
	stored := g.GetOrder(order.ID)
	assert.Equal(t, domain.OrderStatusCanceled, stored.Status)
	assert.Equal(t, int64(40), stored.RemainingQuantity)
}

func TestExecuteMarket_UpdatesMakerStatuses(t *testing.T) {
	orderOut := make(chan *domain.OrderEvent, 10)
	g := NewGateway(orderOut)

	placed := make(chan struct{})
	var maker *domain.Order
	go func() {
		maker, _ = g.PlaceLimit("AAPL", domain.SideSell, 10010, 100)
		close(placed)
	}()
	respondWith(t, orderOut, domain.OrderResult{})
	<-placed

	swept := make(chan struct{})
	var fills []domain.Fill
	var residual int64
	var err error
	go func() {
		fills, residual, err = g.ExecuteMarket("AAPL", domain.SideBuy, 60)
		close(swept)
	}()
	respondWith(t, orderOut, domain.OrderResult{
		Fills: []domain.Fill{{MakerID: maker.ID, Symbol: "AAPL", Price: 10010, Quantity: 60}},
	})
	<-swept

	require.NoError(t, err)
	assert.Len(t, fills, 1)
	assert.Equal(t, int64(0), residual)

	stored := g.GetOrder(maker.ID)
	assert.Equal(t, domain.OrderStatusPartiallyFilled, stored.Status)
	assert.Equal(t, int64(60), stored.FilledQuantity)
	assert.Equal(t, int64(40), stored.RemainingQuantity)
}

func TestExecuteMarket_RejectsNonPositiveQuantity(t *testing.T) {
	g := NewGateway(make(chan *domain.OrderEvent, 10))

	_, _, err := g.ExecuteMarket("AAPL", domain.SideBuy, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestGetOrder_UnknownReturnsNil(t *testing.T) {
	g := NewGateway(make(chan *domain.OrderEvent, 10))
	assert.Nil(t, g.GetOrder(12345))
}
