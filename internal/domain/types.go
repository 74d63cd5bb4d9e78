// Package domain holds the value types shared by the matching core and its
// surrounding services. Nothing in this package owns state: it is the
// vocabulary the other packages speak.
package domain

import (
	"errors"
	"time"
)

// Side is which side of the book an order or a market sweep belongs to.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side, used when a taker sweeps the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderStatus is the lifecycle state of a resting order.
//
//	Resting -> PartiallyFilled (still resting) -> Filled | Canceled
//
// Filled and Canceled are terminal; no other transitions exist.
type OrderStatus string

const (
	OrderStatusResting         OrderStatus = "resting"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
)

// OrderID identifies an order across its lifetime. Zero is never a valid id
// (gateway.NextOrderID never issues one); the engine compares ids only for
// equality and does not itself reject a zero id. It imposes no generation
// policy of its own.
type OrderID uint64

// Order is the caller-facing snapshot of a resting (or just-terminated)
// order. It carries no arena handle or intrusive links — those are the
// OrderStore's business, not the caller's.
type Order struct {
	ID                OrderID     `json:"order_id"`
	Symbol            string      `json:"symbol"`
	Side              Side        `json:"side"`
	Price             int64       `json:"price"`
	Quantity          int64       `json:"quantity"`
	FilledQuantity    int64       `json:"filled_quantity"`
	RemainingQuantity int64       `json:"remaining_quantity"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	SequenceID        uint64      `json:"sequence_id"`
}

// Fill is one match produced while sweeping the book. MakerID is the
// resting order that provided liquidity; Price is always the maker's
// resting price.
type Fill struct {
	MakerID    OrderID   `json:"maker_order_id"`
	Symbol     string    `json:"symbol"`
	Price      int64     `json:"price"`
	Quantity   int64     `json:"quantity"`
	Timestamp  time.Time `json:"timestamp"`
	SequenceID uint64    `json:"sequence_id"`
}

// PriceLevelView is an aggregated, read-only snapshot of one price level,
// returned by depth/best-bid/best-ask queries.
type PriceLevelView struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// Candlestick is OHLCV data for one completed or in-progress interval,
// aggregated by internal/marketdata from the fill tape.
type Candlestick struct {
	Symbol    string    `json:"symbol"`
	Open      int64     `json:"open"`
	High      int64     `json:"high"`
	Low       int64     `json:"low"`
	Close     int64     `json:"close"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
	Interval  string    `json:"interval"`
}

// Caller error taxonomy. All are synchronous, state-preserving failures —
// there is nothing transient or retryable in this core.
var (
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrDuplicateOrderID = errors.New("duplicate order id")
	ErrUnknownOrderID   = errors.New("unknown order id")
)

// OrderAction is the action carried by an OrderEvent through the sequencer.
type OrderAction string

const (
	OrderActionPlaceLimit    OrderAction = "place_limit"
	OrderActionCancel        OrderAction = "cancel"
	OrderActionExecuteMarket OrderAction = "execute_market"
)

// OrderEvent is one sequencer-pipeline input: either a new resting order, a
// cancel of an existing one, or an incoming market sweep. Reply, when
// non-nil, receives exactly one OrderResult once the single-writer
// sequencer has processed this event — the channel-mailbox equivalent of a
// synchronous call, so an embedding HTTP handler can await its own
// operation's outcome without the engine's single-writer loop handling
// more than one request at a time.
type OrderEvent struct {
	Action OrderAction
	Symbol string

	// Populated for OrderActionPlaceLimit.
	ID       OrderID
	Side     Side
	Price    int64
	Quantity int64

	// Populated for OrderActionCancel.
	CancelID OrderID

	// Populated for OrderActionExecuteMarket, together with Quantity above.
	TakerSide Side

	Reply chan OrderResult
}

// OrderResult is the synchronous outcome of a single OrderEvent, delivered
// over its Reply channel.
type OrderResult struct {
	ID       OrderID
	Residual int64
	Fills    []Fill
	Err      error
}

// ExecutionEvent is the outbound result of one OrderEvent, stamped with
// sequence ids and fanned out to market data and telemetry.
type ExecutionEvent struct {
	Symbol     string
	Fills      []Fill
	Residual   int64 // unfilled portion of a market sweep, quantity removed by a cancel, or 0 for a placement
	SequenceID uint64
}
