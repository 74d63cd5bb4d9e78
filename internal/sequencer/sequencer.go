// Package sequencer stamps monotonically increasing sequence ids on
// inbound order events and outbound execution events, then drives them
// through the matching core. One goroutine owns every symbol's engine and
// runs each operation to completion before the next begins — no internal
// suspension, no aliasing across engines.
package sequencer

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/nathanyu/stock-exchange/internal/domain"
	"github.com/nathanyu/stock-exchange/internal/registry"
	"github.com/nathanyu/stock-exchange/internal/telemetry"
)

// Sequencer is the single writer into the matching core. It owns no book
// state directly — that lives in the per-symbol engines held by its
// Registry — only the inbound/outbound counters and the pipeline channels.
type Sequencer struct {
	inboundSeq  atomic.Uint64
	outboundSeq atomic.Uint64
	registry    *registry.Registry

	OrderIn      chan *domain.OrderEvent
	ExecutionOut chan *domain.ExecutionEvent

	done chan struct{}
}

// NewSequencer creates a sequencer wired to reg, buffering bufferSize
// events on each pipeline channel.
func NewSequencer(reg *registry.Registry, bufferSize int) *Sequencer {
	return &Sequencer{
		registry:     reg,
		OrderIn:      make(chan *domain.OrderEvent, bufferSize),
		ExecutionOut: make(chan *domain.ExecutionEvent, bufferSize),
		done:         make(chan struct{}),
	}
}

// Start begins the sequencer's application loop in a goroutine.
func (s *Sequencer) Start() {
	go s.run()
}

// Stop signals the sequencer to shut down.
func (s *Sequencer) Stop() {
	close(s.done)
}

func (s *Sequencer) run() {
	log.Println("[sequencer] started")
	for {
		select {
		case event := <-s.OrderIn:
			s.processEvent(event)
		case <-s.done:
			log.Println("[sequencer] stopped")
			return
		}
	}
}

// processEvent stamps an inbound sequence id, dispatches the event to the
// symbol's engine, replies synchronously to the caller, then (on success)
// stamps and fans out the resulting execution for market data/telemetry.
func (s *Sequencer) processEvent(event *domain.OrderEvent) {
	seq := s.inboundSeq.Add(1)
	telemetry.SequencerInboundSeq.Set(float64(seq))
	engine := s.registry.Get(event.Symbol)

	var (
		id       domain.OrderID
		fills    []domain.Fill
		residual int64
		err      error
	)

	switch event.Action {
	case domain.OrderActionPlaceLimit:
		err = engine.PlaceLimit(event.ID, event.Side, event.Price, event.Quantity)
		id = event.ID
	case domain.OrderActionCancel:
		residual, err = engine.Cancel(event.CancelID)
		id = event.CancelID
	case domain.OrderActionExecuteMarket:
		fills, residual, err = engine.ExecuteMarket(event.TakerSide, event.Quantity)
	default:
		log.Printf("[sequencer] WARN: unknown action %q", event.Action)
		if event.Reply != nil {
			event.Reply <- domain.OrderResult{Err: fmt.Errorf("sequencer: unknown action %q", event.Action)}
		}
		return
	}

	if event.Reply != nil {
		event.Reply <- domain.OrderResult{ID: id, Residual: residual, Fills: fills, Err: err}
	}

	if err != nil {
		// Caller errors leave state unchanged; nothing to publish.
		return
	}

	outSeq := s.outboundSeq.Add(1)
	telemetry.SequencerOutboundSeq.Set(float64(outSeq))
	for i := range fills {
		fills[i].SequenceID = outSeq
	}

	result := &domain.ExecutionEvent{
		Symbol:     event.Symbol,
		Fills:      fills,
		Residual:   residual,
		SequenceID: seq,
	}

	select {
	case s.ExecutionOut <- result:
	default:
		log.Println("[sequencer] WARN: execution output channel full, dropping event")
	}
}

// CurrentInboundSeq returns the current inbound sequence number.
func (s *Sequencer) CurrentInboundSeq() uint64 {
	return s.inboundSeq.Load()
}

// CurrentOutboundSeq returns the current outbound sequence number.
func (s *Sequencer) CurrentOutboundSeq() uint64 {
	return s.outboundSeq.Load()
}
