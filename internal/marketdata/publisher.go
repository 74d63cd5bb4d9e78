// Package marketdata consumes fills off the sequencer's ExecutionOut
// channel and keeps a trade tape plus per-symbol OHLCV candlesticks for
// query endpoints. The candlestick history per symbol is bounded by
// ringBufferCapacity; the trade tape keeps every fill and is never
// trimmed. It never mutates engine state — it is
// a read-only observer wired downstream of the single-writer core.
package marketdata

import (
	"log"
	"sync"
	"time"

	"github.com/nathanyu/stock-exchange/internal/domain"
)

const (
	ringBufferCapacity = 100
	defaultInterval    = "1m"
)

// candleState tracks the current (building) candlestick for a symbol.
type candleState struct {
	current  *domain.Candlestick
	hasData  bool
	interval time.Duration
}

// RingBuffer is a fixed-size circular buffer of candlesticks.
type RingBuffer struct {
	data  [ringBufferCapacity]*domain.Candlestick
	head  int
	count int
}

// Push adds a candlestick to the ring buffer.
func (rb *RingBuffer) Push(c *domain.Candlestick) {
	rb.data[rb.head] = c
	rb.head = (rb.head + 1) % ringBufferCapacity
	if rb.count < ringBufferCapacity {
		rb.count++
	}
}

// GetAll returns all candlesticks in chronological order.
func (rb *RingBuffer) GetAll() []*domain.Candlestick {
	if rb.count == 0 {
		return nil
	}

	result := make([]*domain.Candlestick, rb.count)
	start := (rb.head - rb.count + ringBufferCapacity) % ringBufferCapacity
	for i := range rb.count {
		idx := (start + i) % ringBufferCapacity
		result[i] = rb.data[idx]
	}
	return result
}

// GetRecent returns the n most recent candlesticks.
func (rb *RingBuffer) GetRecent(n int) []*domain.Candlestick {
	if n <= 0 || rb.count == 0 {
		return nil
	}
	if n > rb.count {
		n = rb.count
	}

	result := make([]*domain.Candlestick, n)
	start := (rb.head - n + ringBufferCapacity) % ringBufferCapacity
	for i := range n {
		idx := (start + i) % ringBufferCapacity
		result[i] = rb.data[idx]
	}
	return result
}

// Publisher receives execution events and maintains the trade tape and
// per-symbol candlesticks.
type Publisher struct {
	mu sync.RWMutex

	candles map[string]*RingBuffer
	states  map[string]*candleState
	fills   []domain.Fill

	ExecutionIn chan *domain.ExecutionEvent

	done   chan struct{}
	ticker *time.Ticker
}

// NewPublisher creates a new market data publisher.
func NewPublisher(bufferSize int) *Publisher {
	return &Publisher{
		candles:     make(map[string]*RingBuffer),
		states:      make(map[string]*candleState),
		ExecutionIn: make(chan *domain.ExecutionEvent, bufferSize),
		done:        make(chan struct{}),
	}
}

// Start begins the publisher's application loop.
func (p *Publisher) Start() {
	p.ticker = time.NewTicker(1 * time.Minute)
	go p.run()
}

// Stop shuts down the publisher.
func (p *Publisher) Stop() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
	close(p.done)
}

func (p *Publisher) run() {
	log.Println("[marketdata] publisher started")
	for {
		select {
		case event := <-p.ExecutionIn:
			p.processExecutionEvent(event)
		case <-p.ticker.C:
			p.rotateCandlesticks()
		case <-p.done:
			log.Println("[marketdata] publisher stopped")
			return
		}
	}
}

func (p *Publisher) processExecutionEvent(event *domain.ExecutionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, fill := range event.Fills {
		p.fills = append(p.fills, fill)
		p.updateCandle(fill)
	}
}

func (p *Publisher) updateCandle(fill domain.Fill) {
	state, exists := p.states[fill.Symbol]
	if !exists {
		state = &candleState{interval: time.Minute}
		p.states[fill.Symbol] = state
	}

	if !state.hasData {
		state.current = &domain.Candlestick{
			Symbol:    fill.Symbol,
			Open:      fill.Price,
			High:      fill.Price,
			Low:       fill.Price,
			Close:     fill.Price,
			Volume:    fill.Quantity,
			Timestamp: fill.Timestamp.Truncate(state.interval),
			Interval:  defaultInterval,
		}
		state.hasData = true
		return
	}

	c := state.current
	if fill.Price > c.High {
		c.High = fill.Price
	}
	if fill.Price < c.Low {
		c.Low = fill.Price
	}
	c.Close = fill.Price
	c.Volume += fill.Quantity
}

// rotateCandlesticks closes the current candle and starts a new interval.
func (p *Publisher) rotateCandlesticks() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for symbol, state := range p.states {
		if !state.hasData {
			continue
		}

		rb, exists := p.candles[symbol]
		if !exists {
			rb = &RingBuffer{}
			p.candles[symbol] = rb
		}
		rb.Push(state.current)

		state.hasData = false
		state.current = nil
	}
}

// GetCandles returns recent candlesticks for a symbol.
func (p *Publisher) GetCandles(symbol string, count int) []*domain.Candlestick {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []*domain.Candlestick
	if rb, exists := p.candles[symbol]; exists {
		result = rb.GetRecent(count)
	}
	if state, exists := p.states[symbol]; exists && state.hasData {
		result = append(result, state.current)
	}
	return result
}

// GetFills returns fills matching the filter criteria, each of which is
// optional (empty symbol / zero maker id / zero time skips that filter).
func (p *Publisher) GetFills(symbol string, makerID domain.OrderID, since time.Time) []domain.Fill {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []domain.Fill
	for _, fill := range p.fills {
		if symbol != "" && fill.Symbol != symbol {
			continue
		}
		if makerID != 0 && fill.MakerID != makerID {
			continue
		}
		if !since.IsZero() && fill.Timestamp.Before(since) {
			continue
		}
		result = append(result, fill)
	}
	return result
}
