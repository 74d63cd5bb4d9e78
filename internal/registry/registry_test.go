package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nathanyu/stock-exchange/internal/domain"
)

func TestGetCreatesPerSymbolEngine(t *testing.T) {
	r := New()

	aapl := r.Get("AAPL")
	msft := r.Get("MSFT")
	assert.NotSame(t, aapl, msft)

	again := r.Get("AAPL")
	assert.Same(t, aapl, again)
}

func TestSymbolsDoNotShareState(t *testing.T) {
	r := New()

	aapl := r.Get("AAPL")
	assert.NoError(t, aapl.PlaceLimit(1, domain.SideBuy, 100, 10))

	msft := r.Get("MSFT")
	_, ok := msft.BestBid()
	assert.False(t, ok, "a new symbol's engine must start with an empty book")
}
