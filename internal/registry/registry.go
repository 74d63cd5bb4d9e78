// Package registry multiplexes symbols onto independent matching engines.
// The core Engine (internal/matching) deliberately knows nothing about
// multi-symbol routing — that is a non-goal of the matching core itself —
// so this is the thinnest possible embedding of "one engine per symbol":
// a locked map handing out one *matching.Engine per symbol, created
// lazily on first use.
package registry

import (
	"sync"

	"github.com/nathanyu/stock-exchange/internal/matching"
)

// Registry owns one Engine per symbol. Safe for concurrent use; the
// engines it hands out are not — each symbol's engine is only ever driven
// by the single sequencer goroutine that owns it.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*matching.Engine
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{engines: make(map[string]*matching.Engine)}
}

// Get returns the engine for symbol, creating it on first reference.
func (r *Registry) Get(symbol string) *matching.Engine {
	r.mu.RLock()
	e, ok := r.engines[symbol]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.engines[symbol]; ok {
		return e
	}
	e = matching.NewEngine(symbol)
	r.engines[symbol] = e
	return e
}

// Symbols returns the set of symbols that currently have an engine.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.engines))
	for s := range r.engines {
		out = append(out, s)
	}
	return out
}
