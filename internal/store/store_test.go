package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGet(t *testing.T) {
	s := New(4)

	h := s.Insert(1, 100, 10)
	rec := s.Get(h)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(1), rec.ID)
	assert.Equal(t, int64(100), rec.Price)
	assert.Equal(t, int64(10), rec.Quantity)
	assert.Equal(t, Nil, rec.Prev)
	assert.Equal(t, Nil, rec.Next)
}

func TestRemoveRecyclesSlot(t *testing.T) {
	s := New(2)

	h1 := s.Insert(1, 100, 10)
	s.Remove(h1)
	assert.Equal(t, 1, s.Len())

	h2 := s.Insert(2, 200, 20)
	assert.Equal(t, h1, h2, "freed slot should be reused before growing")
	assert.Equal(t, 1, s.Len())

	rec := s.Get(h2)
	assert.Equal(t, uint64(2), rec.ID)
}

func TestGrowsBeyondInitialCapacity(t *testing.T) {
	s := New(1)

	handles := make([]Handle, 8)
	for i := range handles {
		handles[i] = s.Insert(uint64(i+1), int64(i), 1)
	}

	for i, h := range handles {
		assert.Equal(t, uint64(i+1), s.Get(h).ID)
	}
}

func TestMutateThroughPointer(t *testing.T) {
	s := New(1)
	h := s.Insert(1, 100, 10)

	s.Get(h).Quantity -= 4
	assert.Equal(t, int64(6), s.Get(h).Quantity)
}
