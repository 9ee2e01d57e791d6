package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_PushAndLen(t *testing.T) {
	r := NewRing[int](5)
	assert.Equal(t, 0, r.Len())

	r.Push(1)
	assert.Equal(t, 1, r.Len())

	r.Push(2)
	r.Push(3)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 5, r.Cap())
}

func TestRing_OverwritesOldest(t *testing.T) {
	r := NewRing[int](3)

	// Fill to capacity
	r.Push(10)
	r.Push(20)
	r.Push(30)
	require.Equal(t, 3, r.Len())

	// Push beyond capacity — oldest (10) should be evicted
	r.Push(40)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{20, 30, 40}, r.Items())

	// Another push — 20 is evicted
	r.Push(50)
	assert.Equal(t, []int{30, 40, 50}, r.Items())
}

func TestRing_CapRetainsLastEntries(t *testing.T) {
	// Append 150 entries to a cap-100 ring: exactly the last 100 remain,
	// oldest-first dropped.
	r := NewRing[int](100)
	for i := 0; i < 150; i++ {
		r.Push(i)
	}

	items := r.Items()
	require.Len(t, items, 100)
	assert.Equal(t, 50, items[0])
	assert.Equal(t, 149, items[99])
}

func TestRing_Last(t *testing.T) {
	r := NewRing[string](10)
	for i := 0; i < 4; i++ {
		r.Push(fmt.Sprintf("e%d", i))
	}

	assert.Equal(t, []string{"e2", "e3"}, r.Last(2))
	assert.Equal(t, []string{"e0", "e1", "e2", "e3"}, r.Last(10))
	assert.Empty(t, r.Last(0))
	assert.Empty(t, r.Last(-1))
}

func TestRing_Clear(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Items())
}

func TestRing_ItemsIsACopy(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)

	items := r.Items()
	items[0] = 99

	assert.Equal(t, []int{1, 2}, r.Items())
}
