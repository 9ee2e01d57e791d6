package model

// Ring is a fixed-capacity history buffer. When full, a push overwrites the
// oldest entry. Every bounded history in the system (anomalies, decisions,
// executions, feedback, trends, events, cycles) is a Ring.
type Ring[T any] struct {
	buf  []T
	head int // index of the next write position
	size int // number of valid entries
}

// NewRing creates a Ring with the given capacity. Capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry if the ring is full.
func (r *Ring[T]) Push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Len returns the number of valid entries.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Items returns all valid entries in chronological order, oldest first.
// The returned slice is a copy; mutating it does not affect the ring.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	start := (r.head - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

// Last returns up to n most recent entries in chronological order. n <= 0
// returns an empty slice.
func (r *Ring[T]) Last(n int) []T {
	if n <= 0 {
		return []T{}
	}
	items := r.Items()
	if n >= len(items) {
		return items
	}
	return items[len(items)-n:]
}

// Clear resets the ring to empty.
func (r *Ring[T]) Clear() {
	r.head = 0
	r.size = 0
}
