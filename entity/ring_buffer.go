package entity

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
)

// HistoricalPosition is a position of an entity that was recorded at a certain tick.
type HistoricalPosition struct {
	Position mgl32.Vec3
	Tick     int64
}

// RingBuffer is a fixed-size circular buffer of position history.
type RingBuffer struct {
	buffer   []HistoricalPosition
	capacity int
	head     int // next write position
	size     int
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{
		buffer:   make([]HistoricalPosition, capacity),
		capacity: capacity,
	}
}

// Add inserts a new position, overwriting the oldest one if the buffer is full.
func (rb *RingBuffer) Add(pos HistoricalPosition) {
	rb.buffer[rb.head] = pos
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// GetClosest retrieves the position closest to the given tick.
func (rb *RingBuffer) GetClosest(tick int64) (HistoricalPosition, bool) {
	var (
		closest     HistoricalPosition
		closestDist int64 = 1<<63 - 1
	)
	for hp := range rb.Iter() {
		if dist := abs64(hp.Tick - tick); dist < closestDist {
			closest, closestDist = hp, dist
		}
	}
	return closest, rb.size > 0
}

// Iter yields the positions from newest to oldest.
func (rb *RingBuffer) Iter() iter.Seq[HistoricalPosition] {
	return func(yield func(HistoricalPosition) bool) {
		for i := 0; i < rb.size; i++ {
			if !yield(rb.buffer[(rb.head-1-i+rb.capacity)%rb.capacity]) {
				return
			}
		}
	}
}

// Size returns the current number of elements in the buffer.
func (rb *RingBuffer) Size() int {
	return rb.size
}

// Latest returns the most recently added position.
func (rb *RingBuffer) Latest() (HistoricalPosition, bool) {
	if rb.size == 0 {
		return HistoricalPosition{}, false
	}
	return rb.buffer[(rb.head-1+rb.capacity)%rb.capacity], true
}

// Oldest returns the least recently added position still held.
func (rb *RingBuffer) Oldest() (HistoricalPosition, bool) {
	if rb.size == 0 {
		return HistoricalPosition{}, false
	}
	return rb.buffer[(rb.head-rb.size+rb.capacity)%rb.capacity], true
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
