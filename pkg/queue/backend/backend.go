package backend

import (
	"context"
)

// Backend is a thread-safe bounded container with blocking and non-blocking
// insert and remove. The extraction order is determined by the variant:
// FIFO returns items in arrival order, LIFO returns the most recently
// inserted item first, and Priority returns the item with the numerically
// smallest priority first.
type Backend[T any] interface {
	// Insert adds an item, blocking while the container is full.
	// Returns ErrFull if the context deadline expires before a slot
	// frees up, or the context error if the wait is canceled.
	Insert(ctx context.Context, item T) error

	// TryInsert adds an item without blocking.
	// Returns ErrFull if no slot is immediately available.
	TryInsert(item T) error

	// Remove takes an item, blocking while the container is empty.
	// Returns ErrEmpty if the context deadline expires before an item
	// arrives, or the context error if the wait is canceled.
	Remove(ctx context.Context) (T, error)

	// TryRemove takes an item without blocking.
	// Returns ErrEmpty if no item is immediately available.
	TryRemove() (T, error)

	// Len returns the current number of items.
	Len() int

	// Cap returns the maximum number of items, or 0 for unbounded.
	Cap() int

	// IsEmpty returns true if the container holds no items.
	IsEmpty() bool

	// IsFull returns true if the container is bounded and at capacity.
	IsFull() bool
}

// Item is a prioritized element for the Priority backend. Lower Priority
// values are extracted first; ties are broken in no particular order.
type Item[T any] struct {
	Priority int
	Value    T
}

// NewFIFO creates a first-in-first-out backend.
// If maxSize is <= 0 the backend is unbounded.
func NewFIFO[T any](maxSize int) Backend[T] {
	return newBounded[T](maxSize, newFIFOStore[T](maxSize))
}

// NewLIFO creates a last-in-first-out backend.
// If maxSize is <= 0 the backend is unbounded.
func NewLIFO[T any](maxSize int) Backend[T] {
	return newBounded[T](maxSize, &lifoStore[T]{})
}

// NewPriority creates a priority backend returning the smallest priority
// first. If maxSize is <= 0 the backend is unbounded.
func NewPriority[T any](maxSize int) Backend[Item[T]] {
	return newBounded[Item[T]](maxSize, &heapStore[T]{})
}
