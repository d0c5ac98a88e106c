package backend

import (
	"context"
	"sync"

	"github.com/vnykmshr/rlqueue/pkg/common/errors"
)

// store is the ordering strategy beneath the shared blocking core.
// Implementations are not safe for concurrent use; bounded serializes access.
type store[T any] interface {
	push(item T)
	pop() T
	len() int
}

// bounded wraps an ordering store with capacity enforcement and
// deadline-bounded blocking. Waiters park on a broadcast channel that is
// closed and replaced on every mutation.
type bounded[T any] struct {
	mu      sync.Mutex
	st      store[T]
	maxSize int
	changed chan struct{}
}

func newBounded[T any](maxSize int, st store[T]) *bounded[T] {
	if maxSize < 0 {
		maxSize = 0
	}
	return &bounded[T]{
		st:      st,
		maxSize: maxSize,
		changed: make(chan struct{}),
	}
}

// Insert implements Backend.Insert.
func (b *bounded[T]) Insert(ctx context.Context, item T) error {
	b.mu.Lock()
	for b.fullLocked() {
		if err := b.waitLocked(ctx); err != nil {
			b.mu.Unlock()
			// Deadline expiry means no slot freed up in time;
			// cancellation surfaces as the caller's own error.
			if err == context.DeadlineExceeded {
				return errors.ErrFull
			}
			return err
		}
	}
	b.st.push(item)
	b.broadcastLocked()
	b.mu.Unlock()
	return nil
}

// TryInsert implements Backend.TryInsert.
func (b *bounded[T]) TryInsert(item T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fullLocked() {
		return errors.ErrFull
	}
	b.st.push(item)
	b.broadcastLocked()
	return nil
}

// Remove implements Backend.Remove.
func (b *bounded[T]) Remove(ctx context.Context) (T, error) {
	var zero T

	b.mu.Lock()
	for b.st.len() == 0 {
		if err := b.waitLocked(ctx); err != nil {
			b.mu.Unlock()
			if err == context.DeadlineExceeded {
				return zero, errors.ErrEmpty
			}
			return zero, err
		}
	}
	item := b.st.pop()
	b.broadcastLocked()
	b.mu.Unlock()
	return item, nil
}

// TryRemove implements Backend.TryRemove.
func (b *bounded[T]) TryRemove() (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if b.st.len() == 0 {
		return zero, errors.ErrEmpty
	}
	item := b.st.pop()
	b.broadcastLocked()
	return item, nil
}

// Len implements Backend.Len.
func (b *bounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st.len()
}

// Cap implements Backend.Cap.
func (b *bounded[T]) Cap() int {
	return b.maxSize
}

// IsEmpty implements Backend.IsEmpty.
func (b *bounded[T]) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st.len() == 0
}

// IsFull implements Backend.IsFull.
func (b *bounded[T]) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fullLocked()
}

func (b *bounded[T]) fullLocked() bool {
	return b.maxSize > 0 && b.st.len() >= b.maxSize
}

// waitLocked parks the caller until the next mutation or context expiry.
// The lock is released while parked and reacquired before returning nil.
func (b *bounded[T]) waitLocked(ctx context.Context) error {
	ch := b.changed
	b.mu.Unlock()

	select {
	case <-ch:
		b.mu.Lock()
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		return ctx.Err()
	}
}

// broadcastLocked wakes every parked waiter. Must be called with b.mu held.
func (b *bounded[T]) broadcastLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}
