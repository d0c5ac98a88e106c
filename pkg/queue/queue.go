package queue

import (
	"context"
	"sync"
	"time"

	"github.com/vnykmshr/rlqueue/pkg/common/errors"
	"github.com/vnykmshr/rlqueue/pkg/common/validation"
	"github.com/vnykmshr/rlqueue/pkg/queue/backend"
	"github.com/vnykmshr/rlqueue/pkg/ratelimit/window"
)

// Side selects which operations of a queue are rate-limited. The put and
// get sides carry independent admission gates and call logs, so limiting
// both never couples their windows.
type Side int

const (
	// SidePut rate-limits put operations (the default).
	SidePut Side = 1 << iota

	// SideGet rate-limits get operations.
	SideGet

	// SideBoth rate-limits both sides independently.
	SideBoth = SidePut | SideGet
)

// Config holds configuration options for creating a new Queue.
type Config struct {
	// MaxSize is the number of slots in the queue. Zero or negative
	// means unbounded capacity.
	MaxSize int

	// Calls is the number of operations allowed per window on each
	// rate-limited side. Must be at least 1.
	Calls int

	// Per is the length of the sliding window. Zero or negative
	// disables the rate limit.
	Per time.Duration

	// Fuzz is the maximum randomized startup delay applied while a
	// side's window is not yet full. Zero or negative disables jitter.
	Fuzz time.Duration

	// Sides selects which operations are rate-limited.
	// The zero value means SidePut.
	Sides Side

	// Clock provides the current time. If nil, the system clock is used.
	Clock window.Clock

	// Rand provides the jitter randomness source. If nil, the shared
	// math/rand source is used.
	Rand window.Rand
}

// DefaultConfig returns the default queue configuration: unbounded
// capacity, one put per second, no jitter.
func DefaultConfig() Config {
	return Config{
		MaxSize: 0,
		Calls:   1,
		Per:     time.Second,
		Fuzz:    0,
		Sides:   SidePut,
	}
}

// Queue is a thread-safe bounded queue whose put and get throughput is
// capped to Calls operations per sliding Per-long window. Ordering is
// determined by the backend: New builds FIFO queues, NewLIFO returns the
// newest item first, and NewPriority returns the smallest priority first.
type Queue[T any] struct {
	backend backend.Backend[T]

	// Admission gates; nil when a side is not rate-limited.
	putGate *window.Gate
	getGate *window.Gate

	mu         sync.Mutex
	unfinished int
	allDone    chan struct{}
}

// New creates a rate-limited FIFO queue.
func New[T any](config Config) (*Queue[T], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return assemble[T](config, backend.NewFIFO[T](config.MaxSize))
}

// NewLIFO creates a rate-limited LIFO queue.
func NewLIFO[T any](config Config) (*Queue[T], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return assemble[T](config, backend.NewLIFO[T](config.MaxSize))
}

// NewPriority creates a rate-limited priority queue. Items carry an
// integer priority; Get returns the numerically smallest priority first,
// with no guaranteed order among equal priorities.
func NewPriority[T any](config Config) (*Queue[backend.Item[T]], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return assemble[backend.Item[T]](config, backend.NewPriority[T](config.MaxSize))
}

// NewWithBackend creates a rate-limited queue over a caller-supplied
// ordering backend. MaxSize in the config is ignored; capacity is the
// backend's own.
func NewWithBackend[T any](config Config, b backend.Backend[T]) (*Queue[T], error) {
	if b == nil {
		return nil, errors.NewValidationError("queue", "backend", nil, "cannot be nil").
			WithHint("provide a backend from pkg/queue/backend")
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return assemble[T](config, b)
}

func validateConfig(config Config) error {
	if config.Calls < 1 {
		return errors.NewValidationError("queue", "calls", config.Calls, "must be at least 1").
			WithHint("calls is the number of operations allowed per window")
	}
	return nil
}

func assemble[T any](config Config, b backend.Backend[T]) (*Queue[T], error) {
	sides := config.Sides
	if sides == 0 {
		sides = SidePut
	}

	q := &Queue[T]{
		backend: b,
		allDone: make(chan struct{}),
	}

	var err error
	if sides&SidePut != 0 {
		if q.putGate, err = newGate(config); err != nil {
			return nil, err
		}
	}
	if sides&SideGet != 0 {
		if q.getGate, err = newGate(config); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// newGate builds one side's admission gate, or nil when the side
// degenerates to a pass-through (no window and no jitter).
func newGate(config Config) (*window.Gate, error) {
	if config.Per <= 0 && config.Fuzz <= 0 {
		return nil, nil
	}
	return window.NewWithConfigSafe(window.Config{
		Calls: config.Calls,
		Per:   config.Per,
		Fuzz:  config.Fuzz,
		Clock: config.Clock,
		Rand:  config.Rand,
	})
}

// Put adds an item to the queue, blocking while the rate limit window is
// exhausted or the queue is full. The context deadline bounds the whole
// call: gate acquisition, any window or jitter sleep, and the insert.
// Returns ErrRateLimited when the remaining budget cannot cover the
// mandatory window wait, and ErrFull when no slot frees up in time.
func (q *Queue[T]) Put(ctx context.Context, item T) error {
	return q.put(ctx, item, true)
}

// TryPut adds an item without blocking. Returns ErrRateLimited if the
// window is currently exhausted, or ErrFull if no slot is free.
func (q *Queue[T]) TryPut(item T) error {
	return q.put(context.Background(), item, false)
}

// PutTimeout adds an item, blocking at most timeout. A negative timeout
// is a validation error, reported before any blocking.
func (q *Queue[T]) PutTimeout(item T, timeout time.Duration) error {
	if err := validation.ValidateNonNegativeDuration("queue", "timeout", timeout); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.put(ctx, item, true)
}

func (q *Queue[T]) put(ctx context.Context, item T, block bool) error {
	if g := q.putGate; g != nil {
		if err := g.Admit(ctx, block); err != nil {
			return err
		}
		if err := q.insert(ctx, item, block); err != nil {
			// Admitted but the queue stayed full: give the window
			// slot back so the failure is not charged to the rate.
			g.Abort()
			return err
		}
		g.Commit()
	} else if err := q.insert(ctx, item, block); err != nil {
		return err
	}

	q.mu.Lock()
	q.unfinished++
	q.mu.Unlock()
	return nil
}

func (q *Queue[T]) insert(ctx context.Context, item T, block bool) error {
	if block {
		return q.backend.Insert(ctx, item)
	}
	return q.backend.TryInsert(item)
}

// Get removes and returns an item, blocking while the rate limit window
// is exhausted or the queue is empty. The context deadline bounds the
// whole call. Returns ErrRateLimited when the remaining budget cannot
// cover the mandatory window wait, and ErrEmpty when no item arrives in
// time.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	return q.get(ctx, true)
}

// TryGet removes and returns an item without blocking. Returns
// ErrRateLimited if the window is currently exhausted, or ErrEmpty if
// the queue holds no item.
func (q *Queue[T]) TryGet() (T, error) {
	return q.get(context.Background(), false)
}

// GetTimeout removes and returns an item, blocking at most timeout.
// A negative timeout is a validation error, reported before any blocking.
func (q *Queue[T]) GetTimeout(timeout time.Duration) (T, error) {
	if err := validation.ValidateNonNegativeDuration("queue", "timeout", timeout); err != nil {
		var zero T
		return zero, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.get(ctx, true)
}

func (q *Queue[T]) get(ctx context.Context, block bool) (T, error) {
	g := q.getGate
	if g == nil {
		return q.remove(ctx, block)
	}

	var zero T
	if err := g.Admit(ctx, block); err != nil {
		return zero, err
	}
	item, err := q.remove(ctx, block)
	if err != nil {
		g.Abort()
		return zero, err
	}
	g.Commit()
	return item, nil
}

func (q *Queue[T]) remove(ctx context.Context, block bool) (T, error) {
	if block {
		return q.backend.Remove(ctx)
	}
	return q.backend.TryRemove()
}

// Len returns the current number of items in the queue.
func (q *Queue[T]) Len() int {
	return q.backend.Len()
}

// Cap returns the queue capacity, or 0 for unbounded.
func (q *Queue[T]) Cap() int {
	return q.backend.Cap()
}

// IsEmpty returns true if the queue holds no items.
func (q *Queue[T]) IsEmpty() bool {
	return q.backend.IsEmpty()
}

// IsFull returns true if the queue is bounded and at capacity.
func (q *Queue[T]) IsFull() bool {
	return q.backend.IsFull()
}

// SetFuzz changes the maximum jitter delay on every rate-limited side.
// It takes effect for the next admission.
func (q *Queue[T]) SetFuzz(fuzz time.Duration) {
	if q.putGate != nil {
		q.putGate.SetFuzz(fuzz)
	}
	if q.getGate != nil {
		q.getGate.SetFuzz(fuzz)
	}
}

// Unfinished returns the number of items put into the queue whose
// processing has not yet been acknowledged with TaskDone.
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

// TaskDone acknowledges that a previously gotten item has been fully
// processed. It panics if called more times than there were items put
// into the queue.
func (q *Queue[T]) TaskDone() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished == 0 {
		panic("queue: TaskDone called more times than items were put")
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.allDone)
		q.allDone = make(chan struct{})
	}
}

// Join blocks until every item put into the queue has been acknowledged
// with TaskDone, or the context expires.
func (q *Queue[T]) Join(ctx context.Context) error {
	q.mu.Lock()
	for q.unfinished > 0 {
		ch := q.allDone
		q.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		q.mu.Lock()
	}
	q.mu.Unlock()
	return nil
}
