package queue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	rlqerrors "github.com/vnykmshr/rlqueue/pkg/common/errors"
	"github.com/vnykmshr/rlqueue/pkg/metrics"
)

// MetricsQueue wraps a Queue with Prometheus metrics collection.
type MetricsQueue[T any] struct {
	queue    *Queue[T]
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a rate-limited FIFO queue with metrics enabled.
func NewWithMetrics[T any](config Config, name string) (*MetricsQueue[T], error) {
	// Use a separate registry for each metrics-enabled component to avoid conflicts
	registry := prometheus.NewRegistry()
	return NewWithConfigAndMetrics[T](config, name, metrics.Config{
		Enabled:  true,
		Registry: registry,
	})
}

// NewWithConfigAndMetrics creates a rate-limited FIFO queue with custom
// metrics configuration.
func NewWithConfigAndMetrics[T any](config Config, name string, metricsConfig metrics.Config) (*MetricsQueue[T], error) {
	q, err := New[T](config)
	if err != nil {
		return nil, err
	}
	return WrapWithMetrics(q, name, metricsConfig), nil
}

// WrapWithMetrics wraps an existing queue with metrics collection.
func WrapWithMetrics[T any](q *Queue[T], name string, metricsConfig metrics.Config) *MetricsQueue[T] {
	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil || metricsConfig.Namespace != "" || len(metricsConfig.Labels) > 0 {
		registry = metrics.NewRegistryWithConfig(metricsConfig)
	}

	return &MetricsQueue[T]{
		queue:    q,
		name:     name,
		registry: registry,
		enabled:  metricsConfig.Enabled,
	}
}

// Put adds an item to the queue, blocking as Queue.Put does.
func (mq *MetricsQueue[T]) Put(ctx context.Context, item T) error {
	start := time.Now()
	err := mq.queue.Put(ctx, item)
	mq.record("put", time.Since(start), err)
	return err
}

// TryPut adds an item without blocking.
func (mq *MetricsQueue[T]) TryPut(item T) error {
	start := time.Now()
	err := mq.queue.TryPut(item)
	mq.record("put", time.Since(start), err)
	return err
}

// PutTimeout adds an item, blocking at most timeout.
func (mq *MetricsQueue[T]) PutTimeout(item T, timeout time.Duration) error {
	start := time.Now()
	err := mq.queue.PutTimeout(item, timeout)
	mq.record("put", time.Since(start), err)
	return err
}

// Get removes and returns an item, blocking as Queue.Get does.
func (mq *MetricsQueue[T]) Get(ctx context.Context) (T, error) {
	start := time.Now()
	item, err := mq.queue.Get(ctx)
	mq.record("get", time.Since(start), err)
	return item, err
}

// TryGet removes and returns an item without blocking.
func (mq *MetricsQueue[T]) TryGet() (T, error) {
	start := time.Now()
	item, err := mq.queue.TryGet()
	mq.record("get", time.Since(start), err)
	return item, err
}

// GetTimeout removes and returns an item, blocking at most timeout.
func (mq *MetricsQueue[T]) GetTimeout(timeout time.Duration) (T, error) {
	start := time.Now()
	item, err := mq.queue.GetTimeout(timeout)
	mq.record("get", time.Since(start), err)
	return item, err
}

// Len returns the current number of items in the queue.
func (mq *MetricsQueue[T]) Len() int {
	return mq.queue.Len()
}

// Cap returns the queue capacity, or 0 for unbounded.
func (mq *MetricsQueue[T]) Cap() int {
	return mq.queue.Cap()
}

// IsEmpty returns true if the queue holds no items.
func (mq *MetricsQueue[T]) IsEmpty() bool {
	return mq.queue.IsEmpty()
}

// IsFull returns true if the queue is bounded and at capacity.
func (mq *MetricsQueue[T]) IsFull() bool {
	return mq.queue.IsFull()
}

// SetFuzz changes the maximum jitter delay on every rate-limited side.
func (mq *MetricsQueue[T]) SetFuzz(fuzz time.Duration) {
	mq.queue.SetFuzz(fuzz)
}

// Unfinished returns the number of unacknowledged items.
func (mq *MetricsQueue[T]) Unfinished() int {
	return mq.queue.Unfinished()
}

// TaskDone acknowledges a fully processed item.
func (mq *MetricsQueue[T]) TaskDone() {
	mq.queue.TaskDone()
}

// Join blocks until every item has been acknowledged with TaskDone.
func (mq *MetricsQueue[T]) Join(ctx context.Context) error {
	return mq.queue.Join(ctx)
}

// EnableMetrics enables metrics collection.
func (mq *MetricsQueue[T]) EnableMetrics(config metrics.Config) error {
	mq.enabled = config.Enabled

	if config.Registry != nil || config.Namespace != "" || len(config.Labels) > 0 {
		mq.registry = metrics.NewRegistryWithConfig(config)
	}

	return nil
}

// DisableMetrics disables metrics collection.
func (mq *MetricsQueue[T]) DisableMetrics() {
	mq.enabled = false
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mq *MetricsQueue[T]) MetricsEnabled() bool {
	return mq.enabled
}

func (mq *MetricsQueue[T]) record(op string, elapsed time.Duration, err error) {
	if !mq.enabled {
		return
	}

	mq.registry.QueueWaitTime.WithLabelValues(op, mq.name).Observe(elapsed.Seconds())
	mq.registry.QueueOps.WithLabelValues(op, outcome(err), mq.name).Inc()

	switch {
	case stderrors.Is(err, rlqerrors.ErrRateLimited):
		mq.registry.QueueRateLimited.WithLabelValues(op, mq.name).Inc()
	case stderrors.Is(err, rlqerrors.ErrFull):
		mq.registry.QueueFull.WithLabelValues(mq.name).Inc()
	case stderrors.Is(err, rlqerrors.ErrEmpty):
		mq.registry.QueueEmpty.WithLabelValues(mq.name).Inc()
	}

	mq.registry.QueueDepth.WithLabelValues(mq.name).Set(float64(mq.queue.Len()))

	if g := mq.queue.putGate; g != nil {
		mq.registry.AdmissionRecorded.WithLabelValues("put", mq.name).Set(float64(g.Recorded()))
	}
	if g := mq.queue.getGate; g != nil {
		mq.registry.AdmissionRecorded.WithLabelValues("get", mq.name).Set(float64(g.Recorded()))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stderrors.Is(err, rlqerrors.ErrRateLimited):
		return "rate_limited"
	case stderrors.Is(err, rlqerrors.ErrFull):
		return "full"
	case stderrors.Is(err, rlqerrors.ErrEmpty):
		return "empty"
	case stderrors.Is(err, rlqerrors.ErrInvalidConfiguration):
		return "invalid"
	default:
		return "error"
	}
}
