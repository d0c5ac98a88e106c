/*
Package rlqueue provides a Go library for rate-limited queueing: bounded
and unbounded queues whose puts and gets pace themselves against a
sliding-window rate limit.

Queueing (pkg/queue):
  - queue: Rate-limited FIFO, LIFO, and priority queues with blocking,
    non-blocking, and deadline-bounded operations
  - backend: Ordering disciplines and the bounded blocking container

Rate Limiting (pkg/ratelimit):
  - window: Sliding-window admission gate with optional startup jitter

Observability (pkg/metrics):
  - Prometheus counters, gauges, and histograms for queue operations

Example usage:

	import (
		"github.com/vnykmshr/rlqueue/pkg/queue"
	)

	q, _ := queue.New[string](queue.Config{
		Calls: 10,           // 10 puts
		Per:   time.Second,  // per second
	})

	q.Put(ctx, "job")    // blocks until the window admits it
	item, _ := q.Get(ctx)
*/
package rlqueue
