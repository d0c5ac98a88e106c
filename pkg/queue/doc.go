/*
Package queue provides thread-safe bounded queues with a sliding-window
rate limit on put and get throughput.

A queue allows at most Calls operations per Per-long trailing window on
each rate-limited side. Operations beyond that either sleep until the
oldest recorded call leaves the window, or fail fast with ErrRateLimited
for non-blocking callers and callers whose deadline cannot cover the wait.

Basic usage:

	q, err := queue.New[string](queue.Config{
		MaxSize: 100,
		Calls:   3,
		Per:     5 * time.Second,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := q.Put(ctx, "job"); err != nil {
		// rate limited or queue full
	}
	item, err := q.Get(ctx)

Call variants follow the same shape on both sides:

  - Put/Get block, bounded by the context deadline
  - TryPut/TryGet never block
  - PutTimeout/GetTimeout block at most a given duration

Ordering disciplines:

	fifo, _ := queue.New[int](cfg)         // arrival order
	lifo, _ := queue.NewLIFO[int](cfg)     // newest first
	prio, _ := queue.NewPriority[int](cfg) // smallest priority first

The priority variant stores backend.Item values pairing a priority with a
payload.

Which sides are limited is selected with Config.Sides (SidePut, SideGet,
or SideBoth); the two sides keep fully independent windows, so a put in
progress never delays a get's admission. A side with Per <= 0 and
Fuzz <= 0 skips admission control entirely and behaves like a plain
bounded queue.

Config.Fuzz adds a randomized delay in [0, fuzz) to operations made while
the window is still filling, spreading out the burst a freshly built
queue would otherwise allow. Jitter never stacks on top of a mandatory
window wait.

Completion tracking mirrors the usual bounded-queue barrier idiom:

	item, _ := q.Get(ctx)
	process(item)
	q.TaskDone()

	// elsewhere: wait for all queued work to be acknowledged
	_ = q.Join(ctx)

For Prometheus instrumentation, wrap a queue with NewWithMetrics or
WrapWithMetrics.
*/
package queue
