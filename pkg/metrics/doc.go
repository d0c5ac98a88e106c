// Package metrics provides Prometheus instrumentation for rlqueue components.
//
// This package enables monitoring and observability for rate-limited queues
// through Prometheus metrics.
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors:
//
//	// Rate-limited queue with metrics
//	q, err := queue.NewWithMetrics[string](queue.Config{
//		Calls: 10,
//		Per:   time.Second,
//	}, "work_items")
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	config := metrics.Config{
//		Enabled:  true,
//		Registry: registry,
//	}
//
//	q, err := queue.NewWithConfigAndMetrics[string](
//		queue.Config{Calls: 10, Per: time.Second},
//		"work_items",
//		config,
//	)
//
// # Available Metrics
//
//   - rlqueue_queue_operations_total: Queue operations by op and outcome
//   - rlqueue_queue_rate_limited_total: Operations rejected by the rate limit
//   - rlqueue_queue_full_total: Puts that failed on queue capacity
//   - rlqueue_queue_empty_total: Gets that failed on an empty queue
//   - rlqueue_queue_wait_duration_seconds: Time spent in a put or get
//   - rlqueue_queue_depth: Current number of items in the queue
//   - rlqueue_admission_recorded_calls: Calls recorded in the sliding window
//
// # Labels
//
//   - op: "put" or "get"
//   - outcome: "ok", "rate_limited", "full", "empty", "invalid", or "error"
//   - queue_name: User-provided name for the queue instance
//   - side: "put" or "get" admission gate
//
// # Runtime Control
//
// Components implementing the Instrumentable interface support runtime control:
//
//	q.DisableMetrics()            // Stop collecting metrics
//	q.EnableMetrics(config)       // Re-enable with new config
//	enabled := q.MetricsEnabled() // Check current state
package metrics
