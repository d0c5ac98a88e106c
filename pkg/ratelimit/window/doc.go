/*
Package window provides sliding-window admission control for rate-limited
queues.

A Gate admits at most calls operations in any trailing per-long interval,
tracked in a bounded log of completion timestamps. Each admission follows
the same protocol:

	if err := gate.Admit(ctx, true); err != nil {
		return err // rate limited
	}

	if err := doGuardedOperation(ctx); err != nil {
		gate.Abort() // failed operations consume no window slot
		return err
	}
	gate.Commit() // record the completion timestamp

Admit may return immediately, sleep until the oldest recorded call leaves
the window, or reject with ErrRateLimited when the caller is non-blocking
or the context deadline leaves too little budget for the mandatory wait.
Rejections never mutate the log.

While the log is not yet full, an optional jitter delay in [0, fuzz) is
applied instead, desynchronizing bursts right after construction. Jitter
and the mandatory window wait never both apply to a single admission.

The gate serializes admissions on one side: the window decision, any sleep,
and the guarded operation form one atomic unit per caller. Use one Gate per
rate-limited side; put and get sides are independent.

Both the clock and the jitter randomness source are injectable through
Config for deterministic tests.
*/
package window
