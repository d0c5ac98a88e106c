/*
Package backend provides the bounded ordered containers beneath the
rate-limited queue facade.

Three variants share one blocking core and differ only in extraction order:

	fifo := backend.NewFIFO[string](10)     // arrival order
	lifo := backend.NewLIFO[string](10)     // newest first
	prio := backend.NewPriority[string](10) // smallest priority first

All variants are safe for concurrent use. Blocking Insert and Remove honor
the context deadline: Insert returns ErrFull and Remove returns ErrEmpty
when the deadline expires before a slot or item becomes available.

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := fifo.Insert(ctx, "job"); err != nil {
		// queue stayed full for the whole second
	}

The priority variant stores Item values:

	prio.TryInsert(backend.Item[string]{Priority: 2, Value: "second"})
	prio.TryInsert(backend.Item[string]{Priority: 1, Value: "first"})
	item, _ := prio.TryRemove() // {1, "first"}

A maxSize of 0 (or negative) makes the container unbounded; Insert then
never blocks and TryInsert never fails.
*/
package backend
