package queue

import (
	"context"
	"testing"
	"time"
)

func BenchmarkPutGetUnlimited(b *testing.B) {
	q, err := New[int](Config{Calls: 1, Per: 0})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.Put(ctx, i); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
		if _, err := q.Get(ctx); err != nil {
			b.Fatalf("Get failed: %v", err)
		}
	}
}

func BenchmarkTryPutTryGet(b *testing.B) {
	q, err := New[int](Config{Calls: 1, Per: 0})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.TryPut(i); err != nil {
			b.Fatalf("TryPut failed: %v", err)
		}
		if _, err := q.TryGet(); err != nil {
			b.Fatalf("TryGet failed: %v", err)
		}
	}
}

func BenchmarkPutGetWideWindow(b *testing.B) {
	// Window large enough that admissions never sleep.
	q, err := New[int](Config{Calls: 1 << 30, Per: time.Hour})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := q.Put(ctx, i); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
		if _, err := q.Get(ctx); err != nil {
			b.Fatalf("Get failed: %v", err)
		}
	}
}

func BenchmarkParallelPutGet(b *testing.B) {
	q, err := New[int](Config{Calls: 1, Per: 0})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := q.Put(ctx, 1); err != nil {
				b.Fatalf("Put failed: %v", err)
			}
			if _, err := q.Get(ctx); err != nil {
				b.Fatalf("Get failed: %v", err)
			}
		}
	})
}
