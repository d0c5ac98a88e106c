package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/rlqueue/internal/testutil"
	rlqerrors "github.com/vnykmshr/rlqueue/pkg/common/errors"
	"github.com/vnykmshr/rlqueue/pkg/queue/backend"
)

// unlimited returns a config with no rate limit on either side.
func unlimited(maxSize int) Config {
	return Config{MaxSize: maxSize, Calls: 1, Per: 0}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"bounded", Config{MaxSize: 3, Calls: 1, Per: time.Second}, false},
		{"unlimited rate", Config{Calls: 1}, false},
		{"zero calls", Config{Calls: 0, Per: time.Second}, true},
		{"negative calls", Config{Calls: -1, Per: time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New[int](tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for invalid config")
				}
				if !rlqerrors.IsValidationError(err) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				if q != nil {
					t.Error("expected nil queue on error")
				}
				return
			}
			testutil.AssertNoError(t, err)
		})
	}
}

func TestNewWithBackendNil(t *testing.T) {
	_, err := NewWithBackend[int](DefaultConfig(), nil)
	if !errors.Is(err, rlqerrors.ErrInvalidConfiguration) {
		t.Errorf("got %v, want ErrInvalidConfiguration", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	q, err := New[int](unlimited(0))
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	testutil.AssertNoError(t, q.Put(ctx, 1))
	testutil.AssertNoError(t, q.Put(ctx, 2))

	got, err := q.Get(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, 1)

	got, err = q.Get(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, 2)
}

func TestFIFOOrdering(t *testing.T) {
	q, err := New[int](unlimited(0))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))
	testutil.AssertNoError(t, q.TryPut(2))

	first, _ := q.TryGet()
	second, _ := q.TryGet()
	testutil.AssertEqual(t, first, 1)
	testutil.AssertEqual(t, second, 2)
}

func TestLIFOOrdering(t *testing.T) {
	q, err := NewLIFO[int](unlimited(0))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))
	testutil.AssertNoError(t, q.TryPut(2))

	first, _ := q.TryGet()
	second, _ := q.TryGet()
	testutil.AssertEqual(t, first, 2)
	testutil.AssertEqual(t, second, 1)
}

func TestPriorityOrdering(t *testing.T) {
	q, err := NewPriority[string](unlimited(0))
	testutil.AssertNoError(t, err)

	items := []backend.Item[string]{
		{Priority: 4, Value: "fourth"},
		{Priority: 2, Value: "second"},
		{Priority: 1, Value: "first"},
		{Priority: 3, Value: "third"},
	}
	for _, item := range items {
		testutil.AssertNoError(t, q.TryPut(item))
	}

	want := []string{"first", "second", "third", "fourth"}
	for _, w := range want {
		got, err := q.TryGet()
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got.Value, w)
	}
}

func TestRateLimitTiming(t *testing.T) {
	// calls=2 per=500ms: four sequential puts complete at roughly
	// 0, 0, 0.5 and 0.5 seconds.
	q, err := New[int](Config{Calls: 2, Per: 500 * time.Millisecond})
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	var stamps []time.Duration
	start := time.Now()
	for i := 0; i < 4; i++ {
		testutil.AssertNoError(t, q.Put(ctx, i))
		stamps = append(stamps, time.Since(start))
	}

	want := []time.Duration{0, 0, 500 * time.Millisecond, 500 * time.Millisecond}
	for i, w := range want {
		testutil.AssertDurationNear(t, stamps[i], w, 100*time.Millisecond)
	}
}

func TestTryPutRateLimitedNotFull(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 3 * time.Second})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))

	putErr := q.TryPut(2)
	if !errors.Is(putErr, rlqerrors.ErrRateLimited) {
		t.Errorf("got %v, want ErrRateLimited", putErr)
	}
	if errors.Is(putErr, rlqerrors.ErrFull) {
		t.Error("window exhaustion must not be reported as ErrFull")
	}
}

func TestTryGetRateLimitedNotEmpty(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 3 * time.Second, Sides: SideGet})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))
	testutil.AssertNoError(t, q.TryPut(2))

	_, getErr := q.TryGet()
	testutil.AssertNoError(t, getErr)

	_, getErr = q.TryGet()
	if !errors.Is(getErr, rlqerrors.ErrRateLimited) {
		t.Errorf("got %v, want ErrRateLimited", getErr)
	}
	if errors.Is(getErr, rlqerrors.ErrEmpty) {
		t.Error("window exhaustion must not be reported as ErrEmpty")
	}
}

func TestTryGetEmptyNotRateLimited(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 0, Sides: SideGet})
	testutil.AssertNoError(t, err)

	_, getErr := q.TryGet()
	if !errors.Is(getErr, rlqerrors.ErrEmpty) {
		t.Errorf("got %v, want ErrEmpty", getErr)
	}
}

func TestUnlimitedPer(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 0})
	testutil.AssertNoError(t, err)

	start := time.Now()
	for i := 0; i < 100; i++ {
		testutil.AssertNoError(t, q.TryPut(i))
	}
	testutil.AssertDurationNear(t, time.Since(start), 0, 100*time.Millisecond)
	testutil.AssertEqual(t, q.Len(), 100)
}

func TestDeadlineShorterThanWindowWait(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 10 * time.Second})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))

	start := time.Now()
	putErr := q.PutTimeout(2, time.Second)
	elapsed := time.Since(start)

	if !errors.Is(putErr, rlqerrors.ErrRateLimited) {
		t.Errorf("got %v, want ErrRateLimited", putErr)
	}
	// Rejected up front rather than sleeping past the deadline.
	testutil.AssertDurationNear(t, elapsed, 0, 100*time.Millisecond)
}

func TestCapacityTimeoutIsFullNotRateLimited(t *testing.T) {
	q, err := New[int](unlimited(1))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))

	start := time.Now()
	putErr := q.PutTimeout(2, 200*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(putErr, rlqerrors.ErrFull) {
		t.Errorf("got %v, want ErrFull", putErr)
	}
	testutil.AssertDurationNear(t, elapsed, 200*time.Millisecond, 100*time.Millisecond)
}

func TestEmptyTimeoutIsEmpty(t *testing.T) {
	q, err := New[int](unlimited(1))
	testutil.AssertNoError(t, err)

	start := time.Now()
	_, getErr := q.GetTimeout(200 * time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(getErr, rlqerrors.ErrEmpty) {
		t.Errorf("got %v, want ErrEmpty", getErr)
	}
	testutil.AssertDurationNear(t, elapsed, 200*time.Millisecond, 100*time.Millisecond)
}

func TestPutCanceledIsContextErrorNotFull(t *testing.T) {
	q, err := New[int](unlimited(1))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	putErr := q.Put(ctx, 2)
	if !errors.Is(putErr, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", putErr)
	}
	testutil.AssertEqual(t, q.Len(), 1)
}

func TestNegativeTimeoutValidation(t *testing.T) {
	q, err := New[int](unlimited(0))
	testutil.AssertNoError(t, err)

	if err := q.PutTimeout(1, -time.Second); !rlqerrors.IsValidationError(err) {
		t.Errorf("PutTimeout: got %v, want ValidationError", err)
	}
	if _, err := q.GetTimeout(-time.Second); !rlqerrors.IsValidationError(err) {
		t.Errorf("GetTimeout: got %v, want ValidationError", err)
	}
}

func TestBackendFailureConsumesNoWindowSlot(t *testing.T) {
	// Window admits two calls but the backend holds only one item, so an
	// admitted put can still fail on capacity.
	q, err := New[int](Config{MaxSize: 1, Calls: 2, Per: time.Hour})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))
	testutil.AssertEqual(t, q.putGate.Recorded(), 1)

	// Admitted, then rejected by the full backend: no window slot consumed.
	if err := q.TryPut(2); !errors.Is(err, rlqerrors.ErrFull) {
		t.Fatalf("got %v, want ErrFull", err)
	}
	testutil.AssertEqual(t, q.putGate.Recorded(), 1)

	if err := q.PutTimeout(3, 50*time.Millisecond); !errors.Is(err, rlqerrors.ErrFull) {
		t.Fatalf("got %v, want ErrFull", err)
	}
	testutil.AssertEqual(t, q.putGate.Recorded(), 1)
}

func TestSidesIndependent(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: time.Hour, Sides: SideBoth})
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	testutil.AssertNoError(t, q.Put(ctx, 1))

	// The put-side window is exhausted, but the get side has its own
	// log and proceeds immediately.
	start := time.Now()
	got, getErr := q.Get(ctx)
	testutil.AssertNoError(t, getErr)
	testutil.AssertEqual(t, got, 1)
	testutil.AssertDurationNear(t, time.Since(start), 0, 100*time.Millisecond)

	if err := q.TryPut(2); !errors.Is(err, rlqerrors.ErrRateLimited) {
		t.Errorf("got %v, want ErrRateLimited on the exhausted put side", err)
	}
}

func TestSideGetOnly(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 300 * time.Millisecond, Sides: SideGet})
	testutil.AssertNoError(t, err)

	ctx := context.Background()

	// Puts are unlimited.
	start := time.Now()
	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, q.Put(ctx, i))
	}
	testutil.AssertDurationNear(t, time.Since(start), 0, 50*time.Millisecond)

	// Gets are paced to one per window.
	start = time.Now()
	for i := 0; i < 2; i++ {
		_, err := q.Get(ctx)
		testutil.AssertNoError(t, err)
	}
	testutil.AssertDurationNear(t, time.Since(start), 300*time.Millisecond, 100*time.Millisecond)
}

func TestPassthroughWhenNoLimit(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: 0, Fuzz: 0, Sides: SideBoth})
	testutil.AssertNoError(t, err)

	if q.putGate != nil || q.getGate != nil {
		t.Error("expected no gates for a pass-through configuration")
	}
}

func TestStatePassthrough(t *testing.T) {
	q, err := New[int](unlimited(2))
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, q.Cap(), 2)
	testutil.AssertEqual(t, q.IsEmpty(), true)

	testutil.AssertNoError(t, q.TryPut(1))
	testutil.AssertNoError(t, q.TryPut(2))
	testutil.AssertEqual(t, q.Len(), 2)
	testutil.AssertEqual(t, q.IsFull(), true)
}

func TestSetFuzzForwarded(t *testing.T) {
	q, err := New[int](Config{Calls: 1, Per: time.Second, Sides: SideBoth})
	testutil.AssertNoError(t, err)

	q.SetFuzz(2 * time.Second)
	testutil.AssertEqual(t, q.putGate.Fuzz(), 2*time.Second)
	testutil.AssertEqual(t, q.getGate.Fuzz(), 2*time.Second)
}

func TestJitterDelaysFirstPuts(t *testing.T) {
	q, err := New[int](Config{
		Calls: 5,
		Per:   time.Hour,
		Fuzz:  200 * time.Millisecond,
		Rand:  testutil.NewMockRand(0.5),
	})
	testutil.AssertNoError(t, err)

	start := time.Now()
	testutil.AssertNoError(t, q.Put(context.Background(), 1))
	testutil.AssertDurationNear(t, time.Since(start), 100*time.Millisecond, 60*time.Millisecond)
}

func TestTaskDoneJoin(t *testing.T) {
	q, err := New[int](unlimited(0))
	testutil.AssertNoError(t, err)

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, q.Put(ctx, i))
	}
	testutil.AssertEqual(t, q.Unfinished(), 3)

	done := make(chan error, 1)
	go func() {
		done <- q.Join(ctx)
	}()

	select {
	case <-done:
		t.Fatal("Join returned while tasks were unfinished")
	case <-time.After(50 * time.Millisecond):
	}

	for i := 0; i < 3; i++ {
		_, err := q.Get(ctx)
		testutil.AssertNoError(t, err)
		q.TaskDone()
	}

	testutil.AssertNoError(t, <-done)
	testutil.AssertEqual(t, q.Unfinished(), 0)
}

func TestJoinDeadline(t *testing.T) {
	q, err := New[int](unlimited(0))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, q.TryPut(1))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := q.Join(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestTaskDonePanicsWhenOvercalled(t *testing.T) {
	q, err := New[int](unlimited(0))
	testutil.AssertNoError(t, err)

	defer func() {
		if recover() == nil {
			t.Error("expected panic from extra TaskDone")
		}
	}()
	q.TaskDone()
}

func TestConcurrentPutsSerialized(t *testing.T) {
	// Two goroutines racing on a calls=1 window cannot both slip into
	// the same slot: their puts land one window apart.
	q, err := New[int](Config{Calls: 1, Per: 300 * time.Millisecond})
	testutil.AssertNoError(t, err)

	ctx := context.Background()
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := q.Put(ctx, i); err != nil {
				t.Errorf("put failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(start)
	testutil.AssertDurationNear(t, elapsed, 300*time.Millisecond, 100*time.Millisecond)
	testutil.AssertEqual(t, q.Len(), 2)
}
