package window

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vnykmshr/rlqueue/pkg/common/errors"
)

// Clock provides the current time. It can be mocked for testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Rand provides the randomness source for jitter delays.
// It can be mocked for deterministic tests.
type Rand interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// SystemRand implements Rand using the math/rand global source.
type SystemRand struct{}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (SystemRand) Float64() float64 {
	return rand.Float64()
}

// Config holds configuration options for creating a new Gate.
type Config struct {
	// Calls is the number of admissions allowed per window. Must be at least 1.
	Calls int

	// Per is the length of the sliding window. Zero or negative means
	// the rate is unlimited.
	Per time.Duration

	// Fuzz is the maximum randomized startup delay applied while the
	// window is not yet full. Zero or negative disables jitter.
	Fuzz time.Duration

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock

	// Rand provides the jitter randomness source. If nil, SystemRand is used.
	Rand Rand
}

// Gate is the admission control for one side (put or get) of a rate-limited
// queue. It combines a sliding-window call log, the jitter policy, and an
// exclusive admission slot that serializes the whole check-decide-sleep
// sequence for that side.
//
// Callers hold the slot from a successful Admit until Commit or Abort, so
// the window decision and the guarded operation form one atomic unit.
type Gate struct {
	calls int
	per   time.Duration

	clock Clock
	rand  Rand

	// slot is the exclusive admission slot. A send acquires, a receive
	// releases. Held across the window decision and the backend call.
	slot chan struct{}

	mu   sync.Mutex
	fuzz time.Duration
	log  *callLog
}

// NewSafe creates a new admission gate with validation.
func NewSafe(calls int, per, fuzz time.Duration) (*Gate, error) {
	return NewWithConfigSafe(Config{
		Calls: calls,
		Per:   per,
		Fuzz:  fuzz,
	})
}

// NewWithConfigSafe creates a new admission gate from a Config with validation.
func NewWithConfigSafe(config Config) (*Gate, error) {
	if config.Calls < 1 {
		return nil, errors.NewValidationError("window", "calls", config.Calls, "must be at least 1").
			WithHint("calls is the number of admissions allowed per window")
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}
	if config.Rand == nil {
		config.Rand = SystemRand{}
	}

	return &Gate{
		calls: config.Calls,
		per:   config.Per,
		clock: config.Clock,
		rand:  config.Rand,
		slot:  make(chan struct{}, 1),
		fuzz:  config.Fuzz,
		log:   newCallLog(config.Calls),
	}, nil
}

// Calls returns the number of admissions allowed per window.
func (g *Gate) Calls() int {
	return g.calls
}

// Per returns the window length.
func (g *Gate) Per() time.Duration {
	return g.per
}

// Fuzz returns the current maximum jitter delay.
func (g *Gate) Fuzz() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fuzz
}

// SetFuzz changes the maximum jitter delay. It takes effect for the next
// admission; an admission already sleeping is not affected.
func (g *Gate) SetFuzz(fuzz time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fuzz = fuzz
}

// Recorded returns the number of calls currently held in the window log.
func (g *Gate) Recorded() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.log.len()
}

// callLog is a bounded ordered history of admission timestamps, oldest at
// the head. Its length never exceeds the configured calls.
type callLog struct {
	entries []time.Time
	head    int
	count   int
}

func newCallLog(capacity int) *callLog {
	return &callLog{entries: make([]time.Time, capacity)}
}

func (l *callLog) len() int {
	return l.count
}

func (l *callLog) full() bool {
	return l.count == len(l.entries)
}

// oldest returns the head timestamp. Only valid when len() > 0.
func (l *callLog) oldest() time.Time {
	return l.entries[l.head]
}

// evict drops the head timestamp. Only valid when len() > 0.
func (l *callLog) evict() {
	l.head = (l.head + 1) % len(l.entries)
	l.count--
}

// append adds a timestamp at the tail, evicting the head if full.
func (l *callLog) append(t time.Time) {
	if l.full() {
		l.evict()
	}
	l.entries[(l.head+l.count)%len(l.entries)] = t
	l.count++
}
