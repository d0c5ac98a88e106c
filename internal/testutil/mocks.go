package testutil

import (
	"sync"
	"time"
)

// MockClock implements the Clock interface for testing with controllable time.
// This is used across admission and queue tests to avoid actual time delays.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// MockRand implements the Rand interface with a fixed sequence of values,
// making jitter delays deterministic in tests. The sequence repeats once
// exhausted; an empty sequence always yields 0.5.
type MockRand struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewMockRand creates a MockRand cycling through the given values.
func NewMockRand(values ...float64) *MockRand {
	return &MockRand{values: values}
}

// Float64 returns the next value in the configured sequence.
func (m *MockRand) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.values) == 0 {
		return 0.5
	}
	v := m.values[m.next%len(m.values)]
	m.next++
	return v
}
