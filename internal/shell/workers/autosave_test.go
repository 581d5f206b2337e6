package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Mock Flusher
// =============================================================================

type mockFlusher struct {
	calls atomic.Int32
	err   error
}

func (m *mockFlusher) Flush(ctx context.Context) (bool, error) {
	m.calls.Add(1)
	if m.err != nil {
		return false, m.err
	}
	return true, nil
}

// =============================================================================
// Autosaver Tests
// =============================================================================

func TestNewAutosaver_Defaults(t *testing.T) {
	a := NewAutosaver(&mockFlusher{}, AutosaverConfig{}, nil)
	assert.Equal(t, DefaultAutosaverConfig(), a.config)
}

func TestAutosaver_SavesOnTick(t *testing.T) {
	f := &mockFlusher{}
	a := NewAutosaver(f, AutosaverConfig{Interval: 5 * time.Millisecond}, nil)

	a.Start()
	assert.Eventually(t, func() bool { return f.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	a.Stop()
}

func TestAutosaver_StopFlushes(t *testing.T) {
	f := &mockFlusher{}
	a := NewAutosaver(f, AutosaverConfig{Interval: time.Hour}, nil)

	a.Start()
	a.Stop()
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestAutosaver_ErrorsDoNotStopLoop(t *testing.T) {
	f := &mockFlusher{err: errors.New("disk full")}
	a := NewAutosaver(f, AutosaverConfig{Interval: 5 * time.Millisecond}, nil)

	a.Start()
	assert.Eventually(t, func() bool { return f.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	a.Stop()
}

func TestAutosaver_StopWithoutStart(t *testing.T) {
	f := &mockFlusher{}
	a := NewAutosaver(f, AutosaverConfig{}, nil)
	a.Stop()
	assert.Equal(t, int32(1), f.calls.Load())
}
