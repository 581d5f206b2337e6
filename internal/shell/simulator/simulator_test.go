package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `version: '3.8'
services:
  web:
    image: nginx:alpine
  cache:
    image: redis:7
`

func TestStages(t *testing.T) {
	keys := make([]string, len(Stages))
	for i, s := range Stages {
		keys[i] = s.Key
	}
	assert.Equal(t, []string{"validate", "generate", "pull", "networks", "volumes", "start", "health", "complete"}, keys)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{0, 8, 0},
		{1, 8, 12.5},
		{4, 8, 50},
		{8, 8, 100},
		{1, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.completed, tt.total))
	}
}

func TestRun_Completes(t *testing.T) {
	sim := New(0, nil)
	sim.now = func() time.Time { return time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC) }

	var events []Event
	res, err := sim.Run(context.Background(), testManifest, func(e Event) { events = append(events, e) })
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.ElementsMatch(t, []string{"web", "cache"}, res.Services)
	assert.Equal(t, 8, res.Completed)
	assert.Equal(t, 100.0, res.Percent)
	require.Len(t, res.Log, 8)
	assert.Equal(t, "[14:05:09] Validating configuration", res.Log[0])
	assert.Equal(t, "[14:05:09] Deployment complete", res.Log[7])

	require.Len(t, events, 8)
	for i, e := range events {
		assert.Equal(t, i+1, e.Index)
		assert.Equal(t, Percent(i+1, 8), e.Percent)
	}
	assert.Equal(t, StatusRunning, events[6].Status)
	assert.Equal(t, StatusSucceeded, events[7].Status)
}

func TestRun_NilObserver(t *testing.T) {
	res, err := New(0, nil).Run(context.Background(), testManifest, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, res.Status)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sim := New(time.Millisecond, nil)

	res, err := sim.Run(ctx, testManifest, func(e Event) {
		if e.Index == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, 3, res.Completed)
	assert.Len(t, res.Log, 3)
	assert.Equal(t, 37.5, res.Percent)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(time.Hour, nil).Run(ctx, testManifest, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Completed)
}

func TestRun_RequiresManifest(t *testing.T) {
	called := false
	observe := func(Event) { called = true }

	_, err := New(0, nil).Run(context.Background(), "  ", observe)
	assert.ErrorIs(t, err, ErrNoManifest)

	_, err = New(0, nil).Run(context.Background(), "services: [", observe)
	assert.Error(t, err)
	assert.False(t, called)
}
