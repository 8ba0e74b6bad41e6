package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMonitor() *Monitor {
	return NewMonitor(Config{
		Interval:    time.Hour, // probes driven manually via checkAll
		Timeout:     time.Second,
		MaxFailures: 2,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMonitorStartsHealthy(t *testing.T) {
	m := testMonitor()
	m.Register("postgres", func(ctx context.Context) error { return nil })

	snap := m.Snapshot()
	assert.True(t, snap.Healthy)
	require.Len(t, snap.Dependencies, 1)
	assert.True(t, snap.Dependencies[0].Healthy)
}

func TestMonitorUnhealthyAfterConsecutiveFailures(t *testing.T) {
	m := testMonitor()
	m.Register("redis", func(ctx context.Context) error { return errors.New("connection refused") })

	m.checkAll()
	assert.True(t, m.Snapshot().Healthy, "single failure must not flip health")

	m.checkAll()
	snap := m.Snapshot()
	assert.False(t, snap.Healthy)
	assert.Equal(t, 2, snap.Dependencies[0].ConsecutiveFailures)
	assert.Contains(t, snap.Dependencies[0].LastError, "connection refused")
}

func TestMonitorRecovers(t *testing.T) {
	failing := true
	m := testMonitor()
	m.Register("redis", func(ctx context.Context) error {
		if failing {
			return errors.New("down")
		}
		return nil
	})

	m.checkAll()
	m.checkAll()
	require.False(t, m.Snapshot().Healthy)

	failing = false
	m.checkAll()

	snap := m.Snapshot()
	assert.True(t, snap.Healthy)
	assert.Zero(t, snap.Dependencies[0].ConsecutiveFailures)
	assert.Empty(t, snap.Dependencies[0].LastError)
}

func TestMonitorAggregatesAcrossDependencies(t *testing.T) {
	m := testMonitor()
	m.Register("postgres", func(ctx context.Context) error { return nil })
	m.Register("redis", func(ctx context.Context) error { return errors.New("down") })

	m.checkAll()
	m.checkAll()

	snap := m.Snapshot()
	assert.False(t, snap.Healthy)
	require.Len(t, snap.Dependencies, 2)
	assert.True(t, snap.Dependencies[0].Healthy)
	assert.False(t, snap.Dependencies[1].Healthy)
}
