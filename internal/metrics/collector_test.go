package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routinely/internal/metrics"
)

func TestEmptySnapshot(t *testing.T) {
	c := metrics.NewCollector()

	snap := c.Snapshot()
	assert.Nil(t, snap.Relay)
	assert.Nil(t, snap.Rejected)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestRecordTiming(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordTiming(metrics.OpRelay, 100*time.Millisecond)
	c.RecordTiming(metrics.OpRelay, 300*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.Relay)
	assert.Equal(t, int64(2), snap.Relay.Count)
	assert.Equal(t, int64(0), snap.Relay.Errors)
	assert.Equal(t, int64(400), snap.Relay.TotalTimeMs)
	assert.Equal(t, int64(100), snap.Relay.MinTimeMs)
	assert.Equal(t, int64(300), snap.Relay.MaxTimeMs)
	assert.InDelta(t, 200.0, snap.Relay.AvgTimeMs, 0.001)
}

func TestRecordError(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordTiming(metrics.OpRelay, 50*time.Millisecond)
	c.RecordError(metrics.OpRelay, 150*time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.Relay)
	assert.Equal(t, int64(2), snap.Relay.Count)
	assert.Equal(t, int64(1), snap.Relay.Errors)
	assert.Equal(t, int64(150), snap.Relay.MaxTimeMs)
}

func TestOperationsAreIndependent(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordTiming(metrics.OpRelay, 10*time.Millisecond)
	c.RecordError(metrics.OpRejected, time.Millisecond)

	snap := c.Snapshot()
	require.NotNil(t, snap.Relay)
	require.NotNil(t, snap.Rejected)
	assert.Equal(t, int64(0), snap.Relay.Errors)
	assert.Equal(t, int64(1), snap.Rejected.Errors)
}

func TestConcurrentRecording(t *testing.T) {
	c := metrics.NewCollector()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.RecordTiming(metrics.OpRelay, time.Millisecond)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	snap := c.Snapshot()
	require.NotNil(t, snap.Relay)
	assert.Equal(t, int64(1000), snap.Relay.Count)
}
