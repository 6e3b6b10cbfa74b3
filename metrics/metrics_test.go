package metrics

import (
	"context"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestCollect(t *testing.T) {
	snapshot, err := Collect(context.Background())
	require.NoError(t, err)

	require.False(t, snapshot.Time.IsZero())
	require.Greater(t, snapshot.MemTotal, uint64(0))
	require.Greater(t, snapshot.HeapAlloc, uint64(0))
	require.GreaterOrEqual(t, snapshot.NumGoroutine, 1)
}

func TestSamplerKeepsLatest(t *testing.T) {
	sampler := NewSampler(&Config{Interval: 10 * time.Millisecond})

	require.NoError(t, sampler.Start())
	t.Cleanup(func() {
		_ = sampler.Stop()
	})

	require.Eventually(t, func() bool {
		return sampler.Latest() != nil
	}, time.Second, 5*time.Millisecond)

	snapshot := sampler.Latest()
	require.Greater(t, snapshot.MemTotal, uint64(0))
}
