package recoil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recoilapp/recoil/pkg/records"
)

func TestAutoUpdatesRunScheduledPasses(t *testing.T) {
	feed := &fakeFeed{rows: []records.CrimeRecord{
		feedRow("John Doe", "100 W Monroe St", "2015-03-02T14:30:00"),
	}}
	store := &fakeStore{}
	c := newTestClient(t, feed, store, WithAutoUpdateInterval(10*time.Millisecond))

	var passes atomic.Int32
	c.OnPassComplete(func(res *Result) {
		assert.Equal(t, ModeSync, res.Mode)
		passes.Add(1)
	})

	require.NoError(t, c.AutoUpdatesOn())
	require.Eventually(t, func() bool {
		return passes.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, c.AutoUpdatesOff())

	settled := passes.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, passes.Load())
}

func TestAutoUpdatesDoubleStart(t *testing.T) {
	feed := &fakeFeed{}
	store := &fakeStore{}
	c := newTestClient(t, feed, store, WithAutoUpdateInterval(time.Hour))

	require.NoError(t, c.AutoUpdatesOn())
	assert.Error(t, c.AutoUpdatesOn())
	require.NoError(t, c.AutoUpdatesOff())

	// Off on a stopped loop is a no-op, and the loop can restart.
	require.NoError(t, c.AutoUpdatesOff())
	require.NoError(t, c.AutoUpdatesOn())
	require.NoError(t, c.AutoUpdatesOff())
}
