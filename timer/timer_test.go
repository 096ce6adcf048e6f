package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martos-project/martos/port"
)

func newTestService(t *testing.T, n int) *Service {
	t.Helper()
	p := port.NewSim(4096)
	require.NoError(t, p.SetupHardwareTimer())
	return New(p, n, nil)
}

func TestGetTimerAtMostOneOwner(t *testing.T) {
	svc := newTestService(t, 2)

	h, err := svc.GetTimer(0)
	require.NoError(t, err)
	require.NotNil(t, h)

	_, err = svc.GetTimer(0)
	assert.ErrorIs(t, err, ErrTimerBusy)

	h.Release()

	h2, err := svc.GetTimer(0)
	require.NoError(t, err)
	assert.NotNil(t, h2)
}

func TestGetTimerIndexRange(t *testing.T) {
	svc := newTestService(t, 1)
	_, err := svc.GetTimer(5)
	assert.ErrorIs(t, err, ErrIndexRange)
}

func TestHandleStartStopAccumulates(t *testing.T) {
	svc := newTestService(t, 1)
	h, err := svc.GetTimer(0)
	require.NoError(t, err)

	h.Start()
	time.Sleep(5 * time.Millisecond)
	wasRunning := h.Stop()
	assert.True(t, wasRunning)

	elapsed := h.GetTime()
	assert.Greater(t, elapsed, time.Duration(0))

	// Stopping again reports not-running and does not add more time.
	assert.False(t, h.Stop())
	assert.Equal(t, elapsed, h.GetTime())
}

func TestHandleChangePeriod(t *testing.T) {
	svc := newTestService(t, 1)
	h, err := svc.GetTimer(0)
	require.NoError(t, err)

	h.ChangePeriod(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, svc.slots[0].period)
}

func TestReleaseIsIdempotent(t *testing.T) {
	svc := newTestService(t, 1)
	h, err := svc.GetTimer(0)
	require.NoError(t, err)

	h.Release()
	h.Release() // must not panic or double-free the slot

	_, err = svc.GetTimer(0)
	assert.NoError(t, err)
}
