package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestControllerValidation(t *testing.T) {
	_, err := NewController(nil, 0, func() {})
	require.Error(t, err)
	_, err = NewController(nil, time.Second, nil)
	require.Error(t, err)
}

func TestControllerPauseResume(t *testing.T) {
	sched := &fakeScheduler{}
	runs := 0
	ctrl, err := NewController(sched, time.Second, func() { runs++ })
	require.NoError(t, err)
	require.NoError(t, ctrl.Start())
	require.NoError(t, ctrl.Start())

	sched.Advance(2 * time.Second)
	require.Equal(t, 2, runs)

	ctrl.Pause()
	sched.Advance(5 * time.Second)
	require.Equal(t, 2, runs)

	ctrl.Resume()
	sched.Advance(time.Second)
	require.Equal(t, 3, runs)
	ctrl.Close()
}

func TestControllerPauseForZeroClearsCooldown(t *testing.T) {
	sched := &fakeScheduler{}
	runs := 0
	ctrl, err := NewController(sched, time.Second, func() { runs++ })
	require.NoError(t, err)
	require.NoError(t, ctrl.Start())

	ctrl.PauseFor(time.Minute)
	require.True(t, ctrl.Paused())
	ctrl.PauseFor(0)
	require.False(t, ctrl.Paused())
	require.False(t, ctrl.CooldownPending())

	sched.Advance(time.Second)
	require.Equal(t, 1, runs)
	ctrl.Close()
}
