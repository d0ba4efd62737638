package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/recon/lens"
	"github.com/voocel/recon/planner"
	"github.com/voocel/recon/runtime"
	"github.com/voocel/recon/sensor"
	"github.com/voocel/recon/task"
)

func byOneScalar() *task.Task {
	return task.New(
		task.WithID("+1"),
		task.WithLens("/"),
		task.WithOp(task.OpUpdate),
		task.WithCondition(func(state any, ctx lens.Context) bool {
			return state.(int) < ctx.Target.(int)
		}),
		task.WithEffect(func(state any, ctx lens.Context) (any, error) {
			return state.(int) + 1, nil
		}),
		task.WithAction(func(_ context.Context, state any, ctx lens.Context) (any, error) {
			return state.(int) + 1, nil
		}),
	)
}

func newPlanner() *planner.Planner {
	reg := task.NewRegistry(byOneScalar())
	return planner.New(planner.WithRegistry(reg))
}

// TestRuntimeReachesTarget drives a scalar counter from 0 to 3 and waits
// for the control loop to settle successfully.
func TestRuntimeReachesTarget(t *testing.T) {
	rt := runtime.New(0, 3, newPlanner(), nil)
	rt.Start(context.Background())

	res, err := rt.Wait(2 * time.Second)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, rt.State())
	assert.NotEmpty(t, res.RunID)
}

// TestStopBeforeStartReturnsErrNotStarted covers the not-yet-running edge
// case for both Stop and Wait.
func TestStopBeforeStartReturnsErrNotStarted(t *testing.T) {
	rt := runtime.New(0, 1, newPlanner(), nil)

	res := rt.Stop()
	assert.ErrorIs(t, res.Err, runtime.ErrNotStarted)

	_, err := rt.Wait(time.Second)
	assert.ErrorIs(t, err, runtime.ErrNotStarted)
}

// TestStopAfterSettledReturnsResult covers stopping a loop that already
// reached its target: the settled result comes back, not ErrNotStarted.
func TestStopAfterSettledReturnsResult(t *testing.T) {
	rt := runtime.New(0, 2, newPlanner(), nil)
	rt.Start(context.Background())

	res, err := rt.Wait(2 * time.Second)
	require.NoError(t, err)
	require.True(t, res.Success)

	stopped := rt.Stop()
	assert.True(t, stopped.Success)
	assert.Equal(t, res.RunID, stopped.RunID)
}

// TestStopCancelsRunningLoop covers cancellation via Stop while the loop
// would otherwise still be seeking an unreachable target.
func TestStopCancelsRunningLoop(t *testing.T) {
	rt := runtime.New(0, 1000000, newPlanner(), nil, runtime.WithMaxRetries(0))
	rt.Start(context.Background())

	res := rt.Stop()
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, runtime.ErrStopped)
}

// TestMaxRetriesExhaustion covers a task registry with no applicable task
// for the gap, causing planning to fail on every attempt until MaxRetries
// is exhausted and the loop settles with a FailureError.
func TestMaxRetriesExhaustion(t *testing.T) {
	reg := task.NewRegistry() // no tasks: any non-empty gap can never be planned
	p := planner.New(planner.WithRegistry(reg))

	rt := runtime.New(0, 1, p, nil,
		runtime.WithMaxRetries(2),
		runtime.WithMinWaitMs(1),
		runtime.WithMaxWaitMs(5),
	)
	rt.Start(context.Background())

	res, err := rt.Wait(2 * time.Second)
	require.NoError(t, err)
	assert.False(t, res.Success)
	var fe *runtime.FailureError
	require.ErrorAs(t, res.Err, &fe)
	assert.Equal(t, 2, fe.Tries)
}

// TestSensorFollowWakesLoop: with no task able to close the gap, only a
// sensor mutation can ever bring the state to the target. Follow mode
// should wake the loop to notice this promptly rather than waiting out
// the full backoff.
func TestSensorFollowWakesLoop(t *testing.T) {
	s := sensor.NewTickerSensor("/", time.Millisecond, func() (any, error) {
		return 1, nil
	})

	rt := runtime.New(0, 1, planner.New(planner.WithRegistry(task.NewRegistry())), []sensor.Sensor{s}, runtime.WithFollow(true))
	rt.Start(context.Background())

	res, err := rt.Wait(2 * time.Second)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

// TestSetTargetMidRunRetargets covers moving the goalpost while the loop
// runs: a new, satisfied target should let the loop settle on it instead
// of the original.
func TestSetTargetMidRunRetargets(t *testing.T) {
	rt := runtime.New(0, 1000000, newPlanner(), nil, runtime.WithMaxRetries(0))
	rt.Start(context.Background())
	rt.SetTarget(0)

	res, err := rt.Wait(2 * time.Second)
	require.NoError(t, err)
	assert.True(t, res.Success)
}
