package recon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/recon"
	"github.com/voocel/recon/lens"
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

// TestAgentSeekReachesTarget exercises the full public construction
// surface: New builds a default planner from a task list, Seek starts the
// control loop, and Wait reports success once the target is reached.
func TestAgentSeekReachesTarget(t *testing.T) {
	agent := recon.New(0, recon.WithTasks(byOneScalar()))
	agent.Seek(context.Background(), 3)

	res, err := agent.Wait(2 * time.Second)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 3, agent.State())
}

// TestAgentStopReturnsErrStopped covers stopping an agent mid-run.
func TestAgentStopReturnsErrStopped(t *testing.T) {
	agent := recon.New(0, recon.WithTasks(byOneScalar()),
		recon.WithRuntimeOptions(),
	)
	agent.Seek(context.Background(), 1000000)

	res := agent.Stop()
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, recon.ErrStopped)
}
