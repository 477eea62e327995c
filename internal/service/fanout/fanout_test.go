package fanout_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/service/fanout"
)

func TestGather_PairsByPositionNotArrival(t *testing.T) {
	t.Parallel()

	// Earlier tasks sleep longer, so completion order is the reverse of
	// submission order.
	tasks := make([]fanout.Task[string], 4)
	for i := range tasks {
		delay := time.Duration(4-i) * 10 * time.Millisecond
		tasks[i] = func(context.Context) (string, error) {
			time.Sleep(delay)
			return fmt.Sprintf("candidate-%d", i), nil
		}
	}

	results := fanout.Gather(context.Background(), 4, tasks)

	require.Len(t, results, 4)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, fmt.Sprintf("candidate-%d", i), r.Value)
	}
}

func TestGather_IsolatesFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("model refused")
	tasks := []fanout.Task[int]{
		func(context.Context) (int, error) { return 10, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(context.Context) (int, error) { return 30, nil },
	}

	results := fanout.Gather(context.Background(), 3, tasks)

	require.Len(t, results, 3)
	assert.True(t, results[0].Ok())
	assert.Equal(t, 10, results[0].Value)
	require.False(t, results[1].Ok())
	assert.ErrorIs(t, results[1].Err, boom)
	assert.True(t, results[2].Ok())
	assert.Equal(t, 30, results[2].Value)
}

func TestGather_CapturesPanics(t *testing.T) {
	t.Parallel()

	tasks := []fanout.Task[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { panic("nil deref in prompt builder") },
		func(context.Context) (int, error) { return 3, nil },
	}

	results := fanout.Gather(context.Background(), 3, tasks)

	require.Len(t, results, 3)
	assert.True(t, results[0].Ok())
	require.False(t, results[1].Ok())
	assert.Contains(t, results[1].Err.Error(), "panicked")
	assert.True(t, results[2].Ok())
}

func TestGather_HonorsLimit(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	tasks := make([]fanout.Task[struct{}], 12)
	for i := range tasks {
		tasks[i] = func(context.Context) (struct{}, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		}
	}

	fanout.Gather(context.Background(), 5, tasks)

	assert.LessOrEqual(t, peak.Load(), int32(5))
	assert.Greater(t, peak.Load(), int32(0))
}

func TestGather_EmptyTasks(t *testing.T) {
	t.Parallel()

	results := fanout.Gather(context.Background(), 5, nil)
	assert.Empty(t, results)
}
