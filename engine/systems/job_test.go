package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	require.NoError(t, err)

	var completed atomic.Int32
	for i := 0; i < 100; i++ {
		require.NoError(t, js.Submit(JobTask{
			Name:        "square",
			InputParams: i,
			OnStart: func(params interface{}) (interface{}, error) {
				n := params.(int)
				return n * n, nil
			},
			OnComplete: func(result interface{}) {
				completed.Add(1)
			},
		}))
	}
	js.Wait()
	assert.EqualValues(t, 100, completed.Load())
	require.NoError(t, js.Shutdown())
}

func TestJobSystemFailureCallback(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	boom := errors.New("boom")
	var (
		mu       sync.Mutex
		failures []error
	)
	require.NoError(t, js.Submit(JobTask{
		Name:    "fails",
		OnStart: func(interface{}) (interface{}, error) { return nil, boom },
		OnComplete: func(interface{}) {
			t.Error("OnComplete must not run for a failed job")
		},
		OnFailure: func(err error) {
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
		},
	}))
	js.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], boom)
}

func TestJobSystemNonBlockingSubmit(t *testing.T) {
	js, err := NewJobSystem(2, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		js.AddWorkNonBlocking(JobTask{
			Name: "count",
			OnStart: func(interface{}) (interface{}, error) {
				ran.Add(1)
				return nil, nil
			},
		})
	}
	js.Wait()
	assert.EqualValues(t, 10, ran.Load())
}

func TestJobSystemRejectsWorkAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown(), "shutdown is idempotent")

	err = js.Submit(JobTask{Name: "late", OnStart: func(interface{}) (interface{}, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrJobSystemClosed)
	// nothing is left in flight
	js.Wait()
}
