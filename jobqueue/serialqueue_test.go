package jobqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialQueueOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewSerialQueue("test", 10)
	q.Start()
	defer q.Cancel(ctx) //nolint:errcheck

	var (
		mu     sync.Mutex
		order  []int
		active int
	)
	handles := make([]*Handle, 0, 20)
	for i := 0; i < 20; i++ {
		i := i
		h, err := q.Submit(ctx, func(context.Context) error {
			mu.Lock()
			active++
			assert.Equal(t, 1, active)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			order = append(order, i)
			active--
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		handles = append(handles, h)
	}
	for _, h := range handles {
		require.NoError(t, h.Wait(ctx))
	}
	for i := 0; i < 20; i++ {
		require.Equal(t, i, order[i])
	}
}

func TestSerialQueuePutReturnsJobError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewSerialQueue("test", 1)
	q.Start()
	defer q.Cancel(ctx) //nolint:errcheck

	errFoo := errors.New("foo")
	require.ErrorIs(t, q.Put(ctx, func(context.Context) error { return errFoo }), errFoo)
	// a failing job does not stop the queue
	require.NoError(t, q.Put(ctx, func(context.Context) error { return nil }))
	require.Error(t, q.Put(ctx, func(context.Context) error { panic("boom") }))
	require.NoError(t, q.SyncPoint(ctx))
}

func TestSerialQueueSyncPoint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewSerialQueue("test", 10)
	q.Start()
	defer q.Cancel(ctx) //nolint:errcheck

	var (
		mu   sync.Mutex
		done int
	)
	for i := 0; i < 5; i++ {
		_, err := q.Submit(ctx, func(context.Context) error {
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, q.SyncPoint(ctx))
	mu.Lock()
	require.Equal(t, 5, done)
	mu.Unlock()
}

func TestSerialQueueCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewSerialQueue("test", 10)
	q.Start()

	running := make(chan struct{})
	first, err := q.Submit(ctx, func(jobCtx context.Context) error {
		close(running)
		<-jobCtx.Done()
		return jobCtx.Err()
	})
	require.NoError(t, err)
	ran := false
	second, err := q.Submit(ctx, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)

	<-running
	require.NoError(t, q.Cancel(ctx))
	require.ErrorIs(t, first.Wait(ctx), context.Canceled)
	require.ErrorIs(t, second.Wait(ctx), ErrCancelled)
	require.False(t, ran)

	_, err = q.Submit(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrCancelled)
	// cancelling twice is fine
	require.NoError(t, q.Cancel(ctx))
}

func TestSerialQueueCancelBeforeStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewSerialQueue("test", 2)
	h, err := q.Submit(ctx, func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NoError(t, q.Cancel(ctx))
	require.ErrorIs(t, h.Wait(ctx), ErrCancelled)
}

func TestSerialQueueSubmitContext(t *testing.T) {
	t.Parallel()
	q := NewSerialQueue("test", 1)
	// not started: the first job fills the buffer and the second blocks
	_, err := q.Submit(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = q.Submit(ctx, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, q.Cancel(context.Background()))
}
