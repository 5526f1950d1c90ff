package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"feedsync/pkg/async"
)

var errTest = errors.New("test error")

func TestJob(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		h := async.Job(t.Context(), func(context.Context) (string, error) {
			return "ok", nil
		})

		v, err := h.Wait()
		require.NoError(t, err)
		require.Equal(t, "ok", v)
		require.NoError(t, h.Error())
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		h := async.Job(t.Context(), func(context.Context) (int, error) {
			return 0, errTest
		})

		_, err := h.Wait()
		require.ErrorIs(t, err, errTest)
		require.ErrorIs(t, h.Error(), errTest)
	})

	t.Run("stop", func(t *testing.T) {
		t.Parallel()

		h := async.Job(t.Context(), func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		h.Stop()

		_, err := h.Wait()
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("done", func(t *testing.T) {
		t.Parallel()

		h := async.Done(42, nil)
		select {
		case <-h.Finished():
		default:
			t.Fatal("handle must be finished")
		}

		v, err := h.Wait()
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})
}

func TestSettle(t *testing.T) {
	t.Parallel()

	t.Run("waits for all and keeps order", func(t *testing.T) {
		t.Parallel()

		items := []int{30, 10, 20}

		results := async.Settle(t.Context(), items, 0, func(_ context.Context, ms int) (int, error) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
			if ms == 10 {
				return 0, errTest
			}
			return ms * 2, nil
		})

		require.Len(t, results, 3)
		require.Equal(t, 60, results[0].Value)
		require.ErrorIs(t, results[1].Err, errTest)
		require.Equal(t, 40, results[2].Value)
		require.Equal(t, []int{60, 40}, async.Values(results))
		require.ErrorIs(t, async.FirstErr(results), errTest)
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32

		async.Settle(t.Context(), make([]struct{}, 10), 2, func(context.Context, struct{}) (any, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil, nil
		})

		require.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		results := async.Settle(t.Context(), []string{}, 0, func(context.Context, string) (string, error) {
			return "", nil
		})
		require.Empty(t, results)
	})
}
