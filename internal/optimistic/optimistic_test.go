package optimistic_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"feedsync/internal/core"
	"feedsync/internal/optimistic"
	"feedsync/pkg/observe"
)

var errBoom = errors.New("boom")

func increment(current int) (int, error) {
	return current + 1, nil
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("applies before dispatch and reconciles", func(t *testing.T) {
		t.Parallel()

		state := observe.NewValue(10)
		release := make(chan struct{})

		handle := optimistic.Run(context.Background(), slog.Default(), state, optimistic.Mutation[int, int]{
			Store:     "test",
			Operation: "inc",
			Apply:     increment,
			Dispatch: func(context.Context) (int, error) {
				<-release
				return 42, nil
			},
			Reconcile: func(_ int, result int) int {
				return result
			},
		})

		require.Equal(t, 11, state.Get())

		close(release)
		result, err := handle.Wait()
		require.NoError(t, err)
		require.Equal(t, 42, result)
		require.Equal(t, 42, state.Get())
	})

	t.Run("restores the snapshot on failure", func(t *testing.T) {
		t.Parallel()

		state := observe.NewValue(10)

		handle := optimistic.Run(context.Background(), slog.Default(), state, optimistic.Mutation[int, int]{
			Store:     "test",
			Operation: "inc",
			Apply:     increment,
			Dispatch: func(context.Context) (int, error) {
				return 0, errBoom
			},
		})

		_, err := handle.Wait()
		require.ErrorIs(t, err, errBoom)
		require.Equal(t, 10, state.Get())
	})

	t.Run("custom revert sees the current state", func(t *testing.T) {
		t.Parallel()

		state := observe.NewValue(10)
		release := make(chan struct{})

		handle := optimistic.Run(context.Background(), slog.Default(), state, optimistic.Mutation[int, int]{
			Store:     "test",
			Operation: "inc",
			Apply:     increment,
			Dispatch: func(context.Context) (int, error) {
				<-release
				return 0, errBoom
			},
			Revert: func(current, snapshot int) int {
				return current - 1
			},
		})

		state.Set(100)
		close(release)

		_, err := handle.Wait()
		require.ErrorIs(t, err, errBoom)
		require.Equal(t, 99, state.Get())
	})

	t.Run("refused mutations change nothing", func(t *testing.T) {
		t.Parallel()

		state := observe.NewValue(10)
		dispatched := false

		handle := optimistic.Run(context.Background(), slog.Default(), state, optimistic.Mutation[int, int]{
			Store:     "test",
			Operation: "inc",
			Apply: func(int) (int, error) {
				return 0, core.ErrBlocked
			},
			Dispatch: func(context.Context) (int, error) {
				dispatched = true
				return 0, nil
			},
		})

		_, err := handle.Wait()
		require.ErrorIs(t, err, core.ErrBlocked)
		require.False(t, dispatched)
		require.Equal(t, 10, state.Get())
		require.Zero(t, state.Version())
	})
}
