// Package optimistic runs store mutations as snapshot, local apply, dispatch,
// then reconcile on success or revert on failure.
package optimistic

import (
	"context"
	"errors"
	"log/slog"

	"feedsync/internal/core"
	"feedsync/internal/metrics"
	"feedsync/pkg/async"
	"feedsync/pkg/observe"
)

// Mutation describes one optimistic change to a state S answered by a server
// result R.
type Mutation[S any, R any] struct {
	Store     string
	Operation string

	// Apply computes the local state. An error refuses the mutation before
	// anything changed, nothing is dispatched.
	Apply func(current S) (S, error)

	Dispatch func(ctx context.Context) (R, error)

	// Reconcile folds the server result into the state that is current when
	// the result arrives. Optional.
	Reconcile func(current S, result R) S

	// Revert restores what Apply changed from the snapshot taken right before
	// it. When nil the whole snapshot is restored.
	Revert func(current, snapshot S) S
}

// Run applies m to state synchronously and dispatches it in the background.
// The returned handle reports the server result or the dispatch error; by the
// time Run returns the local change is already visible to readers of state.
func Run[S any, R any](ctx context.Context, logger *slog.Logger, state *observe.Value[S], m Mutation[S, R]) *async.JobHandle[R] {
	logger = logger.With("store", m.Store, "operation", m.Operation)

	var (
		snapshot S
		applyErr error
	)

	state.Swap(func(current S) (S, bool) {
		snapshot = current

		next, err := m.Apply(current)
		if err != nil {
			applyErr = err
			return current, false
		}
		return next, true
	})

	if applyErr != nil {
		if errors.Is(applyErr, core.ErrBlocked) {
			metrics.Mutation(m.Store, m.Operation, metrics.OutcomeBlocked)
		}
		logger.Debug("mutation refused", "error", applyErr)

		var zero R
		return async.Done(zero, applyErr)
	}

	metrics.Mutation(m.Store, m.Operation, metrics.OutcomeApplied)
	logger.Debug("mutation applied")

	return async.Job(ctx, func(ctx context.Context) (R, error) {
		result, err := m.Dispatch(ctx)
		if err != nil {
			state.Update(func(current S) S {
				if m.Revert == nil {
					return snapshot
				}
				return m.Revert(current, snapshot)
			})

			metrics.Mutation(m.Store, m.Operation, metrics.OutcomeReverted)
			logger.Warn("mutation reverted", "error", err)

			return result, err
		}

		if m.Reconcile != nil {
			state.Update(func(current S) S {
				return m.Reconcile(current, result)
			})
		}

		metrics.Mutation(m.Store, m.Operation, metrics.OutcomeReconciled)
		logger.Debug("mutation reconciled")

		return result, nil
	})
}
