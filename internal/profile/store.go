// Package profile holds the signed in user's profile summary.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"feedsync/internal/core"
	"feedsync/internal/optimistic"
	"feedsync/pkg/async"
	"feedsync/pkg/observe"
)

const storeName = "profile"

type State struct {
	Profile core.Profile
	// Counts are display values computed by the server, never changed locally.
	Counts core.ProfileCounts

	Loaded  bool
	Loading bool
	Err     error
}

type Store struct {
	api    core.UserAPI
	logger *slog.Logger

	state *observe.Value[State]
}

var _ core.Viewer = (*Store)(nil)

func NewStore(api core.UserAPI, logger *slog.Logger) *Store {
	return &Store{
		api:    api,
		logger: logger.With("component", "profile.Store"),
		state:  observe.NewValue(State{}),
	}
}

func (s *Store) State() State {
	return s.state.Get()
}

func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

func (s *Store) Summary() core.Profile {
	return s.state.Get().Profile
}

func (s *Store) Counts() core.ProfileCounts {
	return s.state.Get().Counts
}

// Author is the profile as it is embedded into posts and comments.
func (s *Store) Author() core.Author {
	return s.Summary().Author()
}

func (s *Store) ViewerID() string {
	return s.Summary().ID
}

// Load fetches the profile, then its counters.
func (s *Store) Load(ctx context.Context) error {
	s.state.Update(func(state State) State {
		state.Loading = true
		state.Err = nil
		return state
	})

	profile, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.fail(err)
		return fmt.Errorf("failed to load profile: %w", err)
	}

	s.state.Update(func(state State) State {
		state.Profile = profile
		return state
	})

	counts, err := s.api.UserCounts(ctx, profile.ID)
	if err != nil {
		s.fail(err)
		return fmt.Errorf("failed to load counts of %s: %w", profile.ID, err)
	}

	s.state.Update(func(state State) State {
		state.Counts = counts
		state.Loaded = true
		state.Loading = false
		return state
	})

	s.logger.Debug("profile loaded", "user_id", profile.ID)

	return nil
}

func (s *Store) fail(err error) {
	s.state.Update(func(state State) State {
		state.Loading = false
		state.Err = err
		return state
	})
}

// Update applies u locally and sends it to the server. The handle reports
// the profile as it stands once the server confirmed the update.
func (s *Store) Update(ctx context.Context, u core.ProfileUpdate) *async.JobHandle[core.Profile] {
	var confirmed core.Profile

	handle := optimistic.Run(ctx, s.logger, s.state, optimistic.Mutation[State, core.Echo[core.Profile]]{
		Store:     storeName,
		Operation: "update",
		Apply: func(state State) (State, error) {
			if !state.Loaded {
				return state, fmt.Errorf("%w: profile is not loaded", core.ErrBlocked)
			}
			state.Profile = state.Profile.Apply(u)
			return state, nil
		},
		Dispatch: func(ctx context.Context) (core.Echo[core.Profile], error) {
			return s.api.UpdateProfile(ctx, u)
		},
		Reconcile: func(state State, echo core.Echo[core.Profile]) State {
			state.Profile = state.Profile.Merge(echo)
			confirmed = state.Profile
			return state
		},
		Revert: func(state, snapshot State) State {
			state.Profile = snapshot.Profile
			return state
		},
	})

	return async.Then(handle, func(core.Echo[core.Profile]) core.Profile {
		return confirmed
	})
}
