package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"feedsync/internal/core"
	"feedsync/internal/metrics"
	"feedsync/pkg/observe"
)

const DefaultMinLength = 2

type Phase int

const (
	Idle Phase = iota
	Pending
	InFlight
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case InFlight:
		return "in-flight"
	default:
		return "idle"
	}
}

// Snapshot is what a query stream shows at one point in time.
type Snapshot[T any] struct {
	// Query is the last trimmed input.
	Query   string
	Results []T
	Phase   Phase
	// Err is set when the last dispatched request failed. Results are left
	// as they were.
	Err error
}

type SearchFunc[T any] func(ctx context.Context, query string) ([]T, error)

type DebouncerConfig struct {
	Name      string
	Quiet     time.Duration
	MinLength int
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Debouncer turns a stream of query inputs into one authoritative result set.
// A request goes out once the input stayed the same for the quiet interval
// and differs from the last dispatched query. Only the response to the latest
// request is applied; older ones are cancelled and dropped.
type Debouncer[T any] struct {
	name      string
	search    SearchFunc[T]
	quiet     time.Duration
	minLength int
	clock     clockwork.Clock
	logger    *slog.Logger

	mu             sync.Mutex
	timer          clockwork.Timer
	input          uint64
	seq            uint64
	lastDispatched string
	cancel         context.CancelFunc

	state *observe.Value[Snapshot[T]]
}

func NewDebouncer[T any](search SearchFunc[T], cfg DebouncerConfig) *Debouncer[T] {
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Debouncer[T]{
		name:      cfg.Name,
		search:    search,
		quiet:     cfg.Quiet,
		minLength: cfg.MinLength,
		clock:     cfg.Clock,
		logger:    cfg.Logger.With("component", "search.Debouncer", "stream", cfg.Name),
		state:     observe.NewValue(Snapshot[T]{}),
	}
}

func (d *Debouncer[T]) Snapshot() Snapshot[T] {
	return d.state.Get()
}

func (d *Debouncer[T]) Results() []T {
	return d.state.Get().Results
}

// Subscribe calls fn on every change. fn runs with the debouncer locked and
// must not call Input or Submit.
func (d *Debouncer[T]) Subscribe(fn func(Snapshot[T])) func() {
	return d.state.Subscribe(fn)
}

// Input feeds one keystroke worth of query text. Queries shorter than the
// minimum length clear the results without a request.
func (d *Debouncer[T]) Input(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.input++
	d.stopTimer()

	if !d.longEnough(query) {
		d.invalidate()
		d.lastDispatched = ""
		d.state.Set(Snapshot[T]{Query: query})
		return
	}

	input := d.input
	d.timer = d.clock.AfterFunc(d.quiet, func() {
		d.fire(ctx, input, query)
	})

	d.state.Update(func(s Snapshot[T]) Snapshot[T] {
		s.Query = query
		s.Phase = Pending
		return s
	})
}

// Submit dispatches query right away, skipping the quiet interval and the
// distinct check, and waits for its result. It returns core.ErrStale when a
// newer request took over before the response came in.
func (d *Debouncer[T]) Submit(ctx context.Context, query string) ([]T, error) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	d.input++
	d.stopTimer()

	if !d.longEnough(query) {
		d.invalidate()
		d.lastDispatched = ""
		d.state.Set(Snapshot[T]{Query: query})
		d.mu.Unlock()
		return nil, core.ErrEmptyQuery
	}

	d.state.Update(func(s Snapshot[T]) Snapshot[T] {
		s.Query = query
		return s
	})
	done := d.dispatch(ctx, query)
	d.mu.Unlock()

	res := <-done
	return res.results, res.err
}

// Close stops the pending timer and cancels the request in flight.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.input++
	d.stopTimer()
	d.invalidate()
}

func (d *Debouncer[T]) fire(ctx context.Context, input uint64, query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if input != d.input {
		return
	}
	d.timer = nil

	if query == d.lastDispatched {
		d.state.Update(func(s Snapshot[T]) Snapshot[T] {
			s.Phase = Idle
			if d.cancel != nil {
				s.Phase = InFlight
			}
			return s
		})
		return
	}

	d.dispatch(ctx, query)
}

type outcome[T any] struct {
	results []T
	err     error
}

// dispatch must be called with d.mu held.
func (d *Debouncer[T]) dispatch(ctx context.Context, query string) <-chan outcome[T] {
	d.invalidate()

	d.seq++
	seq := d.seq
	d.lastDispatched = query

	reqCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.state.Update(func(s Snapshot[T]) Snapshot[T] {
		s.Phase = InFlight
		return s
	})

	metrics.SearchDispatched(d.name)
	d.logger.Debug("dispatching search", "query", query, "seq", seq)

	done := make(chan outcome[T], 1)

	go func() {
		defer cancel()

		results, err := d.search(reqCtx, query)
		done <- d.settle(seq, query, results, err)
	}()

	return done
}

func (d *Debouncer[T]) settle(seq uint64, query string, results []T, err error) outcome[T] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq {
		metrics.StaleResponse(d.name)
		d.logger.Debug("discarding stale search response", "query", query, "seq", seq)
		return outcome[T]{err: core.ErrStale}
	}
	d.cancel = nil

	if err != nil {
		// The same query may be retried.
		d.lastDispatched = ""
		d.logger.Warn("search failed", "query", query, "error", err)

		d.state.Update(func(s Snapshot[T]) Snapshot[T] {
			s.Phase = d.phaseAfterResponse()
			s.Err = err
			return s
		})
		return outcome[T]{err: err}
	}

	d.state.Update(func(s Snapshot[T]) Snapshot[T] {
		s.Phase = d.phaseAfterResponse()
		s.Results = results
		s.Err = nil
		return s
	})
	return outcome[T]{results: results}
}

func (d *Debouncer[T]) phaseAfterResponse() Phase {
	if d.timer != nil {
		return Pending
	}
	return Idle
}

// invalidate makes the request in flight stale and cancels it.
func (d *Debouncer[T]) invalidate() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
		d.seq++
	}
}

func (d *Debouncer[T]) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) longEnough(query string) bool {
	return utf8.RuneCountInString(query) >= d.minLength
}
