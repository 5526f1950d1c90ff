package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"resty.dev/v3"
)

const (
	OutcomeApplied    = "applied"
	OutcomeReconciled = "reconciled"
	OutcomeReverted   = "reverted"
	OutcomeBlocked    = "blocked"
)

var (
	apiLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedsync_api_request_duration_seconds",
			Help:    "Histogram of feed API request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "path", "status_code"},
	)

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsync_mutations_total",
		Help: "Optimistic mutations by store, operation and outcome",
	}, []string{"store", "operation", "outcome"})

	staleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsync_stale_responses_total",
		Help: "Responses discarded because a newer request superseded them",
	}, []string{"stream"})

	searchDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedsync_search_requests_total",
		Help: "Search requests sent after debouncing",
	}, []string{"stream"})
)

func Mutation(store, operation, outcome string) {
	mutations.WithLabelValues(store, operation, outcome).Inc()
}

func StaleResponse(stream string) {
	staleResponses.WithLabelValues(stream).Inc()
}

func SearchDispatched(stream string) {
	searchDispatched.WithLabelValues(stream).Inc()
}

// APIMiddleware records the latency of every finished request.
func APIMiddleware(_ *resty.Client, response *resty.Response) error {
	reqURL, err := url.Parse(response.Request.URL)
	if err != nil {
		return err
	}

	apiLatency.WithLabelValues(
		response.Request.Method,
		routeLabel(reqURL.Path),
		fmt.Sprintf("%d", response.StatusCode()),
	).Observe(response.Duration().Seconds())

	return nil
}

// routeLabel replaces entity ids in a path with ":id" to bound cardinality.
// The version segment (v1, v2) is kept as is.
func routeLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if i == 0 && strings.HasPrefix(s, "v") {
			continue
		}
		if strings.IndexFunc(s, unicode.IsDigit) >= 0 {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
