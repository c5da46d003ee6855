package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollster_http_requests_total",
		Help: "Total HTTP requests served",
	}, []string{"method", "status"})

	httpRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pollster_http_request_duration_seconds",
		Help:    "Time spent serving HTTP requests",
		Buckets: prometheus.DefBuckets,
	})

	votesCastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pollster_votes_cast_total",
		Help: "Vote cast attempts by outcome",
	}, []string{"outcome"})
)

func ObserveRequest(method string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDuration.Observe(seconds)
}

func ObserveVoteCast(outcome string) {
	votesCastTotal.WithLabelValues(outcome).Inc()
}
