package updater

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const resultLabel = "result"

var (
	fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "globe_updater_fetches_total",
		Help: "The number of finished document fetches by result.",
	}, []string{
		resultLabel,
	})

	documentsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "globe_updater_documents_processed_total",
		Help: "The number of documents handed to the processor.",
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "globe_updater_fetch_duration_seconds",
		Help:    "The time from submitting a fetch to its completion.",
		Buckets: prometheus.DefBuckets,
	})
)

func instrumentFetch(state State, start time.Time) {
	fetches.With(prometheus.Labels{
		resultLabel: state.String(),
	}).Inc()
	fetchDuration.Observe(time.Since(start).Seconds())
}

func instrumentDocument() {
	documentsProcessed.Inc()
}
