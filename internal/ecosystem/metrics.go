package ecosystem

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "ingestions_total",
		Help:      "Release ingestions by outcome.",
	}, []string{"outcome"})

	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docket",
		Name:      "ingest_phase_duration_seconds",
		Help:      "Time spent in each ingestion phase.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"phase"})

	linkDiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "link_diagnostics_total",
		Help:      "Unresolvable documentation references by kind.",
	}, []string{"kind"})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docket",
		Name:      "queries_total",
		Help:      "Query API requests by response kind.",
	}, []string{"kind"})

	keyframesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "docket",
		Name:      "keyframes",
		Help:      "Keyframes held per package.",
	}, []string{"package"})
)
