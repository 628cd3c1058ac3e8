package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netviz_dataset_loads_total",
		Help: "Dataset loads, labelled by source and outcome.",
	}, []string{"source", "outcome"})

	DatasetCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netviz_dataset_cache_hits_total",
		Help: "Dataset loads answered from the in-memory cache.",
	})

	FilterDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "netviz_filter_duration_ms",
		Help:    "Time spent filtering and recolouring a graph in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
	})

	Exports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netviz_exports_total",
		Help: "Export documents produced.",
	})

	SupersededLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netviz_superseded_loads_total",
		Help: "Session loads discarded because a newer load was started.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netviz_ws_sessions_active",
		Help: "Open websocket viewer sessions.",
	})

	IngestItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "netviz_ingest_items_total",
		Help: "Datasets processed by bulk ingestion, labelled by status.",
	}, []string{"status"})
)

// Outcome labels for DatasetLoads.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
