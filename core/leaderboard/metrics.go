package leaderboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeStale = "stale"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "educlara_leaderboard_cycles_total",
		Help: "Aggregation cycles by outcome (ok, empty, stale).",
	}, []string{"outcome"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "educlara_leaderboard_cycle_duration_seconds",
		Help:    "Duration of one fetch-join-assemble cycle.",
		Buckets: prometheus.DefBuckets,
	})

	snapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "educlara_leaderboard_snapshot_size",
		Help: "Entries in the most recently applied snapshot.",
	})
)

func observeCycle(snap Snapshot, seconds float64) {
	cycleDuration.Observe(seconds)
	if len(snap.Entries) == 0 {
		cyclesTotal.WithLabelValues(outcomeEmpty).Inc()
	} else {
		cyclesTotal.WithLabelValues(outcomeOK).Inc()
	}
	snapshotSize.Set(float64(len(snap.Entries)))
}

func observeStaleCycle() {
	cyclesTotal.WithLabelValues(outcomeStale).Inc()
}
