package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	cycles        prometheus.Counter
	purges        prometheus.Counter
	purgeFailures prometheus.Counter
	probeErrors   prometheus.Counter
	cycleFailures prometheus.Counter
	freeBytes     prometheus.Gauge
	filesRemoved  prometheus.Counter
	filesSkipped  prometheus.Counter
	purgeDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "cycles_total",
			Help:      "Number of free space checks started.",
		}),
		purges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "purges_total",
			Help:      "Number of purges run because free space was below the minimum.",
		}),
		purgeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "purge_failures_total",
			Help:      "Number of purges that returned an error.",
		}),
		probeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "probe_errors_total",
			Help:      "Number of failed free space reads.",
		}),
		cycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "cycle_failures_total",
			Help:      "Number of checks aborted by an unexpected fault.",
		}),
		freeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "freewatch",
			Name:      "volume_free_bytes",
			Help:      "Free bytes on the watched volume at the last reading.",
		}),
		filesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "purge_files_removed_total",
			Help:      "Files removed by purges.",
		}),
		filesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "freewatch",
			Name:      "purge_files_skipped_total",
			Help:      "Files left behind by purges, usually because they are in use.",
		}),
		purgeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "freewatch",
			Name:      "purge_duration_seconds",
			Help:      "Time spent purging the target directory.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.cycles,
			m.purges,
			m.purgeFailures,
			m.probeErrors,
			m.cycleFailures,
			m.freeBytes,
			m.filesRemoved,
			m.filesSkipped,
			m.purgeDuration,
		)
	}
	return m
}
