package dotstate

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is the slice of a store the collector scrapes. Every
// Store[T] instantiation satisfies it.
type StatsSource interface {
	Name() string
	Stats() Stats
	SubscriberCount() int
	AvgUpdateSeconds() float64
}

// StoreCollector exposes per-store pipeline counters as constant metrics so
// they can sit next to the package-level vectors in one registry.
type StoreCollector struct {
	stores []StatsSource

	updates     *prometheus.Desc
	noops       *prometheus.Desc
	rollbacks   *prometheus.Desc
	errors      *prometheus.Desc
	subscribers *prometheus.Desc
	avgDuration *prometheus.Desc
}

func NewStoreCollector(stores ...StatsSource) *StoreCollector {
	return &StoreCollector{
		stores: stores,

		updates: prometheus.NewDesc(
			"dotstate_store_commits_total",
			"Total number of committed updates",
			[]string{"store"}, nil,
		),
		noops: prometheus.NewDesc(
			"dotstate_store_noops_total",
			"Total number of updates dropped as empty diffs",
			[]string{"store"}, nil,
		),
		rollbacks: prometheus.NewDesc(
			"dotstate_store_rollbacks_total",
			"Total number of committed updates rolled back",
			[]string{"store"}, nil,
		),
		errors: prometheus.NewDesc(
			"dotstate_store_errors_total",
			"Total number of failed updates",
			[]string{"store"}, nil,
		),
		subscribers: prometheus.NewDesc(
			"dotstate_store_subscribers",
			"Current number of subscribed listeners",
			[]string{"store"}, nil,
		),
		avgDuration: prometheus.NewDesc(
			"dotstate_store_update_avg_seconds",
			"Running average pipeline duration",
			[]string{"store"}, nil,
		),
	}
}

func (sc *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sc.updates
	ch <- sc.noops
	ch <- sc.rollbacks
	ch <- sc.errors
	ch <- sc.subscribers
	ch <- sc.avgDuration
}

func (sc *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range sc.stores {
		name := s.Name()
		st := s.Stats()

		ch <- prometheus.MustNewConstMetric(
			sc.updates, prometheus.CounterValue, float64(st.Updates), name,
		)
		ch <- prometheus.MustNewConstMetric(
			sc.noops, prometheus.CounterValue, float64(st.Noops), name,
		)
		ch <- prometheus.MustNewConstMetric(
			sc.rollbacks, prometheus.CounterValue, float64(st.Rollbacks), name,
		)
		ch <- prometheus.MustNewConstMetric(
			sc.errors, prometheus.CounterValue, float64(st.Errors), name,
		)
		ch <- prometheus.MustNewConstMetric(
			sc.subscribers, prometheus.GaugeValue, float64(s.SubscriberCount()), name,
		)
		ch <- prometheus.MustNewConstMetric(
			sc.avgDuration, prometheus.GaugeValue, s.AvgUpdateSeconds(), name,
		)
	}
}
