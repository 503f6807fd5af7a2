package dotstate

import "github.com/prometheus/client_golang/prometheus"

var UpdateCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dotstate",
	Subsystem: "store",
	Name:      "updates",
}, []string{"store", "action", "result"})

var UpdateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "dotstate",
	Subsystem: "store",
	Name:      "update_duration_seconds",
	Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
}, []string{"store", "action"})

var NotifyCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dotstate",
	Subsystem: "store",
	Name:      "notifications",
}, []string{"store"})

const (
	resultCommitted = "committed"
	resultNoop      = "noop"
	resultRollback  = "rollback"
	resultError     = "error"
)
