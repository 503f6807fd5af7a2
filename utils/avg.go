package utils

import "sync"

// AvgVal keeps a running arithmetic mean over all samples ever added. The
// store feeds it pipeline durations; the collector exposes it as a gauge.
type AvgVal struct {
	v     float64
	count int
	lock  sync.Mutex
}

// NewAvgVal seeds the average with one initial sample.
func NewAvgVal(val float64) *AvgVal {
	return &AvgVal{
		v:     val,
		count: 1,
	}
}

func (a *AvgVal) Add(val float64) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.v = (float64(a.count)*a.v + val) / float64(a.count+1)
	a.count++
}

func (a *AvgVal) Val() float64 {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.v
}
