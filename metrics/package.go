// Package metrics provides easy methods to send metrics
package metrics

import (
	"runtime"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Mark increases the meter metric with the given name by 1
func Mark(name string) {
	gometrics.GetOrRegisterMeter(name, gometrics.DefaultRegistry).Mark(1)
}

// Gauge sets a gauge metric to a given value
func Gauge(name string, value int64) {
	gometrics.GetOrRegisterGauge(name, gometrics.DefaultRegistry).Update(value)
}

// TimeSince updates a timer metric with the time elapsed since the given
// timestamp
func TimeSince(name string, since time.Time) {
	gometrics.GetOrRegisterTimer(name, gometrics.DefaultRegistry).Update(time.Since(since))
}

// ReportMemstatsMetrics samples runtime memory statistics into the default
// registry every 10 seconds, blocking forever.
func ReportMemstatsMetrics() {
	memStats := &runtime.MemStats{}

	for {
		runtime.ReadMemStats(memStats)

		Gauge("mlops.goroutines", int64(runtime.NumGoroutine()))
		Gauge("mlops.memory.allocated", int64(memStats.Alloc))
		Gauge("mlops.memory.mallocs", int64(memStats.Mallocs))
		Gauge("mlops.memory.frees", int64(memStats.Frees))
		Gauge("mlops.memory.gc.total_pause", int64(memStats.PauseTotalNs))
		Gauge("mlops.memory.gc.heap", int64(memStats.HeapAlloc))
		Gauge("mlops.memory.gc.stack", int64(memStats.StackInuse))

		time.Sleep(10 * time.Second)
	}
}
