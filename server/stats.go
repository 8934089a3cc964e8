package server

import (
	"expvar"
	"time"

	"github.com/facebookgo/stats"
)

// expvarStats is a stats.Client which publishes its counters through
// expvar, so they appear on /debug/vars. Averages and histograms are kept
// as a running count and sum.
type expvarStats struct {
	m *expvar.Map
}

var _ stats.Client = &expvarStats{}

// the expvar namespace is global, so every server shares one map
var statsMap = expvar.NewMap("monogram")

func newExpvarStats() *expvarStats {
	return &expvarStats{m: statsMap}
}

func (e *expvarStats) BumpAvg(key string, val float64) {
	e.m.AddFloat(key+".sum", val)
	e.m.Add(key+".count", 1)
}

func (e *expvarStats) BumpSum(key string, val float64) {
	e.m.AddFloat(key, val)
}

func (e *expvarStats) BumpHistogram(key string, val float64) {
	e.BumpAvg(key, val)
}

func (e *expvarStats) BumpTime(key string) interface {
	End()
} {
	return timer{e: e, key: key, start: time.Now()}
}

type timer struct {
	e     *expvarStats
	key   string
	start time.Time
}

func (t timer) End() {
	t.e.BumpAvg(t.key+".ms", float64(time.Since(t.start))/float64(time.Millisecond))
}
