package graph

import (
	"math"
	"sync/atomic"
	"time"
)

// GetStatistics returns current graph statistics.
func (g *TransportGraph) GetStatistics() Statistics {
	return Statistics{
		NodeCount:    atomic.LoadUint64(&g.stats.NodeCount),
		EdgeCount:    atomic.LoadUint64(&g.stats.EdgeCount),
		TotalQueries: atomic.LoadUint64(&g.stats.TotalQueries),
		AvgQueryTime: math.Float64frombits(atomic.LoadUint64(&g.avgQueryTimeBits)),
	}
}

// trackQueryTime records query execution time for statistics.
// Uses an exponential moving average with atomic operations for thread-safety.
func (g *TransportGraph) trackQueryTime(duration time.Duration) {
	atomic.AddUint64(&g.stats.TotalQueries, 1)

	durationMs := float64(duration.Nanoseconds()) / 1000000.0

	for {
		oldBits := atomic.LoadUint64(&g.avgQueryTimeBits)
		oldAvg := math.Float64frombits(oldBits)
		newAvg := 0.9*oldAvg + 0.1*durationMs
		newBits := math.Float64bits(newAvg)

		if atomic.CompareAndSwapUint64(&g.avgQueryTimeBits, oldBits, newBits) {
			break
		}
	}
}

// atomicDecrementWithUnderflowProtection decrements an unsigned counter
// without wrapping past zero under concurrent access.
func atomicDecrementWithUnderflowProtection(counter *uint64) {
	for {
		current := atomic.LoadUint64(counter)
		if current == 0 {
			return
		}
		if atomic.CompareAndSwapUint64(counter, current, current-1) {
			return
		}
	}
}
