/*
Copyright (C) 2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package inline

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/docker/go-units"
)

// Hot-path counters: single atomics, no mutex.
var (
	CompiledUnits   int64 // successful compile+load sequences
	FailedCompiles  int64
	CompileWarnings int64 // diagnostics carried by successful compiles
	CacheHits       int64
	CacheMisses     int64
	CacheEvictions  int64
	CompileNanos    int64 // total wall time spent in the external compiler
	ArtifactBytes   int64 // total size of all loaded artifacts
	TotalRequests   int64 // incremented per playground request
)

// metricsSnapshot holds sampled rates, atomically swapped by the background
// goroutine. Readers load the pointer; zero contention on the hot path.
type metricsSnapshot struct {
	compilesPerSec float64 // averaged over the last 10s
	hitRate        float64 // 0-1 over process lifetime
}

var currentSnapshot unsafe.Pointer // *metricsSnapshot

func loadSnapshot() *metricsSnapshot {
	p := atomic.LoadPointer(&currentSnapshot)
	if p == nil {
		return &metricsSnapshot{}
	}
	return (*metricsSnapshot)(p)
}

// InitMetricsSampler starts the single background goroutine that samples
// compile throughput once per second over a 10 second window.
func InitMetricsSampler() {
	atomic.StorePointer(&currentSnapshot, unsafe.Pointer(&metricsSnapshot{}))

	go func() {
		var prevCompiles int64

		const buckets = 10
		buf := [buckets]float64{}
		idx := 0

		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			cur := atomic.LoadInt64(&CompiledUnits)
			buf[idx%buckets] = float64(cur - prevCompiles)
			prevCompiles = cur
			idx++
			sum := float64(0)
			count := buckets
			if idx < buckets {
				count = idx
			}
			for i := 0; i < count; i++ {
				sum += buf[i]
			}

			hits := atomic.LoadInt64(&CacheHits)
			misses := atomic.LoadInt64(&CacheMisses)
			rate := float64(0)
			if hits+misses > 0 {
				rate = float64(hits) / float64(hits+misses)
			}

			snap := &metricsSnapshot{
				compilesPerSec: sum / float64(count),
				hitRate:        rate,
			}
			atomic.StorePointer(&currentSnapshot, unsafe.Pointer(snap))
		}
	}()
}

// StatsLine renders a one-line summary for the REPL and the playground.
func StatsLine() string {
	snap := loadSnapshot()
	compiled := atomic.LoadInt64(&CompiledUnits)
	nanos := atomic.LoadInt64(&CompileNanos)
	avg := time.Duration(0)
	if compiled > 0 {
		avg = time.Duration(nanos / compiled)
	}
	return fmt.Sprintf("units=%d failed=%d warnings=%d hits=%d misses=%d evictions=%d resident=%s avg_compile=%v compiles/s=%.2f hitrate=%.0f%%",
		compiled,
		atomic.LoadInt64(&FailedCompiles),
		atomic.LoadInt64(&CompileWarnings),
		atomic.LoadInt64(&CacheHits),
		atomic.LoadInt64(&CacheMisses),
		atomic.LoadInt64(&CacheEvictions),
		units.BytesSize(float64(atomic.LoadInt64(&ArtifactBytes))),
		avg,
		snap.compilesPerSec,
		snap.hitRate*100)
}
