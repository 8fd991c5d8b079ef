// Grounded on the teacher's benchmark.go: a BenchResult row plus a
// forced-GC memory sampler, written straight through to CSV.
package main

import (
	"encoding/csv"
	"runtime"
	"strconv"
)

type benchResult struct {
	Backend   string
	Operation string
	LatencyNs int64
	AllocMB   uint64
}

type memStats struct {
	AllocMB uint64
}

func sampleMem() memStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return memStats{AllocMB: m.Alloc / 1024 / 1024}
}

func record(w *csv.Writer, res benchResult) {
	w.Write([]string{
		res.Backend,
		res.Operation,
		strconv.FormatInt(res.LatencyNs, 10),
		strconv.FormatUint(res.AllocMB, 10),
	})
}
