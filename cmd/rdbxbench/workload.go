// Grounded on the teacher's workload.go: a mixed-distribution generator
// that drives an index through OLTP-shaped (read-heavy) and OLAP-shaped
// (write-heavy) traffic. The teacher's third shape, Reporting (range
// scan), has no rdbx equivalent — SET/GET is the entire command surface
// (spec.md §4.6 Non-goals exclude range scans) — so here it is simulated
// for both backends as repeated point lookups of random keys, as the
// workload's own name and main.go's package comment say.
package main

import (
	"math/rand"
	"strconv"
)

type kvIndex interface {
	Set(key, value string) error
	Get(key string) (value string, found bool, err error)
}

type workloadType string

const (
	workloadOLTP      workloadType = "OLTP (90/10 read-heavy)"
	workloadOLAP      workloadType = "OLAP (10/90 write-heavy)"
	workloadReporting workloadType = "Reporting (simulated range, repeated point lookups)"
)

// executeWorkload runs ops operations of the given shape against idx,
// touching keys in [0, ops) so later lookups have a chance of hitting
// something already written.
func executeWorkload(idx kvIndex, w workloadType, ops int) error {
	for i := 0; i < ops; i++ {
		choice := rand.Intn(100)
		key := randomKey(ops)

		switch w {
		case workloadOLTP:
			if choice < 90 {
				if _, _, err := idx.Get(key); err != nil {
					return err
				}
			} else if err := idx.Set(key, "x"); err != nil {
				return err
			}
		case workloadOLAP:
			if choice < 10 {
				if _, _, err := idx.Get(key); err != nil {
					return err
				}
			} else if err := idx.Set(key, "x"); err != nil {
				return err
			}
		case workloadReporting:
			// No range primitive exists; approximate a 100-row scan's
			// cost with 100 point lookups of random keys.
			for j := 0; j < 100; j++ {
				if _, _, err := idx.Get(randomKey(ops)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func randomKey(ops int) string {
	return strconv.Itoa(rand.Intn(ops))
}
