// pebbleIndex wraps Pebble behind the same small kvIndex interface that
// rdbxIndex adapts rdbx's Database to, so both can be driven by the same
// workload loop.
//
// Grounded on the teacher's dbms/index/lsm.LSM, adapted from int64 keys
// with a binary-sortable encoding to rdbx's plain string keys (Pebble
// compares keys byte-wise already, so no encoding is needed here).
package main

import (
	"github.com/cockroachdb/pebble"
)

type pebbleIndex struct {
	db *pebble.DB
}

func openPebbleIndex(dir string) (*pebbleIndex, error) {
	opts := &pebble.Options{
		MemTableSize:                16 << 20,
		MemTableStopWritesThreshold: 4,
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, err
	}
	return &pebbleIndex{db: db}, nil
}

func (p *pebbleIndex) Set(key, value string) error {
	return p.db.Set([]byte(key), []byte(value), pebble.NoSync)
}

func (p *pebbleIndex) Get(key string) (string, bool, error) {
	val, closer, err := p.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer closer.Close()
	return string(val), true, nil
}

func (p *pebbleIndex) Close() error {
	return p.db.Close()
}
