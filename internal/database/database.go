// Package database ties the pager, page codec, value log, and B-tree
// engine together into the Create/Open/Set/Get lifecycle of spec.md §5.
//
// Grounded on the teacher's dbms/index/btree.BTree, which owns a single
// *os.File plus a *pager.Pager and exposes Open/Insert/Search as the
// one entry point callers use — here split across Create/Open (file
// lifecycle) and Set/Get (the read/write path), each delegating to
// internal/btree.Engine and internal/valuelog for the actual work.
package database

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"rdbx/internal/btree"
	"rdbx/internal/dberrors"
	"rdbx/internal/metrics"
	"rdbx/internal/node"
	"rdbx/internal/pager"
	"rdbx/internal/valuelog"
)

// defaultCacheSize is the number of pages the pager keeps warm.
const defaultCacheSize = 256

// Database is one open rdbx file: a shared pager/file pair, the B-tree
// engine over it, and the current root page offset.
type Database struct {
	name   string
	pager  *pager.Pager
	engine *btree.Engine
	root   uint64
}

// Create makes a new, empty database file named name in dir and leaves
// it closed; call Open to start using it. It fails with
// dberrors.ErrAlreadyExists if the file is already present.
func Create(dir, name string) error {
	path := pathFor(dir, name)
	if _, err := os.Stat(path); err == nil {
		return errors.Wrapf(dberrors.ErrAlreadyExists, "database %q", name)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "database: stat %q", name)
	}

	p, err := pager.Open(path, defaultCacheSize)
	if err != nil {
		return err
	}
	defer p.Close()

	// Reserve page 0 for the header before allocating anything else, so
	// the root leaf lands at offset P (page 1) as spec.md §4.5 requires,
	// not at offset 0.
	if err := p.WriteHeader(0); err != nil {
		return err
	}
	rootOffset, err := p.Allocate()
	if err != nil {
		return err
	}
	if err := node.Save(p, node.NewLeaf(rootOffset)); err != nil {
		return err
	}
	return p.WriteHeader(rootOffset)
}

// Open opens an existing database file named name in dir. It fails with
// dberrors.ErrNotFound if the file is absent, or dberrors.ErrBadMagic if
// its header doesn't identify it as an rdbx file.
func Open(dir, name string) (*Database, error) {
	path := pathFor(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrapf(dberrors.ErrNotFound, "database %q", name)
	} else if err != nil {
		return nil, errors.Wrapf(err, "database: stat %q", name)
	}

	p, err := pager.Open(path, defaultCacheSize)
	if err != nil {
		return nil, err
	}
	root, err := p.ReadHeader()
	if err != nil {
		p.Close()
		return nil, err
	}

	return &Database{
		name:   name,
		pager:  p,
		engine: btree.New(p),
		root:   root,
	}, nil
}

// Close releases the database's file handle.
func (db *Database) Close() error {
	return db.pager.Close()
}

// Name returns the database's name, as passed to Create/Open.
func (db *Database) Name() string {
	return db.name
}

// Set stores value under key, appending it to the value log before
// inserting the pointer into the tree, and updates the on-disk root
// pointer only after every node write below it has landed — so a crash
// mid-insert leaves the header still pointing at the last-good root.
func (db *Database) Set(key, value string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("set", err, start) }()

	dataOffset, err := valuelog.Append(db.pager.File(), key, value)
	if err != nil {
		return err
	}

	newRoot, err := db.engine.Insert(db.root, key, dataOffset)
	if err != nil {
		return err
	}
	if newRoot != db.root {
		if err := db.pager.UpdateRootPointer(newRoot); err != nil {
			return err
		}
		db.root = newRoot
	}
	metrics.SetsTotal.Inc()
	return nil
}

// Get looks up key and returns its value. If key is absent it returns
// ("", dberrors.ErrKeyAbsent) — callers should use dberrors.IsKeyAbsent
// to distinguish that from a real failure.
func (db *Database) Get(key string) (value string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOp("get", err, start) }()

	dataOffset, found, err := db.engine.Search(db.root, key)
	if err != nil {
		return "", err
	}
	if !found {
		metrics.GetsTotal.Inc()
		return "", dberrors.ErrKeyAbsent
	}
	value, err = valuelog.Read(db.pager.File(), dataOffset)
	if err != nil {
		return "", err
	}
	metrics.GetsTotal.Inc()
	return value, nil
}

func pathFor(dir, name string) string {
	if dir == "" {
		return name + ".db"
	}
	return dir + "/" + name + ".db"
}
