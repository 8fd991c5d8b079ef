// Package btree implements the paged B-tree engine: search, top-down
// pre-emptive-split insertion, and root growth, per spec.md §4.4.
//
// The algorithm (minimum degree t=3, CLRS-style pre-emptive split) is
// grounded directly on original_source/src/main.rs's split_child/
// insert_non_full/set, which implements exactly this shape. The Go
// idiom — methods on an Engine that load a node via the pager, mutate
// it in memory, and persist before recursing into a child offset — is
// grounded on the teacher's dbms/index/btree.BTree (insertNode/
// insertLeaf/insertInternal/splitLeaf/splitInternal).
package btree

import (
	"rdbx/internal/metrics"
	"rdbx/internal/node"
	"rdbx/internal/pager"
)

const (
	// T is the B-tree's minimum degree. Every non-root node holds
	// between T-1 and 2T-1 keys.
	T = 3
	// MaxKeys is the key count that forces a pre-emptive split.
	MaxKeys = 2*T - 1
	// MinKeys is the minimum key count for any non-root node.
	MinKeys = T - 1
)

// Engine drives B-tree search and insertion through a shared pager.
type Engine struct {
	pager *pager.Pager
}

// New returns an Engine backed by p.
func New(p *pager.Pager) *Engine {
	return &Engine{pager: p}
}

// Search walks the tree rooted at rootOffset looking for key. It
// returns the matching data offset and true, or false if key is absent.
func (e *Engine) Search(rootOffset uint64, key string) (uint64, bool, error) {
	offset := rootOffset
	for {
		n, err := node.Load(e.pager, offset)
		if err != nil {
			return 0, false, err
		}
		i := lowerBound(n.Keys, key)
		if i < len(n.Keys) && n.Keys[i] == key {
			return n.DataOffsets[i], true, nil
		}
		if n.IsLeaf {
			return 0, false, nil
		}
		offset = n.Children[i]
	}
}

// Insert adds (key, dataOffset) to the tree rooted at rootOffset,
// pre-emptively splitting the root if it is already full, and returns
// the (possibly new) root offset the caller must persist in the header.
func (e *Engine) Insert(rootOffset uint64, key string, dataOffset uint64) (uint64, error) {
	root, err := node.Load(e.pager, rootOffset)
	if err != nil {
		return 0, err
	}

	if len(root.Keys) != MaxKeys {
		if err := e.insertNonFull(rootOffset, key, dataOffset); err != nil {
			return 0, err
		}
		return rootOffset, nil
	}

	newRootOffset, err := e.pager.Allocate()
	if err != nil {
		return 0, err
	}
	newRoot := node.NewInternal(newRootOffset, rootOffset)
	// Reserve the new root's page immediately, before SplitChild writes
	// into it, per the allocation contract (spec.md §9).
	if err := node.Save(e.pager, newRoot); err != nil {
		return 0, err
	}

	if err := e.splitChild(newRoot, 0); err != nil {
		return 0, err
	}
	if err := e.insertNonFull(newRootOffset, key, dataOffset); err != nil {
		return 0, err
	}
	return newRootOffset, nil
}

// insertNonFull inserts into the subtree rooted at nodeOffset, which is
// guaranteed not to be full on entry.
func (e *Engine) insertNonFull(nodeOffset uint64, key string, dataOffset uint64) error {
	n, err := node.Load(e.pager, nodeOffset)
	if err != nil {
		return err
	}

	if n.IsLeaf {
		i := lowerBound(n.Keys, key)
		if i < len(n.Keys) && n.Keys[i] == key {
			// Reference duplicate-key policy: overwrite in place.
			n.DataOffsets[i] = dataOffset
			return node.Save(e.pager, n)
		}
		insertAt(&n.Keys, i, key)
		insertUint64At(&n.DataOffsets, i, dataOffset)
		return node.Save(e.pager, n)
	}

	i := lowerBound(n.Keys, key)
	if i < len(n.Keys) && n.Keys[i] == key {
		// A prior split promoted this key into an internal node; honor
		// the overwrite-in-place policy here too, or the stale data
		// offset left behind by the split would shadow any later SET.
		n.DataOffsets[i] = dataOffset
		return node.Save(e.pager, n)
	}

	child, err := node.Load(e.pager, n.Children[i])
	if err != nil {
		return err
	}
	if len(child.Keys) == MaxKeys {
		if err := e.splitChild(n, i); err != nil {
			return err
		}
		if key == n.Keys[i] {
			// The split just promoted this very key into n.
			n.DataOffsets[i] = dataOffset
			return node.Save(e.pager, n)
		}
		if key > n.Keys[i] {
			i++
		}
	}
	return e.insertNonFull(n.Children[i], key, dataOffset)
}

// splitChild splits the full child at parent.Children[i] into two nodes,
// promoting the median key into parent at position i.
func (e *Engine) splitChild(parent *node.Node, i int) error {
	child, err := node.Load(e.pager, parent.Children[i])
	if err != nil {
		return err
	}

	rightOffset, err := e.pager.Allocate()
	if err != nil {
		return err
	}
	right := &node.Node{Offset: rightOffset, IsLeaf: child.IsLeaf}
	right.Keys = append(right.Keys, child.Keys[T:]...)
	right.DataOffsets = append(right.DataOffsets, child.DataOffsets[T:]...)
	if !child.IsLeaf {
		right.Children = append(right.Children, child.Children[T:]...)
	}

	medianKey := child.Keys[T-1]
	medianData := child.DataOffsets[T-1]
	child.Keys = child.Keys[:T-1]
	child.DataOffsets = child.DataOffsets[:T-1]
	if !child.IsLeaf {
		child.Children = child.Children[:T]
	}

	insertAt(&parent.Keys, i, medianKey)
	insertUint64At(&parent.DataOffsets, i, medianData)
	insertUint64At(&parent.Children, i+1, right.Offset)

	if err := node.Save(e.pager, child); err != nil {
		return err
	}
	if err := node.Save(e.pager, right); err != nil {
		return err
	}
	if err := node.Save(e.pager, parent); err != nil {
		return err
	}
	metrics.SplitsTotal.Inc()
	return nil
}

// lowerBound returns the smallest index i such that key <= keys[i], or
// len(keys) if key is greater than every entry.
func lowerBound(keys []string, key string) int {
	i := 0
	for i < len(keys) && key > keys[i] {
		i++
	}
	return i
}

func insertAt(s *[]string, i int, v string) {
	*s = append(*s, "")
	copy((*s)[i+1:], (*s)[i:len(*s)-1])
	(*s)[i] = v
}

func insertUint64At(s *[]uint64, i int, v uint64) {
	*s = append(*s, 0)
	copy((*s)[i+1:], (*s)[i:len(*s)-1])
	(*s)[i] = v
}
