// Package node implements the page codec: encoding and decoding a
// B-tree node to and from a single pager.Page, per spec.md §3/§4.1.
//
// Page layout:
//
//	[0]      leaf flag (1 = leaf, 0 = internal)
//	[1..3]   uint16 LE — number of keys, n
//	[3..]    forward region, one entry per key in order:
//	           uint32 LE key length
//	           uint64 LE data offset (pointer into the value region)
//	           key bytes
//	[tail]   backward region (internal nodes only): n+1 uint64 LE child
//	         page offsets, child i at P-8*(n+1-i) .. P-8*(n-i)
//
// Grounded on the teacher's dbms/index/btpage.page.go (a dedicated
// page-layout package with named byte offsets and get/set helpers) and
// on original_source/src/main.rs's BTreeNode::serialize/deserialize,
// which defines this exact byte layout.
package node

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"rdbx/internal/dberrors"
	"rdbx/internal/pager"
)

const (
	offLeafFlag = 0
	offNumKeys  = 1
	offEntries  = 3

	entryHeaderSize = 4 + 8 // key length + data offset
	childSize       = 8
)

// Node is the in-memory representation of one B-tree page. Offset is
// this node's own page offset; Children is empty for leaves and has
// len(Keys)+1 entries for internal nodes.
type Node struct {
	Offset      uint64
	IsLeaf      bool
	Keys        []string
	DataOffsets []uint64
	Children    []uint64
}

// NewLeaf returns an empty leaf node at the given page offset.
func NewLeaf(offset uint64) *Node {
	return &Node{Offset: offset, IsLeaf: true}
}

// NewInternal returns an internal node at the given page offset with a
// single child (used when growing the tree's height by one).
func NewInternal(offset uint64, firstChild uint64) *Node {
	return &Node{Offset: offset, IsLeaf: false, Children: []uint64{firstChild}}
}

// Encode serializes n into a page-sized buffer. Unused middle bytes are
// left zeroed. Fails with dberrors.ErrEncodeTooLarge if the packed keys
// would overlap the child-offset tail (or, for a leaf, overrun the page).
func Encode(n *Node) (*pager.Page, error) {
	pg := new(pager.Page)
	if n.IsLeaf {
		pg[offLeafFlag] = 1
	}
	binary.LittleEndian.PutUint16(pg[offNumKeys:offNumKeys+2], uint16(len(n.Keys)))

	cursor := offEntries
	for i, key := range n.Keys {
		kb := []byte(key)
		entryEnd := cursor + entryHeaderSize + len(kb)
		if entryEnd > pager.PageSize {
			return nil, errors.Wrapf(dberrors.ErrEncodeTooLarge, "key %q", key)
		}
		binary.LittleEndian.PutUint32(pg[cursor:cursor+4], uint32(len(kb)))
		binary.LittleEndian.PutUint64(pg[cursor+4:cursor+12], n.DataOffsets[i])
		copy(pg[cursor+entryHeaderSize:entryEnd], kb)
		cursor = entryEnd
	}

	if !n.IsLeaf {
		tailStart := childRegionStart(len(n.Keys))
		if cursor > tailStart {
			return nil, errors.Wrapf(dberrors.ErrEncodeTooLarge, "node at offset %d", n.Offset)
		}
		for i, child := range n.Children {
			off := tailStart + i*childSize
			binary.LittleEndian.PutUint64(pg[off:off+childSize], child)
		}
	} else if cursor > pager.PageSize {
		return nil, errors.Wrapf(dberrors.ErrEncodeTooLarge, "node at offset %d", n.Offset)
	}

	return pg, nil
}

// Decode deserializes the page at the given offset into a Node.
func Decode(offset uint64, pg *pager.Page) (*Node, error) {
	leafByte := pg[offLeafFlag]
	if leafByte != 0 && leafByte != 1 {
		return nil, errors.Wrapf(dberrors.ErrCorruptPage, "bad leaf flag %d at offset %d", leafByte, offset)
	}
	isLeaf := leafByte == 1
	n := int(binary.LittleEndian.Uint16(pg[offNumKeys : offNumKeys+2]))

	tailStart := pager.PageSize
	if !isLeaf {
		tailStart = childRegionStart(n)
		if tailStart < offEntries || tailStart > pager.PageSize {
			return nil, errors.Wrapf(dberrors.ErrCorruptPage, "child region out of bounds at offset %d", offset)
		}
	}

	keys := make([]string, 0, n)
	dataOffsets := make([]uint64, 0, n)
	cursor := offEntries
	for i := 0; i < n; i++ {
		if cursor+entryHeaderSize > tailStart {
			return nil, errors.Wrapf(dberrors.ErrCorruptPage, "entry %d header overruns tail at offset %d", i, offset)
		}
		klen := int(binary.LittleEndian.Uint32(pg[cursor : cursor+4]))
		doff := binary.LittleEndian.Uint64(pg[cursor+4 : cursor+12])
		cursor += entryHeaderSize
		if cursor+klen > tailStart {
			return nil, errors.Wrapf(dberrors.ErrCorruptPage, "entry %d key overruns tail at offset %d", i, offset)
		}
		kb := pg[cursor : cursor+klen]
		if !utf8.Valid(kb) {
			return nil, errors.Wrapf(dberrors.ErrCorruptPage, "entry %d key is not valid UTF-8 at offset %d", i, offset)
		}
		keys = append(keys, string(kb))
		dataOffsets = append(dataOffsets, doff)
		cursor += klen
	}

	var children []uint64
	if !isLeaf {
		children = make([]uint64, 0, n+1)
		for i := 0; i <= n; i++ {
			off := tailStart + i*childSize
			children = append(children, binary.LittleEndian.Uint64(pg[off:off+childSize]))
		}
	}

	return &Node{
		Offset:      offset,
		IsLeaf:      isLeaf,
		Keys:        keys,
		DataOffsets: dataOffsets,
		Children:    children,
	}, nil
}

// Load reads and decodes the node at the given page offset.
func Load(p *pager.Pager, offset uint64) (*Node, error) {
	pg, err := p.ReadAt(offset)
	if err != nil {
		return nil, err
	}
	return Decode(offset, pg)
}

// Save encodes and writes n at its own Offset.
func Save(p *pager.Pager, n *Node) error {
	pg, err := Encode(n)
	if err != nil {
		return err
	}
	return p.WriteAt(n.Offset, pg)
}

// childRegionStart returns the byte offset where the n+1 child pointers
// of an internal node with n keys begin.
func childRegionStart(n int) int {
	return pager.PageSize - childSize*(n+1)
}
