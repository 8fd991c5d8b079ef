// Package valuelog implements the append-only value log that shares a
// file with the B-tree's node pages, per spec.md §3/§4.3.
//
// Record layout at a data offset D:
//
//	[0..4)   uint32 LE key length K
//	[4..8)   uint32 LE value length V
//	[8..8+K) key bytes
//	[8+K..)  value bytes
//
// The key is stored for recovery/debugging only; Read skips over it.
// Grounded on the teacher's dbms/index/btree.appendValue/readValue
// (append at a tracked end-of-file offset, read back with an explicit
// length), adapted to also persist the key and to share the B-tree's
// own file instead of a side value-heap file.
package valuelog

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

const lengthPrefixSize = 4 + 4 // key length + value length

// Append writes one length-prefixed (key, value) record at the current
// end of file and returns the offset it was written at.
func Append(file *os.File, key, value string) (uint64, error) {
	info, err := file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "valuelog: stat")
	}
	offset := info.Size()

	kb, vb := []byte(key), []byte(value)
	buf := make([]byte, lengthPrefixSize+len(kb)+len(vb))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(kb)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(vb)))
	copy(buf[8:8+len(kb)], kb)
	copy(buf[8+len(kb):], vb)

	if _, err := file.WriteAt(buf, offset); err != nil {
		return 0, errors.Wrapf(err, "valuelog: append at %d", offset)
	}
	return uint64(offset), nil
}

// Read returns the value stored at the given data offset, skipping over
// the stored key.
func Read(file *os.File, offset uint64) (string, error) {
	var lens [lengthPrefixSize]byte
	if _, err := file.ReadAt(lens[:], int64(offset)); err != nil {
		return "", errors.Wrapf(err, "valuelog: read length prefix at %d", offset)
	}
	klen := binary.LittleEndian.Uint32(lens[0:4])
	vlen := binary.LittleEndian.Uint32(lens[4:8])

	val := make([]byte, vlen)
	if vlen > 0 {
		if _, err := file.ReadAt(val, int64(offset)+lengthPrefixSize+int64(klen)); err != nil && err != io.EOF {
			return "", errors.Wrapf(err, "valuelog: read value at %d", offset)
		}
	}
	return string(val), nil
}

// ReadKeyValue returns both the stored key and value at offset. It is
// not used by normal lookups; it exists for recovery and debugging, per
// spec.md §3.
func ReadKeyValue(file *os.File, offset uint64) (key, value string, err error) {
	var lens [lengthPrefixSize]byte
	if _, err := file.ReadAt(lens[:], int64(offset)); err != nil {
		return "", "", errors.Wrapf(err, "valuelog: read length prefix at %d", offset)
	}
	klen := binary.LittleEndian.Uint32(lens[0:4])
	vlen := binary.LittleEndian.Uint32(lens[4:8])

	rec := make([]byte, int(klen)+int(vlen))
	if len(rec) > 0 {
		if _, err := file.ReadAt(rec, int64(offset)+lengthPrefixSize); err != nil && err != io.EOF {
			return "", "", errors.Wrapf(err, "valuelog: read record at %d", offset)
		}
	}
	return string(rec[:klen]), string(rec[klen:]), nil
}
