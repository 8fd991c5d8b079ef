// Package dberrors classifies the failures the core engine can produce,
// per spec.md §7. Errors are sentinel values so callers can match them
// with errors.Is even after they have been wrapped with file/offset
// context; cockroachdb/errors gives every wrap a stack trace, which is
// useful when an I/O failure leaves an orphan value-log record behind.
// I/O failures have no sentinel of their own: they reach callers as the
// underlying os error, wrapped with context.
package dberrors

import "github.com/cockroachdb/errors"

var (
	// ErrAlreadyExists is returned by Create when the named database
	// file already exists.
	ErrAlreadyExists = errors.New("database already exists")

	// ErrNotFound is returned by Open/Use when the named database file
	// is absent.
	ErrNotFound = errors.New("database not found")

	// ErrBadMagic is returned when a file's header does not begin with
	// the RDBX magic.
	ErrBadMagic = errors.New("bad magic: not an rdbx database file")

	// ErrCorruptPage is returned by the page codec when a page cannot
	// be decoded into a well-formed node.
	ErrCorruptPage = errors.New("corrupt page")

	// ErrEncodeTooLarge is returned when a node's packed keys would
	// overlap its child-offset tail.
	ErrEncodeTooLarge = errors.New("key too large to fit in a page")

	// ErrNoActiveDatabase is reported by the command facade's SET/GET
	// when no database has been selected with USE.
	ErrNoActiveDatabase = errors.New("no active database")

	// ErrKeyAbsent is a normal, non-fatal result: Get found no entry for
	// the requested key.
	ErrKeyAbsent = errors.New("key not found")
)

// IsKeyAbsent reports whether err is (or wraps) ErrKeyAbsent — the one
// error kind in spec.md §7 that the facade renders as "(nil)" rather
// than "Error: ...".
func IsKeyAbsent(err error) bool {
	return errors.Is(err, ErrKeyAbsent)
}
