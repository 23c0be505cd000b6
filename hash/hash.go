// Package hash implements the ObjectID type used throughout ugit: a
// 40-character lowercase-hex rendering of a SHA-1 digest. It is the one
// place in the engine allowed to know that the underlying algorithm is
// SHA-1; every other package treats an ObjectID as an opaque, comparable
// string.
//
// The teacher codebase (noms) keeps an analogous invariant in its own
// hash package (Hash.String/Parse/MaybeParse/Less), but prefixes
// renderings with an algorithm tag ("sha1-..."). ugit's on-disk format
// is plain 40-hex, git-style, so that prefix is dropped here.
package hash

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Size is the number of raw bytes in a SHA-1 digest.
const Size = sha1.Size

// StringLen is the length of an ObjectID's hex rendering.
const StringLen = Size * 2

// ObjectID is a 40-character lowercase-hex SHA-1 digest. The zero value
// is the empty (all-zero) id; it never denotes a real stored object.
type ObjectID [Size]byte

// Empty is the zero ObjectID.
var Empty ObjectID

// Sum hashes data and returns its ObjectID. Callers in objstore pass the
// full "<kind>\x00<payload>" byte sequence described in spec.md §3.
//
// Earlier drafts of this engine rendered digest bytes with a debug
// formatter (Rust's "{:x?}"), which drops the leading zero on bytes
// below 0x10 and leaves stray quote characters in the output — see
// spec.md §9 for the postmortem. ObjectID.String always goes through
// encoding/hex, which pads every byte to exactly two digits, so that
// bug cannot recur here.
func Sum(data []byte) ObjectID {
	return ObjectID(sha1.Sum(data))
}

// FromHex parses a 40-character lowercase-hex string into an ObjectID.
func FromHex(s string) (ObjectID, error) {
	if len(s) != StringLen {
		return ObjectID{}, errors.Errorf("object id must be %d hex characters, got %d", StringLen, len(s))
	}
	var id ObjectID
	n, err := hex.Decode(id[:], []byte(s))
	if err != nil {
		return ObjectID{}, errors.Wrapf(err, "invalid object id %q", s)
	}
	if n != Size {
		return ObjectID{}, errors.Errorf("invalid object id %q", s)
	}
	// hex.Decode accepts uppercase; ugit ids are always lowercase on disk.
	for _, c := range s {
		if c >= 'A' && c <= 'F' {
			return ObjectID{}, errors.Errorf("invalid object id %q: must be lowercase", s)
		}
	}
	return id, nil
}

// MaybeFromHex is FromHex without the error: ok is false for anything
// that isn't a well-formed 40-lowercase-hex string.
func MaybeFromHex(s string) (id ObjectID, ok bool) {
	id, err := FromHex(s)
	return id, err == nil
}

// IsHex reports whether s has the shape of an ObjectID (used by the name
// resolver to decide whether a literal-oid interpretation is even
// plausible, per spec.md §4.5 step 3).
func IsHex(s string) bool {
	_, ok := MaybeFromHex(s)
	return ok
}

// String renders the ObjectID as 40 lowercase hex characters, preserving
// leading zeros.
func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// IsEmpty reports whether id is the zero ObjectID.
func (id ObjectID) IsEmpty() bool {
	return id == Empty
}

// Less orders ObjectIDs by their raw bytes.
func (id ObjectID) Less(other ObjectID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}
