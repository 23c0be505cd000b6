// Package objstore implements L1, the content-addressed object store
// described by spec.md §4.1: Put hashes "<kind>\x00<payload>" and writes
// it verbatim to objects/<hex40>; Get reads it back and enforces the
// caller's expected kind.
//
// Grounded on the teacher's chunks package (ChunkStore's Put/Get/Has
// over a content hash, MemoryStore's in-process variant for tests) and
// on felixge-can's DirRepo.write, which establishes the write-to-temp,
// rename-into-place idiom this package reuses for Put (Put does not
// fsync the temp file before the rename).
package objstore

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/ugiterr"
)

// Kind is one of the three closed object kinds from spec.md §3.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

func (k Kind) valid() bool {
	switch k {
	case KindBlob, KindTree, KindCommit:
		return true
	default:
		return false
	}
}

// ObjectsDirName is the store's subdirectory under the repository root.
const ObjectsDirName = "objects"

// Store is a content-addressed byte-blob store keyed by
// sha1(kind ‖ 0x00 ‖ payload), rendered as 40 lowercase hex characters.
type Store struct {
	dir string
}

// New returns a Store rooted at dir (typically "<repo>/objects"). dir is
// not created; call Init first.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// ObjectsDir returns the directory this store reads and writes.
func (s *Store) ObjectsDir() string {
	return s.dir
}

// Init creates the objects directory if it does not already exist.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return ugiterr.Wrap(ugiterr.IoError, err, "creating object store at %s", s.dir)
	}
	return nil
}

// Put stores payload under kind and returns its ObjectID. Put is
// idempotent: writing the same (kind, payload) pair twice is a no-op
// after the first write, because the resulting bytes and path are
// identical by construction.
func (s *Store) Put(kind Kind, payload []byte) (hash.ObjectID, error) {
	if !kind.valid() {
		return hash.ObjectID{}, ugiterr.New(ugiterr.InvalidInput, "unknown object kind %q", kind)
	}

	header := append([]byte(kind), 0x00)
	full := make([]byte, 0, len(header)+len(payload))
	full = append(full, header...)
	full = append(full, payload...)

	id := hash.Sum(full)
	path := s.path(id)

	if _, err := os.Stat(path); err == nil {
		// Already present; content-addressed, so the bytes can only
		// agree. Nothing further to do.
		return id, nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return hash.ObjectID{}, ugiterr.Wrap(ugiterr.IoError, err, "creating object store at %s", s.dir)
	}

	tmpPath := filepath.Join(s.dir, "tmp-"+uuid.New().String())
	if err := ioutil.WriteFile(tmpPath, full, 0644); err != nil {
		return hash.ObjectID{}, ugiterr.Wrap(ugiterr.IoError, err, "writing object %s", id)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return hash.ObjectID{}, ugiterr.Wrap(ugiterr.IoError, err, "finalizing object %s", id)
	}
	return id, nil
}

// Get reads the object named by id, verifies it is of kind expectedKind,
// and returns its payload.
func (s *Store) Get(id hash.ObjectID, expectedKind Kind) ([]byte, error) {
	path := s.path(id)
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ugiterr.New(ugiterr.NotFound, "object %s", id)
		}
		return nil, ugiterr.Wrap(ugiterr.IoError, err, "reading object %s", id)
	}

	idx := bytes.IndexByte(raw, 0x00)
	if idx < 0 {
		return nil, ugiterr.New(ugiterr.Corrupt, "object %s: missing NUL header separator", id)
	}
	kind := Kind(raw[:idx])
	if !kind.valid() {
		return nil, ugiterr.New(ugiterr.Corrupt, "object %s: unrecognized kind %q", id, raw[:idx])
	}
	if kind != expectedKind {
		return nil, ugiterr.New(ugiterr.Corrupt, "object %s: expected kind %s, got %s", id, expectedKind, kind)
	}
	return raw[idx+1:], nil
}

// Has reports whether an object with the given id is present, without
// decoding it.
func (s *Store) Has(id hash.ObjectID) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// RawKindAndPayload reads the object named by id and splits it into its
// kind tag and payload without asserting an expected kind. Used by
// fsck, which must be able to inspect objects regardless of what they
// claim to be.
func (s *Store) RawKindAndPayload(id hash.ObjectID) (Kind, []byte, error) {
	path := s.path(id)
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ugiterr.New(ugiterr.NotFound, "object %s", id)
		}
		return "", nil, ugiterr.Wrap(ugiterr.IoError, err, "reading object %s", id)
	}
	idx := bytes.IndexByte(raw, 0x00)
	if idx < 0 {
		return "", nil, ugiterr.New(ugiterr.Corrupt, "object %s: missing NUL header separator", id)
	}
	return Kind(raw[:idx]), raw[idx+1:], nil
}

// IDs lists every ObjectID currently present in the store, in no
// particular order. Used by fsck.
func (s *Store) IDs() ([]hash.ObjectID, error) {
	entries, err := ioutil.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ugiterr.Wrap(ugiterr.IoError, err, "listing object store at %s", s.dir)
	}
	ids := make([]hash.ObjectID, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := hash.MaybeFromHex(e.Name())
		if !ok {
			continue // tmp-* write-in-progress files, stray files, etc.
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) path(id hash.ObjectID) string {
	return filepath.Join(s.dir, id.String())
}
