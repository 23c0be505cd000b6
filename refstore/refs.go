// Package refstore implements L2, the named-pointer layer from
// spec.md §4.2: direct refs hold a raw ObjectID, symbolic refs hold
// "ref: <other-ref-name>" and resolve transitively.
//
// Grounded on the teacher's dataset package, which plays the same role
// for noms (a Dataset is a named, mutable pointer into the commit
// graph) and on its config package's alias-resolution for the general
// shape of "read a small text file, follow an indirection". The
// single repo-level advisory lock spec.md §5 explicitly permits is
// implemented with github.com/juju/fslock, a teacher dependency.
package refstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/fslock"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/ugiterr"
)

// HeadName is the distinguished ref identifying the current commit or
// branch.
const HeadName = "HEAD"

const symbolicPrefix = "ref: "

// maxHops bounds symbolic-ref resolution, per spec.md §4.2's invariant
// that cycles must be detected or limited.
const maxHops = 8

// Value is the result of resolving a ref.
type Value struct {
	// Symbolic is true when the ref (after however many hops the
	// caller asked to deref) still points at another ref rather than
	// at a concrete ObjectID.
	Symbolic bool
	// OID is the resolved ObjectID. Zero value when Symbolic is true.
	OID hash.ObjectID
	// Target is the ref name pointed to, when Symbolic is true.
	Target string
}

// Store owns every file under "<repo>/refs/..." plus "<repo>/HEAD".
type Store struct {
	root string // repository root, i.e. the directory containing HEAD and refs/
	lock *fslock.Lock
}

// New returns a Store rooted at root (the ".ugit" directory).
func New(root string) *Store {
	return &Store{root: root, lock: fslock.New(filepath.Join(root, "refs.lock"))}
}

// UpdateRef writes a direct ref whose value is oid. If deref is true and
// name resolves through a chain of symbolic refs, the final name in
// that chain is the one actually written — so committing through a
// symbolic HEAD advances the branch it points to, not HEAD itself.
func (s *Store) UpdateRef(name string, oid hash.ObjectID, deref bool) error {
	if err := s.withLock(func() error {
		target := name
		if deref {
			resolved, err := s.resolveName(name)
			if err != nil {
				return err
			}
			target = resolved
		}
		return s.writeRaw(target, oid.String())
	}); err != nil {
		return err
	}
	return nil
}

// UpdateSymbolicRef writes name as a symbolic ref pointing at target,
// without following any existing indirection (deref is never implied
// for the write of the symbolic pointer itself).
func (s *Store) UpdateSymbolicRef(name, target string) error {
	return s.withLock(func() error {
		return s.writeRaw(name, symbolicPrefix+target)
	})
}

// GetRef reads name. It returns (nil, nil) if no file exists there. If
// the stored line is symbolic and deref is true, GetRef follows the
// chain (bounded by maxHops) and returns the final resolved Value;
// otherwise it returns the immediate content of name.
func (s *Store) GetRef(name string, deref bool) (*Value, error) {
	line, ok, err := s.readRaw(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	if target, isSymbolic := parseSymbolic(line); isSymbolic {
		if !deref {
			return &Value{Symbolic: true, Target: target}, nil
		}
		oid, found, err := s.followSymbolic(target, 1)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return &Value{OID: oid}, nil
	}

	oid, err := hash.FromHex(line)
	if err != nil {
		return nil, ugiterr.Wrap(ugiterr.Corrupt, err, "ref %s has non-hex contents %q", name, line)
	}
	return &Value{OID: oid}, nil
}

// resolveName follows name to the final ref name in its symbolic chain,
// used internally by UpdateRef(deref=true) to find which underlying ref
// file to write. Unlike GetRef it returns the *name* of the final ref
// in the chain (not its value), so the direct-ref write case ("HEAD"
// itself holds an oid) still resolves to "HEAD". A chain that ends at a
// ref file which does not exist yet resolves to that name too — per
// spec.md §4.2, that name is precisely the one a deref'd write should
// create (e.g. the first commit on a fresh repo creates
// refs/heads/main, rather than overwriting the symbolic HEAD itself).
func (s *Store) resolveName(name string) (string, error) {
	seen := name
	for hop := 0; hop < maxHops; hop++ {
		line, ok, err := s.readRaw(seen)
		if err != nil {
			return "", err
		}
		if !ok {
			return seen, nil
		}
		target, isSymbolic := parseSymbolic(line)
		if !isSymbolic {
			return seen, nil
		}
		seen = target
	}
	return "", ugiterr.New(ugiterr.Corrupt, "ref %s: symbolic chain exceeds %d hops", name, maxHops)
}

// followSymbolic resolves target (and any further symbolic hops) to a
// concrete ObjectID. found is false, with no error, when the chain ends
// at a ref file that does not exist yet — per spec.md §4.2, get_ref
// recurses through symbolic indirection and yields None rather than an
// error when the terminal ref is simply absent (e.g. HEAD -> refs/heads/main
// before the first commit exists).
func (s *Store) followSymbolic(target string, hop int) (hash.ObjectID, bool, error) {
	if hop >= maxHops {
		return hash.ObjectID{}, false, ugiterr.New(ugiterr.Corrupt, "ref %s: symbolic chain exceeds %d hops", target, maxHops)
	}
	line, ok, err := s.readRaw(target)
	if err != nil {
		return hash.ObjectID{}, false, err
	}
	if !ok {
		return hash.ObjectID{}, false, nil
	}
	if next, isSymbolic := parseSymbolic(line); isSymbolic {
		return s.followSymbolic(next, hop+1)
	}
	resolved, err := hash.FromHex(line)
	if err != nil {
		return hash.ObjectID{}, false, ugiterr.Wrap(ugiterr.Corrupt, err, "ref %s has non-hex contents %q", target, line)
	}
	return resolved, true, nil
}

// RefAndValue pairs a rooted ref name with its resolved Value, as
// yielded by IterRefs.
type RefAndValue struct {
	Name  string
	Value Value
}

// IterRefs yields HEAD plus every file under "<repo>/refs/...", each
// read as stored without following symbolic refs (matching
// GetRef(deref=false) semantics) so symbolic HEAD shows up as symbolic. Names are rooted
// relative paths, e.g. "refs/heads/main".
func (s *Store) IterRefs() ([]RefAndValue, error) {
	var out []RefAndValue

	if v, err := s.GetRef(HeadName, false); err != nil {
		return nil, err
	} else if v != nil {
		out = append(out, RefAndValue{Name: HeadName, Value: *v})
	}

	refsDir := filepath.Join(s.root, "refs")
	err := filepath.Walk(refsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == refsDir {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		v, err := s.GetRef(name, false)
		if err != nil {
			return err
		}
		if v != nil {
			out = append(out, RefAndValue{Name: name, Value: *v})
		}
		return nil
	})
	if err != nil {
		return nil, ugiterr.Wrap(ugiterr.IoError, err, "listing refs under %s", refsDir)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) writeRaw(name, content string) error {
	path := s.pathFor(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ugiterr.Wrap(ugiterr.IoError, err, "creating directory for ref %s", name)
	}
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		return ugiterr.Wrap(ugiterr.IoError, err, "writing ref %s", name)
	}
	return nil
}

func (s *Store) readRaw(name string) (content string, ok bool, err error) {
	path := s.pathFor(name)
	raw, readErr := ioutil.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return "", false, nil
		}
		return "", false, ugiterr.Wrap(ugiterr.IoError, readErr, "reading ref %s", name)
	}
	line := strings.SplitN(string(raw), "\n", 2)[0]
	return strings.TrimRight(line, "\r"), true, nil
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func parseSymbolic(line string) (target string, ok bool) {
	if strings.HasPrefix(line, symbolicPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(line, symbolicPrefix)), true
	}
	return "", false
}

// withLock serializes ref mutations across processes using the
// advisory lock spec.md §5 allows. Lock acquisition failure degrades to
// running unlocked rather than failing the operation outright — the
// lock is best-effort, not a correctness requirement.
func (s *Store) withLock(f func() error) error {
	if err := s.lock.TryLock(); err == nil {
		defer s.lock.Unlock()
	}
	return f()
}
