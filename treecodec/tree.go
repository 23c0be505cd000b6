// Package treecodec implements L3, the recursive directory-tree
// serializer/deserializer from spec.md §4.3: write_tree walks a
// directory into a graph of blob/tree objects; tree_entries flattens
// that graph back into blob paths; read_tree empties the working
// directory and replays the blobs onto disk.
//
// Grounded on the directory-walk-into-objects shape of the teacher's
// chunks/commit packages (a "tree" here is just another object whose
// payload happens to reference other objects) and on the tree-entry
// line format used throughout the go-git-style examples in the
// reference pack (kind, oid, name, whitespace-delimited per line).
package treecodec

import (
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/objstore"
	"github.com/attic-labs/ugit/ugiterr"
)

// Entry is one line of a serialized tree: an object of Kind (blob or
// tree) named Name, found directly inside the tree being described.
type Entry struct {
	Kind objstore.Kind
	OID  hash.ObjectID
	Name string
}

// BlobEntry is one file discovered while flattening a tree, with its
// path relative to the tree's root (forward-slash separated, even on
// Windows).
type BlobEntry struct {
	OID  hash.ObjectID
	Path string
}

// IgnoreFunc decides whether a working-tree path should be skipped by
// both WriteTree and ReadTree.
type IgnoreFunc func(path string) bool

// NewIgnore returns an IgnoreFunc that skips any path containing
// repoDirName (the ".ugit" directory, per spec.md §4.3 step 1) as a
// substring — matching spec.md §8 scenario S6, which requires a stray
// ".ugit-prefixed" path to be excluded too, not just an exact ".ugit"
// path component — plus any of the caller-supplied glob patterns
// (sourced from config's `[ignore] patterns`).
func NewIgnore(repoDirName string, extraGlobs []string) IgnoreFunc {
	return func(p string) bool {
		if strings.Contains(filepath.ToSlash(p), repoDirName) {
			return true
		}
		base := filepath.Base(p)
		for _, g := range extraGlobs {
			if ok, _ := filepath.Match(g, base); ok {
				return true
			}
		}
		return false
	}
}

// WriteTree recursively serializes dir into a graph of blob and tree
// objects and returns the root tree's ObjectID.
func WriteTree(store *objstore.Store, dir string, ignore IgnoreFunc) (hash.ObjectID, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return hash.ObjectID{}, ugiterr.Wrap(ugiterr.IoError, err, "reading directory %s", dir)
	}

	var entries []Entry
	for _, info := range infos {
		full := filepath.Join(dir, info.Name())
		if ignore(full) {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if err := validateName(info.Name()); err != nil {
			return hash.ObjectID{}, err
		}

		if info.IsDir() {
			oid, err := WriteTree(store, full, ignore)
			if err != nil {
				return hash.ObjectID{}, err
			}
			entries = append(entries, Entry{Kind: objstore.KindTree, OID: oid, Name: info.Name()})
			continue
		}

		data, err := ioutil.ReadFile(full)
		if err != nil {
			return hash.ObjectID{}, ugiterr.Wrap(ugiterr.IoError, err, "reading file %s", full)
		}
		oid, err := store.Put(objstore.KindBlob, data)
		if err != nil {
			return hash.ObjectID{}, err
		}
		entries = append(entries, Entry{Kind: objstore.KindBlob, OID: oid, Name: info.Name()})
	}

	// Deterministic ordering, per spec.md §4.3's last bullet, so the
	// same working tree always serializes to the same tree oid.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	payload := encode(entries)
	return store.Put(objstore.KindTree, payload)
}

func encode(entries []Entry) []byte {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = string(e.Kind) + " " + e.OID.String() + " " + e.Name
	}
	return []byte(strings.Join(lines, "\n"))
}

func decode(payload []byte) ([]Entry, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(payload), "\n")
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, ugiterr.New(ugiterr.Corrupt, "malformed tree line %q", line)
		}
		oid, err := hash.FromHex(fields[1])
		if err != nil {
			return nil, ugiterr.Wrap(ugiterr.Corrupt, err, "malformed tree line %q", line)
		}
		entries = append(entries, Entry{Kind: objstore.Kind(fields[0]), OID: oid, Name: fields[2]})
	}
	return entries, nil
}

// DecodeEntries parses a tree object's payload into its immediate
// (non-recursive) entries. Exported for fsck, which needs to check
// referenced oids without expanding the whole subtree.
func DecodeEntries(payload []byte) ([]Entry, error) {
	return decode(payload)
}

// TreeEntries loads the tree object named oid and returns the flat list
// of blob entries reachable from it, each annotated with its path
// relative to the root. Nested trees are expanded in place; nested
// "commit" entries (reserved for future submodule-like references) are
// silently skipped, per spec.md §4.3.
func TreeEntries(store *objstore.Store, oid hash.ObjectID) ([]BlobEntry, error) {
	return treeEntries(store, oid, "")
}

func treeEntries(store *objstore.Store, oid hash.ObjectID, prefix string) ([]BlobEntry, error) {
	payload, err := store.Get(oid, objstore.KindTree)
	if err != nil {
		return nil, err
	}
	entries, err := decode(payload)
	if err != nil {
		return nil, err
	}

	var out []BlobEntry
	for _, e := range entries {
		p := path.Join(prefix, e.Name)
		switch e.Kind {
		case objstore.KindBlob:
			out = append(out, BlobEntry{OID: e.OID, Path: p})
		case objstore.KindTree:
			sub, err := treeEntries(store, e.OID, p)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		case objstore.KindCommit:
			// reserved for future submodule-like references.
		default:
			return nil, ugiterr.New(ugiterr.Corrupt, "tree %s: unknown entry kind %q", oid, e.Kind)
		}
	}
	return out, nil
}

// ReadTree empties root (recursively removing files and directories,
// except those ignore filters out and except symlinks), then writes
// every blob reachable from rootOID to its relative path under root.
func ReadTree(store *objstore.Store, root string, rootOID hash.ObjectID, ignore IgnoreFunc) error {
	if err := empty(root, ignore); err != nil {
		return err
	}

	entries, err := TreeEntries(store, rootOID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := store.Get(e.OID, objstore.KindBlob)
		if err != nil {
			return err
		}
		dest := filepath.Join(root, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return ugiterr.Wrap(ugiterr.IoError, err, "creating directory for %s", dest)
		}
		if err := ioutil.WriteFile(dest, data, 0644); err != nil {
			return ugiterr.Wrap(ugiterr.IoError, err, "writing %s", dest)
		}
	}
	return nil
}

func empty(dir string, ignore IgnoreFunc) error {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ugiterr.Wrap(ugiterr.IoError, err, "reading directory %s", dir)
	}
	for _, info := range infos {
		full := filepath.Join(dir, info.Name())
		if ignore(full) {
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if err := os.RemoveAll(full); err != nil {
			return ugiterr.Wrap(ugiterr.IoError, err, "removing %s", full)
		}
	}
	return nil
}

// validateName rejects tree-entry names the whitespace-delimited line
// format cannot represent, per spec.md §4.3's edge-case policy: reject
// at serialization time rather than produce ambiguous tree lines.
func validateName(name string) error {
	if name == "" {
		return ugiterr.New(ugiterr.InvalidInput, "empty file name")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || r == 0 {
			return ugiterr.New(ugiterr.InvalidInput, "file name %q contains whitespace or NUL, which the tree codec cannot represent", name)
		}
	}
	return nil
}
