// Package commitlog implements L4, the linear-parent commit model from
// spec.md §4.4: a commit is a tree oid, an optional parent oid, and a
// free-form message, and history is a singly-linked list of commits
// walked backwards through parent edges.
//
// Grounded on the teacher's commit package, which plays the same role
// for noms (a Commit struct pinning a value plus its parent set) though
// noms generalizes to a parent *set* for merges; spec.md explicitly
// restricts ugit to one parent, so this package follows spec.md rather
// than the teacher's generalization. The strict "parent <oid>" line
// grammar (rather than noms's more permissive parsing) follows
// spec.md §9's note that blindly taking the last whitespace-separated
// token of the second line is a bug, not a feature, to port forward.
package commitlog

import (
	"bytes"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/objstore"
	"github.com/attic-labs/ugit/ugiterr"
)

// Commit is the decoded form of a commit object's payload.
type Commit struct {
	Tree    hash.ObjectID
	Parent  *hash.ObjectID // nil if this is the root commit
	Message []byte
}

// Encode renders c per spec.md §3's grammar:
//
//	tree <oid>\n
//	(parent <oid>\n)?
//	\n
//	<message bytes...>
//
// Message bytes are written verbatim; Encode does not trim them.
func Encode(c Commit) []byte {
	var buf bytes.Buffer
	buf.WriteString("tree ")
	buf.WriteString(c.Tree.String())
	buf.WriteByte('\n')
	if c.Parent != nil {
		buf.WriteString("parent ")
		buf.WriteString(c.Parent.String())
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(c.Message)
	return buf.Bytes()
}

// Decode parses a commit object's payload per the grammar above,
// rejecting any second header line that isn't exactly "parent <oid>"
// rather than heuristically taking its last token.
func Decode(payload []byte) (Commit, error) {
	treeLine, rest, ok := cutLine(payload)
	if !ok {
		return Commit{}, ugiterr.New(ugiterr.Corrupt, "commit: missing tree line")
	}
	treeFields := bytes.Fields(treeLine)
	if len(treeFields) < 2 || string(treeFields[0]) != "tree" {
		return Commit{}, ugiterr.New(ugiterr.Corrupt, "commit: first line must be \"tree <oid>\", got %q", treeLine)
	}
	treeOID, err := hash.FromHex(string(treeFields[len(treeFields)-1]))
	if err != nil {
		return Commit{}, ugiterr.Wrap(ugiterr.Corrupt, err, "commit: invalid tree oid in %q", treeLine)
	}

	secondLine, rest, ok := cutLine(rest)
	if !ok {
		return Commit{}, ugiterr.New(ugiterr.Corrupt, "commit: missing blank separator line")
	}

	var parent *hash.ObjectID
	if len(secondLine) != 0 {
		fields := bytes.Fields(secondLine)
		if len(fields) != 2 || string(fields[0]) != "parent" {
			return Commit{}, ugiterr.New(ugiterr.Corrupt, "commit: second header line must be \"parent <oid>\", got %q", secondLine)
		}
		pid, err := hash.FromHex(string(fields[1]))
		if err != nil {
			return Commit{}, ugiterr.Wrap(ugiterr.Corrupt, err, "commit: invalid parent oid in %q", secondLine)
		}
		parent = &pid

		blank, rest2, ok := cutLine(rest)
		if !ok || len(blank) != 0 {
			return Commit{}, ugiterr.New(ugiterr.Corrupt, "commit: missing blank separator line after parent")
		}
		rest = rest2
	}

	return Commit{Tree: treeOID, Parent: parent, Message: rest}, nil
}

// cutLine splits payload at the first '\n', returning the line (sans
// newline) and the remainder. ok is false if there is no '\n' at all.
func cutLine(payload []byte) (line, rest []byte, ok bool) {
	idx := bytes.IndexByte(payload, '\n')
	if idx < 0 {
		return nil, nil, false
	}
	return payload[:idx], payload[idx+1:], true
}

// Put builds and stores a commit object, returning its ObjectID. This
// is a thin encode+store wrapper; advancing HEAD is L6's job
// (repo.Commit), not this package's.
func Put(store *objstore.Store, c Commit) (hash.ObjectID, error) {
	return store.Put(objstore.KindCommit, Encode(c))
}

// Get loads and decodes the commit named oid.
func Get(store *objstore.Store, oid hash.ObjectID) (Commit, error) {
	payload, err := store.Get(oid, objstore.KindCommit)
	if err != nil {
		return Commit{}, err
	}
	c, err := Decode(payload)
	if err != nil {
		return Commit{}, errWithOID(err, oid)
	}
	return c, nil
}

func errWithOID(err error, oid hash.ObjectID) error {
	return ugiterr.Wrap(ugiterr.Corrupt, err, "commit %s", oid)
}

// CommitsAndParents performs a depth-first traversal from seeds
// following parent edges, yielding each commit the first time it is
// visited. The parent graph is acyclic by construction (a parent must
// already exist when its child is written), so this always terminates.
func CommitsAndParents(store *objstore.Store, seeds []hash.ObjectID) ([]hash.ObjectID, error) {
	visited := map[hash.ObjectID]bool{}
	var order []hash.ObjectID

	var visit func(oid hash.ObjectID) error
	visit = func(oid hash.ObjectID) error {
		if oid.IsEmpty() || visited[oid] {
			return nil
		}
		visited[oid] = true
		order = append(order, oid)

		c, err := Get(store, oid)
		if err != nil {
			return err
		}
		if c.Parent != nil {
			return visit(*c.Parent)
		}
		return nil
	}

	for _, seed := range seeds {
		if err := visit(seed); err != nil {
			return nil, err
		}
	}
	return order, nil
}
