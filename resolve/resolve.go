// Package resolve implements L5, the unified name-to-ObjectID lookup
// from spec.md §4.5: every user-facing oid-like argument routes through
// GetOID, which tries "@" rewriting, four ref-name shapes in order, and
// finally a literal 40-hex interpretation.
//
// Grounded on the teacher's spec package (spec.GetDataset and its
// alias/path resolution for noms dataset names), generalized down to
// ugit's simpler single-string name space.
package resolve

import (
	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/refstore"
	"github.com/attic-labs/ugit/ugiterr"
)

// GetOID resolves name to an ObjectID, trying each interpretation from
// spec.md §4.5 in order and returning the first hit.
func GetOID(refs *refstore.Store, name string) (hash.ObjectID, error) {
	if name == "@" {
		name = refstore.HeadName
	}

	for _, candidate := range refCandidates(name) {
		v, err := refs.GetRef(candidate, true)
		if err != nil {
			return hash.ObjectID{}, err
		}
		if v != nil {
			return v.OID, nil
		}
	}

	if id, ok := hash.MaybeFromHex(name); ok {
		return id, nil
	}

	return hash.ObjectID{}, ugiterr.New(ugiterr.UnknownName, "unknown name %q", name)
}

func refCandidates(name string) []string {
	return []string{
		name,
		"refs/" + name,
		"refs/tags/" + name,
		"refs/heads/" + name,
	}
}
