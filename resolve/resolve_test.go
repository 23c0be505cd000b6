package resolve

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/refstore"
	"github.com/attic-labs/ugit/ugiterr"
)

func newTestRefs(t *testing.T) *refstore.Store {
	dir, err := ioutil.TempDir("", "ugit-refs")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return refstore.New(dir)
}

func someID(b byte) hash.ObjectID {
	var id hash.ObjectID
	id[0] = b
	return id
}

func TestAtSignResolvesToHead(t *testing.T) {
	refs := newTestRefs(t)
	id := someID(1)
	require.NoError(t, refs.UpdateRef(refstore.HeadName, id, true))

	got, err := GetOID(refs, "@")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestRefShadowsLiteralOID(t *testing.T) {
	// spec.md §8 property 7: a ref whose name is itself a valid 40-hex
	// oid still resolves through ref lookup first.
	refs := newTestRefs(t)
	shadowed := someID(1)
	name := someID(9).String()
	require.NoError(t, refs.UpdateRef(name, shadowed, false))

	got, err := GetOID(refs, name)
	require.NoError(t, err)
	assert.Equal(t, shadowed, got)
}

func TestBranchAndTagShorthand(t *testing.T) {
	refs := newTestRefs(t)
	branchID := someID(2)
	tagID := someID(3)
	require.NoError(t, refs.UpdateRef("refs/heads/main", branchID, false))
	require.NoError(t, refs.UpdateRef("refs/tags/v1", tagID, false))

	got, err := GetOID(refs, "main")
	require.NoError(t, err)
	assert.Equal(t, branchID, got)

	got, err = GetOID(refs, "v1")
	require.NoError(t, err)
	assert.Equal(t, tagID, got)
}

func TestLiteralOIDFallback(t *testing.T) {
	refs := newTestRefs(t)
	id := someID(9)

	got, err := GetOID(refs, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestUnknownNameFails(t *testing.T) {
	refs := newTestRefs(t)
	_, err := GetOID(refs, "no-such-thing")
	require.Error(t, err)
	assert.True(t, ugiterr.Is(err, ugiterr.UnknownName))
}
