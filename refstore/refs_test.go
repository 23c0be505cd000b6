package refstore

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/ugiterr"
)

func newTestStore(t *testing.T) *Store {
	dir, err := ioutil.TempDir("", "ugit-refstore")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return New(dir)
}

func someID(b byte) hash.ObjectID {
	var id hash.ObjectID
	id[0] = b
	return id
}

func TestUpdateAndGetDirectRef(t *testing.T) {
	s := newTestStore(t)
	id := someID(0x01)

	require.NoError(t, s.UpdateRef(HeadName, id, true))

	v, err := s.GetRef(HeadName, true)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, v.Symbolic)
	assert.Equal(t, id, v.OID)
}

func TestGetRefMissingReturnsNilNil(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetRef("refs/heads/nope", true)
	require.NoError(t, err)
	assert.Nil(t, v)
}

// TestSymbolicIndirection pins spec.md §8 property 6: after pointing
// HEAD at refs/heads/main symbolically and then writing through HEAD
// with deref=true, the write lands on refs/heads/main, and HEAD itself
// remains symbolic.
func TestSymbolicIndirection(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateSymbolicRef(HeadName, "refs/heads/main"))

	id := someID(0x42)
	require.NoError(t, s.UpdateRef(HeadName, id, true))

	main, err := s.GetRef("refs/heads/main", true)
	require.NoError(t, err)
	require.NotNil(t, main)
	assert.Equal(t, id, main.OID)

	head, err := s.GetRef(HeadName, false)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.True(t, head.Symbolic)
	assert.Equal(t, "refs/heads/main", head.Target)

	headDeref, err := s.GetRef(HeadName, true)
	require.NoError(t, err)
	assert.Equal(t, id, headDeref.OID)
}

func TestUpdateRefWithoutDerefOverwritesSymbolicPointerItself(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateSymbolicRef(HeadName, "refs/heads/main"))

	id := someID(0x07)
	require.NoError(t, s.UpdateRef(HeadName, id, false))

	head, err := s.GetRef(HeadName, false)
	require.NoError(t, err)
	assert.False(t, head.Symbolic)
	assert.Equal(t, id, head.OID)

	main, err := s.GetRef("refs/heads/main", true)
	require.NoError(t, err)
	assert.Nil(t, main)
}

func TestSymbolicCycleIsCorrupt(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateSymbolicRef("refs/heads/a", "refs/heads/b"))
	require.NoError(t, s.UpdateSymbolicRef("refs/heads/b", "refs/heads/a"))

	_, err := s.GetRef("refs/heads/a", true)
	require.Error(t, err)
	assert.True(t, ugiterr.Is(err, ugiterr.Corrupt))
}

func TestNonHexDirectRefIsCorrupt(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.writeRaw("refs/heads/bad", "not-an-oid"))

	_, err := s.GetRef("refs/heads/bad", true)
	require.Error(t, err)
	assert.True(t, ugiterr.Is(err, ugiterr.Corrupt))
}

func TestIterRefsIncludesHeadAndRefsTree(t *testing.T) {
	s := newTestStore(t)
	id := someID(0x09)
	require.NoError(t, s.UpdateRef(HeadName, id, true))
	require.NoError(t, s.UpdateRef("refs/heads/main", id, false))
	require.NoError(t, s.UpdateRef("refs/tags/v1", id, false))

	refs, err := s.IterRefs()
	require.NoError(t, err)

	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	assert.Contains(t, names, HeadName)
	assert.Contains(t, names, "refs/heads/main")
	assert.Contains(t, names, "refs/tags/v1")
}

func TestIterRefsOnEmptyStore(t *testing.T) {
	s := newTestStore(t)
	refs, err := s.IterRefs()
	require.NoError(t, err)
	assert.Empty(t, refs)
}
