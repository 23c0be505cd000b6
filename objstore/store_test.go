package objstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/ugiterr"
)

func newTestStore(t *testing.T) *Store {
	dir, err := ioutil.TempDir("", "ugit-objstore")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	s := New(filepath.Join(dir, "objects"))
	require.NoError(t, s.Init())
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put(KindBlob, []byte("hello\n"))
	require.NoError(t, err)

	payload, err := s.Get(id, KindBlob)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), payload)
}

func TestPutIsDeterministic(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.Put(KindBlob, []byte("same bytes"))
	require.NoError(t, err)
	id2, err := s.Put(KindBlob, []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
}

func TestPutKnownVector(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put(KindBlob, []byte("A"))
	require.NoError(t, err)
	assert.Equal(t, hash.Sum([]byte("blob\x00A")), id)

	raw, err := ioutil.ReadFile(filepath.Join(s.dir, id.String()))
	require.NoError(t, err)
	assert.Equal(t, []byte("blob\x00A"), raw)
}

func TestGetKindMismatchIsCorrupt(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put(KindBlob, []byte("x"))
	require.NoError(t, err)

	_, err = s.Get(id, KindTree)
	require.Error(t, err)
	assert.True(t, ugiterr.Is(err, ugiterr.Corrupt))
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)

	missing, _ := hash.FromHex("0000000000000000000000000000000000000000")
	_, err := s.Get(missing, KindBlob)
	require.Error(t, err)
	assert.True(t, ugiterr.Is(err, ugiterr.NotFound))
}

func TestPutRejectsUnknownKind(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put(Kind("submodule"), []byte("x"))
	require.Error(t, err)
	assert.True(t, ugiterr.Is(err, ugiterr.InvalidInput))
}

func TestHas(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put(KindBlob, []byte("present"))
	require.NoError(t, err)
	assert.True(t, s.Has(id))

	missing, _ := hash.FromHex("0000000000000000000000000000000000000000")
	assert.False(t, s.Has(missing))
}

func TestIDsListsStoredObjects(t *testing.T) {
	s := newTestStore(t)

	id1, err := s.Put(KindBlob, []byte("one"))
	require.NoError(t, err)
	id2, err := s.Put(KindBlob, []byte("two"))
	require.NoError(t, err)

	ids, err := s.IDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []hash.ObjectID{id1, id2}, ids)
}

func TestRawKindAndPayloadBypassesKindCheck(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put(KindTree, []byte("blob deadbeef name"))
	require.NoError(t, err)

	kind, payload, err := s.RawKindAndPayload(id)
	require.NoError(t, err)
	assert.Equal(t, KindTree, kind)
	assert.Equal(t, []byte("blob deadbeef name"), payload)
}
