package fsck

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attic-labs/ugit/objstore"
)

func newTestStore(t *testing.T) *objstore.Store {
	dir, err := ioutil.TempDir("", "ugit-fsck")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	s := objstore.New(filepath.Join(dir, "objects"))
	require.NoError(t, s.Init())
	return s
}

func TestRunCleanStore(t *testing.T) {
	store := newTestStore(t)
	blobOID, err := store.Put(objstore.KindBlob, []byte("hello"))
	require.NoError(t, err)
	treeOID, err := store.Put(objstore.KindTree, []byte("blob "+blobOID.String()+" a.txt"))
	require.NoError(t, err)
	_, err = store.Put(objstore.KindCommit, []byte("tree "+treeOID.String()+"\n\nmsg"))
	require.NoError(t, err)

	report, err := Run(store)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "problems: %v", report.Problems)
	assert.Equal(t, 3, report.ObjectsScanned)
}

func TestRunDetectsMissingTreeEntry(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Put(objstore.KindTree, []byte("blob 0000000000000000000000000000000000000000 a.txt"))
	require.NoError(t, err)

	report, err := Run(store)
	require.NoError(t, err)
	assert.False(t, report.Clean())
}

func TestRunDetectsMissingCommitTree(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Put(objstore.KindCommit, []byte("tree 0000000000000000000000000000000000000000\n\nmsg"))
	require.NoError(t, err)

	report, err := Run(store)
	require.NoError(t, err)
	assert.False(t, report.Clean())
}

func TestRunDetectsRenamedObjectFile(t *testing.T) {
	store := newTestStore(t)
	id, err := store.Put(objstore.KindBlob, []byte("hello"))
	require.NoError(t, err)

	dir := store.ObjectsDir()
	require.NoError(t, os.Rename(
		filepath.Join(dir, id.String()),
		filepath.Join(dir, "0000000000000000000000000000000000000000"),
	))

	report, err := Run(store)
	require.NoError(t, err)
	assert.False(t, report.Clean())
}
