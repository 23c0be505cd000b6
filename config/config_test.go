package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	dir, err := ioutil.TempDir("", "ugit-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cfg, err := Load(filepath.Join(dir, "config"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "ugit-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
[core]
default-branch = "trunk"

[ignore]
patterns = ["*.tmp"]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "trunk", cfg.Core.DefaultBranch)
	assert.Equal(t, []string{"*.tmp"}, cfg.Ignore.Patterns)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir, err := ioutil.TempDir("", "ugit-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config")
	require.NoError(t, ioutil.WriteFile(path, []byte("not valid [[[ toml"), 0644))

	_, err = Load(path)
	require.Error(t, err)
}
