// Test Type: Unit Test
// Description: Tests for the JSON file backed key-value store, including corrupt input

package datastore_test

import (
	"testing"

	"github.com/arthur-debert/dodex/pkg/datastore"
	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataPath = "/vault/.dodex/data.json"

func TestSaveAndLoad(t *testing.T) {
	fs := filesystem.NewMemory()
	store := datastore.New(fs, dataPath)

	require.NoError(t, store.Save("timestamps", []int64{1, 2, 3}))
	require.NoError(t, store.Save("marks", map[string]string{"A/A.md": "ON_TOUCH"}))

	// a fresh store reads what the first one wrote
	reopened := datastore.New(fs, dataPath)
	var ts []int64
	ok, err := reopened.Load("timestamps", &ts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, ts)

	var marks map[string]string
	ok, err = reopened.Load("marks", &marks)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ON_TOUCH", marks["A/A.md"])

	_, err = fs.Stat(dataPath + ".tmp")
	assert.Error(t, err, "temporary file should be renamed away")
}

func TestLoadMissing(t *testing.T) {
	store := datastore.New(filesystem.NewMemory(), dataPath)
	var v []int64
	ok, err := store.Load("timestamps", &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestCorruptFileReadsEmpty(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/vault/.dodex", 0755))
	require.NoError(t, fs.WriteFile(dataPath, []byte("{not json"), 0644))

	store := datastore.New(fs, dataPath)
	var v []int64
	ok, err := store.Load("timestamps", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save("timestamps", []int64{7}))
	data, err := fs.ReadFile(dataPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "7")
}

func TestLoadWrongShape(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/vault/.dodex", 0755))
	require.NoError(t, fs.WriteFile(dataPath, []byte(`{"timestamps": "yesterday"}`), 0644))

	store := datastore.New(fs, dataPath)
	var v []int64
	ok, err := store.Load("timestamps", &v)
	assert.True(t, ok)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStateLoad))
}

func TestDelete(t *testing.T) {
	fs := filesystem.NewMemory()
	store := datastore.New(fs, dataPath)
	require.NoError(t, store.Save("marks", []string{"x"}))
	require.NoError(t, store.Delete("marks"))
	require.NoError(t, store.Delete("marks"))

	var v []string
	ok, err := datastore.New(fs, dataPath).Load("marks", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}
