package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/remit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitStorePersistence(t *testing.T) {
	dir, err := ioutil.TempDir("", "iavl-commit-")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cs := NewCommitStore(dir, "state")
	require.NoError(t, cs.LoadLatestVersion())

	cache := cs.CacheWrap()
	require.NoError(t, cache.Set([]byte("alice"), []byte("100")))
	require.NoError(t, cache.Set([]byte("bob"), []byte("42")))
	require.NoError(t, cache.Write())

	// uncommitted data is not visible as the last committed state
	val, err := cs.Get([]byte("alice"))
	require.NoError(t, err)
	assert.Nil(t, val)

	id, err := cs.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.NotEmpty(t, id.Hash)

	// a discarded cache is never written
	cache = cs.CacheWrap()
	require.NoError(t, cache.Delete([]byte("alice")))
	cache.Discard()
	_, err = cs.Commit()
	require.NoError(t, err)

	// reopen and read
	cs.Close()
	reopened := NewCommitStore(dir, "state")
	defer reopened.Close()
	require.NoError(t, reopened.LoadLatestVersion())
	latest, err := reopened.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.Version)

	val, err = reopened.Get([]byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte("100"), val)
}

func TestCommitStoreIterator(t *testing.T) {
	cs := MockCommitStore()
	cache := cs.CacheWrap()
	keys := []string{"a", "b", "c", "d"}
	for _, k := range keys {
		require.NoError(t, cache.Set([]byte(k), []byte("v"+k)))
	}
	require.NoError(t, cache.Write())
	_, err := cs.Commit()
	require.NoError(t, err)

	cache = cs.CacheWrap()
	require.NoError(t, cache.Delete([]byte("b")))
	require.NoError(t, cache.Set([]byte("bb"), []byte("vbb")))

	it, err := cache.Iterator([]byte("a"), []byte("d"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "c"}, collectKeys(it))

	it, err = cache.ReverseIterator(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "bb", "a"}, collectKeys(it))
}

func collectKeys(it store.Iterator) []string {
	defer it.Release()
	var keys []string
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	return keys
}
