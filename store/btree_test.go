package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, kv ReadOnlyKVStore, key []byte) []byte {
	t.Helper()
	v, err := kv.Get(key)
	require.NoError(t, err)
	return v
}

func has(t *testing.T, kv ReadOnlyKVStore, key []byte) bool {
	t.Helper()
	ok, err := kv.Has(key)
	require.NoError(t, err)
	return ok
}

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore().CacheWrap()

	k, v := []byte("french"), []byte("fry")
	assert.Nil(t, get(t, base, k))
	assert.False(t, has(t, base, k))
	require.NoError(t, base.Set(k, v))
	assert.Equal(t, v, get(t, base, k))
	assert.True(t, has(t, base, k))

	// a layer on top sees the base data
	cache := base.CacheWrap()
	assert.Equal(t, v, get(t, cache, k))

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	require.NoError(t, cache.Set(k2, v2))
	assert.Equal(t, v2, get(t, cache, k2))
	assert.Nil(t, get(t, base, k2))
	assert.False(t, has(t, base, k2))

	require.NoError(t, cache.Write())
	assert.Equal(t, v, get(t, base, k))
	assert.Equal(t, v2, get(t, base, k2))

	// a discarded layer leaves no trace
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	require.NoError(t, c2.Delete(k))
	c2.Discard()
	assert.Nil(t, get(t, base, k3))
	assert.Equal(t, v, get(t, base, k))

	// deletes are written as well
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	assert.False(t, has(t, c3, k))
	require.NoError(t, c3.Write())
	assert.Nil(t, get(t, base, k))
	assert.Equal(t, v2, get(t, base, k2))
}

// TestBTreeCacheConflicts checks that we can handle
// overwriting values and deleting underlying values
func TestBTreeCacheConflicts(t *testing.T) {
	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(ks[1], vs[1]), SetOp(ks[2], vs[2])},
			childOps:      []Op{SetOp(ks[1], vs[11]), SetOp(ks[3], vs[7]), DelOp(ks[2])},
			parentQueries: []Model{{Key: ks[1], Value: vs[1]}, {Key: ks[2], Value: vs[2]}, {Key: ks[3]}},
			childQueries:  []Model{{Key: ks[1], Value: vs[11]}, {Key: ks[2]}, {Key: ks[3], Value: vs[7]}},
		},
		"delete and set again": {
			parentOps:     []Op{SetOp(ks[4], vs[4])},
			childOps:      []Op{DelOp(ks[4]), SetOp(ks[4], vs[14])},
			parentQueries: []Model{{Key: ks[4], Value: vs[4]}},
			childQueries:  []Model{{Key: ks[4], Value: vs[14]}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent := MemStore().CacheWrap()
			for _, op := range tc.parentOps {
				require.NoError(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				require.NoError(t, op.Apply(child))
			}

			for _, q := range tc.parentQueries {
				assert.Equal(t, q.Value, get(t, parent, q.Key))
				assert.Equal(t, q.Value != nil, has(t, parent, q.Key))
			}
			for _, q := range tc.childQueries {
				assert.Equal(t, q.Value, get(t, child, q.Key))
				assert.Equal(t, q.Value != nil, has(t, child, q.Key))
			}

			require.NoError(t, child.Write())
			for _, q := range tc.childQueries {
				assert.Equal(t, q.Value, get(t, parent, q.Key))
			}
		})
	}
}

func TestSliceIterator(t *testing.T) {
	const size = 10
	ks := randKeys(size, 8)
	vs := randKeys(size, 40)

	models := make([]Model, size)
	for i := 0; i < size; i++ {
		models[i] = Model{Key: ks[i], Value: vs[i]}
	}
	verifyIterator(t, models, NewSliceIterator(models))

	trash := NewSliceIterator(models)
	assert.True(t, trash.Valid())
	trash.Release()
	assert.False(t, trash.Valid())
}

// TestBTreeCacheIterator iterates over ranges that span both the parent
// and child caches, combining values, overwrites and deletes.
func TestBTreeCacheIterator(t *testing.T) {
	const size = 50
	const deleteCount = 20

	models := make([]Model, size+deleteCount)
	for i := range models {
		models[i] = Model{Key: randBytes(8), Value: randBytes(40)}
	}

	parent := MemStore().CacheWrap()
	// half lives in the parent, half in the child
	for i := 0; i < len(models); i += 2 {
		require.NoError(t, parent.Set(models[i].Key, models[i].Value))
	}
	child := parent.CacheWrap()
	for i := 1; i < len(models); i += 2 {
		require.NoError(t, child.Set(models[i].Key, models[i].Value))
	}
	// delete the first chunk, hitting both layers
	for i := 0; i < deleteCount; i++ {
		require.NoError(t, child.Delete(models[i].Key))
	}
	models = models[deleteCount:]
	// overwrite a parent value
	models[0].Value = []byte("overwritten")
	require.NoError(t, child.Set(models[0].Key, models[0].Value))

	sort.Slice(models, func(i, j int) bool {
		return bytes.Compare(models[i].Key, models[j].Key) < 0
	})

	iterate := func(start, end []byte) Iterator {
		it, err := child.Iterator(start, end)
		require.NoError(t, err)
		return it
	}
	reverseIterate := func(start, end []byte) Iterator {
		it, err := child.ReverseIterator(start, end)
		require.NoError(t, err)
		return it
	}

	verifyIterator(t, models, iterate(nil, nil))
	verifyIterator(t, models[10:], iterate(models[10].Key, nil))
	verifyIterator(t, models[:size-8], iterate(nil, models[size-8].Key))
	verifyIterator(t, models[17:28], iterate(models[17].Key, models[28].Key))

	verifyIterator(t, reverse(models), reverseIterate(nil, nil))
	verifyIterator(t, reverse(models[34:]), reverseIterate(models[34].Key, nil))
	verifyIterator(t, reverse(models[:19]), reverseIterate(nil, models[19].Key))
	verifyIterator(t, reverse(models[6:26]), reverseIterate(models[6].Key, models[26].Key))
}

func verifyIterator(t *testing.T, models []Model, iter Iterator) {
	t.Helper()
	for i := 0; i < len(models); i++ {
		require.True(t, iter.Valid(), "%d", i)
		assert.Equal(t, models[i].Key, iter.Key(), "%d", i)
		assert.Equal(t, models[i].Value, iter.Value(), "%d", i)
		iter.Next()
	}
	assert.False(t, iter.Valid())
	iter.Release()
}

// reverse returns a copy of the slice with elements in reverse order
func reverse(models []Model) []Model {
	max := len(models)
	res := make([]Model, max)
	for i := 0; i < max; i++ {
		res[i] = models[max-1-i]
	}
	return res
}

// randKeys returns a slice of count keys, all of length
func randKeys(count, length int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = randBytes(length)
	}
	return res
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	_, _ = rand.Read(res)
	return res
}
