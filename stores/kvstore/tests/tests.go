// Package tests holds behaviour checks every kvstore.Store implementation must pass.
package tests

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAll runs every check against a fresh store obtained from newStore.
func RunAll(t *testing.T, newStore func(t *testing.T) kvstore.Store) {
	checks := map[string]func(t *testing.T, store kvstore.Store){
		"GetPutDelete":     GetPutDelete,
		"BatchOrder":       BatchOrder,
		"IteratorOrder":    IteratorOrder,
		"IteratorSeek":     IteratorSeek,
		"IteratorSnapshot": IteratorSnapshot,
		"ConcurrentWrites": ConcurrentWrites,
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)

			defer func() {
				require.NoError(t, store.Close())
			}()

			check(t, store)
		})
	}
}

func GetPutDelete(t *testing.T, store kvstore.Store) {
	key := []byte{1, 2, 3}

	_, found, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, found)

	b := kvstore.NewBatch()
	b.Put(key, []byte("value"))
	require.NoError(t, store.Write(b))

	value, found, err := store.Get(key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("value"), value)

	has, err := store.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	b = kvstore.NewBatch()
	b.Delete(key)
	require.NoError(t, store.Write(b))

	has, err = store.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	// an empty batch is a no-op
	require.NoError(t, store.Write(kvstore.NewBatch()))
}

func BatchOrder(t *testing.T, store kvstore.Store) {
	b := kvstore.NewBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Delete([]byte("a"))
	b.Put([]byte("b"), []byte("1"))
	b.Put([]byte("b"), []byte("2"))
	require.NoError(t, store.Write(b))

	_, found, err := store.Get([]byte("a"))
	require.NoError(t, err)
	assert.False(t, found)

	value, found, err := store.Get([]byte("b"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("2"), value)
}

func fill(t *testing.T, store kvstore.Store, keys ...string) {
	b := kvstore.NewBatch()
	for _, k := range keys {
		b.Put([]byte(k), []byte("v"+k))
	}

	require.NoError(t, store.Write(b))
}

func collect(t *testing.T, it kvstore.Iterator, ok bool) []string {
	var keys []string

	for ; ok; ok = it.Next() {
		keys = append(keys, string(it.Key()))
		assert.Equal(t, "v"+string(it.Key()), string(it.Value()))
	}

	require.NoError(t, it.Error())

	return keys
}

func IteratorOrder(t *testing.T, store kvstore.Store) {
	fill(t, store, "c", "a", "b", "\x01", "\xff")

	it := store.NewIterator()
	defer it.Release()

	assert.Equal(t, []string{"\x01", "a", "b", "c", "\xff"}, collect(t, it, it.Next()))
}

func IteratorSeek(t *testing.T, store kvstore.Store) {
	fill(t, store, "a1", "a2", "b1", "b2")

	it := store.NewIterator()
	defer it.Release()

	assert.Equal(t, []string{"b1", "b2"}, collect(t, it, it.Seek([]byte("b"))))
	assert.False(t, it.Seek([]byte("c")))
	assert.Equal(t, []string{"a2", "b1", "b2"}, collect(t, it, it.Seek([]byte("a2"))))
}

func IteratorSnapshot(t *testing.T, store kvstore.Store) {
	fill(t, store, "a", "b", "c")

	it := store.NewIterator()
	defer it.Release()

	require.True(t, it.Next())
	assert.Equal(t, "a", string(it.Key()))

	b := kvstore.NewBatch()
	b.Delete([]byte("b"))
	b.Put([]byte("bb"), []byte("vbb"))
	b.Put([]byte("d"), []byte("vd"))
	require.NoError(t, store.Write(b))

	assert.Equal(t, []string{"b", "c"}, collect(t, it, it.Next()))

	fresh := store.NewIterator()
	defer fresh.Release()

	assert.Equal(t, []string{"a", "bb", "c", "d"}, collect(t, fresh, fresh.Next()))
}

func ConcurrentWrites(t *testing.T, store kvstore.Store) {
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := 0; i < 50; i++ {
				b := kvstore.NewBatch()
				b.Put([]byte(fmt.Sprintf("%02d-%03d", w, i)), []byte("x"))
				assert.NoError(t, store.Write(b))
			}
		}(w)
	}

	wg.Wait()

	it := store.NewIterator()
	defer it.Release()

	n := 0
	for ok := it.Next(); ok; ok = it.Next() {
		n++
	}

	require.NoError(t, it.Error())
	assert.Equal(t, 8*50, n)
}
