package badger

import (
	"path/filepath"
	"testing"

	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/tests"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	tests.RunAll(t, func(t *testing.T) kvstore.Store {
		store, err := NewMemory(ulogger.TestLogger{}, 0)
		require.NoError(t, err)

		return store
	})
}

func TestFile(t *testing.T) {
	tests.RunAll(t, func(t *testing.T) kvstore.Store {
		store, err := New(ulogger.TestLogger{}, filepath.Join(t.TempDir(), "db"), 1<<20)
		require.NoError(t, err)

		return store
	})
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")

	store, err := New(ulogger.TestLogger{}, path, 0)
	require.NoError(t, err)

	b := kvstore.NewBatch()
	b.Put([]byte("k"), []byte("v"))
	require.NoError(t, store.Write(b))
	require.NoError(t, store.Close())

	store, err = New(ulogger.TestLogger{}, path, 0)
	require.NoError(t, err)

	defer func() {
		_ = store.Close()
	}()

	value, found, err := store.Get([]byte("k"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), value)
}
