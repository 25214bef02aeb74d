package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	b := NewBatch()
	require.Equal(t, 0, b.Len())

	key := []byte{1, 2, 3}
	value := []byte{4, 5}

	b.Put(key, value)
	b.Delete([]byte{9})

	// the batch owns copies
	key[0] = 0xff
	value[0] = 0xff

	var ops []string

	err := b.Replay(
		func(k, v []byte) error {
			assert.Equal(t, []byte{1, 2, 3}, k)
			assert.Equal(t, []byte{4, 5}, v)
			ops = append(ops, "put")

			return nil
		},
		func(k []byte) error {
			assert.Equal(t, []byte{9}, k)
			ops = append(ops, "del")

			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"put", "del"}, ops)
	assert.Equal(t, 2, b.Len())

	b.Reset()
	assert.Equal(t, 0, b.Len())
}
