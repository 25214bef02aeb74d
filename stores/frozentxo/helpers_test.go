package frozentxo

import (
	"testing"

	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/badger"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/leveldb"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/require"
)

func testOutpoint(i int) Outpoint {
	var txid chainhash.Hash

	txid[0] = byte(i)
	txid[1] = byte(i >> 8)
	txid[31] = 0xaa

	return Outpoint{TxID: txid, Index: uint32(i)}
}

func newTestRegistry(t *testing.T) *Registry {
	store, err := leveldb.NewMemory(ulogger.TestLogger{}, 0)
	require.NoError(t, err)

	return newTestRegistryWithStore(t, store)
}

func newTestRegistryWithStore(t *testing.T, store kvstore.Store) *Registry {
	r, err := New(ulogger.TestLogger{}, store)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = r.Close()
	})

	return r
}

// forEachBackend runs fn against a registry on every in-memory backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, r *Registry)) {
	t.Run("leveldb", func(t *testing.T) {
		fn(t, newTestRegistry(t))
	})

	t.Run("badger", func(t *testing.T) {
		store, err := badger.NewMemory(ulogger.TestLogger{}, 0)
		require.NoError(t, err)

		fn(t, newTestRegistryWithStore(t, store))
	})
}

// dumpStore returns every key and value of the store, for byte level comparisons.
func dumpStore(t *testing.T, store kvstore.Store) map[string][]byte {
	dump := make(map[string][]byte)

	it := store.NewIterator()
	defer it.Release()

	for ok := it.Next(); ok; ok = it.Next() {
		dump[string(it.Key())] = it.Value()
	}

	require.NoError(t, it.Error())

	return dump
}

func confiscationLockingScript(orderHashByte byte, locationHint []byte) *bscript.Script {
	push := []byte{confiscationProtocolVersion}
	for i := 0; i < confiscationOrderHashSize; i++ {
		push = append(push, orderHashByte)
	}

	push = append(push, locationHint...)

	s := append([]byte{}, confiscationScriptPrefix...)
	s = append(s, byte(len(push)))
	s = append(s, push...)

	return bscript.NewFromBytes(s)
}

func p2pkhLockingScript() *bscript.Script {
	s := []byte{bscript.OpDUP, bscript.OpHASH160, 0x14}
	s = append(s, make([]byte, 20)...)
	s = append(s, bscript.OpEQUALVERIFY, bscript.OpCHECKSIG)

	return bscript.NewFromBytes(s)
}

func newTestTx(inputs []Outpoint, outputs ...*bscript.Script) *bt.Tx {
	tx := bt.NewTx()

	for _, o := range inputs {
		txid := o.TxID

		input := &bt.Input{
			PreviousTxOutIndex: o.Index,
			UnlockingScript:    bscript.NewFromBytes([]byte{}),
			SequenceNumber:     0xffffffff,
		}

		if err := input.PreviousTxIDAdd(&txid); err != nil {
			panic(err)
		}

		tx.Inputs = append(tx.Inputs, input)
	}

	for _, script := range outputs {
		tx.AddOutput(&bt.Output{Satoshis: 1000, LockingScript: script})
	}

	return tx
}

func newConfiscationTx(inputs ...Outpoint) *bt.Tx {
	return newTestTx(inputs, confiscationLockingScript(0x11, []byte("https://example.com/order")), p2pkhLockingScript())
}

// bruteForceMaxFrozenStopHeight recomputes the frozen stop watermark from every stored record.
func bruteForceMaxFrozenStopHeight(t *testing.T, r *Registry) int32 {
	it, err := r.QueryAllFrozenTXOs()
	require.NoError(t, err)

	defer it.Release()

	maxStop := UnsetHeight

	for it.Next() {
		data := it.Value()
		if stop, ok := data.watermarkStop(); ok && stop > maxStop {
			maxStop = stop
		}
	}

	require.NoError(t, it.Error())

	return maxStop
}
