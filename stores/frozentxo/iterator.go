package frozentxo

import (
	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// RecordIterator walks the records of one table in key order. The records it returns are those
// stored when it was created; later mutations are not visible through it.
//
//	it, err := registry.QueryAllFrozenTXOs()
//	...
//	defer it.Release()
//
//	for it.Next() {
//		txo, data := it.Key(), it.Value()
//	}
//
//	if err = it.Error(); err != nil { ... }
type RecordIterator[K any, V any] struct {
	it       kvstore.Iterator
	t        recordType
	decode   func(key, value []byte) (K, V, error)
	started  bool
	done     bool
	released bool
	key      K
	value    V
	err      error
}

type (
	FrozenTXOIterator     = RecordIterator[Outpoint, FrozenTXOData]
	WhitelistedTxIterator = RecordIterator[chainhash.Hash, WhitelistedTxData]
)

func newRecordIterator[K any, V any](store kvstore.Store, t recordType, decode func(key, value []byte) (K, V, error)) *RecordIterator[K, V] {
	return &RecordIterator[K, V]{
		it:     store.NewIterator(),
		t:      t,
		decode: decode,
	}
}

// Next advances to the next record and reports whether there is one.
func (i *RecordIterator[K, V]) Next() bool {
	if i.done {
		return false
	}

	var ok bool

	if !i.started {
		i.started = true
		ok = i.it.Seek([]byte{byte(i.t)})
	} else {
		ok = i.it.Next()
	}

	if !ok || !hasRecordType(i.it.Key(), i.t) {
		i.done = true

		if err := i.it.Error(); err != nil {
			i.err = err
		}

		return false
	}

	key, value, err := i.decode(i.it.Key(), i.it.Value())
	if err != nil {
		i.done = true
		i.err = err

		return false
	}

	i.key, i.value = key, value

	return true
}

func (i *RecordIterator[K, V]) Key() K {
	return i.key
}

func (i *RecordIterator[K, V]) Value() V {
	return i.value
}

func (i *RecordIterator[K, V]) Error() error {
	return i.err
}

// Release frees the snapshot held by the iterator. It must be called before the registry is closed.
func (i *RecordIterator[K, V]) Release() {
	if i.released {
		return
	}

	i.done = true
	i.released = true
	i.it.Release()
}

func decodeFrozenTXO(key, value []byte) (Outpoint, FrozenTXOData, error) {
	txo, ok := parseTXOKey(key)
	if !ok {
		return Outpoint{}, FrozenTXOData{}, errors.NewStorageError("[FrozenTXO] invalid TXO key %x", key)
	}

	data, err := NewFrozenTXODataFromBytes(value)
	if err != nil {
		return Outpoint{}, FrozenTXOData{}, errors.NewStorageError("[FrozenTXO] corrupted record for %s", txo, err)
	}

	return txo, *data, nil
}

func decodeWhitelistedTx(key, value []byte) (chainhash.Hash, WhitelistedTxData, error) {
	txid, ok := parseWhitelistKey(key)
	if !ok {
		return chainhash.Hash{}, WhitelistedTxData{}, errors.NewStorageError("[FrozenTXO] invalid whitelist key %x", key)
	}

	data, err := NewWhitelistedTxDataFromBytes(value)
	if err != nil {
		return chainhash.Hash{}, WhitelistedTxData{}, errors.NewStorageError("[FrozenTXO] corrupted whitelist record for %s", txid, err)
	}

	return txid, *data, nil
}

// QueryAllFrozenTXOs returns an iterator over every frozen TXO. It takes no lock.
func (r *Registry) QueryAllFrozenTXOs() (*FrozenTXOIterator, error) {
	if err := r.checkOpen("QueryAllFrozenTXOs"); err != nil {
		return nil, err
	}

	return newRecordIterator(r.store, recordTypeTXO, decodeFrozenTXO), nil
}

// QueryAllWhitelistedTxs returns an iterator over every whitelisted confiscation transaction.
func (r *Registry) QueryAllWhitelistedTxs() (*WhitelistedTxIterator, error) {
	if err := r.checkOpen("QueryAllWhitelistedTxs"); err != nil {
		return nil, err
	}

	return newRecordIterator(r.store, recordTypeWhitelist, decodeWhitelistedTx), nil
}
