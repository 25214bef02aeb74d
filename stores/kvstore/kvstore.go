// Package kvstore defines the ordered key-value substrate the frozen-TXO registry is persisted in.
//
// Implementations must provide:
//   - atomic batches: either every operation of a Batch is applied or none is
//   - ordered iteration by byte-wise key comparison
//   - snapshot-stable iterators: writes applied after NewIterator returns are not visible
//     through that iterator and do not invalidate it
package kvstore

// Store is an ordered, crash-consistent byte-key/byte-value store.
type Store interface {
	// Get returns the value stored for key. A missing key is reported with found == false and a nil error.
	Get(key []byte) (value []byte, found bool, err error)
	Has(key []byte) (bool, error)
	// Write applies all operations of the batch atomically.
	Write(batch *Batch) error
	// NewIterator returns a forward iterator over a snapshot of the store taken at call time.
	NewIterator() Iterator
	Close() error
}

// Iterator is a forward iterator positioned with Seek. Key and Value return copies that stay
// valid after the iterator moves.
type Iterator interface {
	// Seek moves to the first key >= key and reports whether such a key exists.
	Seek(key []byte) bool
	// Next moves to the next key. On an iterator that was never positioned it moves to the first key.
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}
