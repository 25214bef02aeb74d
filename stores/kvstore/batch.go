package kvstore

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// Batch collects puts and deletes that are written atomically by Store.Write.
// Operations are applied in insertion order, so a later operation on the same key wins.
type Batch struct {
	ops []batchOp
}

func NewBatch() *Batch {
	return &Batch{}
}

// Put queues a write of value under key. Both slices are copied.
func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

// Delete queues the removal of key. The slice is copied.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{
		key:    append([]byte(nil), key...),
		delete: true,
	})
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Reset() {
	b.ops = b.ops[:0]
}

// Replay calls put or del for every queued operation in order and stops at the first error.
func (b *Batch) Replay(put func(key, value []byte) error, del func(key []byte) error) error {
	for _, op := range b.ops {
		var err error
		if op.delete {
			err = del(op.key)
		} else {
			err = put(op.key, op.value)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
