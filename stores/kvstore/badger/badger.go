// Package badger is a Badger backed kvstore.Store. Every batch is committed in a single
// read-write transaction and iterators read from a read-only transaction, which gives them a
// consistent snapshot.
package badger

import (
	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/dgraph-io/badger/v4"
)

type loggerWrapper struct {
	ulogger.Logger
}

func (l loggerWrapper) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

type Store struct {
	logger ulogger.Logger
	db     *badger.DB
	path   string
}

func applyCache(opts badger.Options, cacheSizeBytes int) badger.Options {
	if cacheSizeBytes <= 0 {
		return opts
	}

	return opts.
		WithBlockCacheSize(int64(cacheSizeBytes / 2)).
		WithIndexCacheSize(int64(cacheSizeBytes / 4))
}

func New(logger ulogger.Logger, path string, cacheSizeBytes int) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(loggerWrapper{logger}).
		WithLoggingLevel(badger.ERROR).
		WithSyncWrites(true)

	logger.Infof("[Badger] opening %s", path)

	db, err := badger.Open(applyCache(opts, cacheSizeBytes))
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[Badger] failed to open %s", path, err)
	}

	return &Store{
		logger: logger,
		db:     db,
		path:   path,
	}, nil
}

func NewMemory(logger ulogger.Logger, cacheSizeBytes int) (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(loggerWrapper{logger}).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(applyCache(opts, cacheSizeBytes))
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[Badger] failed to open in-memory store", err)
	}

	return &Store{
		logger: logger,
		db:     db,
		path:   "memory",
	}, nil
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}

			return err
		}

		found = true
		value, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		return nil, false, errors.NewStorageError("[Badger][Get] failed to read key %x", key, err)
	}

	return value, found, nil
}

func (s *Store) Has(key []byte) (bool, error) {
	var found bool

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}

			return err
		}

		found = true

		return nil
	})
	if err != nil {
		return false, errors.NewStorageError("[Badger][Has] failed to read key %x", key, err)
	}

	return found, nil
}

// Write commits the batch in one transaction. A batch larger than Badger's transaction limit
// fails as a whole with a storage error.
func (s *Store) Write(batch *kvstore.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return batch.Replay(
			func(key, value []byte) error {
				return txn.Set(key, value)
			},
			func(key []byte) error {
				return txn.Delete(key)
			},
		)
	})
	if err != nil {
		return errors.NewStorageError("[Badger][Write] failed to write batch of %d operations", batch.Len(), err)
	}

	return nil
}

func (s *Store) NewIterator() kvstore.Iterator {
	txn := s.db.NewTransaction(false)

	return &iter{
		txn: txn,
		it:  txn.NewIterator(badger.DefaultIteratorOptions),
	}
}

func (s *Store) Close() error {
	s.logger.Infof("[Badger] closing %s", s.path)

	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("[Badger] failed to close %s", s.path, err)
	}

	return nil
}

type iter struct {
	txn     *badger.Txn
	it      *badger.Iterator
	started bool
	key     []byte
	value   []byte
	err     error
}

func (i *iter) Seek(key []byte) bool {
	i.started = true
	i.it.Seek(key)

	return i.load()
}

func (i *iter) Next() bool {
	if !i.started {
		i.started = true
		i.it.Rewind()
	} else {
		i.it.Next()
	}

	return i.load()
}

func (i *iter) load() bool {
	i.key, i.value = nil, nil

	if i.err != nil || !i.it.Valid() {
		return false
	}

	item := i.it.Item()

	value, err := item.ValueCopy(nil)
	if err != nil {
		i.err = err
		return false
	}

	i.key = item.KeyCopy(nil)
	i.value = value

	return true
}

func (i *iter) Key() []byte {
	return i.key
}

func (i *iter) Value() []byte {
	return i.value
}

func (i *iter) Error() error {
	if i.err != nil {
		return errors.NewStorageError("[Badger] iterator failed", i.err)
	}

	return nil
}

func (i *iter) Release() {
	i.it.Close()
	i.txn.Discard()
}
