// Package leveldb is the LevelDB backed kvstore.Store used by default for the frozen-TXO registry.
package leveldb

import (
	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	ldb "github.com/btcsuite/goleveldb/leveldb"
	ldbErrors "github.com/btcsuite/goleveldb/leveldb/errors"
	"github.com/btcsuite/goleveldb/leveldb/filter"
	"github.com/btcsuite/goleveldb/leveldb/iterator"
	"github.com/btcsuite/goleveldb/leveldb/opt"
	"github.com/btcsuite/goleveldb/leveldb/storage"
)

type Store struct {
	logger ulogger.Logger
	db     *ldb.DB
	path   string
}

func options(cacheSizeBytes int) *opt.Options {
	o := &opt.Options{
		Compression: opt.NoCompression,
		Filter:      filter.NewBloomFilter(10),
	}

	// half of the budget goes to the block cache and a quarter to the write buffer
	if cacheSizeBytes > 0 {
		o.BlockCacheCapacity = cacheSizeBytes / 2
		o.WriteBuffer = cacheSizeBytes / 4
	}

	return o
}

// New opens (or creates) the database in directory path. A corrupted database is recovered
// once before giving up.
func New(logger ulogger.Logger, path string, cacheSizeBytes int) (*Store, error) {
	opts := options(cacheSizeBytes)

	logger.Infof("[LevelDB] opening %s", path)

	db, err := ldb.OpenFile(path, opts)
	if err != nil {
		if _, corrupted := err.(*ldbErrors.ErrCorrupted); !corrupted {
			return nil, errors.NewStorageUnavailableError("[LevelDB] failed to open %s", path, err)
		}

		logger.Warnf("[LevelDB] database at %s is corrupted, attempting recovery: %v", path, err)

		if db, err = ldb.RecoverFile(path, opts); err != nil {
			return nil, errors.NewStorageUnavailableError("[LevelDB] failed to recover %s", path, err)
		}
	}

	return &Store{
		logger: logger,
		db:     db,
		path:   path,
	}, nil
}

// NewMemory returns a store that lives in memory only.
func NewMemory(logger ulogger.Logger, cacheSizeBytes int) (*Store, error) {
	db, err := ldb.Open(storage.NewMemStorage(), options(cacheSizeBytes))
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[LevelDB] failed to open memory storage", err)
	}

	return &Store{
		logger: logger,
		db:     db,
		path:   "memory",
	}, nil
}

func (s *Store) Get(key []byte) ([]byte, bool, error) {
	value, err := s.db.Get(key, nil)
	if err != nil {
		if err == ldb.ErrNotFound {
			return nil, false, nil
		}

		return nil, false, errors.NewStorageError("[LevelDB][Get] failed to read key %x", key, err)
	}

	return value, true, nil
}

func (s *Store) Has(key []byte) (bool, error) {
	found, err := s.db.Has(key, nil)
	if err != nil {
		return false, errors.NewStorageError("[LevelDB][Has] failed to read key %x", key, err)
	}

	return found, nil
}

func (s *Store) Write(batch *kvstore.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	b := new(ldb.Batch)

	_ = batch.Replay(
		func(key, value []byte) error {
			b.Put(key, value)
			return nil
		},
		func(key []byte) error {
			b.Delete(key)
			return nil
		},
	)

	if err := s.db.Write(b, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.NewStorageError("[LevelDB][Write] failed to write batch of %d operations", batch.Len(), err)
	}

	return nil
}

// NewIterator pins an implicit snapshot of the database for the lifetime of the iterator.
func (s *Store) NewIterator() kvstore.Iterator {
	return &iter{it: s.db.NewIterator(nil, nil)}
}

func (s *Store) Close() error {
	s.logger.Infof("[LevelDB] closing %s", s.path)

	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("[LevelDB] failed to close %s", s.path, err)
	}

	return nil
}

type iter struct {
	it iterator.Iterator
}

func (i *iter) Seek(key []byte) bool {
	return i.it.Seek(key)
}

func (i *iter) Next() bool {
	return i.it.Next()
}

func (i *iter) Key() []byte {
	return append([]byte(nil), i.it.Key()...)
}

func (i *iter) Value() []byte {
	return append([]byte(nil), i.it.Value()...)
}

func (i *iter) Error() error {
	if err := i.it.Error(); err != nil {
		return errors.NewStorageError("[LevelDB] iterator failed", err)
	}

	return nil
}

func (i *iter) Release() {
	i.it.Release()
}
