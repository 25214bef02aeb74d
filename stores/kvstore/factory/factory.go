// Package factory opens the kvstore.Store named by the frozentxo_store setting.
package factory

import (
	"net/url"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/settings"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/badger"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/leveldb"
	"github.com/bsv-blockchain/frozentxo/ulogger"
)

// NewStore supports the schemes
//
//	leveldb:///frozentxo   LevelDB under the data folder
//	badger:///frozentxo    Badger under the data folder
//	memory://              in-memory LevelDB
//	memory://badger        in-memory Badger
func NewStore(logger ulogger.Logger, tSettings *settings.Settings) (kvstore.Store, error) {
	storeURL := tSettings.FrozenTXO.StoreURL
	if storeURL == nil {
		return nil, errors.NewConfigurationError("frozentxo_store is not set")
	}

	return New(logger, storeURL, tSettings.FrozenTXOStorePath(), tSettings.FrozenTXOCacheSizeBytes())
}

func New(logger ulogger.Logger, storeURL *url.URL, path string, cacheSizeBytes int) (kvstore.Store, error) {
	switch storeURL.Scheme {
	case "leveldb":
		return leveldb.New(logger, path, cacheSizeBytes)

	case "badger":
		return badger.New(logger, path, cacheSizeBytes)

	case "memory":
		if storeURL.Host == "badger" {
			return badger.NewMemory(logger, cacheSizeBytes)
		}

		return leveldb.NewMemory(logger, cacheSizeBytes)

	default:
		return nil, errors.NewConfigurationError("unknown frozentxo store scheme %q", storeURL.Scheme)
	}
}
