package frozentxo

import (
	"sync"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/settings"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/factory"
	"github.com/bsv-blockchain/frozentxo/ulogger"
)

// The process wide registry, bound to the node lifecycle by Init and Shutdown.
var (
	instanceMu sync.Mutex
	instance   *Registry
)

// Init opens the store configured in tSettings and makes the registry available through Instance.
// Calling Init again before Shutdown is an error.
func Init(logger ulogger.Logger, tSettings *settings.Settings) (*Registry, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return nil, errors.NewServiceError("[FrozenTXO] registry is already initialised")
	}

	store, err := factory.NewStore(logger, tSettings)
	if err != nil {
		return nil, err
	}

	r, err := New(logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	instance = r

	return r, nil
}

// Instance returns the registry opened by Init.
func Instance() (*Registry, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		return nil, errors.NewServiceNotStartedError("[FrozenTXO] registry is not initialised")
	}

	return instance, nil
}

// Shutdown closes the registry opened by Init. Registries still held by callers fail every
// later operation.
func Shutdown() error {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		return errors.NewServiceNotStartedError("[FrozenTXO] registry is not initialised")
	}

	err := instance.Close()
	instance = nil

	return err
}
