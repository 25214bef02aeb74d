// Package frozentxo is the persistent registry of frozen transaction outputs and whitelisted
// confiscation transactions.
//
// A TXO can be frozen on three tiers. PolicyOnly freezes make the node refuse new transactions
// spending the TXO. Consensus freezes additionally make it refuse blocks spending the TXO while
// one of the record's height intervals covers the block height. Confiscation freezes are set when
// a confiscation transaction spending the TXO is whitelisted and hold at every height.
//
// All mutations take an exclusive lock and are written as one atomic batch. Point reads take a
// shared lock. Iterators returned by QueryAllFrozenTXOs and QueryAllWhitelistedTxs read a
// snapshot of the store taken when they are created.
//
// The registry keeps two watermarks, GetMaxFrozenStopHeight and GetMaxWhitelistEnforceHeight,
// that bound how far back a dependent rescan has to look. They are raised incrementally and only
// lowered by CleanExpiredRecords (exact recompute) and UnfreezeAll (reset).
package frozentxo

import (
	"sync"
	"time"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"go.uber.org/atomic"
)

type Registry struct {
	logger ulogger.Logger
	store  kvstore.Store
	closed atomic.Bool

	mu                        sync.RWMutex
	maxFrozenStopHeight       int32
	maxWhitelistEnforceHeight int32
}

// New wraps an opened store. Both watermarks are recomputed from the stored records.
func New(logger ulogger.Logger, store kvstore.Store) (*Registry, error) {
	initPrometheusMetrics()

	r := &Registry{
		logger:                    logger,
		store:                     store,
		maxFrozenStopHeight:       UnsetHeight,
		maxWhitelistEnforceHeight: UnsetHeight,
	}

	if err := r.recomputeWatermarks(); err != nil {
		return nil, err
	}

	r.logger.Infof("[FrozenTXO] registry opened, maxFrozenStopHeight=%d maxWhitelistEnforceHeight=%d", r.maxFrozenStopHeight, r.maxWhitelistEnforceHeight)

	return r, nil
}

func (r *Registry) recomputeWatermarks() error {
	it := r.store.NewIterator()
	defer it.Release()

	for ok := it.Seek([]byte{byte(recordTypeTXO)}); ok; ok = it.Next() {
		key := it.Key()

		switch {
		case hasRecordType(key, recordTypeTXO):
			data, err := NewFrozenTXODataFromBytes(it.Value())
			if err != nil {
				return errors.NewStorageError("[FrozenTXO] corrupted record for key %x", key, err)
			}

			r.raiseMaxFrozenStopHeight(data)

		case hasRecordType(key, recordTypeWhitelist):
			data, err := NewWhitelistedTxDataFromBytes(it.Value())
			if err != nil {
				return errors.NewStorageError("[FrozenTXO] corrupted record for key %x", key, err)
			}

			r.raiseMaxWhitelistEnforceHeight(data.EnforceAtHeight)
		}
	}

	return it.Error()
}

// raiseMaxFrozenStopHeight must be called with the write lock held, or before the registry is shared.
func (r *Registry) raiseMaxFrozenStopHeight(data *FrozenTXOData) {
	if stop, ok := data.watermarkStop(); ok && stop > r.maxFrozenStopHeight {
		r.maxFrozenStopHeight = stop
		prometheusFrozenTXOMaxStopHeight.Set(float64(stop))
	}
}

func (r *Registry) raiseMaxWhitelistEnforceHeight(height int32) {
	if height > r.maxWhitelistEnforceHeight {
		r.maxWhitelistEnforceHeight = height
		prometheusFrozenTXOMaxWhitelisted.Set(float64(height))
	}
}

// checkOpen is called with r.mu held, so Close cannot release the store between the check and
// the store access that follows it.
func (r *Registry) checkOpen(op string) error {
	if r.closed.Load() {
		return errors.NewStorageNotStartedError("[FrozenTXO][%s] registry is shut down", op)
	}

	return nil
}

func (r *Registry) getTXO(txo Outpoint) (*FrozenTXOData, bool, error) {
	value, found, err := r.store.Get(txoKey(txo))
	if err != nil || !found {
		return nil, false, err
	}

	data, err := NewFrozenTXODataFromBytes(value)
	if err != nil {
		return nil, false, errors.NewStorageError("[FrozenTXO] corrupted record for %s", txo, err)
	}

	return data, true, nil
}

func (r *Registry) getWhitelistedTx(txid *chainhash.Hash) (*WhitelistedTxData, bool, error) {
	value, found, err := r.store.Get(whitelistKey(txid))
	if err != nil || !found {
		return nil, false, err
	}

	data, err := NewWhitelistedTxDataFromBytes(value)
	if err != nil {
		return nil, false, errors.NewStorageError("[FrozenTXO] corrupted whitelist record for %s", txid, err)
	}

	return data, true, nil
}

func (r *Registry) putTXO(txo Outpoint, data *FrozenTXOData) error {
	batch := kvstore.NewBatch()
	batch.Put(txoKey(txo), data.Bytes())

	return r.store.Write(batch)
}

// FreezeTXOPolicyOnly adds txo to the PolicyOnly blacklist. A TXO that is already Consensus or
// Confiscation frozen is never downgraded.
func (r *Registry) FreezeTXOPolicyOnly(txo Outpoint) (FreezeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("FreezeTXOPolicyOnly"); err != nil {
		return FreezeOK, err
	}

	existing, found, err := r.getTXO(txo)
	if err != nil {
		return FreezeOK, err
	}

	result := FreezeOK

	switch {
	case found && existing.Blacklist == BlacklistPolicyOnly:
		result = FreezeOKAlreadyFrozen
	case found:
		result = FreezeErrorAlreadyInConsensusBlacklist
	default:
		data := NewPolicyOnlyData()
		if err = r.putTXO(txo, &data); err != nil {
			return FreezeOK, err
		}
	}

	r.logger.Debugf("[FrozenTXO][FreezeTXOPolicyOnly] %s: %s", txo, result)
	prometheusFrozenTXOFreeze.WithLabelValues(BlacklistPolicyOnly.String(), result.String()).Inc()

	return result, nil
}

// FreezeTXOConsensus adds txo to the Consensus blacklist for the given height intervals, or
// replaces the intervals and expiry flag of an existing Consensus or Confiscation record.
// Passing narrower intervals is how a consensus freeze is lifted early.
func (r *Registry) FreezeTXOConsensus(txo Outpoint, enforceAtHeight []HeightInterval, policyExpiresWithConsensus bool) (FreezeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("FreezeTXOConsensus"); err != nil {
		return FreezeOK, err
	}

	existing, found, err := r.getTXO(txo)
	if err != nil {
		return FreezeOK, err
	}

	data := &FrozenTXOData{
		Blacklist:                  BlacklistConsensus,
		PolicyExpiresWithConsensus: policyExpiresWithConsensus,
	}

	if len(enforceAtHeight) > 0 {
		data.EnforceAtHeight = append([]HeightInterval(nil), enforceAtHeight...)
	}

	result := FreezeOK

	if found {
		switch existing.Blacklist {
		case BlacklistPolicyOnly:
			result = FreezeOKUpdatedToConsensusBlacklist
		default:
			// a confiscated TXO stays confiscated, only its fields are replaced
			data.Blacklist = existing.Blacklist

			if existing.sameEnforcement(data) {
				r.logger.Debugf("[FrozenTXO][FreezeTXOConsensus] %s: %s", txo, FreezeOKAlreadyFrozen)
				prometheusFrozenTXOFreeze.WithLabelValues(BlacklistConsensus.String(), FreezeOKAlreadyFrozen.String()).Inc()

				return FreezeOKAlreadyFrozen, nil
			}

			result = FreezeOKUpdated
		}
	}

	if err = r.putTXO(txo, data); err != nil {
		return FreezeOK, err
	}

	r.raiseMaxFrozenStopHeight(data)

	r.logger.Debugf("[FrozenTXO][FreezeTXOConsensus] %s: %s (%s)", txo, result, data)
	prometheusFrozenTXOFreeze.WithLabelValues(BlacklistConsensus.String(), result.String()).Inc()

	return result, nil
}

// UnfreezeTXOPolicyOnly removes a PolicyOnly record. Consensus and Confiscation records are
// refused.
func (r *Registry) UnfreezeTXOPolicyOnly(txo Outpoint) (UnfreezeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("UnfreezeTXOPolicyOnly"); err != nil {
		return UnfreezeOK, err
	}

	existing, found, err := r.getTXO(txo)
	if err != nil {
		return UnfreezeOK, err
	}

	if !found {
		return UnfreezeErrorTXONotFrozen, nil
	}

	if existing.Blacklist != BlacklistPolicyOnly {
		return UnfreezeErrorTXOIsInConsensusBlacklist, nil
	}

	batch := kvstore.NewBatch()
	batch.Delete(txoKey(txo))

	if err = r.store.Write(batch); err != nil {
		return UnfreezeOK, err
	}

	r.logger.Debugf("[FrozenTXO][UnfreezeTXOPolicyOnly] %s unfrozen", txo)
	prometheusFrozenTXOUnfreeze.WithLabelValues("policy").Inc()

	return UnfreezeOK, nil
}

// CleanExpiredRecords removes, or downgrades to PolicyOnly, every Consensus record whose valid
// intervals all end at or before height. Records with PolicyExpiresWithConsensus are removed,
// the others are downgraded. The max frozen stop height is recomputed from the remaining records.
func (r *Registry) CleanExpiredRecords(height int32) (CleanExpiredRecordsResult, error) {
	var result CleanExpiredRecordsResult

	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("CleanExpiredRecords"); err != nil {
		return result, err
	}

	batch := kvstore.NewBatch()
	maxStop := UnsetHeight
	policyOnly := NewPolicyOnlyData()

	err := r.scan(recordTypeTXO, func(key, value []byte) error {
		data, err := NewFrozenTXODataFromBytes(value)
		if err != nil {
			return errors.NewStorageError("[FrozenTXO][CleanExpiredRecords] corrupted record for key %x", key, err)
		}

		if data.Blacklist == BlacklistConsensus {
			stop, found := data.maxValidStop()
			if !found || stop <= height {
				if data.PolicyExpiresWithConsensus {
					batch.Delete(key)
					result.NumConsensusRemoved++
				} else {
					batch.Put(key, policyOnly.Bytes())
					result.NumConsensusUpdatedToPolicyOnly++
				}

				return nil
			}
		}

		if stop, ok := data.watermarkStop(); ok && stop > maxStop {
			maxStop = stop
		}

		return nil
	})
	if err != nil {
		return CleanExpiredRecordsResult{}, err
	}

	if err = r.store.Write(batch); err != nil {
		return CleanExpiredRecordsResult{}, err
	}

	r.maxFrozenStopHeight = maxStop
	prometheusFrozenTXOMaxStopHeight.Set(float64(maxStop))
	prometheusFrozenTXOUnfreeze.WithLabelValues("expired").Add(float64(result.NumConsensusRemoved))
	prometheusFrozenTXOCleanExpired.Observe(time.Since(start).Seconds())

	if result.NumConsensusRemoved > 0 || result.NumConsensusUpdatedToPolicyOnly > 0 {
		r.logger.Infof("[FrozenTXO][CleanExpiredRecords] height %d: removed %d, updated to policy only %d, maxFrozenStopHeight=%d",
			height, result.NumConsensusRemoved, result.NumConsensusUpdatedToPolicyOnly, maxStop)
	}

	return result, nil
}

// UnfreezeAll removes every frozen TXO, except PolicyOnly ones when keepPolicyEntries is set,
// and every whitelisted transaction. Both watermarks are reset.
func (r *Registry) UnfreezeAll(keepPolicyEntries bool) (UnfreezeAllResult, error) {
	var result UnfreezeAllResult

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("UnfreezeAll"); err != nil {
		return result, err
	}

	batch := kvstore.NewBatch()

	err := r.scan(recordTypeTXO, func(key, value []byte) error {
		data, err := NewFrozenTXODataFromBytes(value)
		if err != nil {
			return errors.NewStorageError("[FrozenTXO][UnfreezeAll] corrupted record for key %x", key, err)
		}

		if data.Blacklist == BlacklistPolicyOnly {
			if keepPolicyEntries {
				return nil
			}

			result.NumUnfrozenPolicyOnly++
		} else {
			result.NumUnfrozenConsensus++
		}

		batch.Delete(key)

		return nil
	})
	if err != nil {
		return UnfreezeAllResult{}, err
	}

	err = r.scan(recordTypeWhitelist, func(key, _ []byte) error {
		batch.Delete(key)
		result.NumUnwhitelistedTxs++

		return nil
	})
	if err != nil {
		return UnfreezeAllResult{}, err
	}

	if err = r.store.Write(batch); err != nil {
		return UnfreezeAllResult{}, err
	}

	r.maxFrozenStopHeight = UnsetHeight
	r.maxWhitelistEnforceHeight = UnsetHeight
	prometheusFrozenTXOMaxStopHeight.Set(float64(UnsetHeight))
	prometheusFrozenTXOMaxWhitelisted.Set(float64(UnsetHeight))
	prometheusFrozenTXOUnfreeze.WithLabelValues("all").Add(float64(result.NumUnfrozenPolicyOnly + result.NumUnfrozenConsensus))

	r.logger.Infof("[FrozenTXO][UnfreezeAll] unfrozen policy only %d, consensus %d, unwhitelisted txs %d",
		result.NumUnfrozenPolicyOnly, result.NumUnfrozenConsensus, result.NumUnwhitelistedTxs)

	return result, nil
}

// WhitelistTx whitelists a confiscation transaction from enforceAtHeight on. Every TXO it spends
// must be consensus frozen at enforceAtHeight and is moved to the Confiscation blacklist.
// Whitelisting an already whitelisted transaction only ever lowers its enforce height.
func (r *Registry) WhitelistTx(enforceAtHeight int32, tx *bt.Tx) (WhitelistResult, error) {
	if err := r.checkOpen("WhitelistTx"); err != nil {
		return WhitelistErrorNotValid, err
	}

	if !ValidateConfiscationTxContents(tx) {
		prometheusFrozenTXOWhitelist.WithLabelValues(WhitelistErrorNotValid.String()).Inc()
		return WhitelistErrorNotValid, nil
	}

	txid := tx.TxIDChainHash()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("WhitelistTx"); err != nil {
		return WhitelistErrorNotValid, err
	}

	result, err := r.whitelistTx(enforceAtHeight, txid, tx)
	if err != nil {
		return result, err
	}

	r.logger.Debugf("[FrozenTXO][WhitelistTx] %s at height %d: %s", txid, enforceAtHeight, result)
	prometheusFrozenTXOWhitelist.WithLabelValues(result.String()).Inc()

	return result, nil
}

func (r *Registry) whitelistTx(enforceAtHeight int32, txid *chainhash.Hash, tx *bt.Tx) (WhitelistResult, error) {
	existing, found, err := r.getWhitelistedTx(txid)
	if err != nil {
		return WhitelistErrorNotValid, err
	}

	batch := kvstore.NewBatch()

	if found {
		if existing.EnforceAtHeight <= enforceAtHeight {
			return WhitelistOKAlreadyWhitelistedAtLowerHeight, nil
		}

		existing.EnforceAtHeight = enforceAtHeight
		batch.Put(whitelistKey(txid), existing.Bytes())

		if err = r.store.Write(batch); err != nil {
			return WhitelistErrorNotValid, err
		}

		return WhitelistOKUpdated, nil
	}

	whitelisted := &WhitelistedTxData{
		EnforceAtHeight: enforceAtHeight,
		ConfiscatedTXOs: make([]Outpoint, 0, len(tx.Inputs)),
	}

	seen := make(map[Outpoint]struct{}, len(tx.Inputs))

	for _, input := range tx.Inputs {
		txo := NewOutpoint(input.PreviousTxIDChainHash(), input.PreviousTxOutIndex)
		if _, ok := seen[txo]; ok {
			continue
		}

		seen[txo] = struct{}{}

		data, found, err := r.getTXO(txo)
		if err != nil {
			return WhitelistErrorNotValid, err
		}

		if !found || !data.IsFrozenOnConsensus(enforceAtHeight) {
			r.logger.Debugf("[FrozenTXO][WhitelistTx] %s spends %s which is not consensus frozen at height %d", txid, txo, enforceAtHeight)
			return WhitelistErrorTXONotConsensusFrozen, nil
		}

		data.Blacklist = BlacklistConfiscation
		batch.Put(txoKey(txo), data.Bytes())

		whitelisted.ConfiscatedTXOs = append(whitelisted.ConfiscatedTXOs, txo)
	}

	batch.Put(whitelistKey(txid), whitelisted.Bytes())

	if err = r.store.Write(batch); err != nil {
		return WhitelistErrorNotValid, err
	}

	r.raiseMaxWhitelistEnforceHeight(enforceAtHeight)

	return WhitelistOK, nil
}

// ClearWhitelist removes every whitelisted transaction and returns the TXOs they confiscated to
// the Consensus blacklist. TXOs that are no longer Confiscation frozen are left as they are.
func (r *Registry) ClearWhitelist() (ClearWhitelistResult, error) {
	var result ClearWhitelistResult

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkOpen("ClearWhitelist"); err != nil {
		return result, err
	}

	batch := kvstore.NewBatch()
	restored := make(map[Outpoint]struct{})

	err := r.scan(recordTypeWhitelist, func(key, value []byte) error {
		whitelisted, err := NewWhitelistedTxDataFromBytes(value)
		if err != nil {
			return errors.NewStorageError("[FrozenTXO][ClearWhitelist] corrupted record for key %x", key, err)
		}

		for _, txo := range whitelisted.ConfiscatedTXOs {
			if _, ok := restored[txo]; ok {
				continue
			}

			data, found, err := r.getTXO(txo)
			if err != nil {
				return err
			}

			if !found || data.Blacklist != BlacklistConfiscation {
				continue
			}

			restored[txo] = struct{}{}
			data.Blacklist = BlacklistConsensus
			batch.Put(txoKey(txo), data.Bytes())
			result.NumFrozenBackToConsensus++
		}

		batch.Delete(key)
		result.NumUnwhitelistedTxs++

		return nil
	})
	if err != nil {
		return ClearWhitelistResult{}, err
	}

	if err = r.store.Write(batch); err != nil {
		return ClearWhitelistResult{}, err
	}

	r.maxWhitelistEnforceHeight = UnsetHeight
	prometheusFrozenTXOMaxWhitelisted.Set(float64(UnsetHeight))

	r.logger.Infof("[FrozenTXO][ClearWhitelist] unwhitelisted %d txs, %d TXOs back to consensus",
		result.NumUnwhitelistedTxs, result.NumFrozenBackToConsensus)

	return result, nil
}

// GetFrozenTXOData copies the record of txo into data and returns true. When txo is not frozen
// data is left untouched and false is returned. data may be nil.
func (r *Registry) GetFrozenTXOData(txo Outpoint, data *FrozenTXOData) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkOpen("GetFrozenTXOData"); err != nil {
		return false, err
	}

	stored, found, err := r.getTXO(txo)
	if err != nil || !found {
		return false, err
	}

	if data != nil {
		*data = *stored
	}

	return true, nil
}

// IsTxWhitelisted copies the whitelist record of txid into data and returns true. When txid is
// not whitelisted data is left untouched and false is returned. data may be nil.
func (r *Registry) IsTxWhitelisted(txid *chainhash.Hash, data *WhitelistedTxData) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkOpen("IsTxWhitelisted"); err != nil {
		return false, err
	}

	stored, found, err := r.getWhitelistedTx(txid)
	if err != nil || !found {
		return false, err
	}

	if data != nil {
		*data = *stored
	}

	return true, nil
}

// GetMaxFrozenStopHeight returns an upper bound of the greatest finite interval stop over all
// records whose policy freeze expires with the consensus freeze, or UnsetHeight.
func (r *Registry) GetMaxFrozenStopHeight() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.maxFrozenStopHeight
}

// GetMaxWhitelistEnforceHeight returns an upper bound of the enforce height of all whitelisted
// transactions, or UnsetHeight.
func (r *Registry) GetMaxWhitelistEnforceHeight() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.maxWhitelistEnforceHeight
}

// Close closes the underlying store. Every later operation fails with a storage not started error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Swap(true) {
		return nil
	}

	r.logger.Infof("[FrozenTXO] closing registry")

	return r.store.Close()
}

// scan calls fn for every record of type t in a fresh snapshot of the store.
func (r *Registry) scan(t recordType, fn func(key, value []byte) error) error {
	it := r.store.NewIterator()
	defer it.Release()

	for ok := it.Seek([]byte{byte(t)}); ok; ok = it.Next() {
		key := it.Key()
		if !hasRecordType(key, t) {
			break
		}

		if err := fn(key, it.Value()); err != nil {
			return err
		}
	}

	return it.Error()
}
