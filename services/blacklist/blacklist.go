// Package blacklist is the operator facing management API of the frozen TXO registry. Requests are
// batches; every item is processed on its own and items that could not be applied are reported
// in the response with a reason instead of failing the whole request.
package blacklist

import (
	"context"
	"fmt"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/settings"
	"github.com/bsv-blockchain/frozentxo/stores/frozentxo"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
)

// Registry is the part of the frozen TXO registry the service drives.
type Registry interface {
	FreezeTXOPolicyOnly(txo frozentxo.Outpoint) (frozentxo.FreezeResult, error)
	FreezeTXOConsensus(txo frozentxo.Outpoint, enforceAtHeight []frozentxo.HeightInterval, policyExpiresWithConsensus bool) (frozentxo.FreezeResult, error)
	UnfreezeTXOPolicyOnly(txo frozentxo.Outpoint) (frozentxo.UnfreezeResult, error)
	CleanExpiredRecords(height int32) (frozentxo.CleanExpiredRecordsResult, error)
	UnfreezeAll(keepPolicyEntries bool) (frozentxo.UnfreezeAllResult, error)
	WhitelistTx(enforceAtHeight int32, tx *bt.Tx) (frozentxo.WhitelistResult, error)
	ClearWhitelist() (frozentxo.ClearWhitelistResult, error)
	QueryAllFrozenTXOs() (*frozentxo.FrozenTXOIterator, error)
	QueryAllWhitelistedTxs() (*frozentxo.WhitelistedTxIterator, error)
}

type Service struct {
	logger   ulogger.Logger
	registry Registry
	settings *settings.Settings
}

func New(logger ulogger.Logger, registry Registry, tSettings *settings.Settings) *Service {
	return &Service{
		logger:   logger,
		registry: registry,
		settings: tSettings,
	}
}

func parseTxOut(txOut TxOut) (frozentxo.Outpoint, error) {
	txid, err := chainhash.NewHashFromStr(txOut.TxID)
	if err != nil {
		return frozentxo.Outpoint{}, errors.NewInvalidArgumentError("invalid txid %q", txOut.TxID, err)
	}

	vout, err := safeconversion.IntToUint32(txOut.Vout)
	if err != nil {
		return frozentxo.Outpoint{}, errors.NewInvalidArgumentError("invalid vout %d", txOut.Vout, err)
	}

	return frozentxo.NewOutpoint(txid, vout), nil
}

func toTxOut(txo frozentxo.Outpoint) TxOut {
	return TxOut{TxID: txo.TxID.String(), Vout: int(txo.Index)}
}

func (t TxOut) String() string {
	return fmt.Sprintf("%s:%d", t.TxID, t.Vout)
}

// toHeight converts a non-negative block height.
func toHeight(name string, value int) (int32, error) {
	height, err := safeconversion.IntToInt32(value)
	if err != nil {
		return 0, errors.NewInvalidArgumentError("invalid %s %d", name, value, err)
	}

	if height < 0 {
		return 0, errors.NewInvalidArgumentError("invalid %s %d, must not be negative", name, value)
	}

	return height, nil
}

func toHeightIntervals(ranges []HeightRange) ([]frozentxo.HeightInterval, error) {
	intervals := make([]frozentxo.HeightInterval, 0, len(ranges))

	for _, r := range ranges {
		start, err := toHeight("interval start", r.Start)
		if err != nil {
			return nil, err
		}

		stop := frozentxo.MaxHeight

		if r.Stop != nil {
			if stop, err = toHeight("interval stop", *r.Stop); err != nil {
				return nil, err
			}
		}

		intervals = append(intervals, frozentxo.HeightInterval{Start: start, Stop: stop})
	}

	return intervals, nil
}

func toHeightRanges(intervals []frozentxo.HeightInterval) []HeightRange {
	if len(intervals) == 0 {
		return nil
	}

	ranges := make([]HeightRange, 0, len(intervals))

	for _, interval := range intervals {
		r := HeightRange{Start: int(interval.Start)}

		if interval.Stop != frozentxo.MaxHeight {
			stop := int(interval.Stop)
			r.Stop = &stop
		}

		ranges = append(ranges, r)
	}

	return ranges
}

func notProcessed(item string, reason interface{}) NotProcessed {
	return NotProcessed{Item: item, Reason: fmt.Sprint(reason)}
}

// AddToPolicyBlacklist freezes funds on the PolicyOnly blacklist. Funds already on the
// Consensus or Confiscation blacklist are reported as not processed.
func (s *Service) AddToPolicyBlacklist(ctx context.Context, funds []Fund) (*Response, error) {
	if len(funds) == 0 {
		return nil, errors.NewInvalidArgumentError("no funds to process")
	}

	s.logger.Debugf("[AddToPolicyBlacklist] called for %d funds", len(funds))

	response := &Response{}

	for _, fund := range funds {
		if err := ctx.Err(); err != nil {
			return response, errors.NewContextCanceledError("[AddToPolicyBlacklist] canceled", err)
		}

		txo, err := parseTxOut(fund.TxOut)
		if err != nil {
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), err))
			continue
		}

		result, err := s.registry.FreezeTXOPolicyOnly(txo)
		if err != nil {
			return response, err
		}

		if result == frozentxo.FreezeErrorAlreadyInConsensusBlacklist {
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), "already in consensus blacklist"))
		}
	}

	return response, nil
}

// AddToConsensusBlacklist freezes funds on the Consensus blacklist for their height ranges, or
// replaces the ranges of funds already on it.
func (s *Service) AddToConsensusBlacklist(ctx context.Context, funds []Fund) (*Response, error) {
	if len(funds) == 0 {
		return nil, errors.NewInvalidArgumentError("no funds to process")
	}

	s.logger.Debugf("[AddToConsensusBlacklist] called for %d funds", len(funds))

	response := &Response{}

	for _, fund := range funds {
		if err := ctx.Err(); err != nil {
			return response, errors.NewContextCanceledError("[AddToConsensusBlacklist] canceled", err)
		}

		txo, err := parseTxOut(fund.TxOut)
		if err != nil {
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), err))
			continue
		}

		intervals, err := toHeightIntervals(fund.EnforceAtHeight)
		if err != nil {
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), err))
			continue
		}

		if _, err = s.registry.FreezeTXOConsensus(txo, intervals, fund.PolicyExpiresWithConsensus); err != nil {
			return response, err
		}
	}

	return response, nil
}

// RemoveFromPolicyBlacklist unfreezes PolicyOnly frozen funds.
func (s *Service) RemoveFromPolicyBlacklist(ctx context.Context, funds []Fund) (*Response, error) {
	if len(funds) == 0 {
		return nil, errors.NewInvalidArgumentError("no funds to process")
	}

	s.logger.Debugf("[RemoveFromPolicyBlacklist] called for %d funds", len(funds))

	response := &Response{}

	for _, fund := range funds {
		if err := ctx.Err(); err != nil {
			return response, errors.NewContextCanceledError("[RemoveFromPolicyBlacklist] canceled", err)
		}

		txo, err := parseTxOut(fund.TxOut)
		if err != nil {
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), err))
			continue
		}

		result, err := s.registry.UnfreezeTXOPolicyOnly(txo)
		if err != nil {
			return response, err
		}

		switch result {
		case frozentxo.UnfreezeErrorTXONotFrozen:
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), "not frozen"))
		case frozentxo.UnfreezeErrorTXOIsInConsensusBlacklist:
			response.NotProcessed = append(response.NotProcessed, notProcessed(fund.TxOut.String(), "in consensus blacklist"))
		}
	}

	return response, nil
}

// QueryBlacklist returns every frozen fund.
func (s *Service) QueryBlacklist(ctx context.Context) ([]BlacklistEntry, error) {
	it, err := s.registry.QueryAllFrozenTXOs()
	if err != nil {
		return nil, err
	}

	defer it.Release()

	entries := make([]BlacklistEntry, 0)

	for it.Next() {
		if err = ctx.Err(); err != nil {
			return nil, errors.NewContextCanceledError("[QueryBlacklist] canceled", err)
		}

		data := it.Value()

		entry := BlacklistEntry{
			TxOut:     toTxOut(it.Key()),
			Blacklist: data.Blacklist.String(),
		}

		if data.Blacklist != frozentxo.BlacklistPolicyOnly {
			entry.EnforceAtHeight = toHeightRanges(data.EnforceAtHeight)
			entry.PolicyExpiresWithConsensus = data.PolicyExpiresWithConsensus
		}

		entries = append(entries, entry)
	}

	if err = it.Error(); err != nil {
		return nil, err
	}

	return entries, nil
}

// AddToConfiscationTxIDWhitelist whitelists confiscation transactions given as hex. Transactions
// that are malformed or spend TXOs that are not consensus frozen at their enforce height are
// reported as not processed.
func (s *Service) AddToConfiscationTxIDWhitelist(ctx context.Context, txs []ConfiscationTransaction) (*Response, error) {
	if len(txs) == 0 {
		return nil, errors.NewInvalidArgumentError("no transactions to process")
	}

	s.logger.Debugf("[AddToConfiscationTxIDWhitelist] called for %d txs", len(txs))

	response := &Response{}

	for _, details := range txs {
		if err := ctx.Err(); err != nil {
			return response, errors.NewContextCanceledError("[AddToConfiscationTxIDWhitelist] canceled", err)
		}

		tx, err := bt.NewTxFromString(details.Hex)
		if err != nil {
			response.NotProcessed = append(response.NotProcessed, notProcessed("", errors.NewInvalidArgumentError("invalid transaction hex", err)))
			continue
		}

		txid := tx.TxIDChainHash().String()

		enforceAtHeight, err := toHeight("enforce height", details.EnforceAtHeight)
		if err != nil {
			response.NotProcessed = append(response.NotProcessed, notProcessed(txid, err))
			continue
		}

		result, err := s.registry.WhitelistTx(enforceAtHeight, tx)
		if err != nil {
			return response, err
		}

		switch result {
		case frozentxo.WhitelistErrorNotValid:
			response.NotProcessed = append(response.NotProcessed, notProcessed(txid, "confiscation transaction is not valid"))
		case frozentxo.WhitelistErrorTXONotConsensusFrozen:
			response.NotProcessed = append(response.NotProcessed, notProcessed(txid, fmt.Sprintf("spends a TXO that is not consensus frozen at height %d", enforceAtHeight)))
		}
	}

	return response, nil
}

// QueryConfiscationTxIDWhitelist returns every whitelisted confiscation transaction, with the
// TXOs it confiscates when verbose is set.
func (s *Service) QueryConfiscationTxIDWhitelist(ctx context.Context, verbose bool) ([]WhitelistEntry, error) {
	it, err := s.registry.QueryAllWhitelistedTxs()
	if err != nil {
		return nil, err
	}

	defer it.Release()

	entries := make([]WhitelistEntry, 0)

	for it.Next() {
		if err = ctx.Err(); err != nil {
			return nil, errors.NewContextCanceledError("[QueryConfiscationTxIDWhitelist] canceled", err)
		}

		txid := it.Key()
		data := it.Value()

		entry := WhitelistEntry{
			TxID:            txid.String(),
			EnforceAtHeight: int(data.EnforceAtHeight),
		}

		if verbose {
			for _, txo := range data.ConfiscatedTXOs {
				entry.ConfiscatedTXOs = append(entry.ConfiscatedTXOs, toTxOut(txo))
			}
		}

		entries = append(entries, entry)
	}

	if err = it.Error(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ClearBlacklists either removes everything from the registry or cleans the records that expired
// at CurrentHeight minus the expiration delta.
func (s *Service) ClearBlacklists(_ context.Context, req ClearBlacklistsRequest) (*ClearBlacklistsResult, error) {
	if req.RemoveAllEntries {
		result, err := s.registry.UnfreezeAll(false)
		if err != nil {
			return nil, err
		}

		return &ClearBlacklistsResult{
			NumRemovedPolicyOnly: result.NumUnfrozenPolicyOnly,
			NumRemovedConsensus:  result.NumUnfrozenConsensus,
			NumUnwhitelistedTxs:  result.NumUnwhitelistedTxs,
		}, nil
	}

	delta := s.settings.FrozenTXO.ExpirationHeightDelta
	if req.ExpirationHeightDelta != nil {
		delta = *req.ExpirationHeightDelta
	}

	if delta < 0 {
		return nil, errors.NewInvalidArgumentError("expiration height delta must not be negative, got %d", delta)
	}

	height, err := safeconversion.IntToInt32(req.CurrentHeight - delta)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("invalid height %d", req.CurrentHeight-delta, err)
	}

	if height < 0 {
		return &ClearBlacklistsResult{}, nil
	}

	result, err := s.registry.CleanExpiredRecords(height)
	if err != nil {
		return nil, err
	}

	return &ClearBlacklistsResult{
		NumRemovedConsensus:             result.NumConsensusRemoved,
		NumConsensusUpdatedToPolicyOnly: result.NumConsensusUpdatedToPolicyOnly,
	}, nil
}

// ClearConfiscationWhitelist removes every whitelisted transaction and returns the TXOs they
// confiscated to the Consensus blacklist.
func (s *Service) ClearConfiscationWhitelist(_ context.Context) (*ClearWhitelistResult, error) {
	result, err := s.registry.ClearWhitelist()
	if err != nil {
		return nil, err
	}

	return &ClearWhitelistResult{
		NumUnwhitelistedTxs:      result.NumUnwhitelistedTxs,
		NumFrozenBackToConsensus: result.NumFrozenBackToConsensus,
	}, nil
}
