// Package frozencheck decides at validation time whether the inputs of a transaction, or of a
// transaction inside a block, spend frozen TXOs.
//
// A Check is created once per validated transaction or block and is bound to one height and
// context. A Check created with NewBlockCheck only enforces consensus freezes; one created with
// NewTxCheck also enforces policy freezes.
package frozencheck

import (
	"time"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/stores/frozentxo"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Registry is the part of the frozen TXO registry a Check reads from.
type Registry interface {
	GetFrozenTXOData(txo frozentxo.Outpoint, data *frozentxo.FrozenTXOData) (bool, error)
	IsTxWhitelisted(txid *chainhash.Hash, data *frozentxo.WhitelistedTxData) (bool, error)
}

// RejectEntry describes one rejected spend of a frozen TXO.
type RejectEntry struct {
	ReceivedTime            time.Time
	EnforcementLevel        frozentxo.Blacklist
	Transaction             *bt.Tx
	Source                  string
	FrozenOutpoint          frozentxo.Outpoint
	PreviousActiveBlockHash chainhash.Hash
}

// RejectLogger records rejected spends. It is called exactly once per rejection.
type RejectLogger interface {
	LogRejectedTransaction(entry RejectEntry)
	LogRejectedBlock(entry RejectEntry, blockHash chainhash.Hash)
}

// TxGetter returns the transaction being checked and the time it was received. It is only called
// when a spend is rejected.
type TxGetter func() (*bt.Tx, time.Time)

type Check struct {
	registry                Registry
	rejectLogger            RejectLogger
	height                  int32
	source                  string
	previousActiveBlockHash chainhash.Hash
	receivedTime            time.Time
	currentBlockHash        *chainhash.Hash
}

// NewTxCheck returns a Check for a new transaction that would be mined at height.
func NewTxCheck(registry Registry, height int32, source string, previousActiveBlockHash chainhash.Hash,
	receivedTime time.Time, rejectLogger RejectLogger) *Check {
	initPrometheusMetrics()

	return &Check{
		registry:                registry,
		rejectLogger:            rejectLogger,
		height:                  height,
		source:                  source,
		previousActiveBlockHash: previousActiveBlockHash,
		receivedTime:            receivedTime,
	}
}

// NewBlockCheck returns a Check for the transactions of block currentBlockHash at height.
func NewBlockCheck(registry Registry, height int32, source string, previousActiveBlockHash chainhash.Hash,
	receivedTime time.Time, rejectLogger RejectLogger, currentBlockHash chainhash.Hash) *Check {
	c := NewTxCheck(registry, height, source, previousActiveBlockHash, receivedTime, rejectLogger)
	c.currentBlockHash = &currentBlockHash

	return c
}

func (c *Check) IsBlockCheck() bool {
	return c.currentBlockHash != nil
}

func (c *Check) Height() int32 {
	return c.height
}

// Check reports whether outpoint may be spent. On rejection the transaction is fetched through
// txGetter and handed to the reject logger. The error is only set when the registry fails.
func (c *Check) Check(outpoint frozentxo.Outpoint, txGetter TxGetter) (bool, error) {
	var data frozentxo.FrozenTXOData

	found, err := c.registry.GetFrozenTXOData(outpoint, &data)
	if err != nil {
		return false, err
	}

	if !found {
		return true, nil
	}

	var level frozentxo.Blacklist

	if c.IsBlockCheck() {
		if !data.IsFrozenOnConsensus(c.height) {
			return true, nil
		}

		level = frozentxo.BlacklistConsensus
	} else {
		if !data.IsFrozenOnPolicy(c.height) {
			return true, nil
		}

		level = frozentxo.BlacklistPolicyOnly
		if data.IsFrozenOnConsensus(c.height) {
			level = frozentxo.BlacklistConsensus
		}
	}

	c.reject(outpoint, level, txGetter)

	return false, nil
}

// CheckWithTx is Check for a transaction that is already at hand.
func (c *Check) CheckWithTx(outpoint frozentxo.Outpoint, tx *bt.Tx, receivedTime time.Time) (bool, error) {
	return c.Check(outpoint, func() (*bt.Tx, time.Time) {
		return tx, receivedTime
	})
}

func (c *Check) reject(outpoint frozentxo.Outpoint, level frozentxo.Blacklist, txGetter TxGetter) {
	mode := "tx"
	if c.IsBlockCheck() {
		mode = "block"
	}

	prometheusFrozenCheckRejected.WithLabelValues(mode, level.String()).Inc()

	if c.rejectLogger == nil {
		return
	}

	tx, receivedTime := txGetter()

	entry := RejectEntry{
		ReceivedTime:            receivedTime,
		EnforcementLevel:        level,
		Transaction:             tx,
		Source:                  c.source,
		FrozenOutpoint:          outpoint,
		PreviousActiveBlockHash: c.previousActiveBlockHash,
	}

	if c.IsBlockCheck() {
		c.rejectLogger.LogRejectedBlock(entry, *c.currentBlockHash)
	} else {
		c.rejectLogger.LogRejectedTransaction(entry)
	}
}

// CheckTransactionInputs checks every input of tx and returns a tx inputs frozen error (or a block
// tx inputs frozen error for block checks) naming the first frozen TXO. Coinbase transactions are
// never rejected, and neither are whitelisted confiscation transactions from their enforce height on.
func (c *Check) CheckTransactionInputs(tx *bt.Tx) error {
	if tx.IsCoinbase() {
		return nil
	}

	if frozentxo.IsConfiscationTx(tx) {
		var whitelisted frozentxo.WhitelistedTxData

		found, err := c.registry.IsTxWhitelisted(tx.TxIDChainHash(), &whitelisted)
		if err != nil {
			return err
		}

		if found && whitelisted.EnforceAtHeight <= c.height {
			return nil
		}
	}

	for _, input := range tx.Inputs {
		outpoint := frozentxo.NewOutpoint(input.PreviousTxIDChainHash(), input.PreviousTxOutIndex)

		ok, err := c.CheckWithTx(outpoint, tx, c.receivedTime)
		if err != nil {
			return err
		}

		if ok {
			continue
		}

		var rejectErr *errors.Error
		if c.IsBlockCheck() {
			rejectErr = errors.NewBlockTxInputsFrozenError("[CheckTransactionInputs][%s] tx spends frozen TXO %s in block %s", tx.TxIDChainHash(), outpoint, c.currentBlockHash)
		} else {
			rejectErr = errors.NewTxInputsFrozenError("[CheckTransactionInputs][%s] tx spends frozen TXO %s", tx.TxIDChainHash(), outpoint)
		}

		rejectErr.SetData("outpoint", outpoint.String())
		rejectErr.SetData("height", c.height)

		return rejectErr
	}

	return nil
}
