package frozencheck

import (
	"sync"
	"testing"
	"time"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/stores/frozentxo"
	"github.com/bsv-blockchain/frozentxo/stores/kvstore/leveldb"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loggedBlock struct {
	entry     RejectEntry
	blockHash chainhash.Hash
}

type mockRejectLogger struct {
	mu     sync.Mutex
	txs    []RejectEntry
	blocks []loggedBlock
}

func (m *mockRejectLogger) LogRejectedTransaction(entry RejectEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.txs = append(m.txs, entry)
}

func (m *mockRejectLogger) LogRejectedBlock(entry RejectEntry, blockHash chainhash.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = append(m.blocks, loggedBlock{entry: entry, blockHash: blockHash})
}

var (
	previousBlockHash = chainhash.Hash{0x01}
	currentBlockHash  = chainhash.Hash{0x02}
	received          = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
)

func newRegistry(t *testing.T) *frozentxo.Registry {
	store, err := leveldb.NewMemory(ulogger.TestLogger{}, 0)
	require.NoError(t, err)

	r, err := frozentxo.New(ulogger.TestLogger{}, store)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = r.Close()
	})

	return r
}

func outpoint(i byte) frozentxo.Outpoint {
	return frozentxo.Outpoint{TxID: chainhash.Hash{0xee, i}, Index: uint32(i)}
}

func spendingTx(t *testing.T, outputScript *bscript.Script, inputs ...frozentxo.Outpoint) *bt.Tx {
	tx := bt.NewTx()

	for _, o := range inputs {
		txid := o.TxID
		input := &bt.Input{PreviousTxOutIndex: o.Index, UnlockingScript: bscript.NewFromBytes([]byte{}), SequenceNumber: 0xffffffff}
		require.NoError(t, input.PreviousTxIDAdd(&txid))

		tx.Inputs = append(tx.Inputs, input)
	}

	if outputScript == nil {
		outputScript = bscript.NewFromBytes([]byte{0x51})
	}

	tx.AddOutput(&bt.Output{Satoshis: 1, LockingScript: outputScript})

	return tx
}

func TestCheckTxMode(t *testing.T) {
	r := newRegistry(t)
	logger := &mockRejectLogger{}

	policy := outpoint(1)
	consensus := outpoint(2)
	expired := outpoint(3)
	free := outpoint(4)

	_, err := r.FreezeTXOPolicyOnly(policy)
	require.NoError(t, err)
	_, err = r.FreezeTXOConsensus(consensus, []frozentxo.HeightInterval{{Start: 100, Stop: 200}}, false)
	require.NoError(t, err)
	_, err = r.FreezeTXOConsensus(expired, []frozentxo.HeightInterval{{Start: 0, Stop: 50}}, true)
	require.NoError(t, err)

	c := NewTxCheck(r, 150, "p2p", previousBlockHash, received, logger)
	require.False(t, c.IsBlockCheck())

	tx := spendingTx(t, nil, policy)
	getterCalls := 0
	getter := func() (*bt.Tx, time.Time) {
		getterCalls++
		return tx, received
	}

	ok, err := c.Check(free, getter)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Check(expired, getter)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, getterCalls)

	ok, err = c.Check(policy, getter)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Check(consensus, getter)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, getterCalls)
	require.Len(t, logger.txs, 2)
	assert.Empty(t, logger.blocks)

	assert.Equal(t, RejectEntry{
		ReceivedTime:            received,
		EnforcementLevel:        frozentxo.BlacklistPolicyOnly,
		Transaction:             tx,
		Source:                  "p2p",
		FrozenOutpoint:          policy,
		PreviousActiveBlockHash: previousBlockHash,
	}, logger.txs[0])
	assert.Equal(t, frozentxo.BlacklistConsensus, logger.txs[1].EnforcementLevel)

	// outside the interval the consensus frozen TXO is still policy frozen
	c = NewTxCheck(r, 250, "rpc", previousBlockHash, received, logger)

	ok, err = c.CheckWithTx(consensus, tx, received)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, frozentxo.BlacklistPolicyOnly, logger.txs[2].EnforcementLevel)
}

func TestCheckBlockMode(t *testing.T) {
	r := newRegistry(t)
	logger := &mockRejectLogger{}

	policy := outpoint(1)
	consensus := outpoint(2)

	_, err := r.FreezeTXOPolicyOnly(policy)
	require.NoError(t, err)
	_, err = r.FreezeTXOConsensus(consensus, []frozentxo.HeightInterval{{Start: 100, Stop: 200}}, false)
	require.NoError(t, err)

	tx := spendingTx(t, nil, policy, consensus)

	c := NewBlockCheck(r, 150, "block", previousBlockHash, received, logger, currentBlockHash)
	require.True(t, c.IsBlockCheck())

	ok, err := c.CheckWithTx(policy, tx, received)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckWithTx(consensus, tx, received)
	require.NoError(t, err)
	assert.False(t, ok)

	require.Len(t, logger.blocks, 1)
	assert.Empty(t, logger.txs)
	assert.Equal(t, currentBlockHash, logger.blocks[0].blockHash)
	assert.Equal(t, frozentxo.BlacklistConsensus, logger.blocks[0].entry.EnforcementLevel)
	assert.Equal(t, consensus, logger.blocks[0].entry.FrozenOutpoint)

	c = NewBlockCheck(r, 200, "block", previousBlockHash, received, logger, currentBlockHash)

	ok, err = c.CheckWithTx(consensus, tx, received)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckTransactionInputs(t *testing.T) {
	r := newRegistry(t)
	logger := &mockRejectLogger{}

	frozen := outpoint(1)
	free := outpoint(2)

	_, err := r.FreezeTXOConsensus(frozen, []frozentxo.HeightInterval{{Start: 0, Stop: frozentxo.MaxHeight}}, false)
	require.NoError(t, err)

	t.Run("tx mode", func(t *testing.T) {
		c := NewTxCheck(r, 10, "p2p", previousBlockHash, received, logger)

		require.NoError(t, c.CheckTransactionInputs(spendingTx(t, nil, free)))

		err := c.CheckTransactionInputs(spendingTx(t, nil, free, frozen))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrTxInputsFrozen))
		assert.True(t, errors.IsFrozenRejection(err))

		var tErr *errors.Error
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, frozen.String(), tErr.GetData("outpoint"))
	})

	t.Run("block mode", func(t *testing.T) {
		c := NewBlockCheck(r, 10, "block", previousBlockHash, received, logger, currentBlockHash)

		err := c.CheckTransactionInputs(spendingTx(t, nil, frozen))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBlockTxInputsFrozen))
		assert.False(t, errors.Is(err, errors.ErrTxInputsFrozen))
	})

	t.Run("whitelisted confiscation tx", func(t *testing.T) {
		push := append([]byte{0x01}, make([]byte, 20)...)
		script := append([]byte{bscript.OpFALSE, bscript.OpRETURN, 0x04, 'c', 'f', 't', 'x', byte(len(push))}, push...)

		tx := spendingTx(t, bscript.NewFromBytes(script), frozen)

		result, err := r.WhitelistTx(20, tx)
		require.NoError(t, err)
		require.Equal(t, frozentxo.WhitelistOK, result)

		before := len(logger.blocks)

		// below the enforce height it is rejected like any other spend
		err = NewBlockCheck(r, 19, "block", previousBlockHash, received, logger, currentBlockHash).CheckTransactionInputs(tx)
		assert.True(t, errors.Is(err, errors.ErrBlockTxInputsFrozen))
		assert.Len(t, logger.blocks, before+1)

		require.NoError(t, NewBlockCheck(r, 20, "block", previousBlockHash, received, logger, currentBlockHash).CheckTransactionInputs(tx))
		require.NoError(t, NewTxCheck(r, 25, "p2p", previousBlockHash, received, logger).CheckTransactionInputs(tx))
		assert.Len(t, logger.blocks, before+1)
	})
}

func TestCheckWithoutLogger(t *testing.T) {
	r := newRegistry(t)

	_, err := r.FreezeTXOPolicyOnly(outpoint(1))
	require.NoError(t, err)

	c := NewTxCheck(r, 1, "p2p", previousBlockHash, received, nil)

	ok, err := c.Check(outpoint(1), func() (*bt.Tx, time.Time) {
		t.Fatal("tx getter must not be called without a logger")
		return nil, time.Time{}
	})
	require.NoError(t, err)
	assert.False(t, ok)
}
