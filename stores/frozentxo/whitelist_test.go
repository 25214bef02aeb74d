package frozentxo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitelistTx(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Registry) {
		a := testOutpoint(1)
		b := testOutpoint(2)
		intervals := []HeightInterval{{Start: 100, Stop: 200}}

		_, err := r.FreezeTXOConsensus(a, intervals, true)
		require.NoError(t, err)
		_, err = r.FreezeTXOConsensus(b, intervals, false)
		require.NoError(t, err)

		tx := newConfiscationTx(a, b)

		result, err := r.WhitelistTx(150, tx)
		require.NoError(t, err)
		assert.Equal(t, WhitelistOK, result)
		assert.Equal(t, int32(150), r.GetMaxWhitelistEnforceHeight())

		for _, txo := range []Outpoint{a, b} {
			var data FrozenTXOData

			found, err := r.GetFrozenTXOData(txo, &data)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, BlacklistConfiscation, data.Blacklist)
			assert.Equal(t, intervals, data.EnforceAtHeight)
		}

		var whitelisted WhitelistedTxData

		found, err := r.IsTxWhitelisted(tx.TxIDChainHash(), &whitelisted)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, WhitelistedTxData{EnforceAtHeight: 150, ConfiscatedTXOs: []Outpoint{a, b}}, whitelisted)

		// moving TXOs to confiscation leaves the frozen stop watermark alone
		assert.Equal(t, int32(200), r.GetMaxFrozenStopHeight())

		result, err = r.WhitelistTx(150, tx)
		require.NoError(t, err)
		assert.Equal(t, WhitelistOKAlreadyWhitelistedAtLowerHeight, result)

		result, err = r.WhitelistTx(180, tx)
		require.NoError(t, err)
		assert.Equal(t, WhitelistOKAlreadyWhitelistedAtLowerHeight, result)

		result, err = r.WhitelistTx(120, tx)
		require.NoError(t, err)
		assert.Equal(t, WhitelistOKUpdated, result)

		found, err = r.IsTxWhitelisted(tx.TxIDChainHash(), &whitelisted)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int32(120), whitelisted.EnforceAtHeight)
		assert.Equal(t, []Outpoint{a, b}, whitelisted.ConfiscatedTXOs)

		// the watermark is not lowered
		assert.Equal(t, int32(150), r.GetMaxWhitelistEnforceHeight())
	})
}

func TestWhitelistTxNotConsensusFrozenLeavesStoreUnchanged(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Registry) {
		frozen := testOutpoint(1)
		policy := testOutpoint(2)
		missing := testOutpoint(3)

		_, err := r.FreezeTXOConsensus(frozen, []HeightInterval{{Start: 10, Stop: 20}}, true)
		require.NoError(t, err)
		_, err = r.FreezeTXOPolicyOnly(policy)
		require.NoError(t, err)

		before := dumpStore(t, r.store)

		for name, tx := range map[string]struct {
			height int32
			inputs []Outpoint
		}{
			"missing input":             {15, []Outpoint{missing}},
			"policy only input":         {15, []Outpoint{policy}},
			"outside interval":          {20, []Outpoint{frozen}},
			"one of several not frozen": {15, []Outpoint{frozen, missing}},
		} {
			t.Run(name, func(t *testing.T) {
				result, err := r.WhitelistTx(tx.height, newConfiscationTx(tx.inputs...))
				require.NoError(t, err)
				assert.Equal(t, WhitelistErrorTXONotConsensusFrozen, result)
				assert.Equal(t, before, dumpStore(t, r.store))
			})
		}

		assert.Equal(t, UnsetHeight, r.GetMaxWhitelistEnforceHeight())
	})
}

func TestWhitelistTxNotValid(t *testing.T) {
	r := newTestRegistry(t)
	txo := testOutpoint(1)

	_, err := r.FreezeTXOConsensus(txo, []HeightInterval{{Start: 0, Stop: MaxHeight}}, false)
	require.NoError(t, err)

	result, err := r.WhitelistTx(10, newTestTx([]Outpoint{txo}, p2pkhLockingScript()))
	require.NoError(t, err)
	assert.Equal(t, WhitelistErrorNotValid, result)

	result, err = r.WhitelistTx(10, nil)
	require.NoError(t, err)
	assert.Equal(t, WhitelistErrorNotValid, result)

	var data FrozenTXOData

	_, err = r.GetFrozenTXOData(txo, &data)
	require.NoError(t, err)
	assert.Equal(t, BlacklistConsensus, data.Blacklist)
}

func TestClearWhitelist(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Registry) {
		a := testOutpoint(1)
		b := testOutpoint(2)
		c := testOutpoint(3)
		intervals := []HeightInterval{{Start: 0, Stop: 100}}

		for _, txo := range []Outpoint{a, b, c} {
			_, err := r.FreezeTXOConsensus(txo, intervals, true)
			require.NoError(t, err)
		}

		result, err := r.WhitelistTx(10, newConfiscationTx(a, b))
		require.NoError(t, err)
		require.Equal(t, WhitelistOK, result)

		result, err = r.WhitelistTx(20, newConfiscationTx(c))
		require.NoError(t, err)
		require.Equal(t, WhitelistOK, result)

		// a TXO that is no longer confiscated is left alone
		policy := NewPolicyOnlyData()
		require.NoError(t, r.putTXO(c, &policy))

		cleared, err := r.ClearWhitelist()
		require.NoError(t, err)
		assert.Equal(t, ClearWhitelistResult{NumUnwhitelistedTxs: 2, NumFrozenBackToConsensus: 2}, cleared)
		assert.Equal(t, UnsetHeight, r.GetMaxWhitelistEnforceHeight())
		assert.Equal(t, int32(100), r.GetMaxFrozenStopHeight())

		for _, txo := range []Outpoint{a, b} {
			var data FrozenTXOData

			found, err := r.GetFrozenTXOData(txo, &data)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, FrozenTXOData{Blacklist: BlacklistConsensus, EnforceAtHeight: intervals, PolicyExpiresWithConsensus: true}, data)
		}

		var data FrozenTXOData

		_, err = r.GetFrozenTXOData(c, &data)
		require.NoError(t, err)
		assert.Equal(t, BlacklistPolicyOnly, data.Blacklist)

		it, err := r.QueryAllWhitelistedTxs()
		require.NoError(t, err)

		defer it.Release()

		assert.False(t, it.Next())
	})
}
