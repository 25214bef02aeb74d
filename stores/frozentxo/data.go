package frozentxo

import (
	"fmt"
	"math"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Blacklist is the enforcement tier of a frozen TXO.
type Blacklist uint8

const (
	// BlacklistConsensus rejects spends in new transactions and in blocks while a height interval covers the height.
	BlacklistConsensus Blacklist = 1
	// BlacklistPolicyOnly rejects spends in new transactions only.
	BlacklistPolicyOnly Blacklist = 2
	// BlacklistConfiscation is a permanent consensus freeze set by a whitelisted confiscation transaction.
	BlacklistConfiscation Blacklist = 3
)

func (b Blacklist) String() string {
	switch b {
	case BlacklistConsensus:
		return "consensus"
	case BlacklistPolicyOnly:
		return "policy"
	case BlacklistConfiscation:
		return "confiscation"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(b))
	}
}

func (b Blacklist) valid() bool {
	return b >= BlacklistConsensus && b <= BlacklistConfiscation
}

const (
	// MaxHeight is used as the stop of an interval that never ends.
	MaxHeight int32 = math.MaxInt32

	// UnsetHeight is the value of a watermark when no record contributes to it.
	UnsetHeight int32 = -1
)

// HeightInterval is the half-open block height range [Start, Stop).
// Intervals with Start >= Stop are ignored.
type HeightInterval struct {
	Start int32
	Stop  int32
}

func (i HeightInterval) Valid() bool {
	return i.Start < i.Stop
}

func (i HeightInterval) Contains(height int32) bool {
	return i.Start <= height && height < i.Stop
}

func (i HeightInterval) String() string {
	if i.Stop == MaxHeight {
		return fmt.Sprintf("[%d,inf)", i.Start)
	}

	return fmt.Sprintf("[%d,%d)", i.Start, i.Stop)
}

// FrozenTXOData is the record stored for a frozen TXO. EnforceAtHeight and
// PolicyExpiresWithConsensus only carry meaning for Consensus and Confiscation records.
type FrozenTXOData struct {
	Blacklist                  Blacklist
	EnforceAtHeight            []HeightInterval
	PolicyExpiresWithConsensus bool
}

func NewPolicyOnlyData() FrozenTXOData {
	return FrozenTXOData{Blacklist: BlacklistPolicyOnly}
}

// maxValidStop returns the greatest stop over the valid intervals.
func (d *FrozenTXOData) maxValidStop() (int32, bool) {
	stop, found := int32(0), false

	for _, interval := range d.EnforceAtHeight {
		if interval.Valid() && (!found || interval.Stop > stop) {
			stop, found = interval.Stop, true
		}
	}

	return stop, found
}

// watermarkStop returns what the record contributes to the max frozen stop height:
// the greatest finite stop of a valid interval, for records whose policy ban expires.
func (d *FrozenTXOData) watermarkStop() (int32, bool) {
	if d.Blacklist == BlacklistPolicyOnly || !d.PolicyExpiresWithConsensus {
		return 0, false
	}

	stop, found := int32(0), false

	for _, interval := range d.EnforceAtHeight {
		if interval.Valid() && interval.Stop != MaxHeight && (!found || interval.Stop > stop) {
			stop, found = interval.Stop, true
		}
	}

	return stop, found
}

// IsFrozenOnPolicy reports whether spending the TXO in a new transaction at height is forbidden.
func (d *FrozenTXOData) IsFrozenOnPolicy(height int32) bool {
	switch d.Blacklist {
	case BlacklistPolicyOnly, BlacklistConfiscation:
		return true
	case BlacklistConsensus:
		if !d.PolicyExpiresWithConsensus {
			return true
		}

		stop, found := d.maxValidStop()

		return found && height < stop
	default:
		return false
	}
}

// IsFrozenOnConsensus reports whether spending the TXO in a block at height is forbidden.
func (d *FrozenTXOData) IsFrozenOnConsensus(height int32) bool {
	switch d.Blacklist {
	case BlacklistConfiscation:
		return true
	case BlacklistConsensus:
		for _, interval := range d.EnforceAtHeight {
			if interval.Contains(height) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func (d *FrozenTXOData) sameEnforcement(other *FrozenTXOData) bool {
	if d.PolicyExpiresWithConsensus != other.PolicyExpiresWithConsensus ||
		len(d.EnforceAtHeight) != len(other.EnforceAtHeight) {
		return false
	}

	for i := range d.EnforceAtHeight {
		if d.EnforceAtHeight[i] != other.EnforceAtHeight[i] {
			return false
		}
	}

	return true
}

func (d *FrozenTXOData) String() string {
	if d.Blacklist == BlacklistPolicyOnly {
		return d.Blacklist.String()
	}

	return fmt.Sprintf("%s %v policyExpiresWithConsensus=%t", d.Blacklist, d.EnforceAtHeight, d.PolicyExpiresWithConsensus)
}

// Outpoint identifies a transaction output.
type Outpoint struct {
	TxID  chainhash.Hash
	Index uint32
}

func NewOutpoint(txid *chainhash.Hash, index uint32) Outpoint {
	return Outpoint{TxID: *txid, Index: index}
}

func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Index)
}

// WhitelistedTxData is the record stored for a whitelisted confiscation transaction.
type WhitelistedTxData struct {
	// EnforceAtHeight is the lowest height at which the transaction may be mined.
	EnforceAtHeight int32
	// ConfiscatedTXOs are the inputs of the transaction, moved to BlacklistConfiscation.
	ConfiscatedTXOs []Outpoint
}
