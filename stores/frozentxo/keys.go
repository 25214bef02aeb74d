package frozentxo

import (
	"encoding/binary"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// All records share one keyspace; the first key byte selects the table.
type recordType byte

const (
	recordTypeTXO       recordType = 1
	recordTypeWhitelist recordType = 2
)

const outpointSize = chainhash.HashSize + 4

func appendOutpoint(b []byte, o Outpoint) []byte {
	b = append(b, o.TxID[:]...)
	return binary.LittleEndian.AppendUint32(b, o.Index)
}

func parseOutpoint(b []byte) (Outpoint, bool) {
	if len(b) != outpointSize {
		return Outpoint{}, false
	}

	var o Outpoint

	copy(o.TxID[:], b[:chainhash.HashSize])
	o.Index = binary.LittleEndian.Uint32(b[chainhash.HashSize:])

	return o, true
}

func txoKey(o Outpoint) []byte {
	return appendOutpoint(append(make([]byte, 0, 1+outpointSize), byte(recordTypeTXO)), o)
}

func whitelistKey(txid *chainhash.Hash) []byte {
	return append(append(make([]byte, 0, 1+chainhash.HashSize), byte(recordTypeWhitelist)), txid[:]...)
}

func hasRecordType(key []byte, t recordType) bool {
	return len(key) > 0 && key[0] == byte(t)
}

func parseTXOKey(key []byte) (Outpoint, bool) {
	if !hasRecordType(key, recordTypeTXO) {
		return Outpoint{}, false
	}

	return parseOutpoint(key[1:])
}

func parseWhitelistKey(key []byte) (chainhash.Hash, bool) {
	var txid chainhash.Hash

	if !hasRecordType(key, recordTypeWhitelist) || len(key) != 1+chainhash.HashSize {
		return txid, false
	}

	copy(txid[:], key[1:])

	return txid, true
}
