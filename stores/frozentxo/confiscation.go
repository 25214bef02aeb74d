package frozentxo

import (
	"bytes"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
)

const (
	confiscationProtocolVersion = 0x01
	confiscationOrderHashSize   = 20
	maxConfiscationScriptSize   = 83
	maxDirectPushSize           = 0x4b
)

// confiscationScriptPrefix is OP_FALSE OP_RETURN followed by a 4 byte push of the protocol id.
var confiscationScriptPrefix = []byte{bscript.OpFALSE, bscript.OpRETURN, 0x04, 'c', 'f', 't', 'x'}

func hasConfiscationPrefix(script *bscript.Script) bool {
	return script != nil && bytes.HasPrefix(*script, confiscationScriptPrefix)
}

// isProvablyUnspendable reports whether the script starts with OP_RETURN or OP_FALSE OP_RETURN.
func isProvablyUnspendable(script *bscript.Script) bool {
	if script == nil || len(*script) == 0 {
		return false
	}

	s := *script

	if s[0] == bscript.OpRETURN {
		return true
	}

	return len(s) > 1 && s[0] == bscript.OpFALSE && s[1] == bscript.OpRETURN
}

// IsConfiscationTx reports whether the first output of tx carries the confiscation protocol tag.
// The rest of the transaction is not validated.
func IsConfiscationTx(tx *bt.Tx) bool {
	if tx == nil || len(tx.Outputs) == 0 {
		return false
	}

	return hasConfiscationPrefix(tx.Outputs[0].LockingScript)
}

// ValidateConfiscationTxContents reports whether tx is a well formed confiscation transaction:
//   - it spends at least one input
//   - output 0 is the protocol prefix followed by exactly one direct push holding the
//     version byte, the 20 byte order hash and an optional location hint
//   - the script of output 0 is at most 83 bytes
//   - no other output is provably unspendable
func ValidateConfiscationTxContents(tx *bt.Tx) bool {
	if !IsConfiscationTx(tx) || len(tx.Inputs) == 0 {
		return false
	}

	script := *tx.Outputs[0].LockingScript
	if len(script) > maxConfiscationScriptSize || len(script) <= len(confiscationScriptPrefix) {
		return false
	}

	pushLen := int(script[len(confiscationScriptPrefix)])
	payload := script[len(confiscationScriptPrefix)+1:]

	// only direct pushes (opcodes 0x01-0x4b) are allowed, and nothing may follow the push
	if pushLen < 1+confiscationOrderHashSize || pushLen > maxDirectPushSize || len(payload) != pushLen {
		return false
	}

	if payload[0] != confiscationProtocolVersion {
		return false
	}

	for _, output := range tx.Outputs[1:] {
		if isProvablyUnspendable(output.LockingScript) {
			return false
		}
	}

	return true
}
