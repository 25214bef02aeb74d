package auditlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bsv-blockchain/frozentxo/services/validator/frozencheck"
	"github.com/bsv-blockchain/frozentxo/stores/frozentxo"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntry() frozencheck.RejectEntry {
	tx := bt.NewTx()
	tx.AddOutput(&bt.Output{Satoshis: 1, LockingScript: bscript.NewFromBytes([]byte{0x51})})

	return frozencheck.RejectEntry{
		ReceivedTime:            time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		EnforcementLevel:        frozentxo.BlacklistConsensus,
		Transaction:             tx,
		Source:                  "p2p",
		FrozenOutpoint:          frozentxo.Outpoint{TxID: chainhash.Hash{0x01}, Index: 3},
		PreviousActiveBlockHash: chainhash.Hash{0x02},
	}
}

func decodeLines(t *testing.T, b []byte) []map[string]interface{} {
	var lines []map[string]interface{}

	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))

		lines = append(lines, line)
	}

	require.NoError(t, scanner.Err())

	return lines
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	l := NewWithWriter(&buf)
	entry := testEntry()

	l.LogRejectedTransaction(entry)
	l.LogRejectedBlock(entry, chainhash.Hash{0x03})
	require.NoError(t, l.Close())

	lines := decodeLines(t, buf.Bytes())
	require.Len(t, lines, 2)

	assert.Equal(t, "rejectedTransaction", lines[0]["event"])
	assert.Equal(t, "consensus", lines[0]["enforcementLevel"])
	assert.Equal(t, "p2p", lines[0]["source"])
	assert.Equal(t, entry.FrozenOutpoint.String(), lines[0]["frozenTXO"])
	assert.Equal(t, entry.Transaction.TxID(), lines[0]["txid"])
	assert.Equal(t, entry.PreviousActiveBlockHash.String(), lines[0]["previousActiveBlockHash"])
	assert.NotContains(t, lines[0], "blockHash")

	assert.Equal(t, "rejectedBlock", lines[1]["event"])
	assert.Equal(t, chainhash.Hash{0x03}.String(), lines[1]["blockHash"])
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "frozentxo.log")

	l, err := New(path, 1024, 2)
	require.NoError(t, err)

	entry := testEntry()
	entry.Transaction = nil

	l.LogRejectedTransaction(entry)
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := decodeLines(t, b)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0]["receivedTime"].(string), "2024-05-06T07:08:09"))
	assert.NotContains(t, lines[0], "txid")
}
