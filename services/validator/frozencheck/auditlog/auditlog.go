// Package auditlog writes rejected spends of frozen TXOs to a rotating file, one JSON object per line.
package auditlog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/services/validator/frozencheck"
	"github.com/bsv-blockchain/frozentxo/settings"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/jrick/logrotate/rotator"
	"github.com/rs/zerolog"
)

type Logger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// New opens the audit log at path. The file is rotated once it grows beyond maxSizeKB and
// maxRolls rotated files are kept.
func New(path string, maxSizeKB int64, maxRolls int) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.NewConfigurationError("[AuditLog] failed to create directory %s", dir, err)
		}
	}

	r, err := rotator.New(path, maxSizeKB, false, maxRolls)
	if err != nil {
		return nil, errors.NewConfigurationError("[AuditLog] failed to create file rotator for %s", path, err)
	}

	l := NewWithWriter(r)
	l.closer = r

	return l, nil
}

func NewFromSettings(tSettings *settings.Settings) (*Logger, error) {
	return New(tSettings.FrozenTXOAuditLogPath(), int64(tSettings.FrozenTXO.AuditLogMaxSizeKB), tSettings.FrozenTXO.AuditLogMaxRolls)
}

// NewWithWriter returns a logger writing to w. Writes are serialised.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		zl: zerolog.New(zerolog.SyncWriter(w)).With().Timestamp().Logger(),
	}
}

func (l *Logger) event(name string, entry frozencheck.RejectEntry) *zerolog.Event {
	e := l.zl.Log().
		Str("event", name).
		Time("receivedTime", entry.ReceivedTime).
		Str("enforcementLevel", entry.EnforcementLevel.String()).
		Str("source", entry.Source).
		Str("frozenTXO", entry.FrozenOutpoint.String()).
		Str("previousActiveBlockHash", entry.PreviousActiveBlockHash.String())

	if entry.Transaction != nil {
		e = e.Str("txid", entry.Transaction.TxID()).Str("tx", entry.Transaction.String())
	}

	return e
}

func (l *Logger) LogRejectedTransaction(entry frozencheck.RejectEntry) {
	l.event("rejectedTransaction", entry).Send()
}

func (l *Logger) LogRejectedBlock(entry frozencheck.RejectEntry, blockHash chainhash.Hash) {
	l.event("rejectedBlock", entry).Str("blockHash", blockHash.String()).Send()
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}

	return l.closer.Close()
}
