package settings

import (
	"net/url"
)

type Settings struct {
	DataFolder string
	LogLevel   string
	PrettyLogs bool
	FrozenTXO  FrozenTXOSettings
}

type FrozenTXOSettings struct {
	// StoreURL selects the substrate: leveldb://, badger:// or memory://
	StoreURL          *url.URL
	CacheSizeMB       int
	AuditLogFile      string
	AuditLogMaxSizeKB int
	AuditLogMaxRolls  int
	// ExpirationHeightDelta is subtracted from the tip height when expired consensus records are cleaned
	ExpirationHeightDelta int
}
