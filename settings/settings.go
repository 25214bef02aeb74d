package settings

import (
	"net/url"
	"path/filepath"
	"strings"
)

func NewSettings() *Settings {
	return &Settings{
		DataFolder: getString("dataFolder", "data"),
		LogLevel:   getString("logLevel", "INFO"),
		PrettyLogs: getBool("PRETTY_LOGS", true),
		FrozenTXO: FrozenTXOSettings{
			StoreURL:              getURL("frozentxo_store", "leveldb:///frozentxo"),
			CacheSizeMB:           getInt("frozentxo_cacheSizeMB", 8),
			AuditLogFile:          getString("frozentxo_auditLogFile", "frozentxo.log"),
			AuditLogMaxSizeKB:     getInt("frozentxo_auditLogMaxSizeKB", 10240),
			AuditLogMaxRolls:      getInt("frozentxo_auditLogMaxRolls", 3),
			ExpirationHeightDelta: getInt("frozentxo_expirationHeightDelta", 0),
		},
	}
}

// FrozenTXOCacheSizeBytes returns the substrate cache budget in bytes.
func (s *Settings) FrozenTXOCacheSizeBytes() int {
	if s.FrozenTXO.CacheSizeMB <= 0 {
		return 0
	}

	return s.FrozenTXO.CacheSizeMB << 20
}

// FrozenTXOStorePath resolves the directory of the substrate. URLs without a host are relative
// to the data folder, e.g. leveldb:///frozentxo -> data/frozentxo; leveldb://./db -> db.
func (s *Settings) FrozenTXOStorePath() string {
	return resolvePath(s.DataFolder, s.FrozenTXO.StoreURL)
}

// FrozenTXOAuditLogPath returns the file the audit logger writes rejected spends to.
func (s *Settings) FrozenTXOAuditLogPath() string {
	if filepath.IsAbs(s.FrozenTXO.AuditLogFile) {
		return s.FrozenTXO.AuditLogFile
	}

	return filepath.Join(s.DataFolder, s.FrozenTXO.AuditLogFile)
}

func resolvePath(dataFolder string, u *url.URL) string {
	if u == nil {
		return dataFolder
	}

	if u.Host != "" {
		return filepath.Join(u.Host, u.Path)
	}

	return filepath.Join(dataFolder, strings.TrimPrefix(u.Path, "/"))
}
