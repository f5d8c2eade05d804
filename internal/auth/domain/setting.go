package domain

// SettingDBHash holds the per-installation secret that keys reset tokens.
const SettingDBHash = "db_hash"

type Setting struct {
	Key   string
	Value string
}
