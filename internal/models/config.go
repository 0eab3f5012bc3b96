package models

// ConfigEntry is one key/value row in the config table. Keys are unique;
// SetConfig upserts (insert or overwrite value).
type ConfigEntry struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
