package models

import "time"

// LogEntry represents one structured application log row in the logs table.
// Entries are immutable once persisted; only the retention sweeper removes them.
type LogEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Hostname   string    `json:"hostname"`
	Pid        int       `json:"pid"`
	Source     string    `json:"source"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Meta       string    `json:"meta,omitempty"`        // Opaque JSON blob supplied by the host
	ExternalID int64     `json:"external_id,omitempty"` // Optional foreign correlation id
}

// SourceLevel is one (source, level) pair of a level_json filter.
// Pairs are OR'd among themselves and OR'd with an optional external-id match.
type SourceLevel struct {
	Source string `json:"source"`
	Level  string `json:"level"`
}

// LogFilter holds the optional filters for GetLogs and SearchLogs.
// All set fields are combined with AND, except LevelJSON/ExternalID which
// form a single OR group.
type LogFilter struct {
	Hostname   string        `json:"hostname,omitempty"`
	Hostnames  []string      `json:"hostnames,omitempty"`
	Pid        int           `json:"pid,omitempty"`
	Source     string        `json:"source,omitempty"`
	Sources    []string      `json:"sources,omitempty"`
	Level      string        `json:"level,omitempty"`
	Levels     []string      `json:"levels,omitempty"`
	LevelJSON  []SourceLevel `json:"level_json,omitempty"`
	ExternalID int64         `json:"external_id,omitempty"`

	// Exclusive id-range pagination.
	LtID int64 `json:"lt_id,omitempty"`
	GtID int64 `json:"gt_id,omitempty"`

	// Inclusive time-range pagination.
	LteTimestamp *time.Time `json:"lte_timestamp,omitempty"`
	GteTimestamp *time.Time `json:"gte_timestamp,omitempty"`

	Limit int `json:"limit,omitempty"` // Defaults to 100 when zero
}

// DefaultLogLimit is applied when a filter does not specify a limit.
const DefaultLogLimit = 100

// EffectiveLimit returns the limit to use for a query.
func (f LogFilter) EffectiveLimit() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return DefaultLogLimit
}
