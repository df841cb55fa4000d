package model

import (
	"encoding/json"
	"time"
)

// SyncWatermark marks the change-time boundary of the last successfully
// replicated record for one stream. Mutated only by the replication job,
// after a batch settles.
type SyncWatermark struct {
	StreamName    string `gorm:"primaryKey;column:stream_name;type:VARCHAR(100)"`
	LastSyncedAt  time.Time
	RecordsSynced int64
	ErrorCount    int64
	UpdatedAt     time.Time
}

func (w SyncWatermark) String() string {
	val, _ := json.Marshal(w)
	return string(val)
}
