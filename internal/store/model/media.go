package model

import (
	"encoding/json"
	"time"
)

// Media is the relational materialization of a media document: a photo or
// video captured for a task. The blob itself lives in external storage; only
// its metadata is replicated here. TaskID is a plain reference, not a
// foreign key: the media stream must not wait for the tasks stream, so a
// media row may land before its task row. The orphan sweep owns cleanup.
type Media struct {
	ID          string `gorm:"primaryKey;column:id;type:VARCHAR(255)"`
	TaskID      string `gorm:"index:media_task_id_idx"`
	LocationID  string `gorm:"not null"`
	URL         string `gorm:"not null"`
	ContentType string `gorm:"type:VARCHAR(100)"`
	UploadedBy  string `gorm:"type:VARCHAR(255)"`
	CapturedAt  time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

type MediaList []Media

func (m Media) String() string {
	val, _ := json.Marshal(m)
	return string(val)
}
