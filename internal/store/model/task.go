package model

import (
	"encoding/json"
	"time"
)

// Task status values, shared with the document store representation.
const (
	TaskStatusAvailable  = "available"
	TaskStatusAssigned   = "assigned"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// Task is the relational materialization of a task document. The document
// store is authoritative for every field except LocationName, which is
// denormalized during replication. Timestamps carry the document's values,
// so gorm's automatic time tracking is disabled.
type Task struct {
	ID                       string `gorm:"primaryKey;column:id;type:VARCHAR(255)"`
	Title                    string `gorm:"not null"`
	Description              string
	Category                 string `gorm:"type:VARCHAR(100)"`
	Priority                 string `gorm:"type:VARCHAR(50)"`
	Status                   string `gorm:"type:VARCHAR(50);not null;default:available"`
	LocationID               string `gorm:"not null;index:tasks_location_id_idx"`
	LocationName             string
	EstimatedDurationMinutes int
	RoomID                   *string
	TargetID                 *string
	ActionID                 *string   `gorm:"index:tasks_action_id_idx"`
	CreatedAt                time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime:false"`
}

type TaskList []Task

func (t Task) String() string {
	val, _ := json.Marshal(t)
	return string(val)
}
