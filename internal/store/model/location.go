package model

import (
	"encoding/json"
	"time"
)

type Location struct {
	ID        string `gorm:"primaryKey;column:id;type:VARCHAR(255)"`
	Name      string `gorm:"not null"`
	Address   string
	Timezone  string    `gorm:"type:VARCHAR(100)"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

type LocationList []Location

func (l Location) String() string {
	val, _ := json.Marshal(l)
	return string(val)
}
