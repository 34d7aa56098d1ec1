package metadata

import "time"

// Entry is one row of the key/value metadata table.
type Entry struct {
	Key       string `gorm:"primaryKey;type:varchar(191)"`
	Value     string `gorm:"type:varchar(255)"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "metadata" }
