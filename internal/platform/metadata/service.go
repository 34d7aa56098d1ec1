// Package metadata keeps small operational facts, such as when awards were last
// calculated, in a key/value table.
package metadata

import (
	"fmt"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetValue returns the stored value, or "" when the key was never written.
func GetValue(db *gorm.DB, key string) (string, error) {
	var e Entry
	if err := db.Where("key = ?", key).Take(&e).Error; err != nil {
		if database.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading metadata %s: %w", key, err)
	}
	return e.Value, nil
}

// SetValue upserts key. Pass a transaction to make the write part of a larger change.
func SetValue(db *gorm.DB, key, value string) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Entry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("writing metadata %s: %w", key, err)
	}
	return nil
}

// GetTime reads a timestamp written by SetTime. A missing key yields nil.
func GetTime(db *gorm.DB, key string) (*time.Time, error) {
	raw, err := GetValue(db, key)
	if err != nil || raw == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("metadata %s holds %q, not a timestamp: %w", key, raw, err)
	}
	return &t, nil
}

func SetTime(db *gorm.DB, key string, t time.Time) error {
	return SetValue(db, key, t.UTC().Format(time.RFC3339Nano))
}
