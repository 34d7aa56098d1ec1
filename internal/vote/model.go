package vote

import (
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is one public vote. Round and Year are copied from the video so the
// unique index can enforce one vote per user, category and league.
type Vote struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string            `gorm:"not null;type:varchar(36);uniqueIndex:idx_vote_scope,priority:1" json:"userId"`
	VideoID   string            `gorm:"not null;type:varchar(36);index" json:"videoId"`
	Category  category.Category `gorm:"not null;type:varchar(32);uniqueIndex:idx_vote_scope,priority:2" json:"category"`
	Round     int               `gorm:"not null;uniqueIndex:idx_vote_scope,priority:3;index:idx_vote_league,priority:1" json:"round"`
	Year      int               `gorm:"not null;uniqueIndex:idx_vote_scope,priority:4;index:idx_vote_league,priority:2" json:"year"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	if v.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	v.ID = id.String()
	return nil
}

// CheckResult reports a user's votes around one video's league.
type CheckResult struct {
	HasVoted            bool                `json:"hasVoted"`
	VotedVideoID        string              `json:"votedVideoId,omitempty"`
	VotedCategories     []category.Category `json:"votedCategories,omitempty"`
	AvailableCategories []category.Category `json:"availableCategories,omitempty"`
}
