package jury

import (
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member is a jury seat. A member can vote only when linked to a user account.
type Member struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `json:"role,omitempty"`
	Image     string    `json:"image,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	UserID    *string   `gorm:"type:varchar(36);uniqueIndex" json:"userId,omitempty"`
	SortOrder int       `gorm:"not null;default:0" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Member) TableName() string { return "jury_members" }

// Vote is a positional jury vote already converted to points.
type Vote struct {
	ID           string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	JuryMemberID string            `gorm:"not null;type:varchar(36);uniqueIndex:idx_jury_vote_scope,priority:1" json:"juryMemberId"`
	VideoID      string            `gorm:"not null;type:varchar(36);uniqueIndex:idx_jury_vote_scope,priority:2;index" json:"videoId"`
	Category     category.Category `gorm:"not null;type:varchar(32);uniqueIndex:idx_jury_vote_scope,priority:3" json:"category"`
	Round        int               `gorm:"not null;uniqueIndex:idx_jury_vote_scope,priority:4" json:"round"`
	Year         int               `gorm:"not null;uniqueIndex:idx_jury_vote_scope,priority:5" json:"year"`
	Position     int               `gorm:"not null" json:"position"`
	Points       int               `gorm:"not null" json:"points"`
	CreatedAt    time.Time         `json:"createdAt"`
}

func (Vote) TableName() string { return "jury_votes" }

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (m *Member) BeforeCreate(*gorm.DB) (err error) {
	if m.ID == "" {
		m.ID, err = newID()
	}
	return err
}

func (v *Vote) BeforeCreate(*gorm.DB) (err error) {
	if v.ID == "" {
		v.ID, err = newID()
	}
	return err
}
