package award

import (
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Award is a yearly prize for one category. (Category, Year, Position) is unique.
type Award struct {
	ID         string            `gorm:"primaryKey;type:varchar(36)"`
	Category   category.Category `gorm:"not null;type:varchar(32);uniqueIndex:idx_award_slot,priority:1"`
	Year       int               `gorm:"not null;uniqueIndex:idx_award_slot,priority:2;index"`
	Position   int               `gorm:"not null;uniqueIndex:idx_award_slot,priority:3"`
	UserID     string            `gorm:"not null;type:varchar(36);index"`
	Winner     *user.User        `gorm:"foreignKey:UserID"`
	Prize      string
	PrizeValue float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Award) BeforeCreate(*gorm.DB) error {
	if a.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	a.ID = id.String()
	return nil
}

type View struct {
	ID         string              `json:"id"`
	Category   category.Category   `json:"category"`
	Year       int                 `json:"year"`
	Position   int                 `json:"position"`
	UserID     string              `json:"userId"`
	User       *user.PublicProfile `json:"user,omitempty"`
	Prize      string              `json:"prize"`
	PrizeValue float64             `json:"prizeValue"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func (a *Award) View() View {
	out := View{
		ID:         a.ID,
		Category:   a.Category,
		Year:       a.Year,
		Position:   a.Position,
		UserID:     a.UserID,
		Prize:      a.Prize,
		PrizeValue: a.PrizeValue,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.Winner != nil {
		p := a.Winner.Public()
		out.User = &p
	}
	return out
}

func views(awards []Award) []View {
	out := make([]View, len(awards))
	for i := range awards {
		out[i] = awards[i].View()
	}
	return out
}
