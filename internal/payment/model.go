package payment

import (
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Payment records one entry fee for a set of categories.
type Payment struct {
	ID          string                                 `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string                                 `gorm:"not null;index;type:varchar(36)" json:"userId"`
	VideoID     *string                                `gorm:"index;type:varchar(36)" json:"videoId,omitempty"`
	AmountCents int64                                  `gorm:"not null" json:"amountCents"`
	Currency    string                                 `gorm:"not null;type:varchar(8)" json:"currency"`
	Status      Status                                 `gorm:"not null;index;type:varchar(16)" json:"status"`
	Provider    string                                 `gorm:"not null;type:varchar(16)" json:"provider"`
	SessionID   string                                 `gorm:"index" json:"sessionId,omitempty"`
	ProviderRef string                                 `json:"providerRef,omitempty"`
	Categories  datatypes.JSONSlice[category.Category] `json:"categories"`
	CreatedAt   time.Time                              `json:"createdAt"`
	UpdatedAt   time.Time                              `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	p.ID = id.String()
	return nil
}

// Amount is the fee in currency units.
func (p *Payment) Amount() float64 {
	return float64(p.AmountCents) / 100
}
