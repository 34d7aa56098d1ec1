package league

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Phase is the voting mode of a league at a given instant. It is derived, never stored.
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhasePublic   Phase = "public"
	PhaseJury     Phase = "jury"
	PhaseClosed   Phase = "closed"
)

// League is one (round, year) competition period.
type League struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Round       int       `gorm:"not null;uniqueIndex:idx_league_round_year" json:"round"`
	Year        int       `gorm:"not null;uniqueIndex:idx_league_round_year" json:"year"`
	Name        string    `gorm:"not null" json:"name"`
	StartDate   time.Time `gorm:"not null" json:"startDate"`
	EndDate     time.Time `gorm:"not null" json:"endDate"`
	JuryEndDate time.Time `gorm:"not null" json:"juryEndDate"`
	IsActive    bool      `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (l *League) BeforeCreate(*gorm.DB) error {
	if l.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	l.ID = id.String()
	return nil
}

// Phase derives the voting mode at now. A league switched off by an administrator
// is closed whatever its dates say.
func (l *League) Phase(now time.Time) Phase {
	switch {
	case !l.IsActive:
		return PhaseClosed
	case now.Before(l.StartDate):
		return PhaseUpcoming
	case !now.After(l.EndDate):
		return PhasePublic
	case !now.After(l.JuryEndDate):
		return PhaseJury
	default:
		return PhaseClosed
	}
}

// AcceptsSubmissions reports whether videos may still be entered. Only the
// administrator flag closes a league for submissions.
func (l *League) AcceptsSubmissions() bool {
	return l.IsActive
}

// View is the API representation with the derived phase.
type View struct {
	League
	Phase Phase `json:"phase"`
}

func (l *League) View(now time.Time) View {
	return View{League: *l, Phase: l.Phase(now)}
}
