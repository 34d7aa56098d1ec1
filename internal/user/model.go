package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role is the contest role of a user. Admin status is not a role.
type Role string

const (
	RoleVoter                 Role = "VOTER"
	RoleParticipantIndividual Role = "PARTICIPANT_INDIVIDUAL"
	RoleParticipantTeam       Role = "PARTICIPANT_TEAM"
)

func (r Role) Valid() bool {
	return r == RoleVoter || r.IsParticipant()
}

// IsParticipant reports whether the role may submit videos.
func (r Role) IsParticipant() bool {
	return r == RoleParticipantIndividual || r == RoleParticipantTeam
}

// User is the persisted account.
type User struct {
	ID           string                      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string                      `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	Name         string                      `gorm:"not null;type:varchar(100)" json:"name"`
	PasswordHash string                      `gorm:"not null" json:"-"`
	Role         Role                        `gorm:"type:varchar(32);not null;index" json:"role"`
	Avatar       string                      `json:"avatar,omitempty"`
	Bio          string                      `json:"bio,omitempty"`
	Sector       string                      `json:"sector,omitempty"`
	TeamMembers  datatypes.JSONSlice[string] `json:"teamMembers,omitempty"`
	Socials      datatypes.JSONMap           `json:"socials,omitempty"`

	// TotalPoints is recomputed from the user's videos, never incremented directly.
	TotalPoints int `gorm:"not null;default:0" json:"totalPoints"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a time-ordered UUID when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	u.ID = id.String()
	return nil
}

// PublicProfile is what other users may see.
type PublicProfile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Role        Role              `json:"role"`
	Avatar      string            `json:"avatar,omitempty"`
	Bio         string            `json:"bio,omitempty"`
	Sector      string            `json:"sector,omitempty"`
	TeamMembers []string          `json:"teamMembers,omitempty"`
	Socials     datatypes.JSONMap `json:"socials,omitempty"`
	TotalPoints int               `json:"totalPoints"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Sector:      u.Sector,
		TeamMembers: u.TeamMembers,
		Socials:     u.Socials,
		TotalPoints: u.TotalPoints,
		CreatedAt:   u.CreatedAt,
	}
}
