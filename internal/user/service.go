package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

var errInvalidCredentials = apperr.Unauthenticated("invalid credentials")

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     Role
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 || n > 100 {
		return apperr.Invalid("name must be between 2 and 100 characters")
	}
	return nil
}

// RegisterUser creates an account and returns it with a fresh access token.
func RegisterUser(ctx context.Context, in RegisterInput) (*User, string, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", apperr.Invalid("invalid email address")
	}
	if err := validateName(in.Name); err != nil {
		return nil, "", err
	}
	if len(in.Password) < 6 {
		return nil, "", apperr.Invalid("password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = RoleVoter
	}
	if !in.Role.Valid() {
		return nil, "", apperr.Invalid("invalid role %q", in.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := database.DB.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, "", apperr.Conflict("email is already registered")
		}
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	tok, err := token.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// Authenticate checks credentials. Unknown email and wrong password are indistinguishable.
func Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	var u User
	err := database.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&u).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, "", errInvalidCredentials
		}
		return nil, "", fmt.Errorf("loading user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", errInvalidCredentials
	}

	tok, err := token.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, "", err
	}
	return &u, tok, nil
}

func GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := database.DB.WithContext(ctx).Take(&u, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("loading user %s: %w", id, err)
	}
	return &u, nil
}

// UpgradeRole moves a voter to a participant role. The transition happens once:
// the conditional update only matches rows still holding RoleVoter, which keeps
// concurrent upgrades from both succeeding.
func UpgradeRole(ctx context.Context, actor *User, targetID string, newRole Role) (*User, error) {
	if actor.ID != targetID {
		return nil, apperr.Forbidden("you can only change your own role")
	}
	if !newRole.IsParticipant() {
		return nil, apperr.Invalid("role must be %s or %s", RoleParticipantIndividual, RoleParticipantTeam)
	}

	res := database.DB.WithContext(ctx).Model(&User{}).
		Where("id = ? AND role = ?", targetID, RoleVoter).
		Update("role", newRole)
	if res.Error != nil {
		return nil, fmt.Errorf("upgrading role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Invalid("role already upgraded")
	}
	return GetByID(ctx, targetID)
}

// ProfileUpdate carries the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Name        *string        `json:"name"`
	Avatar      *string        `json:"avatar"`
	Bio         *string        `json:"bio"`
	Sector      *string        `json:"sector"`
	TeamMembers []string       `json:"teamMembers"`
	Socials     map[string]any `json:"socials"`
}

func UpdateProfile(ctx context.Context, actor *User, targetID string, upd ProfileUpdate) (*User, error) {
	if actor.ID != targetID {
		return nil, apperr.Forbidden("you can only edit your own profile")
	}

	changes := map[string]any{}
	if upd.Name != nil {
		if err := validateName(*upd.Name); err != nil {
			return nil, err
		}
		changes["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Avatar != nil {
		changes["avatar"] = *upd.Avatar
	}
	if upd.Bio != nil {
		changes["bio"] = *upd.Bio
	}
	if upd.Sector != nil {
		changes["sector"] = *upd.Sector
	}
	if upd.TeamMembers != nil {
		changes["team_members"] = datatypes.JSONSlice[string](upd.TeamMembers)
	}
	if upd.Socials != nil {
		changes["socials"] = datatypes.JSONMap(upd.Socials)
	}
	if len(changes) > 0 {
		if err := database.DB.WithContext(ctx).Model(&User{}).Where("id = ?", targetID).Updates(changes).Error; err != nil {
			return nil, fmt.Errorf("updating profile: %w", err)
		}
	}
	return GetByID(ctx, targetID)
}

// RecomputeTotalPoints sets the user's total to the sum of their videos' points
// for the given year. It runs on the caller's transaction.
func RecomputeTotalPoints(tx *gorm.DB, userID string, year int) (int, error) {
	var total int
	err := tx.Table("videos").
		Where("author_id = ? AND year = ?", userID, year).
		Select("COALESCE(SUM(total_points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("summing points for %s: %w", userID, err)
	}
	if err := tx.Model(&User{}).Where("id = ?", userID).Update("total_points", total).Error; err != nil {
		return 0, fmt.Errorf("storing points for %s: %w", userID, err)
	}
	return total, nil
}

// RoundPoints is one row of a user's per-round breakdown.
type RoundPoints struct {
	Round       int `json:"round"`
	Videos      int `json:"videos"`
	PublicVotes int `json:"publicVotes"`
	JuryPoints  int `json:"juryPoints"`
	TotalPoints int `json:"totalPoints"`
}

type PointsSummary struct {
	UserID        string        `json:"userId"`
	Year          int           `json:"year"`
	TotalPoints   int           `json:"totalPoints"`
	PointsByRound []RoundPoints `json:"pointsByRound"`
}

// Points recomputes the stored total for year and returns the per-round breakdown.
func Points(ctx context.Context, userID string, year int) (*PointsSummary, error) {
	if _, err := GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if year == 0 {
		year = time.Now().Year()
	}

	summary := &PointsSummary{UserID: userID, Year: year, PointsByRound: []RoundPoints{}}
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total, err := RecomputeTotalPoints(tx, userID, year)
		if err != nil {
			return err
		}
		summary.TotalPoints = total
		return tx.Table("videos").
			Select("round, COUNT(*) AS videos, SUM(public_votes) AS public_votes, SUM(jury_points) AS jury_points, SUM(total_points) AS total_points").
			Where("author_id = ? AND year = ?", userID, year).
			Group("round").
			Order("round").
			Scan(&summary.PointsByRound).Error
	})
	if err != nil {
		return nil, fmt.Errorf("computing points: %w", err)
	}
	return summary, nil
}
