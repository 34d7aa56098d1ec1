package league

import (
	"context"
	"fmt"
	"time"

	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/cache"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	now      = time.Now
	maxRound = 6
	minYear  = 2020
)

// MaxRound and MinYear expose the configured bounds to other modules.
func MaxRound() int { return maxRound }
func MinYear() int  { return minYear }

// ValidateScope checks that round and year are inside the configured bounds.
func ValidateScope(round, year int) error {
	if round < 1 || round > maxRound {
		return apperr.Invalid("round must be between 1 and %d", maxRound)
	}
	if year < minYear {
		return apperr.Invalid("year must be %d or later", minYear)
	}
	return nil
}

// Find loads the league for (round, year) using db, which may be a transaction.
// A missing league is reported with found=false and no error.
func Find(db *gorm.DB, round, year int) (*League, bool, error) {
	var l League
	err := db.Where("round = ? AND year = ?", round, year).Take(&l).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("loading league %d/%d: %w", round, year, err)
	}
	return &l, true, nil
}

type UpsertInput struct {
	Round       int       `json:"round" binding:"required"`
	Year        int       `json:"year" binding:"required"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required"`
	JuryEndDate time.Time `json:"juryEndDate" binding:"required"`
}

// Upsert creates or replaces the league for (round, year) and marks it active.
func Upsert(ctx context.Context, in UpsertInput) (*League, error) {
	if err := ValidateScope(in.Round, in.Year); err != nil {
		return nil, err
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperr.Invalid("endDate must not be before startDate")
	}
	if in.JuryEndDate.Before(in.EndDate) {
		return nil, apperr.Invalid("juryEndDate must not be before endDate")
	}
	if in.Name == "" {
		in.Name = fmt.Sprintf("League %d - %d", in.Round, in.Year)
	}

	l := League{
		Round:       in.Round,
		Year:        in.Year,
		Name:        in.Name,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		JuryEndDate: in.JuryEndDate,
		IsActive:    true,
	}
	db := database.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "start_date", "end_date", "jury_end_date", "is_active", "updated_at"}),
	}).Create(&l).Error
	if err != nil {
		return nil, fmt.Errorf("saving league: %w", err)
	}
	cache.InvalidateDashboard(ctx)

	saved, _, err := Find(db, in.Round, in.Year)
	return saved, err
}

// SetStatus opens or force-closes a league.
func SetStatus(ctx context.Context, round, year int, active bool) (*League, error) {
	db := database.DB.WithContext(ctx)
	res := db.Model(&League{}).Where("round = ? AND year = ?", round, year).Update("is_active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("updating league status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("league %d/%d not found", round, year)
	}
	cache.InvalidateDashboard(ctx)
	l, _, err := Find(db, round, year)
	return l, err
}

// Delete removes a league that has no videos.
func Delete(ctx context.Context, round, year int) error {
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, found, err := Find(tx, round, year)
		if err != nil {
			return err
		}
		if !found {
			return apperr.NotFound("league %d/%d not found", round, year)
		}

		var videos int64
		if err := tx.Table("videos").Where("round = ? AND year = ?", round, year).Count(&videos).Error; err != nil {
			return fmt.Errorf("counting league videos: %w", err)
		}
		if videos > 0 {
			return apperr.Conflict("league has %d videos and cannot be deleted", videos)
		}
		return tx.Delete(l).Error
	})
	if err == nil {
		cache.InvalidateDashboard(ctx)
	}
	return err
}

// List returns leagues newest first, optionally filtered.
func List(ctx context.Context, year *int, active *bool) ([]League, error) {
	q := database.DB.WithContext(ctx).Model(&League{})
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	var leagues []League
	if err := q.Order("year DESC, round DESC").Find(&leagues).Error; err != nil {
		return nil, fmt.Errorf("listing leagues: %w", err)
	}
	return leagues, nil
}

// Current returns the active league whose public window contains now.
func Current(ctx context.Context) (*League, error) {
	t := now()
	var l League
	err := database.DB.WithContext(ctx).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, t, t).
		Order("start_date DESC").
		Take(&l).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("no league is currently open")
		}
		return nil, fmt.Errorf("loading current league: %w", err)
	}
	return &l, nil
}

// StatsView is a league with its activity counters.
type StatsView struct {
	View
	Videos       int64 `json:"videos"`
	Votes        int64 `json:"votes"`
	Participants int64 `json:"participants"`
}

// ListWithStats feeds the admin league table.
func ListWithStats(ctx context.Context) ([]StatsView, error) {
	leagues, err := List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	db := database.DB.WithContext(ctx)
	t := now()
	out := make([]StatsView, 0, len(leagues))
	for i := range leagues {
		l := &leagues[i]
		sv := StatsView{View: l.View(t)}
		if err := db.Table("videos").Where("round = ? AND year = ?", l.Round, l.Year).Count(&sv.Videos).Error; err != nil {
			return nil, fmt.Errorf("counting videos: %w", err)
		}
		if err := db.Table("votes").Where("round = ? AND year = ?", l.Round, l.Year).Count(&sv.Votes).Error; err != nil {
			return nil, fmt.Errorf("counting votes: %w", err)
		}
		if err := db.Table("videos").Where("round = ? AND year = ?", l.Round, l.Year).Distinct("author_id").Count(&sv.Participants).Error; err != nil {
			return nil, fmt.Errorf("counting participants: %w", err)
		}
		out = append(out, sv)
	}
	return out, nil
}
