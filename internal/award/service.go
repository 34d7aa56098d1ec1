package award

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/cache"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/lock"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/platform/metadata"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lockTTL = 2 * time.Minute

var locker lock.Locker = lock.NewLocalLocker()

// PrizeDescription is the fixed prize text for a given value in euros.
func PrizeDescription(value float64) string {
	return fmt.Sprintf("Equipment rental valued at %.0f€ at VISUALRENT", value)
}

type standing struct {
	AuthorID string
	Points   int
}

// leader returns the author with the highest summed points in cat for year.
// Equal sums are broken by author id so reruns pick the same winner.
func leader(tx *gorm.DB, cat category.Category, year int) (*standing, error) {
	var rows []standing
	err := tx.Table("videos").
		Select("videos.author_id AS author_id, SUM(videos.total_points) AS points").
		Joins("JOIN video_categories vc ON vc.video_id = videos.id AND vc.category = ?", cat).
		Where("videos.year = ?", year).
		Group("videos.author_id").
		Order("points DESC, author_id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranking authors for %s: %w", cat, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Calculate assigns the first-place award of every category for year. It is
// idempotent and holds a per-year lock while it runs.
func Calculate(ctx context.Context, year int) ([]View, error) {
	if year < league.MinYear() {
		return nil, apperr.Invalid("year must be at least %d", league.MinYear())
	}

	release, err := locker.TryAcquire(ctx, fmt.Sprintf("awards:%d", year), lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, apperr.Conflict("award calculation for %d is already running", year)
		}
		return nil, apperr.Unavailable(err, "could not acquire award lock")
	}
	defer release()

	var winners []category.Category
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, cat := range category.All() {
			top, err := leader(tx, cat, year)
			if err != nil {
				return err
			}

			if top == nil || top.Points <= 0 {
				err := tx.Where("category = ? AND year = ? AND position = ?", cat, year, 1).Delete(&Award{}).Error
				if err != nil {
					return fmt.Errorf("removing stale award for %s: %w", cat, err)
				}
				continue
			}

			value := cat.PrizeValue()
			a := Award{
				Category:   cat,
				Year:       year,
				Position:   1,
				UserID:     top.AuthorID,
				Prize:      PrizeDescription(value),
				PrizeValue: value,
			}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "category"}, {Name: "year"}, {Name: "position"}},
				DoUpdates: clause.AssignmentColumns([]string{"user_id", "prize", "prize_value", "updated_at"}),
			}).Create(&a).Error
			if err != nil {
				return fmt.Errorf("saving award for %s: %w", cat, err)
			}
			winners = append(winners, cat)
		}
		return metadata.SetTime(tx, calculatedKey(year), time.Now())
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateDashboard(ctx)
	logging.Log.WithFields(logrus.Fields{"year": year, "awards": len(winners)}).Info("awards calculated")

	if len(winners) == 0 {
		return []View{}, nil
	}
	var awards []Award
	err = database.DB.WithContext(ctx).Preload("Winner").
		Where("year = ? AND position = ? AND category IN ?", year, 1, winners).
		Order("category ASC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("loading awards: %w", err)
	}
	return views(awards), nil
}

func calculatedKey(year int) string {
	return fmt.Sprintf("awards.calculated.%d", year)
}

// LastCalculated reports when Calculate last completed for year, nil if never.
func LastCalculated(ctx context.Context, year int) (*time.Time, error) {
	return metadata.GetTime(database.DB.WithContext(ctx), calculatedKey(year))
}

// List returns awards, newest year first, optionally narrowed.
func List(ctx context.Context, year int, cat category.Category) ([]View, error) {
	q := database.DB.WithContext(ctx).Preload("Winner")
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	if cat != "" {
		if !cat.Valid() {
			return nil, apperr.Invalid("invalid category %q", cat)
		}
		q = q.Where("category = ?", cat)
	}
	var awards []Award
	if err := q.Order("year DESC, category ASC, position ASC").Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("listing awards: %w", err)
	}
	return views(awards), nil
}

func ListByUser(ctx context.Context, userID string) ([]View, error) {
	var awards []Award
	err := database.DB.WithContext(ctx).Preload("Winner").
		Where("user_id = ?", userID).
		Order("year DESC, category ASC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("listing awards of %s: %w", userID, err)
	}
	return views(awards), nil
}

type PrizeUpdate struct {
	Prize      *string  `json:"prize"`
	PrizeValue *float64 `json:"prizeValue"`
}

// UpdatePrize edits the prize text or value of one award.
func UpdatePrize(ctx context.Context, id string, upd PrizeUpdate) (*View, error) {
	changes := map[string]any{}
	if upd.Prize != nil {
		changes["prize"] = *upd.Prize
	}
	if upd.PrizeValue != nil {
		if *upd.PrizeValue < 0 {
			return nil, apperr.Invalid("prizeValue must not be negative")
		}
		changes["prize_value"] = *upd.PrizeValue
	}

	db := database.DB.WithContext(ctx)
	if len(changes) > 0 {
		res := db.Model(&Award{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, fmt.Errorf("updating award %s: %w", id, res.Error)
		}
	}

	var a Award
	if err := db.Preload("Winner").Take(&a, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("award not found")
		}
		return nil, fmt.Errorf("loading award %s: %w", id, err)
	}
	v := a.View()
	return &v, nil
}
