package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	errVotedElsewhere = apperr.Conflict("already voted for another video in this category and league")
	errLostRace       = errors.New("concurrent vote stored first")
)

func init() {
	video.RegisterCleanup("votes", func(tx *gorm.DB, videoID string) error {
		if err := tx.Where("video_id = ?", videoID).Delete(&Vote{}).Error; err != nil {
			return fmt.Errorf("deleting votes of %s: %w", videoID, err)
		}
		return nil
	})
}

// conflictWith explains why a vote for videoID collides with the stored one.
func conflictWith(existing Vote, videoID string) error {
	if existing.VideoID == videoID {
		return apperr.Conflict("already voted for this video in this category")
	}
	return errVotedElsewhere
}

// raceConflict re-reads the vote that won the unique index. It runs outside the
// failed transaction, which some drivers abort after a constraint violation.
func raceConflict(ctx context.Context, userID, videoID string, cat category.Category, round, year int) error {
	var winner Vote
	err := database.DB.WithContext(ctx).
		Where("user_id = ? AND category = ? AND round = ? AND year = ?", userID, cat, round, year).
		Take(&winner).Error
	if err != nil {
		if database.IsNotFound(err) {
			return errVotedElsewhere
		}
		return fmt.Errorf("looking up concurrent vote: %w", err)
	}
	return conflictWith(winner, videoID)
}

func parseCategory(raw string) (category.Category, error) {
	c := category.Category(raw)
	if !c.Valid() {
		return "", apperr.Invalid("invalid category %q", raw)
	}
	return c, nil
}

// Cast records a public vote and moves the video and author counters in the
// same transaction. The unique index on (user, category, round, year) is the
// final arbiter between concurrent attempts.
func Cast(ctx context.Context, voter *user.User, videoID, rawCategory string) (*Vote, error) {
	cat, err := parseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	var (
		cast        *Vote
		round, year int
	)
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := video.Load(tx, videoID)
		if err != nil {
			return err
		}
		if !v.HasCategory(cat) {
			return apperr.Invalid("video is not competing in %s", cat)
		}
		round, year = v.Round, v.Year

		var existing Vote
		err = tx.Where("user_id = ? AND category = ? AND round = ? AND year = ?", voter.ID, cat, v.Round, v.Year).
			Take(&existing).Error
		switch {
		case err == nil:
			return conflictWith(existing, videoID)
		case !database.IsNotFound(err):
			return fmt.Errorf("looking up previous vote: %w", err)
		}

		cast = &Vote{UserID: voter.ID, VideoID: videoID, Category: cat, Round: v.Round, Year: v.Year}
		if err := tx.Create(cast).Error; err != nil {
			if database.IsDuplicateKeyError(err) {
				return errLostRace
			}
			return fmt.Errorf("storing vote: %w", err)
		}
		if err := video.ApplyPoints(tx, videoID, 1, 0); err != nil {
			return err
		}
		_, err = user.RecomputeTotalPoints(tx, v.AuthorID, v.Year)
		return err
	})
	if errors.Is(err, errLostRace) {
		return nil, raceConflict(ctx, voter.ID, videoID, cat, round, year)
	}
	if err != nil {
		return nil, err
	}

	logging.Log.WithFields(logrus.Fields{
		"user":     voter.ID,
		"video":    videoID,
		"category": cat,
	}).Debug("vote cast")
	return cast, nil
}

// Remove deletes a user's vote for a video and category and reverses its counters.
func Remove(ctx context.Context, voter *user.User, videoID, rawCategory string) error {
	cat, err := parseCategory(rawCategory)
	if err != nil {
		return err
	}

	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Vote
		err := tx.Where("user_id = ? AND video_id = ? AND category = ?", voter.ID, videoID, cat).Take(&existing).Error
		if err != nil {
			if database.IsNotFound(err) {
				return apperr.NotFound("vote not found")
			}
			return fmt.Errorf("looking up vote: %w", err)
		}

		v, err := video.Load(tx, videoID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return fmt.Errorf("deleting vote: %w", err)
		}
		if err := video.ApplyPoints(tx, videoID, -1, 0); err != nil {
			return err
		}
		_, err = user.RecomputeTotalPoints(tx, v.AuthorID, v.Year)
		return err
	})
}

// Check tells whether voter already used a vote in the league of videoID. With
// a category it answers for that category only. Without one it lists every
// category voted in the league next to the video's own categories.
func Check(ctx context.Context, voter *user.User, videoID, rawCategory string) (*CheckResult, error) {
	db := database.DB.WithContext(ctx)
	v, err := video.Load(db, videoID)
	if err != nil {
		return nil, err
	}

	if rawCategory != "" {
		cat, err := parseCategory(rawCategory)
		if err != nil {
			return nil, err
		}
		var existing Vote
		err = db.Where("user_id = ? AND category = ? AND round = ? AND year = ?", voter.ID, cat, v.Round, v.Year).
			Take(&existing).Error
		if err != nil {
			if database.IsNotFound(err) {
				return &CheckResult{}, nil
			}
			return nil, fmt.Errorf("checking vote: %w", err)
		}
		return &CheckResult{HasVoted: true, VotedVideoID: existing.VideoID}, nil
	}

	var voted []category.Category
	err = db.Model(&Vote{}).
		Where("user_id = ? AND round = ? AND year = ?", voter.ID, v.Round, v.Year).
		Order("category").
		Pluck("category", &voted).Error
	if err != nil {
		return nil, fmt.Errorf("listing votes: %w", err)
	}
	return &CheckResult{
		HasVoted:            len(voted) > 0,
		VotedCategories:     voted,
		AvailableCategories: v.CategoryList(),
	}, nil
}
