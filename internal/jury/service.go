package jury

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	maxRankedPosition = 5
	rankingSize       = 10
)

func init() {
	video.RegisterCleanup("jury_votes", func(tx *gorm.DB, videoID string) error {
		if err := tx.Where("video_id = ?", videoID).Delete(&Vote{}).Error; err != nil {
			return fmt.Errorf("deleting jury votes of %s: %w", videoID, err)
		}
		return nil
	})
}

// PointsForPosition maps a ranking position to jury points: the first two
// places score 3 and places 3 to 5 score 2.
func PointsForPosition(position int) (int, error) {
	switch {
	case position >= 1 && position <= 2:
		return 3, nil
	case position >= 3 && position <= maxRankedPosition:
		return 2, nil
	default:
		return 0, apperr.Invalid("only positions 1 to %d can be voted", maxRankedPosition)
	}
}

// MemberForUser returns the jury seat linked to userID.
func MemberForUser(ctx context.Context, userID string) (*Member, error) {
	var m Member
	if err := database.DB.WithContext(ctx).Take(&m, "user_id = ?", userID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("user is not a jury member")
		}
		return nil, fmt.Errorf("loading jury member: %w", err)
	}
	return &m, nil
}

type MemberInput struct {
	Name   string `json:"name" binding:"required"`
	Role   string `json:"role"`
	Image  string `json:"image"`
	Bio    string `json:"bio"`
	UserID string `json:"userId"`
	Order  int    `json:"order" binding:"min=0"`
}

// AddMember registers a jury seat, optionally linked to an existing user.
func AddMember(ctx context.Context, in MemberInput) (*Member, error) {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 2 {
		return nil, apperr.Invalid("name must be at least 2 characters")
	}

	m := &Member{Name: name, Role: in.Role, Image: in.Image, Bio: in.Bio, SortOrder: in.Order}
	if in.UserID != "" {
		if _, err := user.GetByID(ctx, in.UserID); err != nil {
			return nil, err
		}
		m.UserID = &in.UserID
	}

	if err := database.DB.WithContext(ctx).Create(m).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("user is already a jury member")
		}
		return nil, fmt.Errorf("creating jury member: %w", err)
	}
	logging.Log.WithField("member", m.ID).Info("jury member added")
	return m, nil
}

func ListMembers(ctx context.Context) ([]Member, error) {
	var members []Member
	if err := database.DB.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("listing jury members: %w", err)
	}
	return members, nil
}

type CastInput struct {
	VideoID  string `json:"videoId" binding:"required"`
	Category string `json:"category" binding:"required,category"`
	Round    int    `json:"round" binding:"required,min=1"`
	Year     int    `json:"year" binding:"required"`
	Position int    `json:"position" binding:"required"`
}

// Cast stores a jury vote and adds its points to the video and its author in
// one transaction.
func Cast(ctx context.Context, member *Member, in CastInput) (*Vote, error) {
	cat := category.Category(in.Category)
	if !cat.Valid() {
		return nil, apperr.Invalid("invalid category %q", in.Category)
	}
	points, err := PointsForPosition(in.Position)
	if err != nil {
		return nil, err
	}

	jv := &Vote{
		JuryMemberID: member.ID,
		VideoID:      in.VideoID,
		Category:     cat,
		Round:        in.Round,
		Year:         in.Year,
		Position:     in.Position,
		Points:       points,
	}
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := video.Load(tx, in.VideoID)
		if err != nil {
			return err
		}
		if !v.HasCategory(cat) {
			return apperr.Invalid("video is not competing in %s", cat)
		}
		if v.Round != in.Round || v.Year != in.Year {
			return apperr.Invalid("video does not belong to league %d/%d", in.Round, in.Year)
		}

		if err := tx.Create(jv).Error; err != nil {
			if database.IsDuplicateKeyError(err) {
				return apperr.Conflict("already voted for this video in this category")
			}
			return fmt.Errorf("storing jury vote: %w", err)
		}
		if err := video.ApplyPoints(tx, v.ID, 0, points); err != nil {
			return err
		}
		_, err = user.RecomputeTotalPoints(tx, v.AuthorID, v.Year)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.Log.WithFields(logrus.Fields{
		"member":   member.ID,
		"video":    in.VideoID,
		"category": cat,
		"points":   points,
	}).Info("jury vote cast")
	return jv, nil
}

type RankingEntry struct {
	Position int        `json:"position"`
	Video    video.View `json:"video"`
}

// Ranking lists the most publicly voted videos of one category and league for
// jury review.
func Ranking(ctx context.Context, cat category.Category, round, year, limit int) ([]RankingEntry, error) {
	if !cat.Valid() {
		return nil, apperr.Invalid("invalid category %q", cat)
	}
	if round < 1 || year < 1 {
		return nil, apperr.Invalid("round and year are required")
	}
	if limit < 1 || limit > rankingSize {
		limit = rankingSize
	}

	var videos []video.Video
	err := database.DB.WithContext(ctx).
		Preload("Categories").Preload("Author").
		Where("round = ? AND year = ?", round, year).
		Where("EXISTS (SELECT 1 FROM video_categories vc WHERE vc.video_id = videos.id AND vc.category = ?)", cat).
		Order("public_votes DESC, created_at ASC").
		Limit(limit).
		Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("loading jury ranking: %w", err)
	}

	out := make([]RankingEntry, len(videos))
	for i := range videos {
		out[i] = RankingEntry{Position: i + 1, Video: videos[i].View()}
	}
	return out, nil
}
