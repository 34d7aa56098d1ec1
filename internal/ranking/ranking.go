// Package ranking serves read-only leaderboards built from the video counters.
package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
)

type Filter struct {
	Round    int
	Year     int
	Category category.Category
	From, To *time.Time
	// Limit caps the result; zero means no cap.
	Limit int
}

type Entry struct {
	Position int        `json:"position"`
	Video    video.View `json:"video"`
}

// Videos orders videos by total points, oldest first among equals.
func Videos(ctx context.Context, f Filter) ([]Entry, error) {
	q := database.DB.WithContext(ctx).Model(&video.Video{}).Preload("Categories").Preload("Author")
	if f.Round > 0 {
		q = q.Where("round = ?", f.Round)
	}
	if f.Year > 0 {
		q = q.Where("year = ?", f.Year)
	}
	if f.Category != "" {
		if !f.Category.Valid() {
			return nil, apperr.Invalid("invalid category %q", f.Category)
		}
		q = q.Where("EXISTS (SELECT 1 FROM video_categories vc WHERE vc.video_id = videos.id AND vc.category = ?)", f.Category)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var videos []video.Video
	if err := q.Order("total_points DESC, created_at ASC").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("loading ranking: %w", err)
	}
	out := make([]Entry, len(videos))
	for i := range videos {
		out[i] = Entry{Position: i + 1, Video: videos[i].View()}
	}
	return out, nil
}

type VideoPoints struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Round       int    `json:"round"`
	PublicVotes int    `json:"publicVotes"`
	JuryPoints  int    `json:"juryPoints"`
	TotalPoints int    `json:"totalPoints"`
}

type UserStanding struct {
	User struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		TotalPoints int    `json:"totalPoints"`
	} `json:"user"`
	Year       int           `json:"year"`
	YearPoints int           `json:"yearPoints"`
	Position   *int          `json:"position"`
	Videos     int           `json:"videos"`
	ByVideo    []VideoPoints `json:"videosByRound"`
}

// ForUser places a participant among all participants by the points their
// videos earned in year. Equal sums share a position. Users without videos
// that year have no position.
func ForUser(ctx context.Context, userID string, year int) (*UserStanding, error) {
	u, err := user.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	db := database.DB.WithContext(ctx)

	out := &UserStanding{Year: year}
	out.User.ID, out.User.Name, out.User.TotalPoints = u.ID, u.Name, u.TotalPoints

	err = db.Model(&video.Video{}).
		Select("id, title, round, public_votes, jury_points, total_points").
		Where("author_id = ? AND year = ?", userID, year).
		Order("round ASC, created_at ASC").
		Scan(&out.ByVideo).Error
	if err != nil {
		return nil, fmt.Errorf("loading videos of %s: %w", userID, err)
	}
	out.Videos = len(out.ByVideo)
	for _, v := range out.ByVideo {
		out.YearPoints += v.TotalPoints
	}
	if out.Videos == 0 || !u.Role.IsParticipant() {
		return out, nil
	}

	var ahead int64
	sums := db.Model(&video.Video{}).
		Select("author_id, SUM(total_points) AS points").
		Where("year = ?", year).
		Group("author_id")
	err = db.Table("(?) AS sums", sums).
		Joins("JOIN users ON users.id = sums.author_id").
		Where("users.role IN ?", []user.Role{user.RoleParticipantIndividual, user.RoleParticipantTeam}).
		Where("sums.points > ?", out.YearPoints).
		Count(&ahead).Error
	if err != nil {
		return nil, fmt.Errorf("placing %s: %w", userID, err)
	}
	pos := int(ahead) + 1
	out.Position = &pos
	return out, nil
}
