package video

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/payment"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/user"
	"gorm.io/gorm"
)

var (
	now            = time.Now
	requirePayment bool
)

// CleanupFunc removes rows that reference a video about to be deleted.
type CleanupFunc func(tx *gorm.DB, videoID string) error

var (
	cleanupMu sync.Mutex
	cleanups  = map[string]CleanupFunc{}
)

// RegisterCleanup lets dependent modules remove their rows in the same
// transaction that deletes a video.
func RegisterCleanup(name string, fn CleanupFunc) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanups[name] = fn
}

// SubmitInput is a new video as sent by its author.
type SubmitInput struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	MaterialsUsed string   `json:"materialsUsed"`
	Categories    []string `json:"categories" binding:"required"`
	Round         int      `json:"round"`
	Year          int      `json:"year"`
	VideoURL      string   `json:"videoUrl"`
	VideoLink     string   `json:"videoLink"`
	Thumbnail     string   `json:"thumbnail"`
	PaymentID     string   `json:"paymentId"`
}

func validateText(title, description string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < 3 || n > 200 {
		return apperr.Invalid("title must be between 3 and 200 characters")
	}
	if utf8.RuneCountInString(description) > 2000 {
		return apperr.Invalid("description must be at most 2000 characters")
	}
	return nil
}

func validLink(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Submit creates a video after checking eligibility: participant role, category
// set, media, league scope, league status and, when given or required, payment.
func Submit(ctx context.Context, author *user.User, in SubmitInput) (*Video, error) {
	if !author.Role.IsParticipant() {
		return nil, apperr.Forbidden("only participants can submit videos")
	}
	if err := validateText(in.Title, in.Description); err != nil {
		return nil, err
	}

	cats, invalid := category.Parse(in.Categories)
	if len(invalid) > 0 {
		return nil, apperr.Invalid("unknown categories: %s", strings.Join(invalid, ", "))
	}
	if len(cats) == 0 {
		return nil, apperr.Invalid("at least one category is required")
	}

	if in.VideoURL == "" && in.VideoLink == "" {
		return nil, apperr.Invalid("a video file or an external link is required")
	}
	if in.VideoLink != "" && !validLink(in.VideoLink) {
		return nil, apperr.Invalid("videoLink must be an http or https URL")
	}

	if in.Round == 0 {
		in.Round = 1
	}
	if in.Year == 0 {
		in.Year = now().Year()
	}
	if err := league.ValidateScope(in.Round, in.Year); err != nil {
		return nil, err
	}
	if requirePayment && in.PaymentID == "" {
		return nil, apperr.Invalid("a completed payment is required to submit")
	}

	v := &Video{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		MaterialsUsed: in.MaterialsUsed,
		Thumbnail:     in.Thumbnail,
		VideoURL:      in.VideoURL,
		VideoLink:     in.VideoLink,
		AuthorID:      author.ID,
		Round:         in.Round,
		Year:          in.Year,
	}
	for _, c := range cats {
		v.Categories = append(v.Categories, VideoCategory{Category: c})
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, found, err := league.Find(tx, in.Round, in.Year)
		if err != nil {
			return err
		}
		if found && !l.AcceptsSubmissions() {
			return apperr.Invalid("league %d/%d is closed", in.Round, in.Year)
		}

		if in.PaymentID != "" {
			if _, err := payment.VerifyForSubmission(tx, author.ID, in.PaymentID, cats); err != nil {
				return err
			}
		}

		if err := tx.Create(v).Error; err != nil {
			return fmt.Errorf("creating video: %w", err)
		}
		if in.PaymentID != "" {
			return payment.LinkVideo(tx, in.PaymentID, v.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	v.Author = author
	return v, nil
}

// Load fetches a video with its categories using db, which may be a transaction.
func Load(db *gorm.DB, id string) (*Video, error) {
	var v Video
	if err := db.Preload("Categories").Take(&v, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, fmt.Errorf("loading video %s: %w", id, err)
	}
	return &v, nil
}

// Get returns a video for display, counting the view when asked.
func Get(ctx context.Context, id string, countView bool) (*Video, error) {
	db := database.DB.WithContext(ctx)
	if countView {
		res := db.Model(&Video{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return nil, fmt.Errorf("counting view: %w", res.Error)
		}
	}
	var v Video
	if err := db.Preload("Categories").Preload("Author").Take(&v, "id = ?", id).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("video not found")
		}
		return nil, fmt.Errorf("loading video %s: %w", id, err)
	}
	return &v, nil
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	Category category.Category
	Search   string
	AuthorID string
	Round    int
	Year     int
	Page     int
	Limit    int
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type Page struct {
	Videos     []View     `json:"videos"`
	Pagination Pagination `json:"pagination"`
}

// List returns one page of the catalog, newest first.
func List(ctx context.Context, f ListFilter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, apperr.Invalid("unknown category %q", f.Category)
	}

	q := database.DB.WithContext(ctx).Model(&Video{})
	if f.Category != "" {
		q = q.Where("EXISTS (SELECT 1 FROM video_categories vc WHERE vc.video_id = videos.id AND vc.category = ?)", f.Category)
	}
	if f.Round > 0 {
		q = q.Where("videos.round = ?", f.Round)
	}
	if f.Year > 0 {
		q = q.Where("videos.year = ?", f.Year)
	}
	if f.AuthorID != "" {
		q = q.Where("videos.author_id = ?", f.AuthorID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Joins("LEFT JOIN users ON users.id = videos.author_id").
			Where("LOWER(videos.title) LIKE ? OR LOWER(users.name) LIKE ?", pattern, pattern)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting videos: %w", err)
	}

	var videos []Video
	err := q.Preload("Categories").Preload("Author").
		Order("videos.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}

	return &Page{
		Videos: Views(videos),
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(f.Limit))),
		},
	}, nil
}

// UpdateInput holds the editable fields. Categories and league scope are fixed.
type UpdateInput struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	MaterialsUsed *string `json:"materialsUsed"`
	Thumbnail     *string `json:"thumbnail"`
}

func Update(ctx context.Context, actor *user.User, id string, in UpdateInput) (*Video, error) {
	db := database.DB.WithContext(ctx)
	v, err := Load(db, id)
	if err != nil {
		return nil, err
	}
	if v.AuthorID != actor.ID {
		return nil, apperr.Forbidden("only the author can edit this video")
	}

	title, description := v.Title, v.Description
	if in.Title != nil {
		title = *in.Title
	}
	if in.Description != nil {
		description = *in.Description
	}
	if err := validateText(title, description); err != nil {
		return nil, err
	}

	changes := map[string]any{"title": strings.TrimSpace(title), "description": description}
	if in.MaterialsUsed != nil {
		changes["materials_used"] = *in.MaterialsUsed
	}
	if in.Thumbnail != nil {
		changes["thumbnail"] = *in.Thumbnail
	}
	if err := db.Model(&Video{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("updating video: %w", err)
	}
	return Get(ctx, id, false)
}

// Delete removes a video and everything hanging off it, then refreshes the
// author's points for that year.
func Delete(ctx context.Context, actor *user.User, id string) error {
	return database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := Load(tx, id)
		if err != nil {
			return err
		}
		if v.AuthorID != actor.ID {
			return apperr.Forbidden("only the author can delete this video")
		}

		cleanupMu.Lock()
		fns := make([]CleanupFunc, 0, len(cleanups))
		for _, fn := range cleanups {
			fns = append(fns, fn)
		}
		cleanupMu.Unlock()
		for _, fn := range fns {
			if err := fn(tx, id); err != nil {
				return err
			}
		}

		if err := payment.UnlinkVideo(tx, id); err != nil {
			return fmt.Errorf("unlinking payments: %w", err)
		}
		if err := tx.Where("video_id = ?", id).Delete(&VideoCategory{}).Error; err != nil {
			return fmt.Errorf("deleting video categories: %w", err)
		}
		if err := tx.Delete(&Video{ID: id}).Error; err != nil {
			return fmt.Errorf("deleting video: %w", err)
		}
		_, err = user.RecomputeTotalPoints(tx, v.AuthorID, v.Year)
		return err
	})
}

// ApplyPoints shifts the counters of one video inside tx. The total moves by the
// sum of both deltas so the counter invariant holds after every call.
func ApplyPoints(tx *gorm.DB, videoID string, publicDelta, juryDelta int) error {
	res := tx.Model(&Video{}).Where("id = ?", videoID).UpdateColumns(map[string]any{
		"public_votes": gorm.Expr("public_votes + ?", publicDelta),
		"jury_points":  gorm.Expr("jury_points + ?", juryDelta),
		"total_points": gorm.Expr("total_points + ?", publicDelta+juryDelta),
	})
	if res.Error != nil {
		return fmt.Errorf("updating counters of %s: %w", videoID, res.Error)
	}
	if res.RowsAffected != 1 {
		return apperr.NotFound("video not found")
	}
	return nil
}
