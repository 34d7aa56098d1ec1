package video

import (
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Video is a submitted clip. Its categories and (round, year) never change after
// creation, and TotalPoints always equals PublicVotes + JuryPoints.
type Video struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)"`
	Title         string          `gorm:"not null;type:varchar(200)"`
	Description   string          `gorm:"type:text"`
	MaterialsUsed string          `gorm:"type:text"`
	Thumbnail     string
	VideoURL      string
	VideoLink     string
	AuthorID      string          `gorm:"not null;index;type:varchar(36)"`
	Author        *user.User      `gorm:"foreignKey:AuthorID"`
	Round         int             `gorm:"not null;index:idx_video_league"`
	Year          int             `gorm:"not null;index:idx_video_league"`
	PublicVotes   int             `gorm:"not null;default:0"`
	JuryPoints    int             `gorm:"not null;default:0"`
	TotalPoints   int             `gorm:"not null;default:0;index"`
	Views         int             `gorm:"not null;default:0"`
	Categories    []VideoCategory `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VideoCategory tags a video with one category.
type VideoCategory struct {
	VideoID  string            `gorm:"primaryKey;type:varchar(36)"`
	Category category.Category `gorm:"primaryKey;type:varchar(32);index"`
}

func (v *Video) BeforeCreate(*gorm.DB) error {
	if v.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	v.ID = id.String()
	return nil
}

// CategoryList returns the video's categories in display order.
func (v *Video) CategoryList() []category.Category {
	set := make(map[category.Category]bool, len(v.Categories))
	for _, vc := range v.Categories {
		set[vc.Category] = true
	}
	var out []category.Category
	for _, c := range category.All() {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}

func (v *Video) HasCategory(c category.Category) bool {
	for _, vc := range v.Categories {
		if vc.Category == c {
			return true
		}
	}
	return false
}

// View is the API representation of a video.
type View struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	MaterialsUsed string              `json:"materialsUsed,omitempty"`
	Thumbnail     string              `json:"thumbnail,omitempty"`
	VideoURL      string              `json:"videoUrl,omitempty"`
	VideoLink     string              `json:"videoLink,omitempty"`
	Categories    []category.Category `json:"categories"`
	Round         int                 `json:"round"`
	Year          int                 `json:"year"`
	PublicVotes   int                 `json:"publicVotes"`
	JuryPoints    int                 `json:"juryPoints"`
	TotalPoints   int                 `json:"totalPoints"`
	Views         int                 `json:"views"`
	AuthorID      string              `json:"authorId"`
	Author        *user.PublicProfile `json:"author,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func (v *Video) View() View {
	out := View{
		ID:            v.ID,
		Title:         v.Title,
		Description:   v.Description,
		MaterialsUsed: v.MaterialsUsed,
		Thumbnail:     v.Thumbnail,
		VideoURL:      v.VideoURL,
		VideoLink:     v.VideoLink,
		Categories:    v.CategoryList(),
		Round:         v.Round,
		Year:          v.Year,
		PublicVotes:   v.PublicVotes,
		JuryPoints:    v.JuryPoints,
		TotalPoints:   v.TotalPoints,
		Views:         v.Views,
		AuthorID:      v.AuthorID,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
	if v.Author != nil {
		p := v.Author.Public()
		out.Author = &p
	}
	return out
}

// Views maps a slice for list responses.
func Views(videos []Video) []View {
	out := make([]View, len(videos))
	for i := range videos {
		out[i] = videos[i].View()
	}
	return out
}
