package forum

import (
	"time"

	"github.com/go2motion/contest-backend/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryGeneral   Category = "GENERAL"
	CategoryTechnical Category = "TECNICA"
	CategoryPromotion Category = "PROMOCION"
	CategoryRules     Category = "NORMATIVA"
	CategoryShowcase  Category = "SHOWCASE"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryTechnical, CategoryPromotion, CategoryRules, CategoryShowcase:
		return true
	}
	return false
}

type Topic struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	Title     string     `gorm:"not null;type:varchar(200)"`
	Content   string     `gorm:"not null;type:text"`
	Category  Category   `gorm:"not null;type:varchar(16);index"`
	AuthorID  string     `gorm:"not null;type:varchar(36);index"`
	Author    *user.User `gorm:"foreignKey:AuthorID"`
	Views     int        `gorm:"not null;default:0"`
	Replies   []Reply    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (Topic) TableName() string { return "forum_topics" }

type Reply struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	TopicID   string     `gorm:"not null;type:varchar(36);index"`
	AuthorID  string     `gorm:"not null;type:varchar(36);index"`
	Author    *user.User `gorm:"foreignKey:AuthorID"`
	Content   string     `gorm:"not null;type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Reply) TableName() string { return "forum_replies" }

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (t *Topic) BeforeCreate(*gorm.DB) (err error) {
	if t.ID == "" {
		t.ID, err = newID()
	}
	return err
}

func (r *Reply) BeforeCreate(*gorm.DB) (err error) {
	if r.ID == "" {
		r.ID, err = newID()
	}
	return err
}

// Author is the slice of a profile shown next to forum posts.
type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func authorOf(u *user.User) *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

type ReplyView struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topicId"`
	Content   string    `json:"content"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Reply) View() ReplyView {
	return ReplyView{ID: r.ID, TopicID: r.TopicID, Content: r.Content, Author: authorOf(r.Author), CreatedAt: r.CreatedAt}
}

type TopicView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Category    Category    `json:"category"`
	Author      *Author     `json:"author,omitempty"`
	Views       int         `json:"views"`
	ReplyCount  int64       `json:"replies"`
	ReplyThread []ReplyView `json:"thread,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (t *Topic) View() TopicView {
	return TopicView{
		ID:        t.ID,
		Title:     t.Title,
		Content:   t.Content,
		Category:  t.Category,
		Author:    authorOf(t.Author),
		Views:     t.Views,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
