package forum

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/user"
	"gorm.io/gorm"
)

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return apperr.Invalid("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

type TopicInput struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required,forumcategory"`
}

// CreateTopic opens a thread. Only participants may post.
func CreateTopic(ctx context.Context, author *user.User, in TopicInput) (*TopicView, error) {
	if !author.Role.IsParticipant() {
		return nil, apperr.Forbidden("only participants can post in the forum")
	}
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if err := checkLength("title", title, 5, 200); err != nil {
		return nil, err
	}
	if err := checkLength("content", content, 10, 5000); err != nil {
		return nil, err
	}
	cat := Category(in.Category)
	if !cat.Valid() {
		return nil, apperr.Invalid("invalid forum category %q", in.Category)
	}

	t := &Topic{Title: title, Content: content, Category: cat, AuthorID: author.ID}
	if err := database.DB.WithContext(ctx).Create(t).Error; err != nil {
		return nil, fmt.Errorf("creating topic: %w", err)
	}
	t.Author = author
	v := t.View()
	return &v, nil
}

// AddReply appends to a thread and bumps the thread to the top of the listing.
func AddReply(ctx context.Context, author *user.User, topicID, content string) (*ReplyView, error) {
	if !author.Role.IsParticipant() {
		return nil, apperr.Forbidden("only participants can post in the forum")
	}
	content = strings.TrimSpace(content)
	if err := checkLength("content", content, 5, 2000); err != nil {
		return nil, err
	}

	r := &Reply{TopicID: topicID, AuthorID: author.ID, Content: content}
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Topic{}).Where("id = ?", topicID).Update("updated_at", time.Now())
		if res.Error != nil {
			return fmt.Errorf("touching topic: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("topic not found")
		}
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("creating reply: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Author = author
	v := r.View()
	return &v, nil
}

type TopicPage struct {
	Topics     []TopicView `json:"topics"`
	Pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

// ListTopics pages through threads, most recently active first.
func ListTopics(ctx context.Context, cat Category, page, limit int) (*TopicPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	q := database.DB.WithContext(ctx).Model(&Topic{})
	if cat != "" {
		if !cat.Valid() {
			return nil, apperr.Invalid("invalid forum category %q", cat)
		}
		q = q.Where("category = ?", cat)
	}
	q = q.Session(&gorm.Session{})

	out := &TopicPage{}
	if err := q.Count(&out.Pagination.Total).Error; err != nil {
		return nil, fmt.Errorf("counting topics: %w", err)
	}
	var topics []Topic
	err := q.Preload("Author").Order("updated_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	counts := map[string]int64{}
	if len(topics) > 0 {
		ids := make([]string, len(topics))
		for i := range topics {
			ids[i] = topics[i].ID
		}
		var rows []struct {
			TopicID string
			N       int64
		}
		err := database.DB.WithContext(ctx).Model(&Reply{}).
			Select("topic_id, COUNT(*) AS n").
			Where("topic_id IN ?", ids).
			Group("topic_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("counting replies: %w", err)
		}
		for _, r := range rows {
			counts[r.TopicID] = r.N
		}
	}

	out.Topics = make([]TopicView, len(topics))
	for i := range topics {
		out.Topics[i] = topics[i].View()
		out.Topics[i].ReplyCount = counts[topics[i].ID]
	}
	out.Pagination.Page = page
	out.Pagination.Limit = limit
	out.Pagination.Pages = int(math.Ceil(float64(out.Pagination.Total) / float64(limit)))
	return out, nil
}

// GetTopic returns a thread with its replies in posting order and counts the view.
func GetTopic(ctx context.Context, id string) (*TopicView, error) {
	db := database.DB.WithContext(ctx)
	var t Topic
	err := db.Preload("Author").
		Preload("Replies", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC") }).
		Preload("Replies.Author").
		Take(&t, "id = ?", id).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, apperr.NotFound("topic not found")
		}
		return nil, fmt.Errorf("loading topic %s: %w", id, err)
	}

	if err := db.Model(&Topic{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return nil, fmt.Errorf("counting topic view: %w", err)
	}
	t.Views++

	v := t.View()
	v.ReplyCount = int64(len(t.Replies))
	v.ReplyThread = make([]ReplyView, len(t.Replies))
	for i := range t.Replies {
		v.ReplyThread[i] = t.Replies[i].View()
	}
	return &v, nil
}
