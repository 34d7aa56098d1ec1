package forum

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/go2motion/contest-backend/internal/platform/validation"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupForumTest(t *testing.T) (context.Context, *user.User, *user.User) {
	t.Helper()
	testutil.SetupDB(t, &user.User{}, &Topic{}, &Reply{})
	participant := &user.User{Email: "p@example.com", Name: "Pat", PasswordHash: "x", Role: user.RoleParticipantTeam}
	voter := &user.User{Email: "v@example.com", Name: "Val", PasswordHash: "x", Role: user.RoleVoter}
	require.NoError(t, database.DB.Create(participant).Error)
	require.NoError(t, database.DB.Create(voter).Error)
	return context.Background(), participant, voter
}

func TestTopicsAndReplies(t *testing.T) {
	ctx, participant, voter := setupForumTest(t)

	first, err := CreateTopic(ctx, participant, TopicInput{Title: "Lighting rigs", Content: "What do you use for clay?", Category: "TECNICA"})
	require.NoError(t, err)
	second, err := CreateTopic(ctx, participant, TopicInput{Title: "Hello there", Content: "Introducing myself here", Category: "GENERAL"})
	require.NoError(t, err)

	t.Run("Unhappy path - voters cannot post", func(t *testing.T) {
		_, err := CreateTopic(ctx, voter, TopicInput{Title: "Lighting rigs", Content: "What do you use for clay?", Category: "TECNICA"})
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		_, err = AddReply(ctx, voter, first.ID, "me too please")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Unhappy path - validation", func(t *testing.T) {
		_, err := CreateTopic(ctx, participant, TopicInput{Title: "Hi", Content: "What do you use for clay?", Category: "TECNICA"})
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
		_, err = CreateTopic(ctx, participant, TopicInput{Title: "Lighting rigs", Content: "What do you use for clay?", Category: "RANDOM"})
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
		_, err = AddReply(ctx, participant, first.ID, "ok")
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
		_, err = AddReply(ctx, participant, "missing", "a long enough reply")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	_, err = AddReply(ctx, participant, first.ID, "Two softboxes and a bounce card")
	require.NoError(t, err)

	t.Run("Happy path - replied topic moves to the top", func(t *testing.T) {
		page, err := ListTopics(ctx, "", 1, 20)
		require.NoError(t, err)
		require.Len(t, page.Topics, 2)
		assert.Equal(t, first.ID, page.Topics[0].ID)
		assert.EqualValues(t, 1, page.Topics[0].ReplyCount)
		assert.Equal(t, second.ID, page.Topics[1].ID)
	})

	t.Run("Happy path - category filter", func(t *testing.T) {
		page, err := ListTopics(ctx, CategoryGeneral, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, page.Pagination.Total)
	})

	t.Run("Happy path - detail counts views and includes the thread", func(t *testing.T) {
		_, err := GetTopic(ctx, first.ID)
		require.NoError(t, err)
		topic, err := GetTopic(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, topic.Views)
		require.Len(t, topic.ReplyThread, 1)
		assert.Equal(t, "Pat", topic.ReplyThread[0].Author.Name)
	})
}

func TestForumHandlers(t *testing.T) {
	_, participant, _ := setupForumTest(t)
	validation.MustRegisterStringRule("forumcategory", func(s string) bool { return Category(s).Valid() })

	router := testutil.NewRouter()
	router.GET("/forum/topics", GetTopics)
	router.GET("/forum/topics/:id", GetTopicByID)
	authed := router.Group("/forum", func(c *gin.Context) { c.Set(user.CurrentUserKey, participant) })
	authed.POST("/topics", PostTopic)
	authed.POST("/topics/:id/replies", PostReply)

	res := testutil.PerformRequest(router, http.MethodPost, "/forum/topics",
		gin.H{"title": "Showcase thread", "content": "Share your best frames here", "category": "SHOWCASE"}, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var created struct {
		Topic TopicView `json:"topic"`
	}
	testutil.DecodeJSON(t, res, &created)

	res = testutil.PerformRequest(router, http.MethodPost, "/forum/topics/"+created.Topic.ID+"/replies", gin.H{"content": "Nice thread"}, nil)
	assert.Equal(t, http.StatusCreated, res.Code)

	res = testutil.PerformRequest(router, http.MethodGet, "/forum/topics/"+created.Topic.ID, nil, nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = testutil.PerformRequest(router, http.MethodPost, "/forum/topics",
		gin.H{"title": "Showcase thread", "content": "Share your best frames here", "category": "MEMES"}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = testutil.PerformRequest(router, http.MethodGet, "/forum/topics?category=SHOWCASE", nil, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}
