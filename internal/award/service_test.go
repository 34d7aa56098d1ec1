package award

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/cache"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/lock"
	"github.com/go2motion/contest-backend/internal/platform/metadata"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAwardTest(t *testing.T) context.Context {
	t.Helper()
	testutil.SetupDB(t, &user.User{}, &video.Video{}, &video.VideoCategory{}, &Award{}, &metadata.Entry{})
	ConfigureModule(lock.NewLocalLocker())
	return context.Background()
}

func createUser(t *testing.T, id, name string) *user.User {
	t.Helper()
	u := &user.User{ID: id, Email: id + "@example.com", Name: name, PasswordHash: "x", Role: user.RoleParticipantIndividual}
	require.NoError(t, database.DB.Create(u).Error)
	return u
}

func createVideo(t *testing.T, author *user.User, year, points int, cats ...category.Category) *video.Video {
	t.Helper()
	v := &video.Video{Title: "clip", AuthorID: author.ID, Round: 1, Year: year, VideoLink: "https://v.example", PublicVotes: points, TotalPoints: points}
	for _, c := range cats {
		v.Categories = append(v.Categories, video.VideoCategory{Category: c})
	}
	require.NoError(t, database.DB.Create(v).Error)
	return v
}

func byCategory(awards []View) map[category.Category]View {
	out := map[category.Category]View{}
	for _, a := range awards {
		out[a.Category] = a
	}
	return out
}

func TestCalculate(t *testing.T) {
	ctx := setupAwardTest(t)
	alice := createUser(t, "u-alice", "Alice")
	bob := createUser(t, "u-bob", "Bob")

	createVideo(t, alice, 2024, 4, category.BestVideo, category.BestArt)
	createVideo(t, alice, 2024, 3, category.BestVideo)
	createVideo(t, bob, 2024, 6, category.BestVideo)
	createVideo(t, bob, 2024, 4, category.BestArt)
	createVideo(t, bob, 2023, 100, category.BestColor)
	createVideo(t, bob, 2024, 0, category.BestEditing)

	before, err := LastCalculated(ctx, 2024)
	require.NoError(t, err)
	assert.Nil(t, before)

	awards, err := Calculate(ctx, 2024)
	require.NoError(t, err)
	got := byCategory(awards)
	require.Len(t, got, 2)

	after, err := LastCalculated(ctx, 2024)
	require.NoError(t, err)
	assert.NotNil(t, after)

	t.Run("Happy path - team category sums per author", func(t *testing.T) {
		a := got[category.BestVideo]
		assert.Equal(t, alice.ID, a.UserID)
		assert.Equal(t, 3000.0, a.PrizeValue)
		assert.Equal(t, PrizeDescription(3000), a.Prize)
		require.NotNil(t, a.User)
		assert.Equal(t, "Alice", a.User.Name)
	})

	t.Run("Happy path - ties break by author id", func(t *testing.T) {
		a := got[category.BestArt]
		assert.Equal(t, alice.ID, a.UserID)
		assert.Equal(t, 2000.0, a.PrizeValue)
	})

	t.Run("Happy path - zero score and other years yield no award", func(t *testing.T) {
		_, ok := got[category.BestEditing]
		assert.False(t, ok)
		_, ok = got[category.BestColor]
		assert.False(t, ok)
	})

	t.Run("Happy path - rerun is idempotent", func(t *testing.T) {
		again, err := Calculate(ctx, 2024)
		require.NoError(t, err)
		assert.Len(t, again, 2)
		assert.Equal(t, got[category.BestVideo].ID, byCategory(again)[category.BestVideo].ID)

		var count int64
		require.NoError(t, database.DB.Model(&Award{}).Where("year = ?", 2024).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})
}

func TestCalculateRemovesStaleAward(t *testing.T) {
	ctx := setupAwardTest(t)
	alice := createUser(t, "u-alice", "Alice")
	v := createVideo(t, alice, 2024, 2, category.BestColor)

	awards, err := Calculate(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, awards, 1)

	require.NoError(t, database.DB.Model(&video.Video{}).Where("id = ?", v.ID).
		Updates(map[string]any{"public_votes": 0, "total_points": 0}).Error)

	awards, err = Calculate(ctx, 2024)
	require.NoError(t, err)
	assert.Empty(t, awards)

	listed, err := List(ctx, 2024, "")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCalculateLockHeld(t *testing.T) {
	ctx := setupAwardTest(t)
	srv := testutil.SetupRedis(t)
	ConfigureModule(lock.New(database.RDB))
	t.Cleanup(func() { ConfigureModule(lock.NewLocalLocker()) })

	require.NoError(t, srv.Set("lock:awards:2024", "someone-else"))
	srv.SetTTL("lock:awards:2024", time.Minute)

	_, err := Calculate(ctx, 2024)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = Calculate(ctx, 2025)
	assert.NoError(t, err, "other years are not blocked")

	srv.Del("lock:awards:2024")
	_, err = Calculate(ctx, 2024)
	assert.NoError(t, err)
	assert.False(t, srv.Exists("lock:awards:2024"), "lock is released after the run")
}

func TestUpdatePrizeAndListByUser(t *testing.T) {
	ctx := setupAwardTest(t)
	alice := createUser(t, "u-alice", "Alice")
	createVideo(t, alice, 2024, 5, category.BestDirection)
	awards, err := Calculate(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, awards, 1)

	text := "Camera kit"
	value := 1500.0
	updated, err := UpdatePrize(ctx, awards[0].ID, PrizeUpdate{Prize: &text, PrizeValue: &value})
	require.NoError(t, err)
	assert.Equal(t, text, updated.Prize)
	assert.Equal(t, value, updated.PrizeValue)

	negative := -1.0
	_, err = UpdatePrize(ctx, awards[0].ID, PrizeUpdate{PrizeValue: &negative})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = UpdatePrize(ctx, "missing", PrizeUpdate{Prize: &text})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	mine, err := ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, category.BestDirection, mine[0].Category)
}

func TestAwardHandlers(t *testing.T) {
	setupAwardTest(t)
	alice := createUser(t, "u-alice", "Alice")
	createVideo(t, alice, 2024, 5, category.BestArt)

	router := testutil.NewRouter()
	router.GET("/awards", GetAwards)
	router.POST("/admin/awards/calculate", AdminCalculate)

	res := testutil.PerformRequest(router, http.MethodPost, "/admin/awards/calculate", map[string]int{"year": 2024}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = testutil.PerformRequest(router, http.MethodGet, "/awards?year=2024", nil, nil)
	var body struct {
		Awards []View `json:"awards"`
	}
	testutil.DecodeJSON(t, res, &body)
	require.Len(t, body.Awards, 1)
	assert.Equal(t, alice.ID, body.Awards[0].UserID)

	res = testutil.PerformRequest(router, http.MethodPost, "/admin/awards/calculate", map[string]int{"year": 2019}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCalculateClearsDashboardCache(t *testing.T) {
	ctx := setupAwardTest(t)
	srv := testutil.SetupRedis(t)
	createVideo(t, createUser(t, "u-cara", "Cara"), 2024, 5, category.BestVideo)

	stale := cache.DashboardPrefix + "all"
	require.NoError(t, srv.Set(stale, "{}"))
	require.NoError(t, srv.Set("unrelated", "1"))

	_, err := Calculate(ctx, 2024)
	require.NoError(t, err)
	assert.False(t, srv.Exists(stale))
	assert.True(t, srv.Exists("unrelated"))
}
