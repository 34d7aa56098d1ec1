package video

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/payment"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVideoTest(t *testing.T) (context.Context, *user.User, *user.User) {
	t.Helper()
	testutil.SetupDB(t, &user.User{}, &league.League{}, &payment.Payment{}, &Video{}, &VideoCategory{})
	payment.ConfigureModule(payment.MockGateway{}, "http://front.test", "EUR")
	ConfigureModule(false)
	now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	author := &user.User{Email: "a@example.com", Name: "Ana", PasswordHash: "x", Role: user.RoleParticipantIndividual}
	voter := &user.User{Email: "v@example.com", Name: "Val", PasswordHash: "x", Role: user.RoleVoter}
	require.NoError(t, database.DB.Create(author).Error)
	require.NoError(t, database.DB.Create(voter).Error)
	return context.Background(), author, voter
}

func validInput() SubmitInput {
	return SubmitInput{
		Title:      "Stop motion dreams",
		Categories: []string{"BEST_ART", "BEST_COLOR"},
		Round:      1,
		Year:       2024,
		VideoLink:  "https://videos.example/1",
	}
}

func TestSubmit(t *testing.T) {
	ctx, author, voter := setupVideoTest(t)

	t.Run("Happy path - video created with zero counters", func(t *testing.T) {
		v, err := Submit(ctx, author, validInput())
		require.NoError(t, err)
		assert.NotEmpty(t, v.ID)
		assert.Zero(t, v.TotalPoints)

		loaded, err := Load(database.DB, v.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.CategoryList(), 2)
		assert.True(t, loaded.HasCategory("BEST_ART"))
	})

	t.Run("Happy path - defaults to round 1 of the current year", func(t *testing.T) {
		in := validInput()
		in.Round, in.Year = 0, 0
		v, err := Submit(ctx, author, in)
		require.NoError(t, err)
		assert.Equal(t, 1, v.Round)
		assert.Equal(t, 2024, v.Year)
	})

	t.Run("Unhappy path - voters cannot submit", func(t *testing.T) {
		_, err := Submit(ctx, voter, validInput())
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Unhappy path - invalid inputs", func(t *testing.T) {
		cases := map[string]func(*SubmitInput){
			"short title":      func(in *SubmitInput) { in.Title = "ab" },
			"no categories":    func(in *SubmitInput) { in.Categories = nil },
			"unknown category": func(in *SubmitInput) { in.Categories = []string{"BEST_SOUND"} },
			"no media":         func(in *SubmitInput) { in.VideoLink = "" },
			"bad link":         func(in *SubmitInput) { in.VideoLink = "ftp://x" },
			"round too high":   func(in *SubmitInput) { in.Round = 7 },
			"year too old":     func(in *SubmitInput) { in.Year = 2019 },
		}
		for name, mutate := range cases {
			in := validInput()
			mutate(&in)
			_, err := Submit(ctx, author, in)
			assert.True(t, apperr.Is(err, apperr.KindInvalid), name)
		}
	})
}

func TestSubmitIntoClosedLeague(t *testing.T) {
	ctx, author, _ := setupVideoTest(t)
	require.NoError(t, database.DB.Create(&league.League{
		Round: 1, Year: 2024, Name: "Closed",
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		JuryEndDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    false,
	}).Error)

	_, err := Submit(ctx, author, validInput())
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	var count int64
	require.NoError(t, database.DB.Model(&Video{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitWithPayment(t *testing.T) {
	ctx, author, _ := setupVideoTest(t)
	ConfigureModule(true)

	_, err := Submit(ctx, author, validInput())
	assert.True(t, apperr.Is(err, apperr.KindInvalid), "payment is required")

	res, err := payment.CreateCheckout(ctx, author, []string{"BEST_ART", "BEST_COLOR"})
	require.NoError(t, err)
	in := validInput()
	in.PaymentID = res.PaymentID

	_, err = Submit(ctx, author, in)
	assert.True(t, apperr.Is(err, apperr.KindInvalid), "pending payment")

	_, err = payment.CompleteMock(ctx, author.ID, res.PaymentID)
	require.NoError(t, err)
	v, err := Submit(ctx, author, in)
	require.NoError(t, err)

	p, err := payment.GetForOwner(ctx, author.ID, res.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, p.VideoID)
	assert.Equal(t, v.ID, *p.VideoID)

	require.NoError(t, Delete(ctx, author, v.ID))
	p, err = payment.GetForOwner(ctx, author.ID, res.PaymentID)
	require.NoError(t, err)
	assert.Nil(t, p.VideoID)
}

func TestApplyPointsAndDelete(t *testing.T) {
	ctx, author, voter := setupVideoTest(t)
	v, err := Submit(ctx, author, validInput())
	require.NoError(t, err)

	require.NoError(t, database.DB.Transaction(func(tx *gorm.DB) error {
		if err := ApplyPoints(tx, v.ID, 2, 10); err != nil {
			return err
		}
		_, err := user.RecomputeTotalPoints(tx, author.ID, v.Year)
		return err
	}))

	loaded, err := Load(database.DB, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.PublicVotes)
	assert.Equal(t, 10, loaded.JuryPoints)
	assert.Equal(t, 12, loaded.TotalPoints)

	refreshed, err := user.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, refreshed.TotalPoints)

	err = database.DB.Transaction(func(tx *gorm.DB) error { return ApplyPoints(tx, "missing", 1, 0) })
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	cleaned := ""
	RegisterCleanup("test", func(_ *gorm.DB, id string) error { cleaned = id; return nil })
	t.Cleanup(func() {
		cleanupMu.Lock()
		delete(cleanups, "test")
		cleanupMu.Unlock()
	})

	err = Delete(ctx, voter, v.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, Delete(ctx, author, v.ID))
	assert.Equal(t, v.ID, cleaned)
	refreshed, err = user.GetByID(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, refreshed.TotalPoints)

	_, err = Get(ctx, v.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListAndViews(t *testing.T) {
	ctx, author, _ := setupVideoTest(t)
	for _, title := range []string{"Clay city", "Paper boats", "Clay moon"} {
		in := validInput()
		in.Title = title
		_, err := Submit(ctx, author, in)
		require.NoError(t, err)
	}
	other := validInput()
	other.Title = "Editing only"
	other.Categories = []string{"BEST_EDITING"}
	other.Round = 2
	_, err := Submit(ctx, author, other)
	require.NoError(t, err)

	t.Run("Happy path - search and pagination", func(t *testing.T) {
		page, err := List(ctx, ListFilter{Search: "clay", Limit: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Pagination.Total)
		assert.Equal(t, 2, page.Pagination.Pages)
		assert.Len(t, page.Videos, 1)
	})

	t.Run("Happy path - category and round filters", func(t *testing.T) {
		page, err := List(ctx, ListFilter{Category: "BEST_EDITING"})
		require.NoError(t, err)
		require.Len(t, page.Videos, 1)
		assert.Equal(t, "Editing only", page.Videos[0].Title)

		page, err = List(ctx, ListFilter{Round: 1, Year: 2024})
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Pagination.Total)
	})

	t.Run("Happy path - search matches author name", func(t *testing.T) {
		page, err := List(ctx, ListFilter{Search: "ana"})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Pagination.Total)
	})

	t.Run("Unhappy path - unknown category", func(t *testing.T) {
		_, err := List(ctx, ListFilter{Category: "BEST_SOUND"})
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
	})
}

func TestVideoHandlers(t *testing.T) {
	ctx, author, _ := setupVideoTest(t)
	v, err := Submit(ctx, author, validInput())
	require.NoError(t, err)

	router := testutil.NewRouter()
	router.GET("/videos/:id", GetVideo)
	router.GET("/videos", GetVideos)
	router.PUT("/videos/:id", func(c *gin.Context) { c.Set(user.CurrentUserKey, author) }, UpdateVideo)

	t.Run("Happy path - detail counts a view", func(t *testing.T) {
		res := testutil.PerformRequest(router, http.MethodGet, "/videos/"+v.ID, nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		res = testutil.PerformRequest(router, http.MethodGet, "/videos/"+v.ID, nil, nil)
		var body View
		testutil.DecodeJSON(t, res, &body)
		assert.Equal(t, 2, body.Views)
		require.NotNil(t, body.Author)
		assert.Equal(t, "Ana", body.Author.Name)
	})

	t.Run("Happy path - author edits title", func(t *testing.T) {
		res := testutil.PerformRequest(router, http.MethodPut, "/videos/"+v.ID, map[string]any{"title": "New title"}, nil)
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
		var body View
		testutil.DecodeJSON(t, res, &body)
		assert.Equal(t, "New title", body.Title)
	})

	t.Run("Unhappy path - bad paging parameter", func(t *testing.T) {
		res := testutil.PerformRequest(router, http.MethodGet, "/videos?page=abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - missing video", func(t *testing.T) {
		res := testutil.PerformRequest(router, http.MethodGet, "/videos/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}
