package jury

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/platform/apperr"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/go2motion/contest-backend/internal/platform/validation"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsForPosition(t *testing.T) {
	expected := map[int]int{1: 3, 2: 3, 3: 2, 4: 2, 5: 2}
	for pos, points := range expected {
		got, err := PointsForPosition(pos)
		require.NoError(t, err)
		assert.Equal(t, points, got, "position %d", pos)
	}
	for _, pos := range []int{-1, 0, 6, 10} {
		_, err := PointsForPosition(pos)
		assert.True(t, apperr.Is(err, apperr.KindInvalid), "position %d", pos)
	}
}

type fixture struct {
	ctx    context.Context
	author *user.User
	juror  *user.User
	member *Member
	clip   *video.Video
}

func setupJuryTest(t *testing.T) fixture {
	t.Helper()
	testutil.SetupDB(t, &user.User{}, &video.Video{}, &video.VideoCategory{}, &Member{}, &Vote{})
	ctx := context.Background()

	author := &user.User{Email: "a@example.com", Name: "Ana", PasswordHash: "x", Role: user.RoleParticipantIndividual}
	juror := &user.User{Email: "j@example.com", Name: "Judge", PasswordHash: "x", Role: user.RoleVoter}
	require.NoError(t, database.DB.Create(author).Error)
	require.NoError(t, database.DB.Create(juror).Error)

	member, err := AddMember(ctx, MemberInput{Name: "Judge Dredd", UserID: juror.ID})
	require.NoError(t, err)

	clip := &video.Video{
		Title: "Clay", AuthorID: author.ID, Round: 1, Year: 2024, VideoLink: "https://v.example/clay",
		Categories: []video.VideoCategory{{Category: category.BestArt}},
	}
	require.NoError(t, database.DB.Create(clip).Error)
	return fixture{ctx: ctx, author: author, juror: juror, member: member, clip: clip}
}

func TestAddMember(t *testing.T) {
	f := setupJuryTest(t)

	_, err := AddMember(f.ctx, MemberInput{Name: "Second seat", UserID: f.juror.ID})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = AddMember(f.ctx, MemberInput{Name: "Ghost", UserID: "missing"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = AddMember(f.ctx, MemberInput{Name: "X"})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = AddMember(f.ctx, MemberInput{Name: "Guest judge", Order: 1})
	require.NoError(t, err)
	members, err := ListMembers(f.ctx)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	m, err := MemberForUser(f.ctx, f.juror.ID)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, m.ID)
}

func TestCast(t *testing.T) {
	f := setupJuryTest(t)
	in := CastInput{VideoID: f.clip.ID, Category: "BEST_ART", Round: 1, Year: 2024, Position: 2}

	jv, err := Cast(f.ctx, f.member, in)
	require.NoError(t, err)
	assert.Equal(t, 3, jv.Points)

	v, err := video.Load(database.DB, f.clip.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, v.JuryPoints)
	assert.Equal(t, 3, v.TotalPoints)
	assert.Equal(t, v.PublicVotes+v.JuryPoints, v.TotalPoints)

	author, err := user.GetByID(f.ctx, f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, author.TotalPoints)

	t.Run("Unhappy path - duplicate", func(t *testing.T) {
		_, err := Cast(f.ctx, f.member, in)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("Unhappy path - wrong league, category or position", func(t *testing.T) {
		wrong := in
		wrong.Round = 2
		_, err := Cast(f.ctx, f.member, wrong)
		assert.True(t, apperr.Is(err, apperr.KindInvalid))

		wrong = in
		wrong.Category = "BEST_COLOR"
		_, err = Cast(f.ctx, f.member, wrong)
		assert.True(t, apperr.Is(err, apperr.KindInvalid))

		wrong = in
		wrong.Position = 6
		_, err = Cast(f.ctx, f.member, wrong)
		assert.True(t, apperr.Is(err, apperr.KindInvalid))
	})

	t.Run("Unhappy path - missing video", func(t *testing.T) {
		missing := in
		missing.VideoID = "missing"
		_, err := Cast(f.ctx, f.member, missing)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestRanking(t *testing.T) {
	f := setupJuryTest(t)
	popular := &video.Video{
		Title: "Popular", AuthorID: f.author.ID, Round: 1, Year: 2024, VideoLink: "https://v.example/p", PublicVotes: 9, TotalPoints: 9,
		Categories: []video.VideoCategory{{Category: category.BestArt}},
	}
	otherCategory := &video.Video{
		Title: "Editing", AuthorID: f.author.ID, Round: 1, Year: 2024, VideoLink: "https://v.example/e", PublicVotes: 50, TotalPoints: 50,
		Categories: []video.VideoCategory{{Category: category.BestEditing}},
	}
	require.NoError(t, database.DB.Create(popular).Error)
	require.NoError(t, database.DB.Create(otherCategory).Error)

	ranking, err := Ranking(f.ctx, category.BestArt, 1, 2024, 0)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, popular.ID, ranking[0].Video.ID)
	assert.Equal(t, 1, ranking[0].Position)
	assert.Equal(t, f.clip.ID, ranking[1].Video.ID)

	_, err = Ranking(f.ctx, "BEST_SOUND", 1, 2024, 0)
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestJuryHandlers(t *testing.T) {
	f := setupJuryTest(t)
	validation.MustRegisterStringRule("category", func(s string) bool { return category.Category(s).Valid() })

	outsider := &user.User{Email: "o@example.com", Name: "Out", PasswordHash: "x", Role: user.RoleVoter}
	require.NoError(t, database.DB.Create(outsider).Error)

	current := f.juror
	router := testutil.NewRouter()
	group := router.Group("/jury", func(c *gin.Context) { c.Set(user.CurrentUserKey, current) }, RequireMember())
	group.POST("/vote", CastVote)
	group.GET("/ranking", GetRanking)

	body := gin.H{"videoId": f.clip.ID, "category": "BEST_ART", "round": 1, "year": 2024, "position": 4}

	t.Run("Happy path - juror votes", func(t *testing.T) {
		res := testutil.PerformRequest(router, http.MethodPost, "/jury/vote", body, nil)
		require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
		var out struct {
			JuryVote Vote `json:"juryVote"`
		}
		testutil.DecodeJSON(t, res, &out)
		assert.Equal(t, 2, out.JuryVote.Points)
	})

	t.Run("Happy path - ranking", func(t *testing.T) {
		res := testutil.PerformRequest(router, http.MethodGet, "/jury/ranking?category=BEST_ART&round=1&year=2024", nil, nil)
		assert.Equal(t, http.StatusOK, res.Code)
	})

	t.Run("Unhappy path - non-member is forbidden", func(t *testing.T) {
		current = outsider
		defer func() { current = f.juror }()
		res := testutil.PerformRequest(router, http.MethodPost, "/jury/vote", body, nil)
		assert.Equal(t, http.StatusForbidden, res.Code)
	})
}
