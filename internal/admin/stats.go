package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/go2motion/contest-backend/internal/award"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/payment"
	"github.com/go2motion/contest-backend/internal/platform/cache"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/go2motion/contest-backend/internal/vote"
	"gorm.io/gorm"
)

const dashboardTTL = 30 * time.Second

// Period bounds a report by creation time. Nil ends are open.
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) apply(q *gorm.DB, column string) *gorm.DB {
	if p.From != nil {
		q = q.Where(column+" >= ?", *p.From)
	}
	if p.To != nil {
		q = q.Where(column+" <= ?", *p.To)
	}
	return q
}

func (p Period) key() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return format(p.From) + ":" + format(p.To)
}

type Dashboard struct {
	Users struct {
		Total        int64 `json:"total"`
		Voters       int64 `json:"voters"`
		Participants int64 `json:"participants"`
		Individual   int64 `json:"individual"`
		Teams        int64 `json:"teams"`
	} `json:"users"`
	Videos struct {
		Total      int64                       `json:"total"`
		ByCategory map[category.Category]int64 `json:"byCategory"`
		ByRound    map[int]int64               `json:"byRound"`
	} `json:"videos"`
	Votes struct {
		Total      int64                       `json:"total"`
		ByCategory map[category.Category]int64 `json:"byCategory"`
	} `json:"votes"`
	Payments struct {
		Total     int64   `json:"total"`
		Completed int64   `json:"completed"`
		Pending   int64   `json:"pending"`
		Revenue   float64 `json:"revenue"`
	} `json:"payments"`
	Leagues struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	} `json:"leagues"`
	Awards struct {
		Year             int        `json:"year"`
		Total            int64      `json:"total"`
		LastCalculatedAt *time.Time `json:"lastCalculatedAt"`
	} `json:"awards"`
}

type grouped[K comparable] struct {
	GroupKey K
	N        int64
}

func groupCount[K comparable](q *gorm.DB, column string) (map[K]int64, error) {
	var rows []grouped[K]
	if err := q.Select(column + " AS group_key, COUNT(*) AS n").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[K]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.N
	}
	return out, nil
}

// BuildDashboard gathers the headline numbers. Video, vote and payment figures
// honor the period. Results are cached briefly in Redis when available.
func BuildDashboard(ctx context.Context, p Period) (*Dashboard, error) {
	cacheKey := cache.DashboardPrefix + p.key()
	d := &Dashboard{}
	if cache.GetJSON(ctx, cacheKey, d) {
		return d, nil
	}

	db := database.DB.WithContext(ctx)
	countUsers := func(dst *int64, roles ...user.Role) error {
		q := db.Model(&user.User{})
		if len(roles) > 0 {
			q = q.Where("role IN ?", roles)
		}
		return q.Count(dst).Error
	}
	if err := countUsers(&d.Users.Total); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if err := countUsers(&d.Users.Voters, user.RoleVoter); err != nil {
		return nil, fmt.Errorf("counting voters: %w", err)
	}
	if err := countUsers(&d.Users.Individual, user.RoleParticipantIndividual); err != nil {
		return nil, fmt.Errorf("counting participants: %w", err)
	}
	if err := countUsers(&d.Users.Teams, user.RoleParticipantTeam); err != nil {
		return nil, fmt.Errorf("counting teams: %w", err)
	}
	d.Users.Participants = d.Users.Individual + d.Users.Teams

	var err error
	videos := func() *gorm.DB { return p.apply(db.Model(&video.Video{}), "videos.created_at") }
	if err = videos().Count(&d.Videos.Total).Error; err != nil {
		return nil, fmt.Errorf("counting videos: %w", err)
	}
	d.Videos.ByCategory, err = groupCount[category.Category](
		videos().Joins("JOIN video_categories ON video_categories.video_id = videos.id"), "video_categories.category")
	if err != nil {
		return nil, fmt.Errorf("grouping videos by category: %w", err)
	}
	if d.Videos.ByRound, err = groupCount[int](videos(), "videos.round"); err != nil {
		return nil, fmt.Errorf("grouping videos by round: %w", err)
	}

	votes := func() *gorm.DB { return p.apply(db.Model(&vote.Vote{}), "created_at") }
	if err = votes().Count(&d.Votes.Total).Error; err != nil {
		return nil, fmt.Errorf("counting votes: %w", err)
	}
	if d.Votes.ByCategory, err = groupCount[category.Category](votes(), "category"); err != nil {
		return nil, fmt.Errorf("grouping votes: %w", err)
	}

	payments := func() *gorm.DB { return p.apply(db.Model(&payment.Payment{}), "created_at") }
	if err = payments().Count(&d.Payments.Total).Error; err != nil {
		return nil, fmt.Errorf("counting payments: %w", err)
	}
	if err = payments().Where("status = ?", payment.StatusCompleted).Count(&d.Payments.Completed).Error; err != nil {
		return nil, fmt.Errorf("counting completed payments: %w", err)
	}
	d.Payments.Pending = d.Payments.Total - d.Payments.Completed
	var cents int64
	err = payments().Where("status = ?", payment.StatusCompleted).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&cents).Error
	if err != nil {
		return nil, fmt.Errorf("summing revenue: %w", err)
	}
	d.Payments.Revenue = float64(cents) / 100

	if err = db.Model(&league.League{}).Count(&d.Leagues.Total).Error; err != nil {
		return nil, fmt.Errorf("counting leagues: %w", err)
	}
	if err = db.Model(&league.League{}).Where("is_active = ?", true).Count(&d.Leagues.Active).Error; err != nil {
		return nil, fmt.Errorf("counting active leagues: %w", err)
	}

	d.Awards.Year = time.Now().Year()
	if err = db.Model(&award.Award{}).Where("year = ?", d.Awards.Year).Count(&d.Awards.Total).Error; err != nil {
		return nil, fmt.Errorf("counting awards: %w", err)
	}
	if d.Awards.LastCalculatedAt, err = award.LastCalculated(ctx, d.Awards.Year); err != nil {
		return nil, err
	}

	cache.SetJSON(ctx, cacheKey, d, dashboardTTL)
	return d, nil
}

type UserStat struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        user.Role `json:"role"`
	Avatar      string    `json:"avatar,omitempty"`
	TotalPoints int       `json:"totalPoints"`
	VideosCount int64     `json:"videosCount"`
	VotesCount  int64     `json:"votesCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserStats lists every user with their video and vote counts, best scorers first.
func UserStats(ctx context.Context) ([]UserStat, error) {
	var out []UserStat
	err := database.DB.WithContext(ctx).Model(&user.User{}).
		Select(`users.id, users.name, users.email, users.role, users.avatar, users.total_points, users.created_at,
			(SELECT COUNT(*) FROM videos WHERE videos.author_id = users.id) AS videos_count,
			(SELECT COUNT(*) FROM votes WHERE votes.user_id = users.id) AS votes_count`).
		Order("users.total_points DESC, users.created_at ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("loading user stats: %w", err)
	}
	return out, nil
}

// VideoStats lists videos created in the period, newest first.
func VideoStats(ctx context.Context, p Period, round, year int) ([]video.View, error) {
	q := p.apply(database.DB.WithContext(ctx).Model(&video.Video{}), "created_at")
	if round > 0 {
		q = q.Where("round = ?", round)
	}
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	var videos []video.Video
	if err := q.Preload("Categories").Preload("Author").Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("loading video stats: %w", err)
	}
	return video.Views(videos), nil
}

type RevenuePayment struct {
	payment.Payment
	UserName  string  `json:"userName"`
	UserEmail string  `json:"userEmail"`
	Amount    float64 `json:"amount"`
}

type RevenueReport struct {
	TotalRevenue      float64                       `json:"totalRevenue"`
	Payments          []RevenuePayment              `json:"payments"`
	RevenueByCategory map[category.Category]float64 `json:"revenueByCategory"`
}

// Revenue sums completed payments in the period. Each payment is split evenly
// across the categories it paid for.
func Revenue(ctx context.Context, p Period) (*RevenueReport, error) {
	var payments []payment.Payment
	q := p.apply(database.DB.WithContext(ctx).Model(&payment.Payment{}), "created_at").
		Where("status = ?", payment.StatusCompleted)
	if err := q.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("loading payments: %w", err)
	}

	ids := make([]string, 0, len(payments))
	for _, pm := range payments {
		ids = append(ids, pm.UserID)
	}
	users := map[string]user.User{}
	if len(ids) > 0 {
		var rows []user.User
		if err := database.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("loading payers: %w", err)
		}
		for _, u := range rows {
			users[u.ID] = u
		}
	}

	report := &RevenueReport{
		Payments:          make([]RevenuePayment, len(payments)),
		RevenueByCategory: map[category.Category]float64{},
	}
	for i, pm := range payments {
		amount := pm.Amount()
		report.TotalRevenue += amount
		payer := users[pm.UserID]
		report.Payments[i] = RevenuePayment{Payment: pm, UserName: payer.Name, UserEmail: payer.Email, Amount: amount}
		if n := len(pm.Categories); n > 0 {
			share := amount / float64(n)
			for _, c := range pm.Categories {
				report.RevenueByCategory[c] += share
			}
		}
	}
	return report, nil
}
