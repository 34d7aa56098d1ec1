package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/internal/admin"
	"github.com/go2motion/contest-backend/internal/award"
	"github.com/go2motion/contest-backend/internal/category"
	"github.com/go2motion/contest-backend/internal/forum"
	"github.com/go2motion/contest-backend/internal/jury"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/payment"
	"github.com/go2motion/contest-backend/internal/platform/health"
	"github.com/go2motion/contest-backend/internal/platform/ratelimit"
	"github.com/go2motion/contest-backend/internal/platform/validation"
	"github.com/go2motion/contest-backend/internal/ranking"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/go2motion/contest-backend/internal/vote"
)

// RegisterValidators installs the binding tags used by request structs.
func RegisterValidators() {
	validation.MustRegisterStringRule("category", func(s string) bool { return category.Category(s).Valid() })
	validation.MustRegisterStringRule("forumcategory", func(s string) bool { return forum.Category(s).Valid() })
}

// SetupRoutes registers every API route under /api.
func SetupRoutes(router *gin.Engine) {
	RegisterValidators()

	api := router.Group("/api", ratelimit.Middleware())
	api.GET("/healthz", health.Handler)

	authed := user.AuthMiddleware()
	participant := user.RequireParticipant()

	auth := api.Group("/auth")
	{
		auth.POST("/register", user.Register)
		auth.POST("/login", user.Login)
		auth.GET("/me", authed, user.Me)
	}

	users := api.Group("/users")
	{
		users.GET("/:id", user.GetProfile)
		users.GET("/:id/points", user.GetPoints)
		users.PUT("/:id", authed, user.UpdateProfileHandler)
		users.PUT("/:id/role", authed, user.UpgradeRoleHandler)
	}

	videos := api.Group("/videos")
	{
		videos.GET("", video.GetVideos)
		videos.GET("/:id", video.GetVideo)
		videos.POST("", authed, participant, video.CreateVideo)
		videos.PUT("/:id", authed, video.UpdateVideo)
		videos.DELETE("/:id", authed, video.DeleteVideo)
	}

	votes := api.Group("/votes", authed)
	{
		votes.POST("/:videoId", vote.CastVote)
		votes.DELETE("/:videoId", vote.RemoveVote)
		votes.GET("/:videoId/check", vote.CheckVote)
	}

	juryRoutes := api.Group("/jury", authed, jury.RequireMember())
	{
		juryRoutes.POST("/vote", jury.CastVote)
		juryRoutes.GET("/ranking", jury.GetRanking)
	}

	api.GET("/ranking", ranking.GetRanking)
	api.GET("/ranking/user/:userId", ranking.GetUserRanking)

	api.GET("/leagues", league.GetLeagues)
	api.GET("/leagues/current", league.GetCurrentLeague)

	api.GET("/awards", award.GetAwards)
	api.GET("/awards/user/:userId", award.GetUserAwards)

	payments := api.Group("/payments")
	{
		payments.POST("/webhook", payment.Webhook)
		payments.POST("/create-checkout-session", authed, participant, payment.CreateCheckoutSession)
		payments.GET("/:id/status", authed, payment.GetStatus)
		payments.POST("/:id/complete", authed, payment.Complete)
	}

	forumRoutes := api.Group("/forum/topics")
	{
		forumRoutes.GET("", forum.GetTopics)
		forumRoutes.GET("/:id", forum.GetTopicByID)
		forumRoutes.POST("", authed, participant, forum.PostTopic)
		forumRoutes.POST("/:id/replies", authed, participant, forum.PostReply)
	}

	adminRoutes := api.Group("/admin", authed)
	adminRoutes.GET("/diagnostics", admin.Diagnostics)

	gated := adminRoutes.Group("", admin.RequireAdmin())
	{
		gated.GET("/dashboard", admin.GetDashboard)
		gated.GET("/users/stats", admin.GetUserStats)
		gated.GET("/videos/stats", admin.GetVideoStats)
		gated.GET("/reports/revenue", admin.GetRevenue)

		gated.GET("/leagues", league.AdminListLeagues)
		gated.POST("/leagues", league.AdminUpsertLeague)
		gated.PATCH("/leagues/:round/status", league.AdminSetLeagueStatus)
		gated.DELETE("/leagues/:round", league.AdminDeleteLeague)

		gated.GET("/rankings", ranking.AdminGetRankings)

		gated.GET("/awards", award.GetAwards)
		gated.PUT("/awards/:id", award.AdminUpdate)
		gated.POST("/awards/calculate", award.AdminCalculate)

		gated.GET("/jury", jury.AdminListMembers)
		gated.POST("/jury", jury.AdminAddMember)
	}
}
