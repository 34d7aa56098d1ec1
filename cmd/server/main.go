package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go2motion/contest-backend/api"
	"github.com/go2motion/contest-backend/internal/admin"
	"github.com/go2motion/contest-backend/internal/award"
	"github.com/go2motion/contest-backend/internal/league"
	"github.com/go2motion/contest-backend/internal/payment"
	"github.com/go2motion/contest-backend/internal/platform/config"
	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/health"
	"github.com/go2motion/contest-backend/internal/platform/lock"
	"github.com/go2motion/contest-backend/internal/platform/logging"
	"github.com/go2motion/contest-backend/internal/platform/ratelimit"
	"github.com/go2motion/contest-backend/internal/platform/shutdown"
	"github.com/go2motion/contest-backend/internal/platform/startup"
	"github.com/go2motion/contest-backend/internal/user"
	"github.com/go2motion/contest-backend/internal/video"
	"github.com/go2motion/contest-backend/pkg/lifecycle"
	"github.com/go2motion/contest-backend/pkg/token"
)

func configureModules(cfg *config.Config) {
	user.ConfigureModule(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginAttemptsSpan)
	league.ConfigureModule(cfg.Contest.MaxRound, cfg.Contest.MinYear)
	video.ConfigureModule(cfg.Contest.RequirePayment)
	award.ConfigureModule(lock.New(database.RDB))
	admin.ConfigureModule(cfg.Admin.Emails)
	ratelimit.ConfigureAPI(cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window)

	var gateway payment.Gateway = payment.MockGateway{}
	if cfg.Payments.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.Payments.StripeSecretKey, cfg.Payments.StripeWebhookSecret)
	} else {
		logging.Log.Warn("no stripe key configured, using the mock payment gateway")
	}
	payment.ConfigureModule(gateway, cfg.Server.FrontendURL, cfg.Payments.Currency)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Log.WithError(err).Fatal("failed to load config")
	}
	logging.Bootstrap(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	generated, err := token.Configure(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logging.Log.WithError(err).Fatal("failed to configure tokens")
	}
	if generated {
		logging.Log.Warn("no JWT secret configured; tokens will not survive a restart")
	}

	database.InitDB(cfg.Database, gin.IsDebugging())
	database.InitRedis(cfg.Database.Redis)
	configureModules(cfg)

	if err := startup.InitializeApplication(); err != nil {
		logging.Log.WithError(err).Fatal("application initialization failed")
	}
	health.PerformCheck(database.Ctx)

	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()
	healthHandle, err := gracefulManager.NewServiceHandle("health")
	if err != nil {
		logging.Log.WithError(err).Fatal("failed to register health checker")
	}
	go health.Run(healthHandle)

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api.SetupRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.Log.Infof("listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.WithError(err).Fatal("http server failed")
		}
	}()

	shutdown.NewCoordinator(gracefulManager, forcefulManager).ListenForSignalsAndShutdown(server)
}
