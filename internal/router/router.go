package router

import (
	"bithra/config"
	"bithra/internal/cache"
	"bithra/internal/handler"
	"bithra/internal/jobs"
	"bithra/internal/metrics"
	"bithra/internal/middleware"
	"bithra/internal/repository"
	"bithra/internal/service"
	"bithra/internal/ws"
	"bithra/pkg/cloudinary"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the external clients. Redis, Cloud and FCM may be nil.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Cloud cloudinary.Client
	FCM   *service.FCMService
}

// App is the wired HTTP engine plus the background pieces main has to start and stop.
type App struct {
	Engine    *gin.Engine
	Scheduler *jobs.Scheduler
	Limiter   *middleware.RateLimiter
}

func Setup(cfg *config.Config, deps Deps) *App {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	db := deps.DB

	// Repositories
	userRepo := repository.NewUserRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	negotiationRepo := repository.NewNegotiationRepository(db)
	earlyBirdRepo := repository.NewEarlyBirdRepository(db)
	forumRepo := repository.NewForumRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	var scores service.ScoreStore
	var redisCache *cache.RedisCache
	if deps.Redis != nil {
		scores = repository.NewLeaderboardStore(deps.Redis, cfg.Redis.KeyPrefix)
		redisCache = cache.NewRedisCache(deps.Redis, cfg.Redis.KeyPrefix)
	}

	hub := ws.NewNegotiationHub()

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, deps.FCM)
	leaderboardSvc := service.NewLeaderboardService(scores, referralRepo, projectRepo, userRepo)
	referralSvc := service.NewReferralService(referralRepo, userRepo, walletRepo, projectRepo, notifSvc, leaderboardSvc, cfg.Referral)
	authSvc := service.NewAuthService(&cfg.JWT, userRepo, referralSvc)
	projectSvc := service.NewProjectService(projectRepo, referralSvc, leaderboardSvc, notifSvc, deps.Cloud, cfg.Cloudinary.Folder)
	negotiationSvc := service.NewNegotiationService(negotiationRepo, projectSvc, notifSvc, cfg.Negotiation)
	negotiationSvc.SetBroadcaster(hub)
	earlyBirdSvc := service.NewEarlyBirdService(earlyBirdRepo, walletRepo)
	forumSvc := service.NewForumService(forumRepo, reportRepo)
	valuationSvc := service.NewValuationService(valuationRepo, auditRepo, notifSvc, deps.Cloud, cfg.Cloudinary.Folder)
	accountSvc := service.NewAccountService(userRepo, walletRepo)
	dashboardSvc := service.NewDashboardService(service.DashboardDeps{
		Stats:     adminRepo,
		Cache:     redisCache,
		TTL:       cfg.Redis.DashboardTTL,
		Projects:  projectRepo,
		Referrals: referralSvc,
		EarlyBird: earlyBirdSvc,
		Unread:    notificationRepo,
		Wallets:   walletRepo,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	referralHandler := handler.NewReferralHandler(referralSvc)
	meHandler := handler.NewMeHandler(accountSvc, dashboardSvc)
	walletHandler := handler.NewWalletHandler(accountSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	negotiationHandler := handler.NewNegotiationHandler(negotiationSvc)
	rewardsHandler := handler.NewRewardsHandler(earlyBirdSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	forumHandler := handler.NewForumHandler(forumSvc)
	valuationHandler := handler.NewValuationHandler(valuationSvc)
	adminHandler := handler.NewAdminHandler(dashboardSvc, valuationSvc, forumSvc, authSvc)
	healthHandler := handler.NewHealthHandler(db, deps.Redis)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/negotiations", handler.NegotiationWS(&cfg.JWT, hub, negotiationSvc))

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(limiter))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		referrals := api.Group("/referral-system")
		{
			referrals.POST("/track", referralHandler.TrackReferral)
			referrals.GET("/track", authMw, referralHandler.GetTracking)
			referrals.GET("/tiers", referralHandler.Tiers)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/settings", meHandler.UpdateSettings)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)
			me.GET("/dashboard", meHandler.Dashboard)
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/wallet/transactions", walletHandler.ListTransactions)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			me.GET("/referral-code", referralHandler.GetMyReferralCode)
			me.GET("/referrals", referralHandler.GetMyReferrals)
			me.GET("/projects", projectHandler.ListMine)
			me.GET("/backings", projectHandler.ListBackings)
			me.GET("/valuations", valuationHandler.ListMine)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)
			projects.POST("", authMw, projectHandler.Create)
			projects.POST("/:id/back", authMw, projectHandler.Back)
			projects.POST("/:id/close", authMw, projectHandler.Close)
			projects.POST("/:id/cover", authMw, projectHandler.UploadCover)
			projects.POST("/:id/negotiations", authMw, negotiationHandler.Open)
		}

		negotiations := api.Group("/negotiations")
		negotiations.Use(authMw)
		{
			negotiations.GET("", negotiationHandler.ListMine)
			negotiations.GET("/:id", negotiationHandler.Get)
			negotiations.GET("/:id/messages", negotiationHandler.Messages)
			negotiations.POST("/:id/messages", negotiationHandler.Send)
			negotiations.POST("/:id/respond", negotiationHandler.Respond)
		}

		rewards := api.Group("/rewards/early-bird")
		{
			rewards.GET("", rewardsHandler.Summary)
			rewards.POST("", authMw, rewardsHandler.Register)
			rewards.GET("/me", authMw, rewardsHandler.Me)
		}

		api.GET("/leaderboard/:board", leaderboardHandler.Top)
		api.GET("/leaderboard/:board/me", authMw, leaderboardHandler.Me)

		forums := api.Group("/forums")
		{
			forums.GET("/categories", forumHandler.Categories)
			forums.GET("/posts", forumHandler.Posts)
			forums.GET("/posts/:id", forumHandler.Post)
			forums.POST("/posts", authMw, forumHandler.CreatePost)
			forums.POST("/posts/:id/replies", authMw, forumHandler.Reply)
			forums.DELETE("/posts/:id", authMw, forumHandler.DeletePost)
			forums.POST("/posts/:id/report", authMw, forumHandler.Report)
		}

		valuations := api.Group("/valuations")
		valuations.Use(authMw)
		{
			valuations.POST("", valuationHandler.Submit)
			valuations.GET("/map", valuationHandler.PriceMap)
			valuations.GET("/:id", valuationHandler.Get)
			valuations.POST("/:id/photos", valuationHandler.AddPhoto)
		}

		api.POST("/admin/login", adminHandler.AdminLogin)
		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/valuations", adminHandler.ListValuations)
			admin.POST("/valuations/:id/complete", adminHandler.CompleteValuation)
			admin.POST("/valuations/:id/reject", adminHandler.RejectValuation)
			admin.GET("/reports", adminHandler.ListReports)
		}
	}

	return &App{
		Engine:    r,
		Scheduler: jobs.NewScheduler(negotiationSvc, leaderboardSvc),
		Limiter:   limiter,
	}
}
