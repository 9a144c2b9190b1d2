package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"musicstudio/internal/config"
	"musicstudio/internal/database"
	"musicstudio/internal/domain/auth"
	"musicstudio/internal/domain/booking"
	"musicstudio/internal/domain/dashboard"
	"musicstudio/internal/domain/feed"
	"musicstudio/internal/domain/notification"
	"musicstudio/internal/domain/payment"
	"musicstudio/internal/domain/studio"
	"musicstudio/internal/domain/upload"
	"musicstudio/internal/middleware"
	jwtsvc "musicstudio/internal/pkg/jwt"
	"musicstudio/internal/pkg/metrics"
	"musicstudio/internal/pkg/response"
)

type app struct {
	router  *gin.Engine
	hub     *feed.Hub
	metrics *metrics.Recorder
	jwt     *jwtsvc.Service
}

// migrate creates or updates every table the API reads.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&auth.User{},
		&studio.Studio{},
		&booking.Booking{},
		&upload.Upload{},
		&payment.Payment{},
		&notification.Notification{},
	)
}

func newApp(cfg *config.Config, db *gorm.DB) *app {
	loggerf := log.Printf
	tx := database.NewTransactor(db)
	rec := metrics.New()
	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := feed.NewHub(middleware.AllowedOrigins(cfg.CORSAllowedOrigins), loggerf)

	userRepo := auth.NewRepository(db)
	studioRepo := studio.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	inbox := notification.NewService(notification.NewRepository(db), userRepo, loggerf)

	authService := auth.NewService(userRepo, j, loggerf)
	studioService := studio.NewService(studioRepo, tx, loggerf)
	bookingService := booking.NewService(bookingRepo, studioRepo, tx, booking.Notifiers{hub, inbox}, rec, loggerf)
	paymentService := payment.NewService(paymentRepo, bookingService, tx, payment.Notifiers{hub, inbox}, rec, loggerf)
	proofs := upload.NewService(upload.NewRepository(db), cfg.UploadDir, cfg.MaxProofSize)
	dashboardService := dashboard.NewService(bookingRepo, studioRepo, userRepo, paymentRepo)

	authHandler := auth.NewHandler(authService)
	studioHandler := studio.NewHandler(studioService)
	bookingHandler := booking.NewHandler(bookingService, proofs, loggerf)
	paymentHandler := payment.NewHandler(paymentService)
	dashboardHandler := dashboard.NewHandler(dashboardService)
	feedHandler := feed.NewHandler(hub)
	notificationHandler := notification.NewHandler(inbox)

	writeLimit := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":       "ok",
			"feed_clients": hub.Clients(),
		})
	})
	r.GET("/metrics", rec.Handler())

	api := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(api, writeLimit)

		public := api.Group("", middleware.OptionalJWT(j))
		studioHandler.RegisterPublicRoutes(public)
		bookingHandler.RegisterPublicRoutes(public)

		protected := api.Group("", middleware.JWTAuth(j))
		authHandler.RegisterProtectedRoutes(protected)
		bookingHandler.RegisterRoutes(protected, writeLimit)
		paymentHandler.RegisterRoutes(protected, writeLimit)
		dashboardHandler.RegisterRoutes(protected)
		notificationHandler.RegisterRoutes(protected)

		admin := api.Group("", middleware.JWTAuth(j), middleware.AdminOnly())
		studioHandler.RegisterAdminRoutes(admin)
		bookingHandler.RegisterAdminRoutes(admin)
		paymentHandler.RegisterAdminRoutes(admin)

		ws := api.Group("/ws", middleware.QueryTokenAuth(j))
		feedHandler.RegisterRoutes(ws)
	}

	return &app{router: r, hub: hub, metrics: rec, jwt: j}
}
