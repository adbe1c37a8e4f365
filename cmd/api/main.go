package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"veriflow/internal/config"
	"veriflow/internal/database"
	"veriflow/internal/middleware"
	"veriflow/internal/modules/admin"
	"veriflow/internal/modules/auth"
	"veriflow/internal/modules/docnumber"
	"veriflow/internal/modules/document"
	"veriflow/internal/modules/notification"
	"veriflow/internal/modules/storage"
	"veriflow/internal/modules/verification"
	jwtsvc "veriflow/internal/pkg/jwt"
	"veriflow/internal/pkg/logger"
	"veriflow/internal/pkg/mailer"
	"veriflow/internal/pkg/metrics"
	"veriflow/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRecordRepository(db)
	verificationRepo := repository.NewVerificationRecordRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.EmailFrom != "" {
		sesMailer, err := mailer.NewSES(ctx, cfg.AWSRegion, cfg.EmailFrom, zlog)
		if err != nil {
			zlog.Fatal("ses mailer init failed", zap.Error(err))
		}
		mail = sesMailer
	}

	var bridge *notification.Bridge
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		bridge = notification.NewBridge(redisClient, zlog)
	}

	hub := notification.NewHub()
	defer hub.Close()

	dispatcher := notification.NewDispatcher(cfg.EventQueueSize, hub, notificationRepo, mail, bridge, zlog)
	go dispatcher.Run(ctx)
	if bridge != nil {
		go bridge.Subscribe(ctx, dispatcher.DeliverRemote)
	}

	files := storage.NewService(cfg.UploadDir, cfg.StaticBase)
	go storage.NewSweeper(cfg.TempDir, zlog).Run(ctx)

	authService := auth.NewService(userRepo, j, dispatcher)
	authHandler := auth.NewHandler(authService)

	numberService := docnumber.NewService(counterRepo)

	documentService := document.NewService(documentRepo, files, dispatcher, zlog)
	documentHandler := document.NewHandler(documentService)

	verificationService := verification.NewService(verificationRepo, numberService, files, dispatcher, zlog)
	verificationHandler := verification.NewHandler(verificationService)

	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	adminService := admin.NewService(userRepo, documentRepo, verificationRepo, notificationRepo, dispatcher, zlog)
	adminHandler := admin.NewHandler(adminService)

	wsHandler := notification.NewWSHandler(hub, j, zlog)

	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(zlog))
	r.Use(middleware.CORS())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/notifications", wsHandler.HandleWebSocket)
	r.Static(cfg.StaticBase, cfg.UploadDir)

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			documentHandler.RegisterProtectedRoutes(protected)
			verificationHandler.RegisterProtectedRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
		}

		// review endpoints (admins and verifiers)
		review := v1.Group("/admin")
		review.Use(middleware.JWTAuth(j), middleware.ReviewerOnly())
		{
			documentHandler.RegisterAdminRoutes(review)
			verificationHandler.RegisterAdminRoutes(review)
		}

		// user management (admins only)
		manage := v1.Group("/admin")
		manage.Use(middleware.JWTAuth(j), middleware.AdminOnly())
		{
			adminHandler.RegisterAdminRoutes(manage)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
