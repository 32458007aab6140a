package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/breakthefear/fees-api/api/swagger"
	"github.com/breakthefear/fees-api/internal/handler"
	"github.com/breakthefear/fees-api/internal/middleware"
	"github.com/breakthefear/fees-api/internal/models"
	"github.com/breakthefear/fees-api/internal/repository"
	"github.com/breakthefear/fees-api/internal/service"
	"github.com/breakthefear/fees-api/pkg/cache"
	"github.com/breakthefear/fees-api/pkg/config"
	"github.com/breakthefear/fees-api/pkg/database"
	"github.com/breakthefear/fees-api/pkg/export"
	"github.com/breakthefear/fees-api/pkg/logger"
	corsmiddleware "github.com/breakthefear/fees-api/pkg/middleware/cors"
	reqidmiddleware "github.com/breakthefear/fees-api/pkg/middleware/requestid"
)

// @title Break The Fear Fees API
// @version 1.0.0
// @description Student fee management and payment ledger
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	// The ledger cache is optional; the service degrades to direct reads
	// when Redis is unavailable or disabled.
	var cacheService *service.CacheService
	if cfg.Ledger.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, ledger cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Ledger.CacheTTL, logr, true)
		}
	}

	institutionRepo := repository.NewInstitutionRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	monthRepo := repository.NewMonthRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)

	activityService := service.NewActivityService(activityRepo, logr)
	ledgerService := service.NewLedgerService(studentRepo, courseRepo, monthRepo, paymentRepo, cacheService, logr)
	institutionService := service.NewInstitutionService(institutionRepo, activityService, nil, logr)
	batchService := service.NewBatchService(batchRepo, activityService, nil, logr)
	courseService := service.NewCourseService(courseRepo, batchRepo, activityService, nil, logr)
	monthService := service.NewMonthService(monthRepo, courseRepo, activityService, nil, logr)
	studentService := service.NewStudentService(studentRepo, institutionRepo, batchRepo, monthRepo, ledgerService, activityService, nil, logr)
	paymentService := service.NewPaymentService(paymentRepo, ledgerService, activityService, nil, logr)
	exportService := service.NewExportService(studentService, export.NewCSVExporter(), logr)
	invoiceService := service.NewInvoiceService(paymentService, studentRepo, monthRepo, cfg.Invoices.CompanyName, cfg.Invoices.Footer, logr)
	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "fees-api",
	})

	authHandler := handler.NewAuthHandler(authService)
	institutionHandler := handler.NewInstitutionHandler(institutionService)
	batchHandler := handler.NewBatchHandler(batchService)
	courseHandler := handler.NewCourseHandler(courseService, monthService)
	monthHandler := handler.NewMonthHandler(monthService)
	studentHandler := handler.NewStudentHandler(studentService, ledgerService, exportService)
	paymentHandler := handler.NewPaymentHandler(paymentService, invoiceService)
	activityHandler := handler.NewActivityHandler(activityService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	// Deletes are destructive across the catalog; staff accounts only read
	// and record payments.
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		protected.GET("/institutions", institutionHandler.List)
		protected.GET("/institutions/:id", institutionHandler.Get)
		protected.POST("/institutions", institutionHandler.Create)
		protected.PUT("/institutions/:id", institutionHandler.Update)
		protected.DELETE("/institutions/:id", adminOnly, institutionHandler.Delete)

		protected.GET("/batches", batchHandler.List)
		protected.GET("/batches/:id", batchHandler.Get)
		protected.POST("/batches", batchHandler.Create)
		protected.PUT("/batches/:id", batchHandler.Update)
		protected.DELETE("/batches/:id", adminOnly, batchHandler.Delete)

		protected.GET("/courses", courseHandler.List)
		protected.GET("/courses/:id", courseHandler.Get)
		protected.GET("/courses/:id/months", courseHandler.Months)
		protected.POST("/courses", courseHandler.Create)
		protected.PUT("/courses/:id", courseHandler.Update)
		protected.DELETE("/courses/:id", adminOnly, courseHandler.Delete)

		protected.GET("/months/:id", monthHandler.Get)
		protected.POST("/months", monthHandler.Create)
		protected.PUT("/months/:id", monthHandler.Update)
		protected.DELETE("/months/:id", adminOnly, monthHandler.Delete)

		protected.GET("/students", studentHandler.List)
		protected.GET("/students/export", studentHandler.Export)
		protected.GET("/students/:id", studentHandler.Get)
		protected.POST("/students", studentHandler.Create)
		protected.PUT("/students/:id", studentHandler.Update)
		protected.DELETE("/students/:id", adminOnly, studentHandler.Delete)
		protected.GET("/students/:id/ledger", studentHandler.Statement)
		protected.GET("/students/:id/payment-options", studentHandler.PaymentOptions)
		protected.GET("/students/:id/payments", paymentHandler.ListByStudent)

		protected.GET("/payments", paymentHandler.List)
		protected.GET("/payments/:id", paymentHandler.Get)
		protected.POST("/payments", paymentHandler.Record)
		protected.GET("/payments/:id/invoice", paymentHandler.Invoice)

		protected.GET("/activities", activityHandler.List)
		protected.GET("/metrics/summary", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
