package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"case_law_app_go/config"
	"case_law_app_go/db"
	"case_law_app_go/handlers"
	"case_law_app_go/middleware"
	"case_law_app_go/models"
	"case_law_app_go/services"
	"case_law_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.StoreDSN(), cfg.TursoAuthToken, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.Case{}, &models.User{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Case services and the cache that drops results on every write
	services.InitializeStorage(cfg)
	cache := handlers.InitCaseServices(db.DB, services.Storage, nil)
	go cache.Run(ctx)
	handlers.InitAuthService(db.DB, cfg.AllowAdminSignup)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.SecurityHeaders(cfg))
	e.Use(middleware.CSRF(cfg, "/metrics"))
	e.Use(middleware.LoadSession())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public routes
	e.GET("/cases/:id/download", handlers.DownloadCaseHandler)

	api := e.Group("/api")
	{
		api.GET("/cases", handlers.ListCasesHandler, middleware.SearchRateLimiter.Middleware())
		api.GET("/cases/stats", handlers.CaseStatsHandler)
		api.GET("/cases/export", handlers.ExportCasesHandler)
		api.GET("/cases/import/template", handlers.GetImportTemplateHandler)
		api.GET("/cases/:id", handlers.GetCaseHandler)
		api.GET("/cases/:id/document", handlers.CaseDocumentHandler)

		api.POST("/auth/signin", handlers.SignInHandler, middleware.LoginRateLimiter.Middleware())
		api.POST("/auth/signup", handlers.SignUpHandler, middleware.LoginRateLimiter.Middleware())
		api.POST("/auth/signout", handlers.SignOutHandler)
	}

	// Signed-in routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/me", handlers.GetCurrentUserHandler)
	}

	// Admin-only routes
	adminRoutes := api.Group("/cases")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.POST("", handlers.CreateCaseHandler)
		adminRoutes.PUT("/:id", handlers.UpdateCaseHandler)
		adminRoutes.GET("/:id/draft", handlers.CaseDraftHandler)
		adminRoutes.POST("/import", handlers.ImportCasesHandler, middleware.ImportRateLimiter.Middleware())
	}

	// Start background jobs
	scheduler, err := jobs.StartScheduler(db.DB)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Start server
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARNING] Server shutdown: %v", err)
	}
}
