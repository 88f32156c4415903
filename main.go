package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hiking-backend/config"
	"hiking-backend/controllers"
	"hiking-backend/middleware"
	"hiking-backend/routes"
	"hiking-backend/services"
	"hiking-backend/utils"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	gin.SetMode(settings.GinMode)

	// Connect database (config.ConnectDatabase sets config.DB)
	if err := config.ConnectDatabase(settings); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Printf("✅ Database connection established (%s) and migrations applied.", settings.DBDriver)

	if !settings.SMTP.Configured() {
		log.Println("⚠️  SMTP not configured; booking confirmations will be logged instead of sent")
	}

	// Initialize services
	mailer := utils.NewMailer(settings.SMTP)
	userService := services.NewUserService(db, settings.JWTSecret, settings.JWTTTL)
	catalogService := services.NewCatalogService(db)
	bookingService := services.NewBookingService(db, mailer)
	reviewService := services.NewReviewService(db)
	blogService := services.NewBlogService(db)

	// Initialize controllers
	ctl := routes.Controllers{
		Auth:    controllers.NewAuthController(userService),
		Catalog: controllers.NewCatalogController(catalogService),
		Booking: controllers.NewBookingController(bookingService),
		Review:  controllers.NewReviewController(reviewService),
		Post:    controllers.NewPostController(blogService),
	}

	limiter := middleware.NewRateLimiter(settings.RateLimitRPS, settings.RateLimitBurst)
	stopSweep := make(chan struct{})
	go limiter.Run(time.Minute, stopSweep)

	// Build router
	router := routes.SetupRouter(settings, ctl, limiter)

	addr := ":" + settings.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("✅ Server stopped gracefully")
}
