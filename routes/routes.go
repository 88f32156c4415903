package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hiking-backend/config"
	"hiking-backend/controllers"
	"hiking-backend/middleware"
	"hiking-backend/utils"
)

// Controllers bundles every handler set the router mounts.
type Controllers struct {
	Auth    *controllers.AuthController
	Catalog *controllers.CatalogController
	Booking *controllers.BookingController
	Review  *controllers.ReviewController
	Post    *controllers.PostController
}

// handle registers path with and without a trailing slash.
func handle(g *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	g.Handle(method, path, handlers...)
	if strings.HasSuffix(path, "/") {
		g.Handle(method, strings.TrimSuffix(path, "/"), handlers...)
	} else {
		g.Handle(method, path+"/", handlers...)
	}
}

// SetupRouter builds the engine: CORS, request id, logging, error envelope, then the API.
func SetupRouter(s config.Settings, ctl Controllers, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(middleware.RequestID(), middleware.Recover(), middleware.Logger())

	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorEnvelope())

	r.NoRoute(func(c *gin.Context) {
		utils.JSONError(c, http.StatusNotFound, "Not found", nil)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.AuthRequired(s.JWTSecret)
	staffOnly := middleware.StaffOnly()
	limit := limiter.Limit()

	// Auth
	auth := r.Group("/api/auth")
	{
		handle(auth, http.MethodPost, "/register", limit, ctl.Auth.Register)
		handle(auth, http.MethodPost, "/login", limit, ctl.Auth.Login)
		handle(auth, http.MethodGet, "/me", authRequired, ctl.Auth.Me)
	}

	// Tours
	v1 := r.Group("/api/v1")
	{
		handle(v1, http.MethodGet, "/categories", ctl.Catalog.GetCategories)
		handle(v1, http.MethodGet, "/locations", ctl.Catalog.GetLocations)

		tours := v1.Group("/tours")
		{
			handle(tours, http.MethodGet, "", ctl.Catalog.GetTours)
			// static segments before /:id
			handle(tours, http.MethodGet, "/featured", ctl.Catalog.GetFeaturedTours)
			handle(tours, http.MethodGet, "/search", ctl.Catalog.SearchTours)
			handle(tours, http.MethodGet, "/:id", ctl.Catalog.GetTour)
			handle(tours, http.MethodPost, "", authRequired, staffOnly, ctl.Catalog.CreateTour)
			handle(tours, http.MethodPatch, "/:id", authRequired, staffOnly, ctl.Catalog.UpdateTour)
		}

		dates := v1.Group("/tour-dates")
		{
			handle(dates, http.MethodGet, "", ctl.Catalog.GetTourDates)
			handle(dates, http.MethodGet, "/available", ctl.Catalog.GetAvailableTourDates)
			handle(dates, http.MethodGet, "/:id", ctl.Catalog.GetTourDate)
			handle(dates, http.MethodPost, "", authRequired, staffOnly, ctl.Catalog.CreateTourDate)
		}

		bookings := v1.Group("/bookings", authRequired)
		{
			handle(bookings, http.MethodGet, "", ctl.Booking.GetBookings)
			handle(bookings, http.MethodPost, "", limit, ctl.Booking.CreateBooking)
			handle(bookings, http.MethodGet, "/reference/:ref", ctl.Booking.GetBookingByReference)
			handle(bookings, http.MethodGet, "/:id", ctl.Booking.GetBookingDetails)
			handle(bookings, http.MethodPost, "/:id/cancel", ctl.Booking.CancelBooking)
			handle(bookings, http.MethodPost, "/:id/confirm", staffOnly, ctl.Booking.ConfirmBooking)
			handle(bookings, http.MethodPost, "/:id/complete", staffOnly, ctl.Booking.CompleteBooking)
		}

		reviews := v1.Group("/reviews")
		{
			handle(reviews, http.MethodGet, "", ctl.Review.GetReviews)
			handle(reviews, http.MethodGet, "/:id", ctl.Review.GetReview)
			handle(reviews, http.MethodPost, "", authRequired, limit, ctl.Review.CreateReview)
			handle(reviews, http.MethodPatch, "/:id", authRequired, ctl.Review.UpdateReview)
			handle(reviews, http.MethodDelete, "/:id", authRequired, ctl.Review.DeleteReview)
		}
	}

	// Blog
	blog := r.Group("/api/blog")
	{
		posts := blog.Group("/posts")
		{
			handle(posts, http.MethodGet, "", ctl.Post.GetPosts)
			handle(posts, http.MethodGet, "/:slug", ctl.Post.GetPost)
			handle(posts, http.MethodPost, "", authRequired, limit, ctl.Post.CreatePost)
			handle(posts, http.MethodPatch, "/:slug", authRequired, ctl.Post.UpdatePost)
			handle(posts, http.MethodDelete, "/:slug", authRequired, ctl.Post.DeletePost)
		}
		handle(blog, http.MethodGet, "/categories", ctl.Post.GetCategories)
		handle(blog, http.MethodGet, "/stats", ctl.Post.GetStats)
		handle(blog, http.MethodGet, "/search", ctl.Post.SearchPosts)
	}

	return r
}
