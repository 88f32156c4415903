package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hiking-backend/config"
	"hiking-backend/controllers"
	"hiking-backend/middleware"
	"hiking-backend/models"
	"hiking-backend/services"
	"hiking-backend/utils"
)

var routerDBSeq int64

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	settings config.Settings
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:routes_%d?mode=memory&cache=shared", atomic.AddInt64(&routerDBSeq, 1))
	db, err := config.OpenDatabase("sqlite", dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	settings := config.Settings{
		JWTSecret:   []byte("router-test-secret"),
		JWTTTL:      time.Hour,
		CORSOrigins: []string{"*"},
	}
	ctl := Controllers{
		Auth:    controllers.NewAuthController(services.NewUserService(db, settings.JWTSecret, settings.JWTTTL)),
		Catalog: controllers.NewCatalogController(services.NewCatalogService(db)),
		Booking: controllers.NewBookingController(services.NewBookingService(db, nil)),
		Review:  controllers.NewReviewController(services.NewReviewService(db)),
		Post:    controllers.NewPostController(services.NewBlogService(db)),
	}
	limiter := middleware.NewRateLimiter(1000, 1000)

	return &testApp{t: t, db: db, router: SetupRouter(settings, ctl, limiter), settings: settings}
}

func (a *testApp) user(username string, staff bool) (models.User, string) {
	a.t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", IsStaff: staff}
	require.NoError(a.t, a.db.Create(&u).Error)
	token, err := utils.GenerateJWT(a.settings.JWTSecret, time.Hour, u.ID, u.Username, u.IsStaff)
	require.NoError(a.t, err)
	return u, token
}

type envelope struct {
	Error      bool            `json:"error"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Details    json.RawMessage `json:"details"`
	StatusCode int             `json:"status_code"`
}

func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// seedCatalog creates a category and a location and returns their ids.
func (a *testApp) seedCatalog() (uint, uint) {
	a.t.Helper()
	cat := models.Category{Name: "Day Hikes"}
	require.NoError(a.t, a.db.Create(&cat).Error)
	loc := models.Location{Name: "Dolomites", Country: "Italy"}
	require.NoError(a.t, a.db.Create(&loc).Error)
	return cat.ID, loc.ID
}

func Test_Health(t *testing.T) {
	app := newTestApp(t)
	rec, _ := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func Test_BookingRequiresToken(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(http.MethodPost, "/api/v1/bookings", "", gin.H{"tour_date_id": 1, "participants": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, env.Error)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
	assert.NotEmpty(t, env.Message)

	rec, env = app.do(http.MethodGet, "/api/v1/bookings", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
}

func Test_NotFoundEnvelope(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(http.MethodGet, "/api/v1/tours/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, env.Error)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, "tour not found", env.Message)

	rec, env = app.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, env.Error)
}

func Test_StaffOnlyRoutes(t *testing.T) {
	app := newTestApp(t)
	catID, locID := app.seedCatalog()
	_, userToken := app.user("walker", false)

	payload := gin.H{"title": "Lago di Sorapis", "category_id": catID, "location_id": locID,
		"duration_days": 1, "difficulty": "easy", "price": "45.00", "max_participants": 10}
	rec, env := app.do(http.MethodPost, "/api/v1/tours", userToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, http.StatusForbidden, env.StatusCode)
}

func Test_BookingFlow(t *testing.T) {
	app := newTestApp(t)
	catID, locID := app.seedCatalog()
	_, staffToken := app.user("guide", true)
	_, userToken := app.user("walker", false)

	// staff publishes a tour and a date
	rec, env := app.do(http.MethodPost, "/api/v1/tours", staffToken, gin.H{
		"title": "Seceda Ridge", "category_id": catID, "location_id": locID, "duration_days": 1,
		"difficulty": "moderate", "price": "100.00", "max_participants": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, env.Error)
	var tour struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &tour)

	rec, env = app.do(http.MethodPost, "/api/v1/tour-dates/", staffToken, gin.H{
		"tour_id": tour.ID, "start_date": "2030-06-01", "end_date": "2030-06-01", "available_spots": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var date struct {
		ID uint `json:"id"`
	}
	decodeData(t, env, &date)

	// invalid participants never reach the store
	rec, env = app.do(http.MethodPost, "/api/v1/bookings", userToken, gin.H{"tour_date_id": date.ID, "participants": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.NotEmpty(t, env.Details)

	rec, env = app.do(http.MethodPost, "/api/v1/bookings", userToken, gin.H{"tour_date_id": date.ID, "participants": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var booking struct {
		ID               uint   `json:"id"`
		Status           string `json:"status"`
		TotalPrice       string `json:"total_price"`
		BookingReference string `json:"booking_reference"`
		TourDate         struct {
			AvailableSpots int `json:"available_spots"`
		} `json:"tour_date"`
	}
	decodeData(t, env, &booking)
	assert.Equal(t, "pending", booking.Status)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, booking.BookingReference)
	assert.True(t, decimal.RequireFromString(booking.TotalPrice).Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, booking.TourDate.AvailableSpots)

	rec, env = app.do(http.MethodPost, "/api/v1/bookings", userToken, gin.H{"tour_date_id": date.ID, "participants": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "not enough available spots", env.Message)

	rec, env = app.do(http.MethodGet, "/api/v1/bookings?page_size=5", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page utils.Page
	decodeData(t, env, &page)
	assert.EqualValues(t, 1, page.Count)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 5, page.PageSize)

	lower := strings.ToLower(booking.BookingReference)
	rec, env = app.do(http.MethodGet, "/api/v1/bookings/reference/"+lower, userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	path := fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID)
	rec, env = app.do(http.MethodPost, path, userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, env, &booking)
	assert.Equal(t, "cancelled", booking.Status)

	rec, env = app.do(http.MethodPost, path, userToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot cancel this booking", env.Message)

	var td models.TourDate
	require.NoError(t, app.db.First(&td, date.ID).Error)
	assert.Equal(t, 5, td.AvailableSpots)
}

func Test_ReviewDuplicateOverHTTP(t *testing.T) {
	app := newTestApp(t)
	catID, locID := app.seedCatalog()
	_, token := app.user("walker", false)

	tour := models.Tour{Title: "Alpe di Siusi", CategoryID: catID, LocationID: locID, DurationDays: 1,
		Difficulty: models.DifficultyEasy, Price: decimal.NewFromInt(20), MaxParticipants: 5, Active: true}
	require.NoError(t, app.db.Omit("Category", "Location").Create(&tour).Error)

	body := gin.H{"tour": tour.ID, "rating": 5, "comment": "Meadows for days"}
	rec, _ := app.do(http.MethodPost, "/api/v1/reviews", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := app.do(http.MethodPost, "/api/v1/reviews/", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, env.Error)

	rec, env = app.do(http.MethodGet, fmt.Sprintf("/api/v1/tours/%d", tour.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		AverageRating float64 `json:"average_rating"`
		ReviewsCount  int     `json:"reviews_count"`
	}
	decodeData(t, env, &detail)
	assert.Equal(t, 1, detail.ReviewsCount)
	assert.Equal(t, 5.0, detail.AverageRating)
}

func Test_BlogOverHTTP(t *testing.T) {
	app := newTestApp(t)
	_, token := app.user("writer", false)

	rec, env := app.do(http.MethodPost, "/api/blog/posts", token, gin.H{"title": "First Snow", "content": "It snowed.", "is_published": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post struct {
		Slug  string `json:"slug"`
		Views int    `json:"views"`
	}
	decodeData(t, env, &post)
	assert.Equal(t, "first-snow", post.Slug)

	for i := 1; i <= 2; i++ {
		rec, env = app.do(http.MethodGet, "/api/blog/posts/first-snow/", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decodeData(t, env, &post)
		assert.Equal(t, i, post.Views)
	}

	rec, env = app.do(http.MethodGet, "/api/blog/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Search query is required", env.Message)

	rec, env = app.do(http.MethodGet, "/api/blog/search?q=snow", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Count int `json:"count"`
	}
	decodeData(t, env, &found)
	assert.Equal(t, 1, found.Count)

	rec, env = app.do(http.MethodGet, "/api/blog/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.BlogStats
	decodeData(t, env, &stats)
	assert.EqualValues(t, 2, stats.TotalViews)
}

func Test_RegisterLoginOverHTTP(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "newbie", "password": "s3cure-pass", "email": "newbie@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := app.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "newbie", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)

	rec, env = app.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "newbie", "password": "s3cure-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)

	rec, env = app.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	decodeData(t, env, &me)
	assert.Equal(t, "newbie", me.Username)
}
