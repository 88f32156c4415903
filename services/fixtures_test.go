package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hiking-backend/config"
	"hiking-backend/models"
	"hiking-backend/utils"
)

var dbSeq int64

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), atomic.AddInt64(&dbSeq, 1))
	db, err := config.OpenDatabase("sqlite", "file:"+name+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", FirstName: username}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// createTour makes a category, a location, an active tour at price and one date with spots.
func createTour(t *testing.T, db *gorm.DB, price string, spots int) (*models.Tour, *models.TourDate) {
	t.Helper()
	ctx := context.Background()

	cat := models.Category{Name: "Day Hikes"}
	require.NoError(t, db.Create(&cat).Error)
	loc := models.Location{Name: "Dolomites", Country: "Italy"}
	require.NoError(t, db.Create(&loc).Error)

	catalog := NewCatalogService(db)
	tour, err := catalog.CreateTour(ctx, TourInput{
		Title:           "Tre Cime Loop",
		CategoryID:      cat.ID,
		LocationID:      loc.ID,
		DurationDays:    1,
		Difficulty:      models.DifficultyModerate,
		Price:           decimal.RequireFromString(price),
		MaxParticipants: 12,
	})
	require.NoError(t, err)

	start := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	td, err := catalog.CreateTourDate(ctx, TourDateInput{
		TourID:         tour.ID,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 1),
		AvailableSpots: &spots,
	})
	require.NoError(t, err)
	return tour, td
}

func spotsLeft(t *testing.T, db *gorm.DB, tourDateID uint) int {
	t.Helper()
	var td models.TourDate
	require.NoError(t, db.First(&td, tourDateID).Error)
	return td.AvailableSpots
}

// recordingNotifier captures confirmation emails.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []utils.BookingEmail
	err  error
}

func (n *recordingNotifier) SendBookingConfirmation(e utils.BookingEmail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, e)
	return n.err
}
