package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hiking-backend/models"
	"hiking-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService serves the tour reference data: categories, locations, tours and their dates.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

type LocationFilter struct {
	Search  string
	Country string
	State   string
}

type TourFilter struct {
	CategoryID    *uint
	LocationID    *uint
	Difficulty    string
	Featured      *bool
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinDuration   *int
	MaxDuration   *int
	AvailableOnly bool
	Search        string
	Ordering      string
	utils.Pagination
}

type TourDateFilter struct {
	TourID        *uint
	GuideID       *uint
	AvailableOnly bool
	Ordering      string
	utils.Pagination
}

type TourInput struct {
	Title           string
	Description     string
	CategoryID      uint
	LocationID      uint
	DurationDays    int
	Difficulty      string
	Price           decimal.Decimal
	MaxParticipants int
	Image           string
	Featured        bool
	Active          *bool
}

// TourUpdate carries a partial staff edit; nil fields are left alone.
type TourUpdate struct {
	Title           *string
	Description     *string
	DurationDays    *int
	Difficulty      *string
	Price           *decimal.Decimal
	MaxParticipants *int
	Image           *string
	Featured        *bool
	Active          *bool
}

type TourDateInput struct {
	TourID         uint
	StartDate      time.Time
	EndDate        time.Time
	AvailableSpots *int
	GuideID        *uint
}

var tourOrdering = map[string]string{
	"price":         "price",
	"duration":      "duration_days",
	"duration_days": "duration_days",
	"created_at":    "created_at",
}

var tourDateOrdering = map[string]string{
	"start_date": "start_date",
	"end_date":   "end_date",
}

// containsClause is a case-insensitive substring match on col, paired with utils.LikeContains.
func containsClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '" + utils.LikeEscape + "'"
}

// ---------------- Categories & locations ----------------

func (s *CatalogService) ListCategories(ctx context.Context, search string) ([]models.Category, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&models.Category{})
	if strings.TrimSpace(search) != "" {
		p := utils.LikeContains(search)
		q = q.Where(containsClause("name")+" OR "+containsClause("description"), p, p)
	}

	list := []models.Category{}
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}

	counts, err := s.activeTourCounts(ctx, "category_id")
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].ToursCount = counts[list[i].ID]
	}
	return list, nil
}

func (s *CatalogService) ListLocations(ctx context.Context, f LocationFilter) ([]models.Location, error) {
	q := s.DB.WithContext(ctx).Model(&models.Location{})
	if strings.TrimSpace(f.Search) != "" {
		p := utils.LikeContains(f.Search)
		q = q.Where(containsClause("name")+" OR "+containsClause("country")+" OR "+containsClause("state")+" OR "+containsClause("city"), p, p, p, p)
	}
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}

	list := []models.Location{}
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve locations: %w", err)
	}

	counts, err := s.activeTourCounts(ctx, "location_id")
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].ToursCount = counts[list[i].ID]
	}
	return list, nil
}

func (s *CatalogService) activeTourCounts(ctx context.Context, column string) (map[uint]int64, error) {
	var rows []struct {
		GroupID uint
		Total   int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Tour{}).
		Select(column+" AS group_id, COUNT(*) AS total").
		Where("active = ?", true).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tours: %w", err)
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.GroupID] = r.Total
	}
	return out, nil
}

// ---------------- Tours ----------------

// ListTours returns active tours matching f.
func (s *CatalogService) ListTours(ctx context.Context, f TourFilter) ([]models.Tour, int64, error) {
	db := s.DB.WithContext(ctx)
	q := db.Model(&models.Tour{}).Where("active = ?", true)

	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinDuration != nil {
		q = q.Where("duration_days >= ?", *f.MinDuration)
	}
	if f.MaxDuration != nil {
		q = q.Where("duration_days <= ?", *f.MaxDuration)
	}
	if f.AvailableOnly {
		q = q.Where("id IN (?)", db.Model(&models.TourDate{}).Select("tour_id").Where("available_spots > 0"))
	}
	if strings.TrimSpace(f.Search) != "" {
		p := utils.LikeContains(f.Search)
		q = q.Where(
			db.Where(containsClause("title"), p).
				Or(containsClause("description"), p).
				Or("location_id IN (?)", db.Model(&models.Location{}).Select("id").Where(containsClause("name"), p)).
				Or("category_id IN (?)", db.Model(&models.Category{}).Select("id").Where(containsClause("name"), p)),
		)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tours: %w", err)
	}

	list := []models.Tour{}
	err := q.Preload("Category").Preload("Location").
		Order(utils.ParseOrdering(f.Ordering, tourOrdering, "created_at DESC")).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve tours: %w", err)
	}
	if err := s.attachRatings(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// GetTour returns an active tour with its dates and reviews.
func (s *CatalogService) GetTour(ctx context.Context, id uint) (*models.Tour, error) {
	var tour models.Tour
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Location").
		Preload("Dates", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC") }).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Reviews.User").
		Where("id = ? AND active = ?", id, true).
		First(&tour).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("tour not found")
		}
		return nil, fmt.Errorf("failed to retrieve tour: %w", err)
	}

	tours := []models.Tour{tour}
	if err := s.attachRatings(ctx, tours); err != nil {
		return nil, err
	}
	return &tours[0], nil
}

func (s *CatalogService) attachRatings(ctx context.Context, tours []models.Tour) error {
	if len(tours) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(tours))
	for _, t := range tours {
		ids = append(ids, t.ID)
	}

	var rows []struct {
		TourID  uint
		Average float64
		Total   int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Review{}).
		Select("tour_id, AVG(rating) AS average, COUNT(*) AS total").
		Where("tour_id IN ?", ids).
		Group("tour_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	byTour := make(map[uint]int, len(rows))
	for i, r := range rows {
		byTour[r.TourID] = i
	}
	for i := range tours {
		if idx, ok := byTour[tours[i].ID]; ok {
			tours[i].AverageRating = rows[idx].Average
			tours[i].ReviewsCount = rows[idx].Total
		}
	}
	return nil
}

func (s *CatalogService) CreateTour(ctx context.Context, in TourInput) (*models.Tour, error) {
	details := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "this field is required"
	}
	if in.DurationDays <= 0 {
		details["duration_days"] = "must be greater than zero"
	}
	if !models.ValidDifficulty(in.Difficulty) {
		details["difficulty"] = "must be one of easy, moderate, hard, expert"
	}
	if !in.Price.IsPositive() {
		details["price"] = "must be greater than zero"
	}
	if in.MaxParticipants <= 0 {
		details["max_participants"] = "must be greater than zero"
	}
	if len(details) > 0 {
		return nil, utils.Validation("invalid tour", details)
	}

	db := s.DB.WithContext(ctx)
	if err := mustExist(db, &models.Category{}, in.CategoryID, "category"); err != nil {
		return nil, err
	}
	if err := mustExist(db, &models.Location{}, in.LocationID, "location"); err != nil {
		return nil, err
	}

	tour := models.Tour{
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		LocationID:      in.LocationID,
		DurationDays:    in.DurationDays,
		Difficulty:      in.Difficulty,
		Price:           in.Price.Round(2),
		MaxParticipants: in.MaxParticipants,
		Image:           in.Image,
		Featured:        in.Featured,
		Active:          true,
	}
	if err := db.Omit(clause.Associations).Create(&tour).Error; err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}
	// active has a column default, so a false value must be written explicitly
	if in.Active != nil && !*in.Active {
		if err := db.Model(&models.Tour{}).Where("id = ?", tour.ID).Update("active", false).Error; err != nil {
			return nil, fmt.Errorf("failed to deactivate tour: %w", err)
		}
	}
	return s.loadTour(ctx, tour.ID)
}

// UpdateTour applies a staff edit. Existing bookings keep their frozen total_price.
func (s *CatalogService) UpdateTour(ctx context.Context, id uint, in TourUpdate) (*models.Tour, error) {
	db := s.DB.WithContext(ctx)
	if err := mustExist(db, &models.Tour{}, id, "tour"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	details := map[string]string{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			details["title"] = "must not be blank"
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DurationDays != nil {
		if *in.DurationDays <= 0 {
			details["duration_days"] = "must be greater than zero"
		}
		updates["duration_days"] = *in.DurationDays
	}
	if in.Difficulty != nil {
		if !models.ValidDifficulty(*in.Difficulty) {
			details["difficulty"] = "must be one of easy, moderate, hard, expert"
		}
		updates["difficulty"] = *in.Difficulty
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			details["price"] = "must be greater than zero"
		}
		updates["price"] = in.Price.Round(2)
	}
	if in.MaxParticipants != nil {
		if *in.MaxParticipants <= 0 {
			details["max_participants"] = "must be greater than zero"
		}
		updates["max_participants"] = *in.MaxParticipants
	}
	if in.Image != nil {
		updates["image"] = *in.Image
	}
	if in.Featured != nil {
		updates["featured"] = *in.Featured
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(details) > 0 {
		return nil, utils.Validation("invalid tour", details)
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := db.Model(&models.Tour{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update tour: %w", err)
		}
	}
	return s.loadTour(ctx, id)
}

func (s *CatalogService) loadTour(ctx context.Context, id uint) (*models.Tour, error) {
	var tour models.Tour
	if err := s.DB.WithContext(ctx).Preload("Category").Preload("Location").First(&tour, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload tour: %w", err)
	}
	return &tour, nil
}

// ---------------- Tour dates ----------------

func (s *CatalogService) ListTourDates(ctx context.Context, f TourDateFilter) ([]models.TourDate, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.TourDate{})
	if f.TourID != nil {
		q = q.Where("tour_id = ?", *f.TourID)
	}
	if f.GuideID != nil {
		q = q.Where("guide_id = ?", *f.GuideID)
	}
	if f.AvailableOnly {
		q = q.Where("available_spots > 0")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tour dates: %w", err)
	}

	list := []models.TourDate{}
	err := q.Preload("Guide").
		Order(utils.ParseOrdering(f.Ordering, tourDateOrdering, "start_date ASC")).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve tour dates: %w", err)
	}
	return list, total, nil
}

func (s *CatalogService) GetTourDate(ctx context.Context, id uint) (*models.TourDate, error) {
	var td models.TourDate
	if err := s.DB.WithContext(ctx).Preload("Guide").Preload("Tour").First(&td, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("tour date not found")
		}
		return nil, fmt.Errorf("failed to retrieve tour date: %w", err)
	}
	return &td, nil
}

// CreateTourDate schedules a run of a tour. Spots default to the tour's max_participants.
func (s *CatalogService) CreateTourDate(ctx context.Context, in TourDateInput) (*models.TourDate, error) {
	db := s.DB.WithContext(ctx)

	var tour models.Tour
	if err := db.First(&tour, in.TourID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("tour not found")
		}
		return nil, fmt.Errorf("failed to find tour: %w", err)
	}

	spots := tour.MaxParticipants
	if in.AvailableSpots != nil {
		spots = *in.AvailableSpots
	}

	details := map[string]string{}
	if in.StartDate.IsZero() {
		details["start_date"] = "this field is required"
	}
	if in.EndDate.Before(in.StartDate) {
		details["end_date"] = "must not be before start_date"
	}
	if spots < 0 {
		details["available_spots"] = "must not be negative"
	}
	if len(details) > 0 {
		return nil, utils.Validation("invalid tour date", details)
	}
	if in.GuideID != nil {
		if err := mustExist(db, &models.User{}, *in.GuideID, "guide"); err != nil {
			return nil, err
		}
	}

	td := models.TourDate{
		TourID:         tour.ID,
		StartDate:      datatypes.Date(in.StartDate),
		EndDate:        datatypes.Date(in.EndDate),
		AvailableSpots: spots,
		GuideID:        in.GuideID,
	}
	if err := db.Omit(clause.Associations).Create(&td).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.Validation("this tour already has a date starting on that day",
				map[string]string{"start_date": "must be unique per tour"})
		}
		return nil, fmt.Errorf("failed to create tour date: %w", err)
	}
	return s.GetTourDate(ctx, td.ID)
}

// mustBeActiveTour returns NotFound unless id names an active tour.
func mustBeActiveTour(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Tour{}).Where("id = ? AND active = ?", id, true).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check tour: %w", err)
	}
	if count == 0 {
		return utils.NotFound("tour not found")
	}
	return nil
}

// mustExist returns NotFound when no row of model has the given id.
func mustExist(db *gorm.DB, model interface{}, id uint, name string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", name, err)
	}
	if count == 0 {
		return utils.NotFound(name + " not found")
	}
	return nil
}
