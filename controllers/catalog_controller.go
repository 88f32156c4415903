package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hiking-backend/services"
	"hiking-backend/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateTourRequest struct {
	Title           string          `json:"title" binding:"required,max=200"`
	Description     string          `json:"description"`
	CategoryID      uint            `json:"category_id" binding:"required"`
	LocationID      uint            `json:"location_id" binding:"required"`
	DurationDays    int             `json:"duration_days" binding:"required,gte=1"`
	Difficulty      string          `json:"difficulty" binding:"required,oneof=easy moderate hard expert"`
	Price           decimal.Decimal `json:"price"`
	MaxParticipants int             `json:"max_participants" binding:"required,gte=1"`
	Image           string          `json:"image"`
	Featured        bool            `json:"featured"`
	Active          *bool           `json:"active"`
}

type UpdateTourRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	DurationDays    *int             `json:"duration_days" binding:"omitempty,gte=1"`
	Difficulty      *string          `json:"difficulty" binding:"omitempty,oneof=easy moderate hard expert"`
	Price           *decimal.Decimal `json:"price"`
	MaxParticipants *int             `json:"max_participants" binding:"omitempty,gte=1"`
	Image           *string          `json:"image"`
	Featured        *bool            `json:"featured"`
	Active          *bool            `json:"active"`
}

type CreateTourDateRequest struct {
	TourID         uint   `json:"tour_id" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	AvailableSpots *int   `json:"available_spots" binding:"omitempty,gte=0"`
	GuideID        *uint  `json:"guide_id"`
}

// ---------------------------
// Controller
// ---------------------------

type CatalogController struct {
	CatalogSvc *services.CatalogService
}

func NewCatalogController(svc *services.CatalogService) *CatalogController {
	return &CatalogController{CatalogSvc: svc}
}

func (ctrl *CatalogController) GetCategories(c *gin.Context) {
	list, err := ctrl.CatalogSvc.ListCategories(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Categories retrieved successfully", list)
}

func (ctrl *CatalogController) GetLocations(c *gin.Context) {
	list, err := ctrl.CatalogSvc.ListLocations(c.Request.Context(), services.LocationFilter{
		Search:  c.Query("search"),
		Country: c.Query("country"),
		State:   c.Query("state"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Locations retrieved successfully", list)
}

// tourFilter reads the list query string shared by the tour list endpoints.
func tourFilter(c *gin.Context) (services.TourFilter, error) {
	f := services.TourFilter{
		CategoryID:  utils.ParseOptionalUint(c.Query("category")),
		LocationID:  utils.ParseOptionalUint(c.Query("location")),
		Difficulty:  strings.ToLower(strings.TrimSpace(c.Query("difficulty"))),
		Featured:    utils.ParseOptionalBool(c.Query("featured")),
		MinDuration: utils.ParseOptionalInt(c.Query("min_duration")),
		MaxDuration: utils.ParseOptionalInt(c.Query("max_duration")),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
		Pagination:  pagination(c),
	}
	if b := utils.ParseOptionalBool(c.Query("available_only")); b != nil {
		f.AvailableOnly = *b
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, utils.Validation("invalid price filter", map[string]string{p.name: "must be a decimal number"})
		}
		*p.dst = &d
	}
	return f, nil
}

func (ctrl *CatalogController) GetTours(c *gin.Context) {
	f, err := tourFilter(c)
	if err != nil {
		c.Error(err)
		return
	}
	ctrl.listTours(c, f, "Tours retrieved successfully")
}

func (ctrl *CatalogController) GetFeaturedTours(c *gin.Context) {
	f, err := tourFilter(c)
	if err != nil {
		c.Error(err)
		return
	}
	featured := true
	f.Featured = &featured
	ctrl.listTours(c, f, "Featured tours retrieved successfully")
}

// SearchTours requires q and matches title, description, location and category names.
func (ctrl *CatalogController) SearchTours(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		c.Error(utils.Validation("Search query is required", map[string]string{"q": "this parameter is required"}))
		return
	}
	f, err := tourFilter(c)
	if err != nil {
		c.Error(err)
		return
	}
	f.Search = term
	ctrl.listTours(c, f, "Search results")
}

func (ctrl *CatalogController) listTours(c *gin.Context, f services.TourFilter, message string) {
	list, total, err := ctrl.CatalogSvc.ListTours(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, message, page(f.Pagination, total, list))
}

func (ctrl *CatalogController) GetTour(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	tour, err := ctrl.CatalogSvc.GetTour(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Tour retrieved successfully", tour)
}

func (ctrl *CatalogController) CreateTour(c *gin.Context) {
	var req CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}
	if !req.Price.IsPositive() {
		c.Error(utils.Validation("invalid payload", map[string]string{"price": "must be greater than zero"}))
		return
	}

	tour, err := ctrl.CatalogSvc.CreateTour(c.Request.Context(), services.TourInput{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		LocationID:      req.LocationID,
		DurationDays:    req.DurationDays,
		Difficulty:      req.Difficulty,
		Price:           req.Price,
		MaxParticipants: req.MaxParticipants,
		Image:           req.Image,
		Featured:        req.Featured,
		Active:          req.Active,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Tour created successfully", tour)
}

func (ctrl *CatalogController) UpdateTour(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var req UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	tour, err := ctrl.CatalogSvc.UpdateTour(c.Request.Context(), id, services.TourUpdate{
		Title:           req.Title,
		Description:     req.Description,
		DurationDays:    req.DurationDays,
		Difficulty:      req.Difficulty,
		Price:           req.Price,
		MaxParticipants: req.MaxParticipants,
		Image:           req.Image,
		Featured:        req.Featured,
		Active:          req.Active,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Tour updated successfully", tour)
}

// ---------------------------
// Tour dates
// ---------------------------

func (ctrl *CatalogController) GetTourDates(c *gin.Context) {
	ctrl.listTourDates(c, false, "Tour dates retrieved successfully")
}

func (ctrl *CatalogController) GetAvailableTourDates(c *gin.Context) {
	ctrl.listTourDates(c, true, "Available tour dates retrieved successfully")
}

func (ctrl *CatalogController) listTourDates(c *gin.Context, availableOnly bool, message string) {
	f := services.TourDateFilter{
		TourID:        utils.ParseOptionalUint(c.Query("tour")),
		GuideID:       utils.ParseOptionalUint(c.Query("guide")),
		AvailableOnly: availableOnly,
		Ordering:      c.Query("ordering"),
		Pagination:    pagination(c),
	}
	list, total, err := ctrl.CatalogSvc.ListTourDates(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, message, page(f.Pagination, total, list))
}

func (ctrl *CatalogController) GetTourDate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	td, err := ctrl.CatalogSvc.GetTourDate(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Tour date retrieved successfully", td)
}

func (ctrl *CatalogController) CreateTourDate(c *gin.Context) {
	var req CreateTourDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	start, errStart := time.Parse("2006-01-02", req.StartDate)
	end, errEnd := time.Parse("2006-01-02", req.EndDate)
	if errStart != nil || errEnd != nil {
		c.Error(utils.Validation("dates must use the YYYY-MM-DD format", map[string]string{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		}))
		return
	}

	td, err := ctrl.CatalogSvc.CreateTourDate(c.Request.Context(), services.TourDateInput{
		TourID:         req.TourID,
		StartDate:      start,
		EndDate:        end,
		AvailableSpots: req.AvailableSpots,
		GuideID:        req.GuideID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Tour date created successfully", td)
}
