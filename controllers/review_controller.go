package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hiking-backend/services"
	"hiking-backend/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateReviewRequest struct {
	TourID  uint   `json:"tour" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// ---------------------------
// Controller
// ---------------------------

type ReviewController struct {
	ReviewSvc *services.ReviewService
}

func NewReviewController(svc *services.ReviewService) *ReviewController {
	return &ReviewController{ReviewSvc: svc}
}

func (ctrl *ReviewController) GetReviews(c *gin.Context) {
	f := services.ReviewFilter{
		TourID:     utils.ParseOptionalUint(c.Query("tour")),
		Rating:     utils.ParseOptionalInt(c.Query("rating")),
		Ordering:   c.Query("ordering"),
		Pagination: pagination(c),
	}
	list, total, err := ctrl.ReviewSvc.ListReviews(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Reviews retrieved successfully", page(f.Pagination, total, list))
}

func (ctrl *ReviewController) GetReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	review, err := ctrl.ReviewSvc.GetReview(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Review retrieved successfully", review)
}

func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	review, err := ctrl.ReviewSvc.CreateReview(c.Request.Context(), userID, services.ReviewInput{
		TourID:  req.TourID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Review created successfully", review)
}

func (ctrl *ReviewController) UpdateReview(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	review, err := ctrl.ReviewSvc.UpdateReview(c.Request.Context(), userID, id, services.ReviewUpdate{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Review updated successfully", review)
}

func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := ctrl.ReviewSvc.DeleteReview(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Review deleted successfully", nil)
}
