// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hiking-backend/models"
	"hiking-backend/services"
	"hiking-backend/utils"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateBookingRequest struct {
	TourDateID   uint `json:"tour_date_id" binding:"required"`
	Participants int  `json:"participants" binding:"required,gte=1"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status != "" && !models.ValidBookingStatus(status) {
		c.Error(utils.Validation("invalid status filter",
			map[string]string{"status": "must be one of pending, confirmed, cancelled, completed"}))
		return
	}

	f := services.BookingFilter{
		Status:     status,
		TourID:     utils.ParseOptionalUint(c.Query("tour")),
		Ordering:   c.Query("ordering"),
		Pagination: pagination(c),
	}
	list, total, err := ctrl.BookingSvc.ListBookings(c.Request.Context(), userID, f)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Bookings retrieved successfully", page(f.Pagination, total, list))
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	booking, err := ctrl.BookingSvc.CreateBooking(c.Request.Context(), userID, services.CreateBookingInput{
		TourDateID:   req.TourDateID,
		Participants: req.Participants,
	})
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Booking created successfully", booking)
}

func (ctrl *BookingController) GetBookingDetails(c *gin.Context) {
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

	booking, err := ctrl.BookingSvc.GetBooking(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Booking retrieved successfully", booking)
}

func (ctrl *BookingController) GetBookingByReference(c *gin.Context) {
	userID, err := requireUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	booking, err := ctrl.BookingSvc.GetBookingByReference(c.Request.Context(), userID, c.Param("ref"))
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Booking retrieved successfully", booking)
}

func (ctrl *BookingController) CancelBooking(c *gin.Context) {
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

	booking, err := ctrl.BookingSvc.CancelBooking(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Booking cancelled successfully", booking)
}

// ConfirmBooking and CompleteBooking are mounted behind StaffOnly.
func (ctrl *BookingController) ConfirmBooking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	booking, err := ctrl.BookingSvc.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Booking confirmed successfully", booking)
}

func (ctrl *BookingController) CompleteBooking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	booking, err := ctrl.BookingSvc.CompleteBooking(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Booking completed successfully", booking)
}
