// services/booking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hiking-backend/models"
	"hiking-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxReferenceAttempts = 5

// BookingNotifier is told about every booking once it is committed.
type BookingNotifier interface {
	SendBookingConfirmation(e utils.BookingEmail) error
}

// BookingService owns the booking workflow: reserving spots on a tour date, pricing, and the
// status transitions.
type BookingService struct {
	DB       *gorm.DB
	Notifier BookingNotifier

	// NewReference generates a candidate booking reference.
	NewReference func() (string, error)
}

func NewBookingService(db *gorm.DB, notifier BookingNotifier) *BookingService {
	return &BookingService{
		DB:       db,
		Notifier: notifier,
		NewReference: func() (string, error) {
			return utils.GenerateReferenceCode(models.ReferenceLength)
		},
	}
}

type CreateBookingInput struct {
	TourDateID   uint
	Participants int
}

type BookingFilter struct {
	Status   string
	TourID   *uint
	Ordering string
	utils.Pagination
}

var bookingOrdering = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// CreateBooking reserves participants spots on the tour date and records a pending booking
// priced at tour.price × participants. The spot decrement and the insert commit together.
func (s *BookingService) CreateBooking(ctx context.Context, userID uint, in CreateBookingInput) (*models.Booking, error) {
	if in.Participants <= 0 {
		return nil, utils.Validation("participants must be a positive integer",
			map[string]string{"participants": "must be greater than zero"})
	}
	if in.TourDateID == 0 {
		return nil, utils.Validation("tour_date_id is required",
			map[string]string{"tour_date_id": "this field is required"})
	}

	var booking models.Booking
	var err error
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		booking, err = s.createOnce(ctx, userID, in)
		if err == nil {
			break
		}
		if utils.IsDuplicateKey(err) {
			log.Printf("create booking reference collision (attempt %d) - retrying", attempt+1)
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create booking after retries: %w", err)
	}

	out, err := s.load(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, out)
	return out, nil
}

func (s *BookingService) createOnce(ctx context.Context, userID uint, in CreateBookingInput) (models.Booking, error) {
	var booking models.Booking

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tourDate models.TourDate
		if err := tx.Preload("Tour").First(&tourDate, in.TourDateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("tour date not found")
			}
			return fmt.Errorf("failed to find tour date: %w", err)
		}
		if tourDate.Tour == nil || !tourDate.Tour.Active {
			return utils.Validation("this tour is not open for booking", nil)
		}

		// check and reserve in one statement; concurrent bookings cannot both pass
		res := tx.Model(&models.TourDate{}).
			Where("id = ? AND available_spots >= ?", tourDate.ID, in.Participants).
			UpdateColumn("available_spots", gorm.Expr("available_spots - ?", in.Participants))
		if res.Error != nil {
			return fmt.Errorf("failed to reserve spots: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.Validation("not enough available spots", map[string]interface{}{
				"participants":    in.Participants,
				"available_spots": tourDate.AvailableSpots,
			})
		}

		ref, err := s.unusedReference(tx)
		if err != nil {
			return err
		}

		booking = models.Booking{
			UserID:           userID,
			TourDateID:       tourDate.ID,
			Participants:     in.Participants,
			TotalPrice:       tourDate.Tour.Price.Mul(decimal.NewFromInt(int64(in.Participants))).Round(2),
			Status:           models.BookingPending,
			BookingReference: ref,
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})

	return booking, err
}

// unusedReference draws references until one is not taken. The unique index still guards the
// window between this check and the insert.
func (s *BookingService) unusedReference(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		ref, err := s.NewReference()
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		var taken int64
		if err := tx.Model(&models.Booking{}).Where("booking_reference = ?", ref).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("failed to check booking reference: %w", err)
		}
		if taken == 0 {
			return ref, nil
		}
		log.Printf("booking reference %s already used (attempt %d) - drawing again", ref, attempt+1)
	}
	return "", errors.New("could not generate an unused booking reference")
}

// CancelBooking moves a pending booking owned by userID to cancelled and returns its spots.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Where("id = ? AND user_id = ?", bookingID, userID).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("booking not found")
			}
			return fmt.Errorf("failed to find booking: %w", err)
		}

		res := tx.Model(&models.Booking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingPending).
			Updates(map[string]interface{}{"status": models.BookingCancelled, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel booking: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.Validation("Cannot cancel this booking", map[string]interface{}{
				"status": booking.Status,
			})
		}

		if err := tx.Model(&models.TourDate{}).
			Where("id = ?", booking.TourDateID).
			UpdateColumn("available_spots", gorm.Expr("available_spots + ?", booking.Participants)).Error; err != nil {
			return fmt.Errorf("failed to release spots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, bookingID)
}

// ConfirmBooking is the staff transition pending → confirmed.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingPending, models.BookingConfirmed, "Cannot confirm this booking")
}

// CompleteBooking is the staff transition confirmed → completed.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingConfirmed, models.BookingCompleted, "Cannot complete this booking")
}

func (s *BookingService) transition(ctx context.Context, bookingID uint, from, to models.BookingStatus, failMsg string) (*models.Booking, error) {
	db := s.DB.WithContext(ctx)

	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	res := db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.Validation(failMsg, map[string]interface{}{"status": booking.Status})
	}
	return s.load(ctx, bookingID)
}

// GetBooking returns a booking owned by userID.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uint) (*models.Booking, error) {
	var bk models.Booking
	err := s.DB.WithContext(ctx).
		Preload("TourDate.Tour").
		Where("id = ? AND user_id = ?", bookingID, userID).
		First(&bk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}
	return &bk, nil
}

// GetBookingByReference looks up one of the user's bookings by its public reference. Case and
// separators in ref are ignored.
func (s *BookingService) GetBookingByReference(ctx context.Context, userID uint, ref string) (*models.Booking, error) {
	ref = utils.NormalizeReference(ref)
	if len(ref) != models.ReferenceLength {
		return nil, utils.NotFound("booking not found")
	}
	var bk models.Booking
	err := s.DB.WithContext(ctx).
		Preload("TourDate.Tour").
		Where("booking_reference = ? AND user_id = ?", ref, userID).
		First(&bk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to retrieve booking: %w", err)
	}
	return &bk, nil
}

// ListBookings returns the user's own bookings.
func (s *BookingService) ListBookings(ctx context.Context, userID uint, f BookingFilter) ([]models.Booking, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TourID != nil {
		q = q.Where("tour_date_id IN (?)",
			s.DB.WithContext(ctx).Model(&models.TourDate{}).Select("id").Where("tour_id = ?", *f.TourID))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	list := []models.Booking{}
	err := q.Preload("TourDate.Tour").
		Order(utils.ParseOrdering(f.Ordering, bookingOrdering, "created_at DESC")).
		Offset(f.Offset()).Limit(f.Limit()).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, total, nil
}

func (s *BookingService) load(ctx context.Context, bookingID uint) (*models.Booking, error) {
	var bk models.Booking
	if err := s.DB.WithContext(ctx).Preload("TourDate.Tour").First(&bk, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	return &bk, nil
}

// notify is best-effort; the booking stands whether or not the mail goes out.
func (s *BookingService) notify(ctx context.Context, bk *models.Booking) {
	if s.Notifier == nil {
		return
	}
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, bk.UserID).Error; err != nil {
		log.Printf("warning: booking %s: cannot load user for email: %v", bk.BookingReference, err)
		return
	}
	if user.Email == "" {
		return
	}

	e := utils.BookingEmail{
		Recipient:    user.Email,
		CustomerName: user.FirstName,
		Reference:    bk.BookingReference,
		Participants: bk.Participants,
		TotalPrice:   bk.TotalPrice.StringFixed(2),
		StartDate:    time.Time(bk.TourDate.StartDate).Format("2006-01-02"),
		EndDate:      time.Time(bk.TourDate.EndDate).Format("2006-01-02"),
	}
	if bk.TourDate.Tour != nil {
		e.TourTitle = bk.TourDate.Tour.Title
	}
	if err := s.Notifier.SendBookingConfirmation(e); err != nil {
		log.Printf("warning: booking %s: confirmation email failed: %v", bk.BookingReference, err)
	}
}
