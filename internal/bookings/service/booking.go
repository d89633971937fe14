package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "experia/internal/bookings/errors"
	bookingsrepo "experia/internal/bookings/repository"
	"experia/internal/bookings/validator"
	experienceserrors "experia/internal/experiences/errors"
	experiencesrepo "experia/internal/experiences/repository"
	"experia/internal/promo"
	"experia/pkg/config"
	"experia/pkg/contracts"
	apperrors "experia/pkg/errors"
	"experia/pkg/kafka"
	"experia/pkg/model"
	"experia/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetHistory(ctx context.Context, email, status string, limit int, offset int64) ([]*model.Booking, int64, error)
}

// EventPublisher decouples the service from the Kafka producer so the
// binary can run without a broker and tests can capture events.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type bookingService struct {
	bookings    bookingsrepo.BookingRepository
	experiences experiencesrepo.ExperienceRepository
	validator   *validator.BookingValidator
	engine      *promo.Engine
	publisher   EventPublisher
	cfg         *config.Config
}

func NewBookingService(
	bookings bookingsrepo.BookingRepository,
	experiences experiencesrepo.ExperienceRepository,
	validator *validator.BookingValidator,
	engine *promo.Engine,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookings:    bookings,
		experiences: experiences,
		validator:   validator,
		engine:      engine,
		publisher:   publisher,
		cfg:         cfg,
	}
}

// Create runs the whole booking flow in a single transaction: the
// experience read, the slot materialization, the capacity and duplicate
// checks, the booking insert and the slot counter increment all commit
// or roll back together. The slot increment is guarded on the booked
// value observed at the capacity check, so two concurrent bookings for
// the last seats cannot both commit.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	s.sanitize(req)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"experience_id", req.ExperienceID,
			"email", req.Email,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var booking *model.Booking
	var promoApplied *model.PromoApplied

	err := s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exp, err := s.experiences.FindByID(sessCtx, req.ExperienceID)
		if err != nil {
			if errors.Is(err, experienceserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Experience", req.ExperienceID)
			}
			if errors.Is(err, experienceserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid experience ID format")
			}
			return err
		}

		slot := exp.FindSlot(req.SelectedDate, req.SelectedTime)
		if slot == nil {
			if !exp.HasAvailability(req.SelectedDate, req.SelectedTime) {
				return apperrors.InvalidSelection(req.SelectedDate, req.SelectedTime)
			}
			if err := s.experiences.MaterializeSlot(sessCtx, exp.ID, req.SelectedDate, req.SelectedTime, s.cfg.DefaultSlotCapacity); err != nil {
				return apperrors.TransactionFailed(err)
			}
			slot = &model.Slot{
				Date:     req.SelectedDate,
				Time:     req.SelectedTime,
				Booked:   0,
				Capacity: s.cfg.DefaultSlotCapacity,
			}
		}

		if slot.Available() < req.Quantity {
			return apperrors.CapacityExceeded(slot.Available(), req.Quantity)
		}

		existing, err := s.bookings.FindActiveDuplicate(sessCtx, exp.ID, req.Email, req.SelectedDate, req.SelectedTime)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.DuplicateBooking(existing.ID)
		}

		subtotal := promo.Round2(exp.Price * float64(req.Quantity))
		discount := 0.0
		promoApplied = nil
		if req.PromoCode != "" {
			result := s.engine.Evaluate(req.PromoCode, subtotal)
			switch {
			case result.Applicable:
				discount = result.Discount
				promoApplied = &model.PromoApplied{
					Code:     result.Code,
					Type:     result.Type,
					Value:    result.Value,
					Discount: result.Discount,
				}
			case result.Reason == promo.ReasonMinimumNotMet:
				return apperrors.PromoMinimumNotMet(result.MinAmount)
			default:
				// Unknown codes do not block the booking.
				s.cfg.Log.Info("Ignoring unknown promo code",
					"promo_code", req.PromoCode,
					"experience_id", exp.ID,
				)
			}
		}

		booking = &model.Booking{
			ExperienceID:    exp.ID,
			ExperienceTitle: exp.Title,
			FullName:        req.FullName,
			Email:           req.Email,
			Phone:           req.Phone,
			Date:            req.SelectedDate,
			Time:            req.SelectedTime,
			Quantity:        req.Quantity,
			PricePerPerson:  exp.Price,
			Subtotal:        subtotal,
			Discount:        discount,
			Total:           promo.Round2(subtotal - discount),
			Status:          model.StatusConfirmed,
		}
		if promoApplied != nil {
			booking.PromoCode = promoApplied.Code
		}

		if err := s.bookings.Create(sessCtx, booking); err != nil {
			return err
		}

		if err := s.experiences.IncrementSlotBooked(sessCtx, exp.ID, req.SelectedDate, req.SelectedTime, slot.Booked, req.Quantity); err != nil {
			if errors.Is(err, experienceserrors.ErrSlotConflict) {
				return apperrors.TransactionFailed(err)
			}
			return err
		}

		return nil
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Booking transaction failed",
			"experience_id", req.ExperienceID,
			"email", req.Email,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"experience_id", booking.ExperienceID,
		"email", booking.Email,
		"date", booking.Date,
		"time", booking.Time,
		"quantity", booking.Quantity,
		"total", booking.Total,
	)

	s.publishConfirmed(ctx, booking)

	return &model.BookingConfirmation{
		BookingID:       booking.ID,
		ExperienceTitle: booking.ExperienceTitle,
		FullName:        booking.FullName,
		Email:           booking.Email,
		Date:            booking.Date,
		Time:            booking.Time,
		Quantity:        booking.Quantity,
		Subtotal:        booking.Subtotal,
		Discount:        booking.Discount,
		Total:           booking.Total,
		PromoApplied:    promoApplied,
		Status:          booking.Status,
	}, nil
}

// publishConfirmed emits the post-commit event. The booking is already
// durable at this point, so a publish failure is logged and swallowed.
func (s *bookingService) publishConfirmed(ctx context.Context, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	event := contracts.BookingConfirmedEvent{
		BookingID:       booking.ID,
		ExperienceID:    booking.ExperienceID,
		ExperienceTitle: booking.ExperienceTitle,
		FullName:        booking.FullName,
		Email:           booking.Email,
		Phone:           booking.Phone,
		Date:            booking.Date,
		Time:            booking.Time,
		Quantity:        booking.Quantity,
		Total:           booking.Total,
		PromoCode:       booking.PromoCode,
		ConfirmedAt:     booking.CreatedAt,
	}

	msg, err := kafka.NewEventMessage(booking.ExperienceID, contracts.EventTypeBookingConfirmed, "bookings-service", event)
	if err != nil {
		s.cfg.Log.Error("Failed to build booking confirmed event",
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking confirmed event",
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to get booking by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

// GetHistory lists a customer's bookings, newest first, optionally
// filtered by status.
func (s *bookingService) GetHistory(ctx context.Context, email, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, 0, apperrors.InvalidInput("Email is required")
	}

	status = sanitizer.TrimAndNormalize(status)
	if status != "" && status != model.StatusConfirmed && status != model.StatusPending && status != model.StatusCancelled {
		return nil, 0, apperrors.InvalidInput("Status must be one of: confirmed, pending, cancelled")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.bookings.CountByEmail(ctx, email, status)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "email", email, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		bookings, err = s.bookings.FindByEmail(ctx, email, status, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get booking history",
				"email", email,
				"status", status,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Title = sanitizer.TrimAndNormalize(req.Title)
	req.FullName = sanitizer.NormalizeName(req.FullName)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.SelectedDate = sanitizer.TrimAndNormalize(req.SelectedDate)
	req.SelectedTime = sanitizer.TrimAndNormalize(req.SelectedTime)
	req.PromoCode = sanitizer.NormalizePromoCode(req.PromoCode)
	if req.Phone != "" {
		if normalized := sanitizer.NormalizePhone(req.Phone); normalized != "" {
			req.Phone = normalized
		} else {
			req.Phone = sanitizer.TrimAndNormalize(req.Phone)
		}
	}
}

