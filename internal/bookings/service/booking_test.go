package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"experia/internal/bookings/validator"
	experienceserrors "experia/internal/experiences/errors"
	"experia/internal/promo"
	"experia/pkg/config"
	mongotx "experia/pkg/db/mongo"
	apperrors "experia/pkg/errors"
	"experia/pkg/kafka"
	"experia/pkg/logger"
	"experia/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const testExperienceID = "64f1b2a3c4d5e6f7a8b9c0d1"

type mockBookingRepository struct {
	createFunc              func(ctx context.Context, booking *model.Booking) error
	findByIDFunc            func(ctx context.Context, id string) (*model.Booking, error)
	findActiveDuplicateFunc func(ctx context.Context, experienceID, email, date, timeSlot string) (*model.Booking, error)
	findByEmailFunc         func(ctx context.Context, email, status string, limit int, offset int64) ([]*model.Booking, error)
	countByEmailFunc        func(ctx context.Context, email, status string) (int64, error)
	executeTransactionFunc  func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "booking-1"
	booking.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockBookingRepository) FindActiveDuplicate(ctx context.Context, experienceID, email, date, timeSlot string) (*model.Booking, error) {
	if m.findActiveDuplicateFunc != nil {
		return m.findActiveDuplicateFunc(ctx, experienceID, email, date, timeSlot)
	}
	return nil, nil
}

func (m *mockBookingRepository) FindByEmail(ctx context.Context, email, status string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email, status, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByEmail(ctx context.Context, email, status string) (int64, error) {
	if m.countByEmailFunc != nil {
		return m.countByEmailFunc(ctx, email, status)
	}
	return 0, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockExperienceRepository struct {
	findByIDFunc            func(ctx context.Context, id string) (*model.Experience, error)
	materializeSlotFunc     func(ctx context.Context, id, date, timeSlot string, capacity int) error
	incrementSlotBookedFunc func(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error
}

func (m *mockExperienceRepository) Create(ctx context.Context, exp *model.Experience) error {
	return nil
}

func (m *mockExperienceRepository) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", experienceserrors.ErrNotFound, id)
}

func (m *mockExperienceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Experience, error) {
	return []*model.Experience{}, nil
}

func (m *mockExperienceRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Experience, error) {
	return []*model.Experience{}, nil
}

func (m *mockExperienceRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockExperienceRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	return 0, nil
}

func (m *mockExperienceRepository) MaterializeSlot(ctx context.Context, id, date, timeSlot string, capacity int) error {
	if m.materializeSlotFunc != nil {
		return m.materializeSlotFunc(ctx, id, date, timeSlot, capacity)
	}
	return nil
}

func (m *mockExperienceRepository) IncrementSlotBooked(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error {
	if m.incrementSlotBookedFunc != nil {
		return m.incrementSlotBookedFunc(ctx, id, date, timeSlot, prevBooked, quantity)
	}
	return nil
}

func (m *mockExperienceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockPublisher struct {
	published []kafka.Message
	err       error
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		DefaultSlotCapacity: model.DefaultSlotCapacity,
		PromoCatalog:        config.DefaultPromoCatalog(),
	}
}

func newTestService(bookings *mockBookingRepository, experiences *mockExperienceRepository, publisher EventPublisher) (*bookingService, *config.Config) {
	cfg := testConfig()
	return &bookingService{
		bookings:    bookings,
		experiences: experiences,
		validator:   validator.NewBookingValidator(cfg.Log),
		engine:      promo.NewEngine(cfg.PromoCatalog),
		publisher:   publisher,
		cfg:         cfg,
	}, cfg
}

func testExperience() *model.Experience {
	return &model.Experience{
		ID:             testExperienceID,
		Title:          "Sunset Kayaking",
		Location:       "Goa",
		Price:          150,
		AvailableDates: []string{"2026-03-15", "2026-03-16"},
		AvailableTimes: []string{"10:00", "16:00"},
		Slots: []model.Slot{
			{Date: "2026-03-15", Time: "10:00", Booked: 2, Capacity: 10},
		},
	}
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ExperienceID: testExperienceID,
		Title:        "Sunset Kayaking",
		Price:        150,
		Quantity:     2,
		SelectedDate: "2026-03-15",
		SelectedTime: "10:00",
		FullName:     "Asha Rao",
		Email:        "asha@example.com",
	}
}

func TestCreate_Success(t *testing.T) {
	var incrementedPrev, incrementedQty int
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
		incrementSlotBookedFunc: func(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error {
			incrementedPrev = prevBooked
			incrementedQty = quantity
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, publisher)

	confirmation, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if confirmation.BookingID != "booking-1" {
		t.Errorf("expected booking ID 'booking-1', got %q", confirmation.BookingID)
	}
	if confirmation.Status != model.StatusConfirmed {
		t.Errorf("expected status confirmed, got %q", confirmation.Status)
	}
	if confirmation.Subtotal != 300 || confirmation.Discount != 0 || confirmation.Total != 300 {
		t.Errorf("unexpected pricing: subtotal=%v discount=%v total=%v",
			confirmation.Subtotal, confirmation.Discount, confirmation.Total)
	}
	if confirmation.PromoApplied != nil {
		t.Errorf("expected no promo applied, got %+v", confirmation.PromoApplied)
	}

	// The increment must be guarded on the booked value seen at the
	// capacity check.
	if incrementedPrev != 2 || incrementedQty != 2 {
		t.Errorf("expected increment guarded on booked=2 qty=2, got booked=%d qty=%d", incrementedPrev, incrementedQty)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if got := publisher.published[0].EventType(); got != "booking.confirmed" {
		t.Errorf("expected event type booking.confirmed, got %q", got)
	}
}

func TestCreate_LazySlotMaterialization(t *testing.T) {
	var materialized bool
	var materializedCapacity int
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			exp := testExperience()
			exp.Slots = nil
			return exp, nil
		},
		materializeSlotFunc: func(ctx context.Context, id, date, timeSlot string, capacity int) error {
			materialized = true
			materializedCapacity = capacity
			return nil
		},
	}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, nil)

	confirmation, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !materialized {
		t.Error("expected slot to be materialized")
	}
	if materializedCapacity != model.DefaultSlotCapacity {
		t.Errorf("expected capacity %d, got %d", model.DefaultSlotCapacity, materializedCapacity)
	}
	if confirmation.Total != 300 {
		t.Errorf("expected total 300, got %v", confirmation.Total)
	}
}

func TestCreate_InvalidSelection(t *testing.T) {
	var created bool
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = true
			return nil
		},
	}
	svc, _ := newTestService(bookings, experiences, nil)

	req := validRequest()
	req.SelectedDate = "2026-12-25"

	_, err := svc.Create(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidSelection {
		t.Fatalf("expected INVALID_SELECTION, got %v", err)
	}
	if created {
		t.Error("no booking must be created for an unavailable selection")
	}
}

func TestCreate_CapacityExceeded(t *testing.T) {
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			exp := testExperience()
			exp.Slots[0].Booked = 9
			return exp, nil
		},
	}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, nil)

	req := validRequest()
	req.Quantity = 3

	_, err := svc.Create(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeCapacityExceeded {
		t.Fatalf("expected CAPACITY_EXCEEDED, got %v", err)
	}
	if appErr.Details["available"] != 1 || appErr.Details["requested"] != 3 {
		t.Errorf("expected details available=1 requested=3, got %v", appErr.Details)
	}
}

func TestCreate_DuplicateBooking(t *testing.T) {
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	bookings := &mockBookingRepository{
		findActiveDuplicateFunc: func(ctx context.Context, experienceID, email, date, timeSlot string) (*model.Booking, error) {
			return &model.Booking{ID: "existing-1", Status: model.StatusConfirmed}, nil
		},
	}
	svc, _ := newTestService(bookings, experiences, nil)

	_, err := svc.Create(context.Background(), validRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeDuplicateBooking {
		t.Fatalf("expected DUPLICATE_BOOKING, got %v", err)
	}
	if appErr.Details["booking_id"] != "existing-1" {
		t.Errorf("expected existing booking ID in details, got %v", appErr.Details)
	}
}

func TestCreate_PromoApplied(t *testing.T) {
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, nil)

	req := validRequest()
	req.Quantity = 4
	req.PromoCode = "save10"

	confirmation, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 x 150 = 600, SAVE10 gives 10% off.
	if confirmation.Subtotal != 600 || confirmation.Discount != 60 || confirmation.Total != 540 {
		t.Errorf("unexpected pricing: subtotal=%v discount=%v total=%v",
			confirmation.Subtotal, confirmation.Discount, confirmation.Total)
	}
	if confirmation.PromoApplied == nil || confirmation.PromoApplied.Code != "SAVE10" {
		t.Errorf("expected SAVE10 applied, got %+v", confirmation.PromoApplied)
	}
}

func TestCreate_PromoMinimumNotMetAborts(t *testing.T) {
	var created bool
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = true
			return nil
		},
	}
	svc, _ := newTestService(bookings, experiences, nil)

	req := validRequest()
	req.PromoCode = "SAVE10" // subtotal 300 < 500 minimum

	_, err := svc.Create(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodePromoMinimum {
		t.Fatalf("expected PROMO_MINIMUM_NOT_MET, got %v", err)
	}
	if appErr.Details["min_amount"] != 500.0 {
		t.Errorf("expected min_amount 500 in details, got %v", appErr.Details)
	}
	if created {
		t.Error("booking must not be created when the promo minimum is not met")
	}
}

func TestCreate_UnknownPromoIgnored(t *testing.T) {
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, nil)

	req := validRequest()
	req.PromoCode = "NOPE50"

	confirmation, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.Discount != 0 || confirmation.Total != 300 {
		t.Errorf("unknown promo must not discount: discount=%v total=%v", confirmation.Discount, confirmation.Total)
	}
	if confirmation.PromoApplied != nil {
		t.Errorf("expected no promo applied, got %+v", confirmation.PromoApplied)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc, _ := newTestService(&mockBookingRepository{}, &mockExperienceRepository{}, nil)

	tests := []struct {
		name   string
		mutate func(req *model.BookingRequest)
	}{
		{"invalid email", func(req *model.BookingRequest) { req.Email = "not-an-email" }},
		{"missing email", func(req *model.BookingRequest) { req.Email = "" }},
		{"zero quantity", func(req *model.BookingRequest) { req.Quantity = 0 }},
		{"quantity above maximum", func(req *model.BookingRequest) { req.Quantity = 21 }},
		{"bad experience ID", func(req *model.BookingRequest) { req.ExperienceID = "abc" }},
		{"short name", func(req *model.BookingRequest) { req.FullName = "A" }},
		{"missing date", func(req *model.BookingRequest) { req.SelectedDate = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestCreate_SlotConflictFailsTransaction(t *testing.T) {
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
		incrementSlotBookedFunc: func(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error {
			return fmt.Errorf("%w: %s %s", experienceserrors.ErrSlotConflict, date, timeSlot)
		},
	}
	publisher := &mockPublisher{}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, publisher)

	_, err := svc.Create(context.Background(), validRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeTransaction {
		t.Fatalf("expected TRANSACTION_FAILED, got %v", err)
	}
	if len(publisher.published) != 0 {
		t.Error("no event must be published for a failed transaction")
	}
}

func TestCreate_ExperienceNotFound(t *testing.T) {
	svc, _ := newTestService(&mockBookingRepository{}, &mockExperienceRepository{}, nil)

	_, err := svc.Create(context.Background(), validRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	publisher := &mockPublisher{err: errors.New("broker unavailable")}
	svc, _ := newTestService(&mockBookingRepository{}, experiences, publisher)

	confirmation, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("booking must survive a publish failure, got %v", err)
	}
	if confirmation.BookingID == "" {
		t.Error("expected a confirmed booking")
	}
}

func TestCreate_SanitizesInput(t *testing.T) {
	var storedBooking *model.Booking
	experiences := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return testExperience(), nil
		},
	}
	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "booking-1"
			storedBooking = booking
			return nil
		},
	}
	svc, _ := newTestService(bookings, experiences, nil)

	req := validRequest()
	req.FullName = "  asha   rao  "
	req.Email = "  ASHA@Example.COM "

	_, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if storedBooking.Email != "asha@example.com" {
		t.Errorf("expected lowercased email, got %q", storedBooking.Email)
	}
	if storedBooking.FullName != "asha rao" {
		t.Errorf("expected normalized name, got %q", storedBooking.FullName)
	}
}

func TestGetHistory_InvalidStatus(t *testing.T) {
	svc, _ := newTestService(&mockBookingRepository{}, &mockExperienceRepository{}, nil)

	_, _, err := svc.GetHistory(context.Background(), "asha@example.com", "done", 10, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGetHistory_RequiresEmail(t *testing.T) {
	svc, _ := newTestService(&mockBookingRepository{}, &mockExperienceRepository{}, nil)

	_, _, err := svc.GetHistory(context.Background(), "   ", "", 10, 0)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGetHistory_FiltersByStatus(t *testing.T) {
	var gotEmail, gotStatus string
	bookings := &mockBookingRepository{
		findByEmailFunc: func(ctx context.Context, email, status string, limit int, offset int64) ([]*model.Booking, error) {
			gotEmail = email
			gotStatus = status
			return []*model.Booking{{ID: "booking-1", Status: model.StatusCancelled}}, nil
		},
		countByEmailFunc: func(ctx context.Context, email, status string) (int64, error) {
			return 1, nil
		},
	}
	svc, _ := newTestService(bookings, &mockExperienceRepository{}, nil)

	result, count, err := svc.GetHistory(context.Background(), "Asha@Example.com", "cancelled", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(result) != 1 {
		t.Fatalf("expected one booking, got count=%d len=%d", count, len(result))
	}
	if gotEmail != "asha@example.com" {
		t.Errorf("expected normalized email, got %q", gotEmail)
	}
	if gotStatus != model.StatusCancelled {
		t.Errorf("expected status filter 'cancelled', got %q", gotStatus)
	}
}
