package service

import (
	"context"
	"testing"

	"experia/pkg/contracts"
	"experia/pkg/kafka"
	"experia/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func confirmedMessage(t *testing.T, event contracts.BookingConfirmedEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewEventMessage(event.BookingID, contracts.EventTypeBookingConfirmed, "test", event)
	if err != nil {
		t.Fatalf("failed to build message: %v", err)
	}
	return msg
}

func TestHandleBookingConfirmed(t *testing.T) {
	svc := NewNotificationService(testLogger())

	msg := confirmedMessage(t, contracts.BookingConfirmedEvent{
		BookingID: "booking-1",
		Email:     "asha@example.com",
	})

	if err := svc.HandleBookingConfirmed(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleBookingConfirmed_DeduplicatesByBookingID(t *testing.T) {
	svc := NewNotificationService(testLogger())

	msg := confirmedMessage(t, contracts.BookingConfirmedEvent{
		BookingID: "booking-1",
		Email:     "asha@example.com",
	})

	if err := svc.HandleBookingConfirmed(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Redelivery of the same booking must be a no-op, not an error.
	if err := svc.HandleBookingConfirmed(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error on duplicate: %v", err)
	}
}

func TestHandleBookingConfirmed_RejectsMalformedPayload(t *testing.T) {
	svc := NewNotificationService(testLogger())

	msg := kafka.Message{
		Key:   "booking-1",
		Value: []byte("{not json"),
		Headers: map[string]string{
			"event-type": contracts.EventTypeBookingConfirmed,
		},
	}

	if err := svc.HandleBookingConfirmed(context.Background(), msg); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleBookingConfirmed_RejectsIncompleteEvent(t *testing.T) {
	svc := NewNotificationService(testLogger())

	msg := confirmedMessage(t, contracts.BookingConfirmedEvent{BookingID: "booking-1"})

	if err := svc.HandleBookingConfirmed(context.Background(), msg); err == nil {
		t.Fatal("expected error for event without email")
	}
}

func TestHandleBookingConfirmed_SkipsOtherEventTypes(t *testing.T) {
	svc := NewNotificationService(testLogger())

	msg := kafka.Message{
		Key:   "booking-1",
		Value: []byte("{}"),
		Headers: map[string]string{
			"event-type": "booking.cancelled",
		},
	}

	if err := svc.HandleBookingConfirmed(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
