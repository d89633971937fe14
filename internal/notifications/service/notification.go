package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"experia/pkg/contracts"
	"experia/pkg/kafka"
	"experia/pkg/logger"
)

// NotificationService turns booking confirmed events into customer
// notifications. Delivery is a log line for now; the dedupe and
// unmarshalling logic is what the consumer loop depends on.
type NotificationService struct {
	log *logger.Logger

	mu        sync.Mutex
	processed map[string]struct{}
}

func NewNotificationService(log *logger.Logger) *NotificationService {
	return &NotificationService{
		log:       log,
		processed: make(map[string]struct{}),
	}
}

// HandleBookingConfirmed is the consumer handler for the booking
// confirmed topic. Events are deduplicated by booking ID since the
// producer retries on broker errors.
func (s *NotificationService) HandleBookingConfirmed(ctx context.Context, msg kafka.Message) error {
	if msg.EventType() != contracts.EventTypeBookingConfirmed {
		s.log.Warn("Skipping unexpected event type",
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
		)
		return nil
	}

	var event contracts.BookingConfirmedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal booking confirmed event: %w", err)
	}

	if event.BookingID == "" || event.Email == "" {
		return fmt.Errorf("booking confirmed event missing booking ID or email")
	}

	if s.alreadyProcessed(event.BookingID) {
		s.log.Info("Skipping duplicate booking confirmed event",
			"booking_id", event.BookingID,
			"event_id", msg.EventID(),
		)
		return nil
	}

	s.log.Info("Booking confirmation notification sent",
		"booking_id", event.BookingID,
		"email", event.Email,
		"experience_title", event.ExperienceTitle,
		"date", event.Date,
		"time", event.Time,
		"quantity", event.Quantity,
		"total", event.Total,
	)

	return nil
}

func (s *NotificationService) alreadyProcessed(bookingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processed[bookingID]; ok {
		return true
	}
	s.processed[bookingID] = struct{}{}
	return false
}
