package contracts

import "time"

const (
	TopicBookingConfirmed    = "experia.bookings.confirmed"
	TopicBookingConfirmedDLQ = "experia.bookings.confirmed.dlq"

	EventTypeBookingConfirmed = "booking.confirmed"
)

// BookingConfirmedEvent is published after a booking transaction
// commits. Consumers must tolerate duplicates; BookingID is the
// deduplication key.
type BookingConfirmedEvent struct {
	BookingID       string    `json:"bookingId"`
	ExperienceID    string    `json:"experienceId"`
	ExperienceTitle string    `json:"experienceTitle"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Quantity        int       `json:"quantity"`
	Total           float64   `json:"total"`
	PromoCode       string    `json:"promoCode,omitempty"`
	ConfirmedAt     time.Time `json:"confirmedAt"`
}
