package model

import (
	"time"
)

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

const (
	MinBookingQuantity = 1
	MaxBookingQuantity = 20
)

// Booking is a confirmed reservation. Pricing fields are snapshots taken
// at booking time and never recomputed, so history survives later price
// changes on the experience.
type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	ExperienceID    string    `json:"experienceId" bson:"experience_id"`
	ExperienceTitle string    `json:"experienceTitle" bson:"experience_title"`
	FullName        string    `json:"fullName" bson:"full_name"`
	Email           string    `json:"email" bson:"email"`
	Phone           string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Date            string    `json:"date" bson:"date"`
	Time            string    `json:"time" bson:"time"`
	Quantity        int       `json:"quantity" bson:"quantity"`
	PricePerPerson  float64   `json:"pricePerPerson" bson:"price_per_person"`
	Subtotal        float64   `json:"subtotal" bson:"subtotal"`
	Discount        float64   `json:"discount" bson:"discount"`
	Total           float64   `json:"total" bson:"total"`
	PromoCode       string    `json:"promoCode,omitempty" bson:"promo_code,omitempty"`
	Status          string    `json:"status" bson:"status"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

// BookingRequest is the raw create-booking input as received from the
// client. Title and price arrive denormalized from the checkout page;
// price is re-read as the snapshot value, not trusted for slot pricing
// beyond what the original contract does.
type BookingRequest struct {
	ExperienceID string  `json:"experienceId" validate:"required,mongodb"`
	Title        string  `json:"title" validate:"required"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Quantity     int     `json:"quantity" validate:"required,min=1,max=20"`
	SelectedDate string  `json:"selectedDate" validate:"required"`
	SelectedTime string  `json:"selectedTime" validate:"required"`
	FullName     string  `json:"fullName" validate:"required,min=2,max=100"`
	Email        string  `json:"email" validate:"required,booking_email"`
	Phone        string  `json:"phone,omitempty" validate:"omitempty"`
	PromoCode    string  `json:"promoCode,omitempty" validate:"omitempty,max=32"`
}

// PromoApplied is the discount snapshot echoed back in a confirmation.
type PromoApplied struct {
	Code     string  `json:"code"`
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	Discount float64 `json:"discount"`
}

// BookingConfirmation is the success payload of the booking transaction.
type BookingConfirmation struct {
	BookingID       string        `json:"bookingId"`
	ExperienceTitle string        `json:"experienceTitle"`
	FullName        string        `json:"fullName"`
	Email           string        `json:"email"`
	Date            string        `json:"date"`
	Time            string        `json:"time"`
	Quantity        int           `json:"quantity"`
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	Total           float64       `json:"total"`
	PromoApplied    *PromoApplied `json:"promoApplied,omitempty"`
	Status          string        `json:"status"`
}
