package model

import (
	"time"
)

// DefaultSlotCapacity is used when a slot is materialized lazily on
// first booking against a (date, time) pair that has no explicit slot.
const DefaultSlotCapacity = 10

// Slot holds the capacity counters for one (date, time) pair of an
// experience. Dates and times are opaque string keys, not parsed
// calendar values.
type Slot struct {
	Date     string `json:"date" bson:"date" validate:"required"`
	Time     string `json:"time" bson:"time" validate:"required"`
	Booked   int    `json:"booked" bson:"booked" validate:"min=0"`
	Capacity int    `json:"capacity" bson:"capacity" validate:"min=1"`
}

// Available returns the remaining capacity of the slot.
func (s *Slot) Available() int {
	return s.Capacity - s.Booked
}

type Experience struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title          string    `json:"title" bson:"title" validate:"required,min=3,max=200"`
	Location       string    `json:"location" bson:"location" validate:"required"`
	Image          string    `json:"image" bson:"image" validate:"required,url"`
	Description    string    `json:"description" bson:"description" validate:"required,min=10"`
	Price          float64   `json:"price" bson:"price" validate:"min=0"`
	About          string    `json:"about" bson:"about"`
	AvailableDates []string  `json:"availableDates" bson:"available_dates"`
	AvailableTimes []string  `json:"availableTimes" bson:"available_times"`
	Slots          []Slot    `json:"slots,omitempty" bson:"slots"`
	CreatedAt      time.Time `json:"createdAt,omitempty" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty" bson:"updated_at"`
}

// FindSlot returns the slot for the given (date, time) pair, or nil when
// no explicit slot exists yet.
func (e *Experience) FindSlot(date, timeSlot string) *Slot {
	for i := range e.Slots {
		if e.Slots[i].Date == date && e.Slots[i].Time == timeSlot {
			return &e.Slots[i]
		}
	}
	return nil
}

// HasAvailability reports whether the (date, time) pair is part of the
// experience's advertised availability sets. A slot may be materialized
// lazily only for advertised pairs.
func (e *Experience) HasAvailability(date, timeSlot string) bool {
	return contains(e.AvailableDates, date) && contains(e.AvailableTimes, timeSlot)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// SlotAvailability is the public projection of a slot: remaining
// capacity only, no internal counters.
type SlotAvailability struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available int    `json:"available"`
}

// AvailableSlots lists the slots that still have remaining capacity.
func (e *Experience) AvailableSlots() []SlotAvailability {
	out := make([]SlotAvailability, 0, len(e.Slots))
	for i := range e.Slots {
		if avail := e.Slots[i].Available(); avail > 0 {
			out = append(out, SlotAvailability{
				Date:      e.Slots[i].Date,
				Time:      e.Slots[i].Time,
				Available: avail,
			})
		}
	}
	return out
}
