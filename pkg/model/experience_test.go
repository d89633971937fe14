package model

import "testing"

func testExperience() *Experience {
	return &Experience{
		ID:             "64f1b2a3c4d5e6f7a8b9c0d1",
		Title:          "Sunset Kayaking",
		AvailableDates: []string{"2026-03-15", "2026-03-16"},
		AvailableTimes: []string{"10:00", "16:00"},
		Slots: []Slot{
			{Date: "2026-03-15", Time: "10:00", Booked: 2, Capacity: 10},
			{Date: "2026-03-15", Time: "16:00", Booked: 10, Capacity: 10},
		},
	}
}

func TestFindSlot(t *testing.T) {
	exp := testExperience()

	slot := exp.FindSlot("2026-03-15", "10:00")
	if slot == nil {
		t.Fatal("expected slot to be found")
	}
	if slot.Booked != 2 {
		t.Errorf("expected booked 2, got %d", slot.Booked)
	}

	// The returned slot aliases the experience, counter updates must be
	// visible through it.
	slot.Booked = 5
	if exp.Slots[0].Booked != 5 {
		t.Error("FindSlot must return a pointer into the slots slice")
	}

	if exp.FindSlot("2026-03-16", "10:00") != nil {
		t.Error("expected nil for a pair with no materialized slot")
	}
}

func TestHasAvailability(t *testing.T) {
	exp := testExperience()

	tests := []struct {
		date string
		time string
		want bool
	}{
		{"2026-03-15", "10:00", true},
		{"2026-03-16", "16:00", true},
		{"2026-12-25", "10:00", false},
		{"2026-03-15", "23:00", false},
		{"", "", false},
	}

	for _, tt := range tests {
		if got := exp.HasAvailability(tt.date, tt.time); got != tt.want {
			t.Errorf("HasAvailability(%q, %q) = %v, want %v", tt.date, tt.time, got, tt.want)
		}
	}
}

func TestSlotAvailable(t *testing.T) {
	slot := Slot{Booked: 3, Capacity: 10}
	if got := slot.Available(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}

	full := Slot{Booked: 10, Capacity: 10}
	if got := full.Available(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestAvailableSlots_ExcludesFullSlots(t *testing.T) {
	exp := testExperience()

	available := exp.AvailableSlots()
	if len(available) != 1 {
		t.Fatalf("expected 1 available slot, got %d", len(available))
	}
	if available[0].Date != "2026-03-15" || available[0].Time != "10:00" {
		t.Errorf("unexpected slot: %+v", available[0])
	}
	if available[0].Available != 8 {
		t.Errorf("expected 8 remaining, got %d", available[0].Available)
	}
}
