package model

import (
	"errors"
	"testing"
)

func TestWarrantyOffsetDays(t *testing.T) {
	tests := []struct {
		duration WarrantyDuration
		want     int
	}{
		{WarrantyNone, 0},
		{WarrantyOneWeek, 7},
		{WarrantyOneMonth, 30},
		{WarrantyThreeMonths, 90},
		{WarrantySixMonths, 180},
		{WarrantyOneYear, 365},
		{WarrantyTwoYears, 730},
	}

	for _, tt := range tests {
		days, err := WarrantyOffsetDays(tt.duration)
		if err != nil {
			t.Fatalf("WarrantyOffsetDays(%q) error: %v", tt.duration, err)
		}
		if days != tt.want {
			t.Fatalf("WarrantyOffsetDays(%q) = %d, want %d", tt.duration, days, tt.want)
		}
	}
}

func TestWarrantyOffsetDays_Unknown(t *testing.T) {
	// Неизвестный срок отклоняется, а не подменяется значением по умолчанию.
	if _, err := WarrantyOffsetDays("forever"); !errors.Is(err, ErrInvalidWarranty) {
		t.Fatalf("err = %v, want ErrInvalidWarranty", err)
	}
}

func TestNotesOrPlaceholder(t *testing.T) {
	s := &Sale{Notes: ""}
	if got := s.NotesOrPlaceholder(); got != NotesPlaceholder {
		t.Fatalf("empty notes: got %q, want placeholder", got)
	}

	s.Notes = " \t\n "
	if got := s.NotesOrPlaceholder(); got != NotesPlaceholder {
		t.Fatalf("blank notes: got %q, want placeholder", got)
	}

	s.Notes = "ضمان الشاشة فقط"
	if got := s.NotesOrPlaceholder(); got != s.Notes {
		t.Fatalf("stored notes: got %q, want %q", got, s.Notes)
	}
}
