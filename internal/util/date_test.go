package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"01/15/2025", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), false},
		{" 12/31/2024 ", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
		{"15/01/2025", time.Time{}, true},
		{"yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddedWithin(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		days int
		want bool
	}{
		{"recent", "02/20/2025", 60, true},
		{"old", "01/01/2024", 60, false},
		{"unparseable", "soon", 60, false},
		{"empty", "", 60, false},
		{"zero window", "03/01/2025", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddedWithin(tt.date, tt.days, now); got != tt.want {
				t.Errorf("AddedWithin(%q, %d) = %v, want %v", tt.date, tt.days, got, tt.want)
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	ten := 10
	if got := FormatMinutes(&ten); got != "10 min" {
		t.Errorf("FormatMinutes(10) = %q", got)
	}
	if got := FormatMinutes(nil); got != "Unspecified" {
		t.Errorf("FormatMinutes(nil) = %q", got)
	}
}
