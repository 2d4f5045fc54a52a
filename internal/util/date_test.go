package util

import (
	"testing"
	"time"
)

func TestValidateNotFutureDate(t *testing.T) {
	now := time.Now()
	todayDay := startOfDay(now)

	tests := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{
			name:    "yesterday should be allowed",
			date:    todayDay.AddDate(0, 0, -1),
			wantErr: false,
		},
		{
			name:    "today should be allowed",
			date:    todayDay,
			wantErr: false,
		},
		{
			name:    "later today should be allowed",
			date:    todayDay.Add(23 * time.Hour),
			wantErr: false,
		},
		{
			name:    "tomorrow should be rejected",
			date:    todayDay.AddDate(0, 0, 1),
			wantErr: true,
		},
		{
			name:    "far past should be allowed",
			date:    todayDay.AddDate(-1, 0, 0),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotFutureDate(tt.date, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNotFutureDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && err.Error() != "class date cannot be in the future" {
				t.Errorf("ValidateNotFutureDate() error message = %v", err.Error())
			}
		})
	}
}

func TestParseDateLocal(t *testing.T) {
	tests := []struct {
		name    string
		dateStr string
		wantErr bool
	}{
		{"valid date string", "2026-01-23", false},
		{"invalid date string", "invalid", true},
		{"day first", "23/01/2026", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateLocal(tt.dateStr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDateLocal() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	parsed, err := ParseDateLocal("2026-01-23")
	if err != nil {
		t.Fatalf("ParseDateLocal() failed: %v", err)
	}
	if parsed.Location() != time.Local {
		t.Errorf("ParseDateLocal() location = %v, want %v", parsed.Location(), time.Local)
	}
	if parsed.Hour() != 0 || parsed.Minute() != 0 || parsed.Second() != 0 {
		t.Errorf("ParseDateLocal() should return start of day (00:00:00)")
	}
	if FormatDate(parsed) != "2026-01-23" {
		t.Errorf("FormatDate() = %s, want 2026-01-23", FormatDate(parsed))
	}
}

func TestValidateClassDate(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.Local)

	if err := ValidateClassDate("2026-03-02", now); err != nil {
		t.Errorf("today rejected: %v", err)
	}
	if err := ValidateClassDate("2026-03-03", now); err == nil {
		t.Errorf("tomorrow accepted")
	}
	if err := ValidateClassDate("03/02/2026", now); err == nil {
		t.Errorf("malformed date accepted")
	}
}

func TestStartOfDay(t *testing.T) {
	now := time.Now()
	midnight := startOfDay(now)

	if midnight.Hour() != 0 || midnight.Minute() != 0 || midnight.Second() != 0 {
		t.Errorf("startOfDay() should return 00:00:00")
	}
	if midnight.Year() != now.Year() || midnight.Month() != now.Month() || midnight.Day() != now.Day() {
		t.Errorf("startOfDay() should preserve date")
	}
	if midnight.Location() != time.Local {
		t.Errorf("startOfDay() location = %v, want %v", midnight.Location(), time.Local)
	}
}
