package util

import (
	"fmt"
	"time"
)

// DateLayout is the format of class dates on the wire and in date inputs.
const DateLayout = "2006-01-02"

// startOfDay returns the start of the day (00:00:00) in local timezone for the given time.
func startOfDay(t time.Time) time.Time {
	localTime := t.Local()
	return time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDateLocal parses a date string in YYYY-MM-DD format and returns it in local timezone.
// This ensures dates from HTML date inputs are parsed consistently in local time.
func ParseDateLocal(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

// FormatDate renders t as a YYYY-MM-DD class date in local time.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// ValidateNotFutureDate validates that a class date is not in the future.
// It compares only the DATE (not time of day). Today is allowed.
func ValidateNotFutureDate(d time.Time, now time.Time) error {
	if startOfDay(d).After(startOfDay(now)) {
		return fmt.Errorf("class date cannot be in the future")
	}
	return nil
}

// ValidateClassDate parses a YYYY-MM-DD class date and rejects future dates.
func ValidateClassDate(dateStr string, now time.Time) error {
	d, err := ParseDateLocal(dateStr)
	if err != nil {
		return fmt.Errorf("class date must look like YYYY-MM-DD")
	}
	return ValidateNotFutureDate(d, now)
}
