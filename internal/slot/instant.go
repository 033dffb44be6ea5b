package slot

import (
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate validates a calendar date and returns it at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NormalizeTime validates a wall-clock time and returns it as HH:MM.
// A zero seconds suffix (HH:MM:00) is accepted and dropped.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.Format(TimeLayout), nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil || t.Second() != 0 {
		return "", ErrInvalidTime
	}
	return t.Format(TimeLayout), nil
}

// Normalize validates date and time and returns their canonical forms.
func Normalize(date, tm string) (string, string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", "", err
	}
	t, err := NormalizeTime(tm)
	if err != nil {
		return "", "", err
	}
	return d.Format(DateLayout), t, nil
}

// Instant combines a canonical date and time into a UTC timestamp.
// Slot times carry no zone; they are compared as UTC wall clock.
func Instant(date, tm string) (time.Time, error) {
	t, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+tm)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// InstantKey names the lock that serializes writers on one guide instant.
func InstantKey(guideID, date, tm string) string {
	return "guide-instant|" + guideID + "|" + date + "|" + tm
}
