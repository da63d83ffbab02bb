package grid

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidMonth is returned when a month outside 1..12 is supplied.
	ErrInvalidMonth = errors.New("grid: month out of range")
	// ErrInvalidDay is returned when a day outside the month's length is supplied.
	ErrInvalidDay = errors.New("grid: day out of range")
	// ErrInvalidTime is returned when an hour or minute is out of range.
	ErrInvalidTime = errors.New("grid: time of day out of range")
)

// Date is a civil calendar date with no timezone attached. Grid cells,
// selections and event spans all operate on civil dates; conversion to
// wall-clock instants is the host's concern.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates its inputs and returns the corresponding Date.
//
// Out-of-range months and days are caller contract violations and are
// rejected outright rather than normalized: silently wrapping 2024-13-01
// into 2025-01-01 would corrupt "is today" comparisons and event lookup
// keys downstream.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: %04d-%02d has no day %d", ErrInvalidDay, year, month, day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf extracts the civil date from a wall-clock instant.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// Time returns the date as midnight UTC, the canonical instant used for
// internal date arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days after d (or before, for negative n),
// carrying across month and year boundaries.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the number of days from d to other; negative when
// other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

// Weekday returns the day of the week d falls on.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// ISOWeek returns the ISO-8601 week number d belongs to.
func (d Date) ISOWeek() int {
	_, week := d.Time().ISOWeek()
	return week
}

// Compare orders dates chronologically, returning -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// String formats the date as ISO-8601, e.g. "2026-01-05".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseDate parses an ISO-8601 date string produced by Date.String,
// validating ranges the same way NewDate does.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("grid: parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.January, time.March, time.May, time.July, time.August, time.October, time.December:
		return 31
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// TimeOfDay is a wall-clock time within a day, minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay validates hour and minute ranges.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Minutes returns the time as minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Compare orders times of day, returning -1, 0 or +1.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	return sign(t.Minutes() - other.Minutes())
}

// String formats the time as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses a "15:04" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("grid: parse time %q: %w", value, err)
	}
	return NewTimeOfDay(hour, minute)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
