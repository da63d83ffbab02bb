// Package grid builds the tabular date structures behind the calendar's
// month, week, day and year views. All builders are pure: identical
// inputs always produce structurally identical output, which is what
// makes the month cache in cache.go safe to key by (year, month).
package grid

import (
	"fmt"
	"time"
)

// CalendarDay is a single cell of a month grid. Days borrowed from the
// previous or next month for grid completeness carry their true date
// with InCurrentMonth unset, so today/selection comparisons and event
// lookups stay correct on padding cells.
type CalendarDay struct {
	Date           Date
	InCurrentMonth bool
}

// WeekRow is one row of a month grid: exactly seven days plus the ISO
// week number taken from the row's first day belonging to the month.
type WeekRow struct {
	ISOWeek int
	Days    [7]CalendarDay
}

// MonthGrid is the complete date grid for one displayed month.
type MonthGrid struct {
	Year           int
	Month          time.Month
	FirstDayOfWeek time.Weekday
	Weeks          []WeekRow
	// Today is the reference date the grid was built against; the zero
	// Date disables the today marker.
	Today Date
	// Title is the pre-formatted "January 2026" heading.
	Title string
}

// BuildMonthGrid constructs the grid for (year, month) with rows starting
// on firstDay. The first row is padded with trailing days of the previous
// month and the last row with leading days of the next month, so every
// row holds exactly seven entries. Month 1 borrows December of year-1 and
// month 12 borrows January of year+1.
func BuildMonthGrid(year int, month time.Month, firstDay time.Weekday, today Date) (MonthGrid, error) {
	first, err := NewDate(year, month, 1)
	if err != nil {
		return MonthGrid{}, err
	}
	if firstDay < time.Sunday || firstDay > time.Saturday {
		return MonthGrid{}, fmt.Errorf("grid: invalid first day of week: %d", firstDay)
	}

	lead := (int(first.Weekday()) - int(firstDay) + 7) % 7
	days := DaysInMonth(year, month)
	cells := lead + days
	if rem := cells % 7; rem != 0 {
		cells += 7 - rem
	}

	g := MonthGrid{
		Year:           year,
		Month:          month,
		FirstDayOfWeek: firstDay,
		Weeks:          make([]WeekRow, 0, cells/7),
		Today:          today,
		Title:          fmt.Sprintf("%s %d", month, year),
	}

	cursor := first.AddDays(-lead)
	for cell := 0; cell < cells; cell += 7 {
		var row WeekRow
		for col := 0; col < 7; col++ {
			row.Days[col] = CalendarDay{
				Date:           cursor,
				InCurrentMonth: cursor.Year == year && cursor.Month == month,
			}
			cursor = cursor.AddDays(1)
		}
		row.ISOWeek = rowISOWeek(row)
		g.Weeks = append(g.Weeks, row)
	}

	return g, nil
}

// rowISOWeek takes the ISO week number from the row's first non-padding
// day, falling back to the first cell for rows made entirely of padding
// (which BuildMonthGrid never produces).
func rowISOWeek(row WeekRow) int {
	for _, day := range row.Days {
		if day.InCurrentMonth {
			return day.Date.ISOWeek()
		}
	}
	return row.Days[0].Date.ISOWeek()
}

// IsToday reports whether the given date is the grid's reference date.
func (g MonthGrid) IsToday(d Date) bool {
	return !g.Today.IsZero() && d == g.Today
}

// Contains reports whether the date falls on any cell of the grid,
// padding cells included.
func (g MonthGrid) Contains(d Date) bool {
	if len(g.Weeks) == 0 {
		return false
	}
	first := g.Weeks[0].Days[0].Date
	last := g.Weeks[len(g.Weeks)-1].Days[6].Date
	return !d.Before(first) && !d.After(last)
}

// WeekDates returns the seven dates of row index i.
func (g MonthGrid) WeekDates(i int) [7]Date {
	var dates [7]Date
	for col, day := range g.Weeks[i].Days {
		dates[col] = day.Date
	}
	return dates
}

// WeekGrid is the seven consecutive dates of one displayed week plus a
// heading that spells out the range across month and year boundaries.
type WeekGrid struct {
	ISOWeek   int
	Days      [7]Date
	RangeText string
}

// BuildWeekGrid locates the week containing date that starts on firstDay
// and returns its seven consecutive dates.
func BuildWeekGrid(date Date, firstDay time.Weekday) (WeekGrid, error) {
	if _, err := NewDate(date.Year, date.Month, date.Day); err != nil {
		return WeekGrid{}, err
	}
	if firstDay < time.Sunday || firstDay > time.Saturday {
		return WeekGrid{}, fmt.Errorf("grid: invalid first day of week: %d", firstDay)
	}

	back := (int(date.Weekday()) - int(firstDay) + 7) % 7
	start := date.AddDays(-back)

	var w WeekGrid
	for i := 0; i < 7; i++ {
		w.Days[i] = start.AddDays(i)
	}
	w.ISOWeek = date.ISOWeek()
	w.RangeText = weekRangeText(w.Days[0], w.Days[6])
	return w, nil
}

// Contains reports whether d falls within the week.
func (w WeekGrid) Contains(d Date) bool {
	return !d.Before(w.Days[0]) && !d.After(w.Days[6])
}

// weekRangeText formats a week heading, collapsing the parts shared by
// both endpoints: "Jan 5 - 11, 2026", "Jan 27 - Feb 2, 2026",
// "Dec 29, 2025 - Jan 4, 2026".
func weekRangeText(start, end Date) string {
	startMonth := start.Month.String()[:3]
	endMonth := end.Month.String()[:3]
	switch {
	case start.Year != end.Year:
		return fmt.Sprintf("%s %d, %d - %s %d, %d", startMonth, start.Day, start.Year, endMonth, end.Day, end.Year)
	case start.Month != end.Month:
		return fmt.Sprintf("%s %d - %s %d, %d", startMonth, start.Day, endMonth, end.Day, end.Year)
	default:
		return fmt.Sprintf("%s %d - %d, %d", startMonth, start.Day, end.Day, end.Year)
	}
}

// DayGrid is the (trivial) grid for the single-day view: the date plus
// its pre-formatted headings.
type DayGrid struct {
	Date          Date
	WeekdayText   string
	MonthYearText string
	Today         Date
}

// BuildDayGrid returns the day view state for the given date.
func BuildDayGrid(date Date, today Date) (DayGrid, error) {
	if _, err := NewDate(date.Year, date.Month, date.Day); err != nil {
		return DayGrid{}, err
	}
	return DayGrid{
		Date:          date,
		WeekdayText:   date.Weekday().String(),
		MonthYearText: fmt.Sprintf("%s %d", date.Month, date.Year),
		Today:         today,
	}, nil
}

// IsToday reports whether the day view shows the reference date.
func (d DayGrid) IsToday() bool {
	return !d.Today.IsZero() && d.Date == d.Today
}

// YearGrid is twelve independent month grids for the year view.
type YearGrid struct {
	Year   int
	Months [12]MonthGrid
}

// BuildYearGrid builds all twelve month grids of a year.
func BuildYearGrid(year int, firstDay time.Weekday, today Date) (YearGrid, error) {
	y := YearGrid{Year: year}
	for m := time.January; m <= time.December; m++ {
		g, err := BuildMonthGrid(year, m, firstDay, today)
		if err != nil {
			return YearGrid{}, err
		}
		y.Months[m-1] = g
	}
	return y, nil
}
