package grid

import (
	"errors"
	"testing"
	"time"
)

// currentDays flattens a grid to the in-month day numbers in row order.
func currentDays(g MonthGrid) []int {
	var days []int
	for _, week := range g.Weeks {
		for _, day := range week.Days {
			if day.InCurrentMonth {
				days = append(days, day.Date.Day)
			}
		}
	}
	return days
}

func TestBuildMonthGrid_RowsTileTheMonth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		year  int
		month time.Month
	}{
		{2024, time.February},
		{2023, time.February},
		{2024, time.January},
		{2024, time.December},
		{2026, time.August},
		{1999, time.June},
	}

	for _, tc := range cases {
		for _, firstDay := range []time.Weekday{time.Monday, time.Sunday, time.Saturday} {
			g, err := BuildMonthGrid(tc.year, tc.month, firstDay, Date{})
			if err != nil {
				t.Fatalf("BuildMonthGrid(%d, %s, %s): %v", tc.year, tc.month, firstDay, err)
			}

			for i, week := range g.Weeks {
				for col, day := range week.Days {
					if day.Date.IsZero() {
						t.Fatalf("%d-%s week %d col %d is empty", tc.year, tc.month, i, col)
					}
				}
			}

			days := currentDays(g)
			want := DaysInMonth(tc.year, tc.month)
			if len(days) != want {
				t.Fatalf("%d-%s: %d in-month days, want %d", tc.year, tc.month, len(days), want)
			}
			for i, day := range days {
				if day != i+1 {
					t.Fatalf("%d-%s: day at position %d is %d, want %d", tc.year, tc.month, i, day, i+1)
				}
			}
		}
	}
}

func TestBuildMonthGrid_GridStartsOnFirstDayOfWeek(t *testing.T) {
	t.Parallel()

	for _, firstDay := range []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Saturday} {
		g, err := BuildMonthGrid(2024, time.March, firstDay, Date{})
		if err != nil {
			t.Fatalf("BuildMonthGrid: %v", err)
		}
		if got := g.Weeks[0].Days[0].Date.Weekday(); got != firstDay {
			t.Errorf("first cell weekday = %s, want %s", got, firstDay)
		}
		// Consecutive cells, no gaps.
		var all []Date
		for _, week := range g.Weeks {
			for _, day := range week.Days {
				all = append(all, day.Date)
			}
		}
		for i := 1; i < len(all); i++ {
			if all[i] != all[i-1].AddDays(1) {
				t.Fatalf("grid not consecutive at %v -> %v", all[i-1], all[i])
			}
		}
	}
}

func TestBuildMonthGrid_LeapYearFebruary(t *testing.T) {
	t.Parallel()

	leap, err := BuildMonthGrid(2024, time.February, time.Monday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid(2024, February): %v", err)
	}
	if days := currentDays(leap); len(days) != 29 {
		t.Errorf("February 2024 has %d days, want 29", len(days))
	}

	common, err := BuildMonthGrid(2023, time.February, time.Monday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid(2023, February): %v", err)
	}
	if days := currentDays(common); len(days) != 28 {
		t.Errorf("February 2023 has %d days, want 28", len(days))
	}
}

func TestBuildMonthGrid_PaddingCarriesTrueDates(t *testing.T) {
	t.Parallel()

	// January 2024 starts on a Monday; with a Sunday week start the first
	// cell is Sunday December 31st, 2023.
	g, err := BuildMonthGrid(2024, time.January, time.Sunday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	lead := g.Weeks[0].Days[0]
	if lead.InCurrentMonth {
		t.Fatal("leading padding cell flagged as in-month")
	}
	if want := (Date{2023, time.December, 31}); lead.Date != want {
		t.Fatalf("leading padding date = %v, want %v", lead.Date, want)
	}

	// December 2024 ends on a Tuesday; the final row must be padded with
	// January 2025 days carrying their true dates.
	g, err = BuildMonthGrid(2024, time.December, time.Sunday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	lastRow := g.Weeks[len(g.Weeks)-1]
	trail := lastRow.Days[6]
	if trail.InCurrentMonth {
		t.Fatal("trailing padding cell flagged as in-month")
	}
	if trail.Date.Year != 2025 || trail.Date.Month != time.January {
		t.Fatalf("trailing padding date = %v, want a January 2025 day", trail.Date)
	}
}

func TestBuildMonthGrid_RejectsInvalidMonth(t *testing.T) {
	t.Parallel()

	if _, err := BuildMonthGrid(2024, 13, time.Monday, Date{}); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("BuildMonthGrid(2024, 13) error = %v, want ErrInvalidMonth", err)
	}
	if _, err := BuildMonthGrid(2024, 0, time.Monday, Date{}); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("BuildMonthGrid(2024, 0) error = %v, want ErrInvalidMonth", err)
	}
}

func TestBuildMonthGrid_Deterministic(t *testing.T) {
	t.Parallel()

	today := Date{2024, time.March, 14}
	a, err := BuildMonthGrid(2024, time.March, time.Monday, today)
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	b, err := BuildMonthGrid(2024, time.March, time.Monday, today)
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	if len(a.Weeks) != len(b.Weeks) {
		t.Fatalf("week counts differ: %d vs %d", len(a.Weeks), len(b.Weeks))
	}
	for i := range a.Weeks {
		if a.Weeks[i] != b.Weeks[i] {
			t.Fatalf("week %d differs between identical builds", i)
		}
	}
}

func TestBuildMonthGrid_ISOWeekNumbers(t *testing.T) {
	t.Parallel()

	// January 2024: the 1st is a Monday in ISO week 1.
	g, err := BuildMonthGrid(2024, time.January, time.Monday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	if got := g.Weeks[0].ISOWeek; got != 1 {
		t.Errorf("first week of January 2024 ISO week = %d, want 1", got)
	}

	// The first row of January 2021 starts with padding (Dec 28-31, 2020);
	// its week number must come from the first in-month day, January 1st,
	// which belongs to ISO week 53 of 2020.
	g, err = BuildMonthGrid(2021, time.January, time.Monday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	if got := g.Weeks[0].ISOWeek; got != 53 {
		t.Errorf("first week of January 2021 ISO week = %d, want 53", got)
	}
}

func TestMonthGrid_TodayMarker(t *testing.T) {
	t.Parallel()

	today := Date{2024, time.March, 14}
	g, err := BuildMonthGrid(2024, time.March, time.Monday, today)
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	if !g.IsToday(today) {
		t.Error("IsToday(today) = false")
	}
	if g.IsToday(today.AddDays(1)) {
		t.Error("IsToday(tomorrow) = true")
	}

	unmarked, err := BuildMonthGrid(2024, time.March, time.Monday, Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	if unmarked.IsToday(Date{}) {
		t.Error("zero today date must disable the marker")
	}
}

func TestBuildWeekGrid_SevenConsecutiveDays(t *testing.T) {
	t.Parallel()

	w, err := BuildWeekGrid(Date{2024, time.March, 14}, time.Monday)
	if err != nil {
		t.Fatalf("BuildWeekGrid: %v", err)
	}
	if want := (Date{2024, time.March, 11}); w.Days[0] != want {
		t.Fatalf("week starts %v, want %v", w.Days[0], want)
	}
	for i := 1; i < 7; i++ {
		if w.Days[i] != w.Days[i-1].AddDays(1) {
			t.Fatalf("week days not consecutive at index %d", i)
		}
	}
	if !w.Contains(Date{2024, time.March, 17}) || w.Contains(Date{2024, time.March, 18}) {
		t.Error("Contains disagrees with the week bounds")
	}
}

func TestBuildWeekGrid_RangeText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		date     Date
		firstDay time.Weekday
		want     string
	}{
		{"same month", Date{2024, time.March, 14}, time.Monday, "Mar 11 - 17, 2024"},
		{"cross month", Date{2024, time.January, 30}, time.Monday, "Jan 29 - Feb 4, 2024"},
		{"cross year", Date{2024, time.December, 31}, time.Monday, "Dec 30, 2024 - Jan 5, 2025"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w, err := BuildWeekGrid(tc.date, tc.firstDay)
			if err != nil {
				t.Fatalf("BuildWeekGrid: %v", err)
			}
			if w.RangeText != tc.want {
				t.Errorf("RangeText = %q, want %q", w.RangeText, tc.want)
			}
		})
	}
}

func TestBuildYearGrid_TwelveMonths(t *testing.T) {
	t.Parallel()

	y, err := BuildYearGrid(2024, time.Monday, Date{})
	if err != nil {
		t.Fatalf("BuildYearGrid: %v", err)
	}
	for i, g := range y.Months {
		if g.Month != time.Month(i+1) || g.Year != 2024 {
			t.Fatalf("month %d grid is for %d-%s", i+1, g.Year, g.Month)
		}
	}
	if days := currentDays(y.Months[time.February-1]); len(days) != 29 {
		t.Errorf("February 2024 in year grid has %d days, want 29", len(days))
	}
}

func TestBuildDayGrid_Headings(t *testing.T) {
	t.Parallel()

	d, err := BuildDayGrid(Date{2024, time.March, 14}, Date{2024, time.March, 14})
	if err != nil {
		t.Fatalf("BuildDayGrid: %v", err)
	}
	if d.WeekdayText != "Thursday" {
		t.Errorf("WeekdayText = %q, want Thursday", d.WeekdayText)
	}
	if d.MonthYearText != "March 2024" {
		t.Errorf("MonthYearText = %q, want March 2024", d.MonthYearText)
	}
	if !d.IsToday() {
		t.Error("IsToday() = false for matching today")
	}
}
