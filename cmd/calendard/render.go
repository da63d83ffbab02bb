package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/calendar-engine/internal/grid"
	"github.com/example/calendar-engine/internal/layout"
)

const cellWidth = 4

// renderMonth writes a text month overview: the day grid with the
// current day bracketed, followed by each week's events in slot order.
func renderMonth(w io.Writer, g grid.MonthGrid, segments []layout.Segment, showWeekNumbers bool) error {
	var b strings.Builder

	b.WriteString(g.Title)
	b.WriteByte('\n')

	indent := ""
	if showWeekNumbers {
		indent = "    "
	}
	b.WriteString(indent)
	for i := 0; i < 7; i++ {
		day := time.Weekday((int(g.FirstDayOfWeek) + i) % 7)
		fmt.Fprintf(&b, "%*s", cellWidth, day.String()[:3])
	}
	b.WriteByte('\n')

	byWeek := make(map[int][]layout.Segment)
	for _, seg := range segments {
		byWeek[seg.Week] = append(byWeek[seg.Week], seg)
	}

	for row, week := range g.Weeks {
		if showWeekNumbers {
			fmt.Fprintf(&b, "W%02d ", week.ISOWeek)
		}
		for _, cell := range week.Days {
			switch {
			case !cell.InCurrentMonth:
				fmt.Fprintf(&b, "%*s", cellWidth, ".")
			case g.IsToday(cell.Date):
				fmt.Fprintf(&b, "%*s", cellWidth, fmt.Sprintf("[%d]", cell.Date.Day))
			default:
				fmt.Fprintf(&b, "%*d", cellWidth, cell.Date.Day)
			}
		}
		b.WriteByte('\n')

		for _, seg := range byWeek[row] {
			label := seg.Summary
			if !seg.First {
				label = "(cont.) " + label
			}
			fmt.Fprintf(&b, "%s  slot %d  %s-%s  %s\n",
				indent, seg.Slot,
				week.Days[seg.StartCol].Date, week.Days[seg.EndCol].Date,
				label)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
