package calendar

import "time"

// WeekdayLabels is the grid header; the grid starts on Sunday.
var WeekdayLabels = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Month identifies a viewed calendar month. Month is zero-based (0 = January).
type Month struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthOf returns the month containing d.
func MonthOf(d Date) Month {
	return Month{Year: d.Year, Month: int(d.Month) - 1}
}

func (m Month) Valid() bool {
	return m.Month >= 0 && m.Month <= 11
}

// Add moves the month by offset, rolling the year over in either direction.
func (m Month) Add(offset int) Month {
	total := m.Year*12 + m.Month + offset
	year, month := total/12, total%12
	if month < 0 {
		month += 12
		year--
	}
	return Month{Year: year, Month: month}
}

func (m Month) Next() Month { return m.Add(1) }

func (m Month) Prev() Month { return m.Add(-1) }

// First returns day 1 of the month.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: time.Month(m.Month + 1), Day: 1}
}

// DaysIn returns the number of days in the month, accounting for leap years.
func (m Month) DaysIn() int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(m.Year, time.Month(m.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// LeadingBlanks is the number of empty cells before day 1 in a Sunday-first grid.
func (m Month) LeadingBlanks() int {
	return int(m.First().Weekday())
}

// Title formats the month for headings, e.g. "October 2026".
func (m Month) Title() string {
	return m.First().Time(time.UTC).Format("January 2006")
}

// Cell is one position in the month grid. Blank cells pad the first week.
type Cell struct {
	Blank      bool `json:"blank"`
	Date       Date `json:"date,omitzero"`
	Selectable bool `json:"selectable"`
	Today      bool `json:"today"`
}

// Cells enumerates the month grid: LeadingBlanks empty cells followed by one
// cell per day. Days strictly before today are not selectable.
func Cells(m Month, today Date) []Cell {
	blanks := m.LeadingBlanks()
	days := m.DaysIn()
	cells := make([]Cell, 0, blanks+days)
	for range blanks {
		cells = append(cells, Cell{Blank: true})
	}
	first := m.First()
	for day := 1; day <= days; day++ {
		d := Date{Year: first.Year, Month: first.Month, Day: day}
		cells = append(cells, Cell{
			Date:       d,
			Selectable: d.Selectable(today),
			Today:      d == today,
		})
	}
	return cells
}
