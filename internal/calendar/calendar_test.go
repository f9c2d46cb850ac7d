package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonth_DaysIn(t *testing.T) {
	tests := []struct {
		name  string
		month Month
		want  int
	}{
		{name: "january", month: Month{Year: 2026, Month: 0}, want: 31},
		{name: "february common year", month: Month{Year: 2026, Month: 1}, want: 28},
		{name: "february leap year", month: Month{Year: 2024, Month: 1}, want: 29},
		{name: "february century non-leap", month: Month{Year: 1900, Month: 1}, want: 28},
		{name: "february quadricentennial leap", month: Month{Year: 2000, Month: 1}, want: 29},
		{name: "april", month: Month{Year: 2026, Month: 3}, want: 30},
		{name: "december", month: Month{Year: 2026, Month: 11}, want: 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.month.DaysIn())
		})
	}
}

func TestMonth_LeadingBlanks(t *testing.T) {
	tests := []struct {
		month Month
		want  int
	}{
		{month: Month{Year: 2026, Month: 9}, want: 4},  // Thu Oct 1 2026
		{month: Month{Year: 2026, Month: 1}, want: 0},  // Sun Feb 1 2026
		{month: Month{Year: 2025, Month: 11}, want: 1}, // Mon Dec 1 2025
		{month: Month{Year: 2000, Month: 1}, want: 2},  // Tue Feb 1 2000
	}
	for _, tt := range tests {
		t.Run(tt.month.Title(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.month.LeadingBlanks())
		})
	}
}

func TestMonth_AddRollsOverYears(t *testing.T) {
	dec := Month{Year: 2026, Month: 11}
	assert.Equal(t, Month{Year: 2027, Month: 0}, dec.Next())

	jan := Month{Year: 2026, Month: 0}
	assert.Equal(t, Month{Year: 2025, Month: 11}, jan.Prev())

	assert.Equal(t, Month{Year: 2028, Month: 1}, jan.Add(25))
	assert.Equal(t, Month{Year: 2023, Month: 10}, jan.Add(-26))
}

func TestMonth_NavigationIsReversible(t *testing.T) {
	for year := 1999; year <= 2031; year++ {
		for m := 0; m < 12; m++ {
			month := Month{Year: year, Month: m}
			require.Equal(t, month, month.Next().Prev())
			require.Equal(t, month, month.Prev().Next())
			require.True(t, month.Next().Valid())
			require.True(t, month.Prev().Valid())
		}
	}
}

func TestCells_ShapeMatchesMonth(t *testing.T) {
	today := NewDate(2026, time.October, 15)
	for year := 2023; year <= 2028; year++ {
		for m := 0; m < 12; m++ {
			month := Month{Year: year, Month: m}
			cells := Cells(month, today)

			blanks := month.LeadingBlanks()
			require.Len(t, cells, blanks+month.DaysIn(), month.Title())
			for i := 0; i < blanks; i++ {
				require.True(t, cells[i].Blank)
			}
			for i, cell := range cells[blanks:] {
				require.False(t, cell.Blank)
				require.Equal(t, i+1, cell.Date.Day)
				require.Equal(t, time.Month(m+1), cell.Date.Month)
			}
		}
	}
}

func TestCells_Selectability(t *testing.T) {
	today := NewDate(2026, time.October, 15)
	cells := Cells(Month{Year: 2026, Month: 9}, today)
	blanks := 4

	for _, cell := range cells[blanks:] {
		switch {
		case cell.Date.Day < 15:
			assert.False(t, cell.Selectable, cell.Date.String())
			assert.False(t, cell.Today)
		case cell.Date.Day == 15:
			assert.True(t, cell.Selectable)
			assert.True(t, cell.Today)
		default:
			assert.True(t, cell.Selectable, cell.Date.String())
			assert.False(t, cell.Today)
		}
	}

	for _, cell := range Cells(Month{Year: 2026, Month: 8}, today) {
		assert.False(t, cell.Selectable)
	}
	for _, cell := range Cells(Month{Year: 2026, Month: 10}, today) {
		if !cell.Blank {
			assert.True(t, cell.Selectable)
		}
	}
}

func TestDate_SelectableAcrossYears(t *testing.T) {
	today := NewDate(2026, time.January, 1)
	assert.False(t, NewDate(2025, time.December, 31).Selectable(today))
	assert.True(t, NewDate(2026, time.January, 1).Selectable(today))
	assert.True(t, NewDate(2027, time.January, 1).Selectable(today))
}

func TestToday_UsesLocation(t *testing.T) {
	// 02:00 UTC on Oct 16 is still Oct 15 in New York.
	now := time.Date(2026, time.October, 16, 2, 0, 0, 0, time.UTC)
	ny := Location("America/New_York")
	assert.Equal(t, NewDate(2026, time.October, 15), Today(now, ny))
	assert.Equal(t, NewDate(2026, time.October, 16), Today(now, nil))
	assert.Equal(t, time.UTC, Location("Not/AZone"))
}

func TestDate_TextRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, "Monday, October 19, 2026", d.Long())

	raw, err := json.Marshal(struct {
		D Date `json:"d"`
	}{D: d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2026-10-19"}`, string(raw))

	_, err = ParseDate("19/10/2026")
	assert.Error(t, err)
}

func TestSlots_BookedPositionsNeverAvailable(t *testing.T) {
	slots := Slots()
	require.Len(t, slots, 15)

	for i, slot := range slots {
		if i == 3 || i == 8 {
			assert.False(t, slot.Available, slot.ID)
		} else {
			assert.True(t, slot.Available, slot.ID)
		}
	}
	assert.Equal(t, "10:30", slots[3].ID)
	assert.Equal(t, "14:00", slots[8].ID)

	slot, ok := SlotByID("10:00")
	require.True(t, ok)
	assert.True(t, slot.Available)
	assert.Equal(t, "10:00", slot.Label)

	_, ok = SlotByID("12:00")
	assert.False(t, ok)
}
