package calendar

import "slices"

// TimeSlot is a bookable time of day.
type TimeSlot struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

var slotTimes = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// bookedSlots are placeholder positions that are always taken, whatever the
// date. There is no live schedule behind them.
var bookedSlots = []int{3, 8}

// Slots returns the fixed daily slot list in order.
func Slots() []TimeSlot {
	out := make([]TimeSlot, 0, len(slotTimes))
	for i, t := range slotTimes {
		out = append(out, TimeSlot{
			ID:        t,
			Label:     t,
			Available: !slices.Contains(bookedSlots, i),
		})
	}
	return out
}

// SlotByID finds a slot by its time-of-day identifier.
func SlotByID(id string) (TimeSlot, bool) {
	for _, slot := range Slots() {
		if slot.ID == id {
			return slot, true
		}
	}
	return TimeSlot{}, false
}
