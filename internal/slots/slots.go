// Package slots produces the bookable time-of-day options shown by the
// kiosk's time picker.
package slots

import "fmt"

// Slot is one selectable start time in both display formats.
type Slot struct {
	Time24 string `json:"time24"` // "09:30"
	Time12 string `json:"time12"` // "9:30 AM"
}

// BusinessHours returns the half-hour slot start times from 09:00 through
// 17:00 inclusive. Pure and deterministic: 17 slots.
func BusinessHours() []Slot {
	out := make([]Slot, 0, 17)
	for hour := 9; hour <= 17; hour++ {
		for _, min := range []int{0, 30} {
			if hour == 17 && min == 30 {
				break
			}
			hour12 := hour % 12
			if hour12 == 0 {
				hour12 = 12
			}
			ampm := "AM"
			if hour >= 12 {
				ampm = "PM"
			}
			out = append(out, Slot{
				Time24: fmt.Sprintf("%02d:%02d", hour, min),
				Time12: fmt.Sprintf("%d:%02d %s", hour12, min, ampm),
			})
		}
	}
	return out
}
