package appointments

import "time"

// Appointment is a persisted booking record. Date is the calendar day in
// YYYY-MM-DD form; Time is the display string the reasoning service produced
// (e.g. "4:00 PM") and is stored verbatim.
type Appointment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Doctor    string    `json:"doctor"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields carries the mutable attributes of an appointment.
type Fields struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// BookedSlot renders the "<date> <time>" string used to ground the
// reasoning service about taken slots.
func (a Appointment) BookedSlot() string {
	return a.Date + " " + a.Time
}
