package model

import "time"

// Race is the top level entity. The id is chosen by the organizer on
// creation and immutable afterwards.
type Race struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Timezone string    `json:"timezone"`
}

// Location resolves the configured IANA timezone.
func (r *Race) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}
