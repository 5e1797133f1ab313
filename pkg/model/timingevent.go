package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// TimingEvent is one raw timing observation for a race stage.
//
// The target is exactly one of bib, group or none. An event without a
// target is pending: it was captured before the crossing participant
// was known and waits to be claimed by its creator.
//
// The payload is exactly one of an explicit duration, a start timestamp
// or an end timestamp. A pending event always carries an end timestamp.
type TimingEvent struct {
	ID              uuid.UUID  `json:"id"`
	RaceID          string     `json:"raceId"`
	StageID         string     `json:"stageId"`
	Bib             *int       `json:"bib,omitempty"`
	Group           *string    `json:"group,omitempty"`
	DurationSeconds *int       `json:"durationSeconds,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	ClientTime      time.Time  `json:"clientTime"`
	ServerTime      time.Time  `json:"serverTime"`
	CreatedBy       string     `json:"createdBy"`
}

// Pending reports whether the event still waits for a target.
func (e *TimingEvent) Pending() bool {
	return e.Bib == nil && e.Group == nil
}

// Matches reports whether the event applies to the given participant,
// either via its bib or via its group.
func (e *TimingEvent) Matches(bib int, group string) bool {
	if e.Bib != nil && *e.Bib == bib {
		return true
	}
	return e.Group != nil && group != "" && *e.Group == group
}
