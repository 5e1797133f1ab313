package model

// DefaultStartGroup is the catch-all group name for stage start times.
const DefaultStartGroup = "DEFAULT"

// StageStartTime holds the authoritative clock-of-day start for one
// group of a stage. Stages timed by start/end pairs fall back to this
// when no start event was captured for a participant: first the entry
// matching the participant group, then the DEFAULT entry.
type StageStartTime struct {
	RaceID    string `json:"raceId"`
	StageID   string `json:"stageId"`
	GroupName string `json:"groupName"`
	StartHMS  string `json:"startHms"` // HH:MM:SS local to the race
}
