package model

// StageMode describes how durations for a stage are derived.
type StageMode string

const (
	// StageModeDuration stages are timed by explicitly captured durations.
	StageModeDuration StageMode = "EXPLICIT_DURATION"
	// StageModeStartEnd stages are timed by start/end timestamp pairs.
	StageModeStartEnd StageMode = "START_END_PAIR"
	// StageModeOverall marks the synthetic stage summing all others.
	StageModeOverall StageMode = "OVERALL_AGGREGATE"
)

// reserved values for the system managed overall stage
const (
	OverallStageID = "Overall"
	OverallOrder   = -1
)

// Stage is one timed segment of a race. The id is unique within the
// race. Order defines the sequence of the regular stages, the overall
// stage uses the reserved OverallOrder sentinel.
type Stage struct {
	RaceID string    `json:"raceId"`
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Order  int       `json:"order"`
	Mode   StageMode `json:"mode"`
}

func (s *Stage) IsOverall() bool {
	return s.Mode == StageModeOverall || s.ID == OverallStageID
}
