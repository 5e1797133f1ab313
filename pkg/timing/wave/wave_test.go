package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/timing/resolve"
)

func ptrInt(v int) *int { return &v }

func durationEvent(bib, secs int) *model.TimingEvent {
	return &model.TimingEvent{Bib: ptrInt(bib), DurationSeconds: ptrInt(secs)}
}

func stageInput(id string, events ...*model.TimingEvent) resolve.StageInput {
	return resolve.StageInput{
		Stage:  &model.Stage{ID: id, Mode: model.StageModeDuration},
		Events: events,
	}
}

func TestSchedule(t *testing.T) {
	participants := []*model.Participant{
		{Bib: 12, FirstName: "Ann", LastName: "Astrup", Group: "Elite"},
		{Bib: 45, FirstName: "Ben", LastName: "Bos", Group: "Elite"},
		{Bib: 77, FirstName: "Cas", LastName: "Claes", Group: "Open"},
	}
	preceding := []resolve.StageInput{
		stageInput("prologue",
			durationEvent(12, 100),
			durationEvent(45, 80),
			durationEvent(77, 70)),
		stageInput("climb",
			durationEvent(12, 200),
			durationEvent(45, 250)),
	}

	entries := Schedule(participants, preceding)

	// 77 misses the climb and is excluded, the rest sorts ascending by
	// cumulative offset
	assert.Len(t, entries, 2)
	assert.Equal(t, 12, entries[0].Bib)
	assert.Equal(t, 300, entries[0].OffsetSeconds)
	assert.Equal(t, "5:00", entries[0].Formatted)
	assert.Equal(t, 45, entries[1].Bib)
	assert.Equal(t, 330, entries[1].OffsetSeconds)
}

func TestScheduleNoPrecedingStages(t *testing.T) {
	participants := []*model.Participant{
		{Bib: 12, Group: "Elite"},
	}
	entries := Schedule(participants, nil)
	// with nothing to sum everybody starts at offset zero
	assert.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].OffsetSeconds)
}
