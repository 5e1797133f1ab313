package results

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/timing/resolve"
)

func ptrInt(v int) *int { return &v }

func participant(bib int, group, sex string) *model.Participant {
	return &model.Participant{
		Bib: bib, FirstName: "P", LastName: "B", Group: group, Sex: sex,
	}
}

func durationEvent(bib, secs int) *model.TimingEvent {
	return &model.TimingEvent{Bib: ptrInt(bib), DurationSeconds: ptrInt(secs)}
}

func stageInput(id string, order int, events ...*model.TimingEvent) resolve.StageInput {
	return resolve.StageInput{
		Stage: &model.Stage{
			ID: id, Order: order, Mode: model.StageModeDuration,
		},
		Events: events,
	}
}

func TestBuildStageResults(t *testing.T) {
	participants := []*model.Participant{
		participant(12, "Elite", "F"),
		participant(45, "Elite", "M"),
		participant(77, "Open", "M"),
	}
	input := stageInput("prologue", 1,
		durationEvent(12, 125),
		durationEvent(45, 110),
	)

	rows := BuildStageResults(participants, input, Filter{})
	assert.Len(t, rows, 3)

	// finishers ascending, rank 1 is the fastest
	assert.Equal(t, 45, rows[0].Bib)
	assert.Equal(t, 1, *rows[0].Rank)
	assert.Equal(t, "1:50", rows[0].Formatted)
	assert.Equal(t, 12, rows[1].Bib)
	assert.Equal(t, 2, *rows[1].Rank)

	// dnf rows follow without rank
	assert.Equal(t, 77, rows[2].Bib)
	assert.Nil(t, rows[2].Rank)
	assert.Nil(t, rows[2].DurationSeconds)
	assert.Equal(t, DNF, rows[2].Formatted)
}

func TestBuildStageResultsFilters(t *testing.T) {
	participants := []*model.Participant{
		participant(12, "Elite", "F"),
		participant(45, "Elite", "M"),
		participant(77, "Open", "M"),
	}
	input := stageInput("prologue", 1)

	tests := []struct {
		name     string
		filter   Filter
		wantBibs []int
	}{
		{name: "all", filter: Filter{}, wantBibs: []int{12, 45, 77}},
		{name: "by_group", filter: Filter{Group: "Elite"}, wantBibs: []int{12, 45}},
		{name: "by_sex", filter: Filter{Sex: "M"}, wantBibs: []int{45, 77}},
		{
			name:     "combined",
			filter:   Filter{Group: "Elite", Sex: "M"},
			wantBibs: []int{45},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := BuildStageResults(participants, input, tt.filter)
			got := make([]int, 0, len(rows))
			for _, row := range rows {
				got = append(got, row.Bib)
			}
			assert.ElementsMatch(t, tt.wantBibs, got)
		})
	}
}

func TestBuildOverallResults(t *testing.T) {
	participants := []*model.Participant{
		participant(12, "Elite", "F"),
		participant(45, "Elite", "M"),
	}
	inputs := []resolve.StageInput{
		stageInput("prologue", 1,
			durationEvent(12, 100), durationEvent(45, 90)),
		stageInput("climb", 2,
			durationEvent(12, 200)),
	}

	rows := BuildOverallResults(participants, inputs, Filter{})
	assert.Len(t, rows, 2)

	// 12 finished both stages, total is the sum with a split per stage
	assert.Equal(t, 12, rows[0].Bib)
	assert.Equal(t, 300, *rows[0].DurationSeconds)
	assert.Equal(t, 1, *rows[0].Rank)
	assert.Equal(t, map[string]int{"prologue": 100, "climb": 200}, rows[0].Splits)

	// 45 misses the climb: no partial credit, the faster prologue
	// does not help
	assert.Equal(t, 45, rows[1].Bib)
	assert.Nil(t, rows[1].DurationSeconds)
	assert.Nil(t, rows[1].Rank)
	assert.Equal(t, "Missing: climb", rows[1].Note)
	assert.Equal(t, map[string]int{"prologue": 90}, rows[1].Splits)
}

// a race without regular stages sums to zero for everybody, it does
// not degrade into DNF
func TestBuildOverallResultsNoStages(t *testing.T) {
	participants := []*model.Participant{
		participant(12, "Elite", "F"),
		participant(45, "Elite", "M"),
	}

	rows := BuildOverallResults(participants, []resolve.StageInput{}, Filter{})
	assert.Len(t, rows, 2)
	for i, row := range rows {
		assert.Equal(t, 0, *row.DurationSeconds)
		assert.Equal(t, "0:00", row.Formatted)
		assert.Equal(t, i+1, *row.Rank)
		assert.Empty(t, row.Note)
	}
	// equal totals keep the incoming order
	assert.Equal(t, 12, rows[0].Bib)
	assert.Equal(t, 45, rows[1].Bib)
}

func TestRankStableForDnfRows(t *testing.T) {
	participants := []*model.Participant{
		participant(1, "Open", "M"),
		participant(2, "Open", "M"),
		participant(3, "Open", "M"),
	}
	input := stageInput("prologue", 1, durationEvent(2, 50))

	rows := BuildStageResults(participants, input, Filter{})
	assert.Equal(t, 2, rows[0].Bib)
	// dnf rows keep their incoming order
	assert.Equal(t, 1, rows[1].Bib)
	assert.Equal(t, 3, rows[2].Bib)
}
