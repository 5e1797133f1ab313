package basedata

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	participantrepos "github.com/JeroenBertels/glh-timer/pkg/repository/participant"
	racerepos "github.com/JeroenBertels/glh-timer/pkg/repository/race"
	stagerepos "github.com/JeroenBertels/glh-timer/pkg/repository/stage"
)

// TestTime is a fixed capture stamp for deterministic assertions.
func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

func SampleRace() *model.Race {
	date, _ := time.Parse("2006-01-02", "2024-04-28")
	return &model.Race{
		ID:       "testrace",
		Name:     "Test Race",
		Date:     date,
		Timezone: "Europe/Brussels",
	}
}

func SampleStages() []*model.Stage {
	return []*model.Stage{
		{
			RaceID: "testrace", ID: "prologue", Name: "Prologue",
			Order: 1, Mode: model.StageModeDuration,
		},
		{
			RaceID: "testrace", ID: "climb", Name: "The Climb",
			Order: 2, Mode: model.StageModeStartEnd,
		},
	}
}

func SampleParticipants() []*model.Participant {
	return []*model.Participant{
		{
			RaceID: "testrace", Bib: 12, FirstName: "Ann", LastName: "Astrup",
			Group: "Elite", Club: "GLH", Sex: "F",
		},
		{
			RaceID: "testrace", Bib: 45, FirstName: "Ben", LastName: "Bos",
			Group: "Elite", Club: "GLH", Sex: "M",
		},
		{
			RaceID: "testrace", Bib: 77, FirstName: "Cas", LastName: "Claes",
			Group: "Open", Club: "", Sex: "M",
		},
	}
}

// CreateSampleRace seeds one race with its overall stage, two regular
// stages and three participants.
func CreateSampleRace(db *pgxpool.Pool) *model.Race {
	ctx := context.Background()
	sample := SampleRace()
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		if _, err := racerepos.Create(ctx, tx, sample); err != nil {
			return err
		}
		if _, err := stagerepos.EnsureOverall(ctx, tx, sample.ID); err != nil {
			return err
		}
		for _, stage := range SampleStages() {
			if _, err := stagerepos.Create(ctx, tx, stage); err != nil {
				return err
			}
		}
		for _, p := range SampleParticipants() {
			if _, err := participantrepos.Create(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("createSampleRace: %v\n", err)
	}
	return sample
}
