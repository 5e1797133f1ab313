package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	eventrepos "github.com/JeroenBertels/glh-timer/pkg/repository/event"
	participantrepos "github.com/JeroenBertels/glh-timer/pkg/repository/participant"
	racerepos "github.com/JeroenBertels/glh-timer/pkg/repository/race"
	stagerepos "github.com/JeroenBertels/glh-timer/pkg/repository/stage"
	starttimerepos "github.com/JeroenBertels/glh-timer/pkg/repository/starttime"
	"github.com/JeroenBertels/glh-timer/pkg/timing"
	"github.com/JeroenBertels/glh-timer/pkg/timing/resolve"
	"github.com/JeroenBertels/glh-timer/pkg/timing/results"
	"github.com/JeroenBertels/glh-timer/pkg/timing/target"
	"github.com/JeroenBertels/glh-timer/pkg/timing/wave"
)

// QueryService answers result and wave schedule queries. Every call
// recomputes from the raw events; nothing is cached, a query after an
// edit always reflects the edit.
type QueryService struct {
	pool *pgxpool.Pool
}

func NewQueryService(pool *pgxpool.Pool) *QueryService {
	return &QueryService{pool: pool}
}

// GetResults builds the ranked table for one stage. For the overall
// stage the participant durations of every regular stage are summed,
// a single unresolved stage means DNF for the total.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *QueryService) GetResults(
	ctx context.Context,
	raceID, stageID string,
	filter results.Filter,
) ([]*results.Row, error) {
	race, err := racerepos.LoadByID(ctx, s.pool, raceID)
	if err != nil {
		return nil, fmt.Errorf("race %s: %w", raceID, err)
	}
	stage, err := stagerepos.LoadByID(ctx, s.pool, raceID, stageID)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stageID, err)
	}
	participants, err := participantrepos.LoadByRace(ctx, s.pool, raceID)
	if err != nil {
		return nil, err
	}
	if !stage.IsOverall() {
		input, err := s.stageInput(ctx, race, stage)
		if err != nil {
			return nil, err
		}
		return results.BuildStageResults(participants, input, filter), nil
	}
	inputs, err := s.regularStageInputs(ctx, race)
	if err != nil {
		return nil, err
	}
	return results.BuildOverallResults(participants, inputs, filter), nil
}

// GetWaveSchedule computes staggered start offsets for the target
// stage from the cumulative elapsed time over all earlier stages.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *QueryService) GetWaveSchedule(
	ctx context.Context,
	raceID, stageID string,
	targets []target.Target,
) ([]*wave.Entry, error) {
	race, err := racerepos.LoadByID(ctx, s.pool, raceID)
	if err != nil {
		return nil, fmt.Errorf("race %s: %w", raceID, err)
	}
	stage, err := stagerepos.LoadByID(ctx, s.pool, raceID, stageID)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stageID, err)
	}
	if stage.IsOverall() {
		return nil, fmt.Errorf("wave starts need a regular target stage")
	}
	participants, err := s.resolveParticipants(ctx, raceID, targets)
	if err != nil {
		return nil, err
	}
	inputs, err := s.regularStageInputs(ctx, race)
	if err != nil {
		return nil, err
	}
	preceding := lo.Filter(inputs,
		func(in resolve.StageInput, _ int) bool {
			return in.Stage.Order < stage.Order
		})
	return wave.Schedule(participants, preceding), nil
}

// resolveParticipants expands the target list: a bib target must match
// a registered participant, a group target contributes all members.
// Duplicates are folded.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *QueryService) resolveParticipants(
	ctx context.Context,
	raceID string,
	targets []target.Target,
) ([]*model.Participant, error) {
	ret := make([]*model.Participant, 0)
	seen := make(map[int]struct{})
	add := func(p *model.Participant) {
		if _, ok := seen[p.Bib]; ok {
			return
		}
		seen[p.Bib] = struct{}{}
		ret = append(ret, p)
	}
	for _, t := range targets {
		if bib, ok := t.Bib(); ok {
			p, err := participantrepos.LoadByBib(ctx, s.pool, raceID, bib)
			if err != nil {
				return nil, fmt.Errorf("bib %d: %w", bib, err)
			}
			add(p)
			continue
		}
		group, _ := t.Group()
		members, err := participantrepos.LoadByGroup(ctx, s.pool, raceID, group)
		if err != nil {
			return nil, err
		}
		for _, p := range members {
			add(p)
		}
	}
	return ret, nil
}

// regularStageInputs loads the resolver inputs of all non-overall
// stages in stage order.
func (s *QueryService) regularStageInputs(
	ctx context.Context,
	race *model.Race,
) ([]resolve.StageInput, error) {
	stages, err := stagerepos.LoadByRace(ctx, s.pool, race.ID)
	if err != nil {
		return nil, err
	}
	ret := make([]resolve.StageInput, 0, len(stages))
	for _, stage := range stages {
		if stage.IsOverall() {
			continue
		}
		input, err := s.stageInput(ctx, race, stage)
		if err != nil {
			return nil, err
		}
		ret = append(ret, input)
	}
	return ret, nil
}

func (s *QueryService) stageInput(
	ctx context.Context,
	race *model.Race,
	stage *model.Stage,
) (resolve.StageInput, error) {
	events, err := eventrepos.LoadByRaceStage(ctx, s.pool, race.ID, stage.ID)
	if err != nil {
		return resolve.StageInput{}, err
	}
	ret := resolve.StageInput{Stage: stage, Events: events}
	if stage.Mode != model.StageModeStartEnd {
		return ret, nil
	}
	entries, err := starttimerepos.LoadByStage(ctx, s.pool, race.ID, stage.ID)
	if err != nil {
		return resolve.StageInput{}, err
	}
	if len(entries) == 0 {
		return ret, nil
	}
	loc, err := race.Location()
	if err != nil {
		return resolve.StageInput{}, err
	}
	starts := make(map[string]time.Time, len(entries))
	for _, entry := range entries {
		ts, err := timing.ParseClock(entry.StartHMS, race.Date, loc, time.Now())
		if err != nil {
			return resolve.StageInput{}, fmt.Errorf(
				"start time for %s/%s: %w", stage.ID, entry.GroupName, err)
		}
		starts[entry.GroupName] = ts
	}
	ret.GroupStarts = starts
	return ret, nil
}
