package race

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/model"
	racerepos "github.com/JeroenBertels/glh-timer/pkg/repository/race"
	stagerepos "github.com/JeroenBertels/glh-timer/pkg/repository/stage"
	starttimerepos "github.com/JeroenBertels/glh-timer/pkg/repository/starttime"
	"github.com/JeroenBertels/glh-timer/pkg/timing"
)

var (
	// ErrOverallReserved is returned when a caller tries to create,
	// modify or delete the system managed overall stage.
	ErrOverallReserved = errors.New("the overall stage is system managed")
	// ErrOrderTaken is returned when a new stage would reuse an order
	// value: stage orders must form a strict sequence.
	ErrOrderTaken = errors.New("stage order already in use")
)

type (
	Option func(*RaceService)

	// RaceService covers race and stage administration, including the
	// idempotent maintenance of the overall stage.
	RaceService struct {
		pool  *pgxpool.Pool
		clock func() time.Time
	}
)

// WithClock replaces the time source, used by tests and by commands
// resolving the NOW literal deterministically.
func WithClock(clock func() time.Time) Option {
	return func(s *RaceService) {
		s.clock = clock
	}
}

func NewRaceService(pool *pgxpool.Pool, opts ...Option) *RaceService {
	ret := &RaceService{pool: pool, clock: time.Now}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// CreateRace stores the race and creates its overall stage in the same
// transaction.
func (s *RaceService) CreateRace(
	ctx context.Context,
	race *model.Race,
) (*model.Race, error) {
	if race.ID == "" {
		return nil, fmt.Errorf("race id must not be empty")
	}
	if _, err := race.Location(); err != nil {
		return nil, fmt.Errorf("invalid timezone %q", race.Timezone)
	}
	var ret *model.Race
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		if ret, err = racerepos.Create(ctx, tx, race); err != nil {
			return err
		}
		_, err = stagerepos.EnsureOverall(ctx, tx, race.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *RaceService) ListRaces(ctx context.Context) ([]*model.Race, error) {
	return racerepos.LoadAll(ctx, s.pool)
}

func (s *RaceService) GetRace(
	ctx context.Context,
	raceID string,
) (*model.Race, error) {
	return racerepos.LoadByID(ctx, s.pool, raceID)
}

// DeleteRace removes the race and via cascade all dependent data.
func (s *RaceService) DeleteRace(ctx context.Context, raceID string) (int, error) {
	return racerepos.DeleteByID(ctx, s.pool, raceID)
}

// EnsureOverallStage re-creates the overall stage when missing.
// Idempotent, returns true when a row was created.
func (s *RaceService) EnsureOverallStage(
	ctx context.Context,
	raceID string,
) (bool, error) {
	if _, err := racerepos.LoadByID(ctx, s.pool, raceID); err != nil {
		return false, err
	}
	created, err := stagerepos.EnsureOverall(ctx, s.pool, raceID)
	if err != nil {
		return false, err
	}
	if created {
		log.Info("re-created overall stage", log.String("race", raceID))
	}
	return created, nil
}

// AddStage validates and stores a regular stage. The reserved overall
// id, order and mode are refused, as is a duplicate order value.
func (s *RaceService) AddStage(
	ctx context.Context,
	stage *model.Stage,
) (*model.Stage, error) {
	if stage.ID == "" {
		return nil, fmt.Errorf("stage id must not be empty")
	}
	if stage.IsOverall() || stage.Order == model.OverallOrder {
		return nil, ErrOverallReserved
	}
	if stage.Order < 0 {
		return nil, fmt.Errorf("invalid stage order %d", stage.Order)
	}
	switch stage.Mode {
	case model.StageModeDuration, model.StageModeStartEnd:
	default:
		return nil, fmt.Errorf("invalid stage mode %q", stage.Mode)
	}
	var ret *model.Stage
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := stagerepos.LoadByRace(ctx, tx, stage.RaceID)
		if err != nil {
			return err
		}
		for _, cur := range existing {
			if !cur.IsOverall() && cur.Order == stage.Order {
				return fmt.Errorf("%w: %d", ErrOrderTaken, stage.Order)
			}
		}
		ret, err = stagerepos.Create(ctx, tx, stage)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *RaceService) ListStages(
	ctx context.Context,
	raceID string,
) ([]*model.Stage, error) {
	return stagerepos.LoadByRace(ctx, s.pool, raceID)
}

// DeleteStage removes a regular stage. The overall stage is not
// user-deletable.
func (s *RaceService) DeleteStage(
	ctx context.Context,
	raceID, stageID string,
) (int, error) {
	stage, err := stagerepos.LoadByID(ctx, s.pool, raceID, stageID)
	if err != nil {
		return 0, err
	}
	if stage.IsOverall() {
		return 0, ErrOverallReserved
	}
	return stagerepos.DeleteByID(ctx, s.pool, raceID, stageID)
}

// SetStageStart stores the authoritative start for a stage group. The
// clock text is "HH:MM:SS" local to the race or the NOW literal. An
// empty group addresses the DEFAULT entry.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *RaceService) SetStageStart(
	ctx context.Context,
	raceID, stageID, group, clockText string,
) (*model.StageStartTime, error) {
	race, err := racerepos.LoadByID(ctx, s.pool, raceID)
	if err != nil {
		return nil, err
	}
	if _, err = stagerepos.LoadByID(ctx, s.pool, raceID, stageID); err != nil {
		return nil, err
	}
	if group == "" {
		group = model.DefaultStartGroup
	}
	if group != model.DefaultStartGroup && !model.ValidGroupName(group) {
		return nil, fmt.Errorf("invalid group %q: %s", group, model.GroupNameRule)
	}
	loc, err := race.Location()
	if err != nil {
		return nil, err
	}
	ts, err := timing.ParseClock(clockText, race.Date, loc, s.clock())
	if err != nil {
		return nil, err
	}
	entry := &model.StageStartTime{
		RaceID:    raceID,
		StageID:   stageID,
		GroupName: group,
		StartHMS:  ts.In(loc).Format("15:04:05"),
	}
	if err := starttimerepos.Upsert(ctx, s.pool, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *RaceService) ListStageStarts(
	ctx context.Context,
	raceID, stageID string,
) ([]*model.StageStartTime, error) {
	return starttimerepos.LoadByStage(ctx, s.pool, raceID, stageID)
}
