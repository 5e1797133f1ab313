package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/model"
	eventrepos "github.com/JeroenBertels/glh-timer/pkg/repository/event"
	racerepos "github.com/JeroenBertels/glh-timer/pkg/repository/race"
	stagerepos "github.com/JeroenBertels/glh-timer/pkg/repository/stage"
	"github.com/JeroenBertels/glh-timer/pkg/timing"
	"github.com/JeroenBertels/glh-timer/pkg/timing/target"
)

var (
	// ErrPayloadKind is returned when a submission does not carry
	// exactly one payload kind.
	ErrPayloadKind = errors.New(
		"exactly one of duration, start or end required")
	// ErrAlreadyTargeted is returned when a claim hits an event that
	// already has a target.
	ErrAlreadyTargeted = errors.New("event already has a target")
	// ErrNotClaimable is returned when a claim hits an event without an
	// end timestamp.
	ErrNotClaimable = errors.New("event has no end timestamp")
	// ErrNotCreator is returned when a claim comes from a different
	// identity than the one that captured the event.
	ErrNotCreator = errors.New("event was captured by someone else")
	// ErrClaimLost is returned when the compare-and-set found the event
	// claimed by a concurrent call. Never a silent no-op: the caller
	// must know its capture was attributed elsewhere.
	ErrClaimLost = errors.New("event was claimed concurrently")
)

type (
	// Payload is one timing observation as submitted: exactly one of
	// the three texts must be set. Duration accepts "MM:SS", "HH:MM:SS"
	// or raw seconds; Start and End accept "HH:MM:SS" local to the race
	// or the NOW literal.
	Payload struct {
		Duration string
		Start    string
		End      string
	}

	Option func(*IngestService)

	// IngestService validates submissions, resolves targets, fans out
	// timing events and manages the deferred-target workflow.
	IngestService struct {
		pool  *pgxpool.Pool
		clock func() time.Time
	}
)

func (p Payload) kinds() int {
	ret := 0
	for _, text := range []string{p.Duration, p.Start, p.End} {
		if text != "" {
			ret++
		}
	}
	return ret
}

// WithClock replaces the time source so the NOW literal and the capture
// stamps are testable.
func WithClock(clock func() time.Time) Option {
	return func(s *IngestService) {
		s.clock = clock
	}
}

func NewIngestService(pool *pgxpool.Pool, opts ...Option) *IngestService {
	ret := &IngestService{pool: pool, clock: time.Now}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Submit creates one timing event per target, all sharing the same
// payload and capture times, in one transaction.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *IngestService) Submit(
	ctx context.Context,
	raceID, stageID string,
	targets []target.Target,
	payload Payload,
	identity string,
) ([]uuid.UUID, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets")
	}
	template, err := s.buildEvent(ctx, raceID, stageID, payload, identity)
	if err != nil {
		return nil, err
	}
	ret := make([]uuid.UUID, 0, len(targets))
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, t := range targets {
			ev := *template
			t.Apply(&ev)
			created, err := eventrepos.Create(ctx, tx, &ev)
			if err != nil {
				return err
			}
			ret = append(ret, created.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("events created",
		log.String("race", raceID), log.String("stage", stageID),
		log.Int("count", len(ret)))
	return ret, nil
}

// SubmitPendingEnd records an end capture without a target. The event
// is stamped with the submitting identity and waits to be claimed.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *IngestService) SubmitPendingEnd(
	ctx context.Context,
	raceID, stageID, clockText, identity string,
) (uuid.UUID, error) {
	if identity == "" {
		return uuid.Nil, fmt.Errorf("pending events need a creating identity")
	}
	ev, err := s.buildEvent(ctx, raceID, stageID,
		Payload{End: clockText}, identity)
	if err != nil {
		return uuid.Nil, err
	}
	created, err := eventrepos.Create(ctx, s.pool, ev)
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}

// Claim assigns targets to a pending event: the event itself gets the
// first target via compare-and-set, duplicates with identical payload
// and capture times are created for the remaining targets. Only the
// creating identity may claim, only while the event is targetless.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *IngestService) Claim(
	ctx context.Context,
	eventID uuid.UUID,
	identity string,
	targets []target.Target,
) (claimed uuid.UUID, duplicates []uuid.UUID, err error) {
	if len(targets) == 0 {
		return uuid.Nil, nil, fmt.Errorf("no targets")
	}
	duplicates = make([]uuid.UUID, 0)
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		pending, err := eventrepos.LoadByID(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if err := claimable(pending, identity); err != nil {
			return err
		}
		var bibArg *int
		var groupArg *string
		if bib, ok := targets[0].Bib(); ok {
			bibArg = &bib
		} else if group, ok := targets[0].Group(); ok {
			groupArg = &group
		}
		rows, err := eventrepos.ClaimTarget(
			ctx, tx, eventID, identity, bibArg, groupArg)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrClaimLost
		}
		claimed = eventID
		for _, t := range targets[1:] {
			dup := *pending
			dup.ID = uuid.Nil
			t.Apply(&dup)
			created, err := eventrepos.Create(ctx, tx, &dup)
			if err != nil {
				return err
			}
			duplicates = append(duplicates, created.ID)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, nil, err
	}
	return claimed, duplicates, nil
}

// ListPending returns the claimable events of one identity on a stage.
func (s *IngestService) ListPending(
	ctx context.Context,
	raceID, stageID, identity string,
) ([]*model.TimingEvent, error) {
	return eventrepos.LoadPendingByCreator(ctx, s.pool, raceID, stageID, identity)
}

// EditEvent rewrites target and payload of a single event. This is the
// only mutation path besides claiming; results are never rewritten
// implicitly.
func (s *IngestService) EditEvent(
	ctx context.Context,
	ev *model.TimingEvent,
) (*model.TimingEvent, error) {
	if err := checkCardinality(ev); err != nil {
		return nil, err
	}
	return eventrepos.Update(ctx, s.pool, ev)
}

func (s *IngestService) DeleteEvent(
	ctx context.Context,
	eventID uuid.UUID,
) (int, error) {
	return eventrepos.DeleteByID(ctx, s.pool, eventID)
}

// buildEvent validates race, stage and payload and returns the event
// template carrying payload and capture times but no target.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *IngestService) buildEvent(
	ctx context.Context,
	raceID, stageID string,
	payload Payload,
	identity string,
) (*model.TimingEvent, error) {
	if payload.kinds() != 1 {
		return nil, ErrPayloadKind
	}
	race, err := racerepos.LoadByID(ctx, s.pool, raceID)
	if err != nil {
		return nil, fmt.Errorf("race %s: %w", raceID, err)
	}
	if _, err = stagerepos.LoadByID(ctx, s.pool, raceID, stageID); err != nil {
		return nil, fmt.Errorf("stage %s: %w", stageID, err)
	}
	loc, err := race.Location()
	if err != nil {
		return nil, err
	}
	now := s.clock()
	ret := &model.TimingEvent{
		RaceID:     raceID,
		StageID:    stageID,
		ClientTime: now,
		ServerTime: now,
		CreatedBy:  identity,
	}
	switch {
	case payload.Duration != "":
		secs, err := timing.ParseDurationSeconds(payload.Duration)
		if err != nil {
			return nil, err
		}
		ret.DurationSeconds = &secs
	case payload.Start != "":
		ts, err := timing.ParseClock(payload.Start, race.Date, loc, now)
		if err != nil {
			return nil, err
		}
		ret.StartTime = &ts
	default:
		ts, err := timing.ParseClock(payload.End, race.Date, loc, now)
		if err != nil {
			return nil, err
		}
		ret.EndTime = &ts
	}
	return ret, nil
}

func claimable(ev *model.TimingEvent, identity string) error {
	if !ev.Pending() {
		return ErrAlreadyTargeted
	}
	if ev.EndTime == nil {
		return ErrNotClaimable
	}
	if ev.CreatedBy != identity {
		return ErrNotCreator
	}
	return nil
}

func checkCardinality(ev *model.TimingEvent) error {
	if ev.Bib != nil && ev.Group != nil {
		return fmt.Errorf("bib and group are mutually exclusive")
	}
	payloads := 0
	if ev.DurationSeconds != nil {
		payloads++
	}
	if ev.StartTime != nil {
		payloads++
	}
	if ev.EndTime != nil {
		payloads++
	}
	if payloads != 1 {
		return ErrPayloadKind
	}
	if ev.Pending() && ev.EndTime == nil {
		return fmt.Errorf("a targetless event needs an end time")
	}
	return nil
}
