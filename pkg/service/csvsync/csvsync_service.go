package csvsync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/reconcile"
	eventrepos "github.com/JeroenBertels/glh-timer/pkg/repository/event"
	participantrepos "github.com/JeroenBertels/glh-timer/pkg/repository/participant"
	racerepos "github.com/JeroenBertels/glh-timer/pkg/repository/race"
	stagerepos "github.com/JeroenBertels/glh-timer/pkg/repository/stage"
)

type (
	Option func(*CsvService)

	// stagedDiff is the server-held state between preview and apply.
	// Only the diff matching the kind is populated.
	stagedDiff struct {
		kind         reconcile.Kind
		raceID       string
		races        reconcile.Diff[reconcile.RaceRow]
		stages       reconcile.Diff[reconcile.StageRow]
		participants reconcile.Diff[reconcile.ParticipantRow]
		events       reconcile.Diff[reconcile.EventRow]
	}

	// Preview is the result of the first phase: the classification plus
	// the handle to commit it with. Nothing has been written yet.
	Preview struct {
		Handle   uuid.UUID `json:"handle"`
		Added    int       `json:"added"`
		Modified int       `json:"modified"`
		Ignored  int       `json:"ignored"`
	}

	// CsvService reconciles csv files against the store with an
	// explicit preview-then-apply handshake. The preview never writes,
	// the apply commits added and modified rows in one transaction and
	// re-validates every row independent of the preview-time check.
	CsvService struct {
		pool   *pgxpool.Pool
		staged *reconcile.Store[stagedDiff]
		clock  func() time.Time
	}
)

// WithStagedKeep bounds how long an unconfirmed preview stays
// applicable.
func WithStagedKeep(keep time.Duration) Option {
	return func(s *CsvService) {
		s.staged = reconcile.NewStore(reconcile.WithKeep[stagedDiff](keep))
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *CsvService) {
		s.clock = clock
	}
}

func NewCsvService(pool *pgxpool.Pool, opts ...Option) *CsvService {
	ret := &CsvService{
		pool:   pool,
		staged: reconcile.NewStore[stagedDiff](),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Preview parses the csv data, classifies it against the current store
// content and stages the diff. The raceID scopes every kind except
// races.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) Preview(
	ctx context.Context,
	kind reconcile.Kind,
	raceID string,
	data io.Reader,
) (*Preview, error) {
	if kind != reconcile.KindRaces {
		if _, err := racerepos.LoadByID(ctx, s.pool, raceID); err != nil {
			return nil, fmt.Errorf("race %s: %w", raceID, err)
		}
	}
	staged := stagedDiff{kind: kind, raceID: raceID}
	var added, modified, ignored int
	var err error
	switch kind {
	case reconcile.KindRaces:
		staged.races, err = s.previewRaces(ctx, data)
		added, modified, ignored = staged.races.Counts()
	case reconcile.KindStages:
		staged.stages, err = s.previewStages(ctx, raceID, data)
		added, modified, ignored = staged.stages.Counts()
	case reconcile.KindParticipants:
		staged.participants, err = s.previewParticipants(ctx, raceID, data)
		added, modified, ignored = staged.participants.Counts()
	case reconcile.KindEvents:
		staged.events, err = s.previewEvents(ctx, raceID, data)
		added, modified, ignored = staged.events.Counts()
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return &Preview{
		Handle:   s.staged.Put(staged),
		Added:    added,
		Modified: modified,
		Ignored:  ignored,
	}, nil
}

// Apply commits a staged diff in one transaction: every added and
// modified row is re-validated and written, then the system managed
// rows are re-derived. Partial application is never observable.
func (s *CsvService) Apply(
	ctx context.Context,
	handle uuid.UUID,
) (int, error) {
	staged, err := s.staged.Take(handle)
	if err != nil {
		return 0, err
	}
	committed := 0
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		switch staged.kind {
		case reconcile.KindRaces:
			committed, err = s.applyRaces(ctx, tx, staged.races)
		case reconcile.KindStages:
			committed, err = s.applyStages(ctx, tx, staged.raceID, staged.stages)
		case reconcile.KindParticipants:
			committed, err = s.applyParticipants(
				ctx, tx, staged.raceID, staged.participants)
		case reconcile.KindEvents:
			committed, err = s.applyEvents(ctx, tx, staged.raceID, staged.events)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Info("csv apply committed",
		log.String("kind", string(staged.kind)),
		log.Int("rows", committed))
	return committed, nil
}

// Export writes the current store content in the import row shape, so
// an unchanged re-import classifies as all ignored.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) Export(
	ctx context.Context,
	kind reconcile.Kind,
	raceID string,
	w io.Writer,
) error {
	switch kind {
	case reconcile.KindRaces:
		rows, err := s.existingRaceRows(ctx)
		if err != nil {
			return err
		}
		return reconcile.WriteRacesCsv(w, rows)
	case reconcile.KindStages:
		rows, err := s.existingStageRows(ctx, raceID)
		if err != nil {
			return err
		}
		return reconcile.WriteStagesCsv(w, rows)
	case reconcile.KindParticipants:
		rows, err := s.existingParticipantRows(ctx, raceID)
		if err != nil {
			return err
		}
		return reconcile.WriteParticipantsCsv(w, rows)
	case reconcile.KindEvents:
		rows, err := s.existingEventRows(ctx, raceID)
		if err != nil {
			return err
		}
		return reconcile.WriteEventsCsv(w, rows)
	default:
		return fmt.Errorf("unknown entity kind %q", kind)
	}
}

func (s *CsvService) previewRaces(
	ctx context.Context,
	data io.Reader,
) (reconcile.Diff[reconcile.RaceRow], error) {
	var ret reconcile.Diff[reconcile.RaceRow]
	incoming, err := reconcile.ParseRacesCsv(data)
	if err != nil {
		return ret, err
	}
	for _, row := range incoming {
		if _, err := row.ToModel(); err != nil {
			return ret, err
		}
	}
	existing, err := s.existingRaceRows(ctx)
	if err != nil {
		return ret, err
	}
	return reconcile.Classify(incoming, existing,
		reconcile.RaceRow.Key, rowsEqual[reconcile.RaceRow]), nil
}

// previewStages shields the overall stage: incoming rows naming it are
// dropped, the existing overall row never takes part in the diff.
//
//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) previewStages(
	ctx context.Context,
	raceID string,
	data io.Reader,
) (reconcile.Diff[reconcile.StageRow], error) {
	var ret reconcile.Diff[reconcile.StageRow]
	incoming, err := reconcile.ParseStagesCsv(data)
	if err != nil {
		return ret, err
	}
	incoming = lo.Filter(incoming, func(row reconcile.StageRow, _ int) bool {
		if row.ID == model.OverallStageID {
			log.Warn("skipping system managed stage row",
				log.String("stage", row.ID))
			return false
		}
		return true
	})
	for _, row := range incoming {
		if _, err := row.ToModel(raceID); err != nil {
			return ret, err
		}
	}
	existing, err := s.existingStageRows(ctx, raceID)
	if err != nil {
		return ret, err
	}
	return reconcile.Classify(incoming, existing,
		reconcile.StageRow.Key, rowsEqual[reconcile.StageRow]), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) previewParticipants(
	ctx context.Context,
	raceID string,
	data io.Reader,
) (reconcile.Diff[reconcile.ParticipantRow], error) {
	var ret reconcile.Diff[reconcile.ParticipantRow]
	incoming, err := reconcile.ParseParticipantsCsv(data)
	if err != nil {
		return ret, err
	}
	for _, row := range incoming {
		if _, err := row.ToModel(raceID); err != nil {
			return ret, err
		}
	}
	existing, err := s.existingParticipantRows(ctx, raceID)
	if err != nil {
		return ret, err
	}
	return reconcile.Classify(incoming, existing,
		reconcile.ParticipantRow.Key, rowsEqual[reconcile.ParticipantRow]), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) previewEvents(
	ctx context.Context,
	raceID string,
	data io.Reader,
) (reconcile.Diff[reconcile.EventRow], error) {
	var ret reconcile.Diff[reconcile.EventRow]
	incoming, err := reconcile.ParseEventsCsv(data)
	if err != nil {
		return ret, err
	}
	now := s.clock()
	for _, row := range incoming {
		if _, err := row.ToModel(raceID, now); err != nil {
			return ret, err
		}
	}
	existing, err := s.existingEventRows(ctx, raceID)
	if err != nil {
		return ret, err
	}
	return reconcile.Classify(incoming, existing,
		reconcile.EventRow.Key, rowsEqual[reconcile.EventRow]), nil
}

func (s *CsvService) applyRaces(
	ctx context.Context,
	tx pgx.Tx,
	diff reconcile.Diff[reconcile.RaceRow],
) (int, error) {
	for _, row := range diff.Added {
		race, err := row.ToModel()
		if err != nil {
			return 0, err
		}
		if _, err := racerepos.Create(ctx, tx, race); err != nil {
			return 0, err
		}
		if _, err := stagerepos.EnsureOverall(ctx, tx, race.ID); err != nil {
			return 0, err
		}
	}
	for _, row := range diff.Modified {
		race, err := row.ToModel()
		if err != nil {
			return 0, err
		}
		if _, err := racerepos.Update(ctx, tx, race); err != nil {
			return 0, err
		}
		if _, err := stagerepos.EnsureOverall(ctx, tx, race.ID); err != nil {
			return 0, err
		}
	}
	return len(diff.Added) + len(diff.Modified), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) applyStages(
	ctx context.Context,
	tx pgx.Tx,
	raceID string,
	diff reconcile.Diff[reconcile.StageRow],
) (int, error) {
	for _, row := range diff.Added {
		stage, err := row.ToModel(raceID)
		if err != nil {
			return 0, err
		}
		if _, err := stagerepos.Create(ctx, tx, stage); err != nil {
			return 0, err
		}
	}
	for _, row := range diff.Modified {
		stage, err := row.ToModel(raceID)
		if err != nil {
			return 0, err
		}
		if _, err := stagerepos.Update(ctx, tx, stage); err != nil {
			return 0, err
		}
	}
	if _, err := stagerepos.EnsureOverall(ctx, tx, raceID); err != nil {
		return 0, err
	}
	return len(diff.Added) + len(diff.Modified), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) applyParticipants(
	ctx context.Context,
	tx pgx.Tx,
	raceID string,
	diff reconcile.Diff[reconcile.ParticipantRow],
) (int, error) {
	for _, row := range diff.Added {
		p, err := row.ToModel(raceID)
		if err != nil {
			return 0, err
		}
		if _, err := participantrepos.Create(ctx, tx, p); err != nil {
			return 0, err
		}
	}
	for _, row := range diff.Modified {
		p, err := row.ToModel(raceID)
		if err != nil {
			return 0, err
		}
		if _, err := participantrepos.Update(ctx, tx, p); err != nil {
			return 0, err
		}
	}
	return len(diff.Added) + len(diff.Modified), nil
}

//nolint:whitespace // can't make both editor and linter happy
func (s *CsvService) applyEvents(
	ctx context.Context,
	tx pgx.Tx,
	raceID string,
	diff reconcile.Diff[reconcile.EventRow],
) (int, error) {
	now := s.clock()
	for _, row := range diff.Added {
		ev, err := row.ToModel(raceID, now)
		if err != nil {
			return 0, err
		}
		if _, err := eventrepos.Create(ctx, tx, ev); err != nil {
			return 0, err
		}
	}
	for _, row := range diff.Modified {
		ev, err := row.ToModel(raceID, now)
		if err != nil {
			return 0, err
		}
		if _, err := eventrepos.Update(ctx, tx, ev); err != nil {
			return 0, err
		}
	}
	return len(diff.Added) + len(diff.Modified), nil
}

func (s *CsvService) existingRaceRows(
	ctx context.Context,
) ([]reconcile.RaceRow, error) {
	races, err := racerepos.LoadAll(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	return lo.Map(races, func(m *model.Race, _ int) reconcile.RaceRow {
		return reconcile.RaceRowOf(m)
	}), nil
}

func (s *CsvService) existingStageRows(
	ctx context.Context,
	raceID string,
) ([]reconcile.StageRow, error) {
	stages, err := stagerepos.LoadByRace(ctx, s.pool, raceID)
	if err != nil {
		return nil, err
	}
	regular := lo.Filter(stages, func(m *model.Stage, _ int) bool {
		return !m.IsOverall()
	})
	return lo.Map(regular, func(m *model.Stage, _ int) reconcile.StageRow {
		return reconcile.StageRowOf(m)
	}), nil
}

func (s *CsvService) existingParticipantRows(
	ctx context.Context,
	raceID string,
) ([]reconcile.ParticipantRow, error) {
	participants, err := participantrepos.LoadByRace(ctx, s.pool, raceID)
	if err != nil {
		return nil, err
	}
	return lo.Map(participants,
		func(m *model.Participant, _ int) reconcile.ParticipantRow {
			return reconcile.ParticipantRowOf(m)
		}), nil
}

func (s *CsvService) existingEventRows(
	ctx context.Context,
	raceID string,
) ([]reconcile.EventRow, error) {
	events, err := eventrepos.LoadByRace(ctx, s.pool, raceID)
	if err != nil {
		return nil, err
	}
	return lo.Map(events, func(m *model.TimingEvent, _ int) reconcile.EventRow {
		return reconcile.EventRowOf(m)
	}), nil
}

// rows are flat string structs, equality is field equality
func rowsEqual[R comparable](a, b R) bool {
	return a == b
}
