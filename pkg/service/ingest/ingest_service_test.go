package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventrepos "github.com/JeroenBertels/glh-timer/pkg/repository/event"
	"github.com/JeroenBertels/glh-timer/pkg/timing/target"
	"github.com/JeroenBertels/glh-timer/testsupport/basedata"
	"github.com/JeroenBertels/glh-timer/testsupport/testdb"
)

func fixedClock() func() time.Time {
	return func() time.Time { return basedata.TestTime() }
}

func mustTargets(t *testing.T, text string) []target.Target {
	t.Helper()
	targets, err := target.ParseList(text)
	require.NoError(t, err)
	return targets
}

func TestSubmitFanOut(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	ids, err := svc.Submit(ctx, sample.ID, "prologue",
		mustTargets(t, "12,Open,45"), Payload{Duration: "02:05"}, "judge1")
	require.NoError(t, err)
	require.Len(t, ids, 3)

	events, err := eventrepos.LoadByRaceStage(ctx, pool, sample.ID, "prologue")
	require.NoError(t, err)
	require.Len(t, events, 3)
	for _, ev := range events {
		// every fan-out copy shares payload and capture times
		assert.Equal(t, 125, *ev.DurationSeconds)
		assert.WithinDuration(t, basedata.TestTime(), ev.ClientTime, time.Second)
		assert.WithinDuration(t, basedata.TestTime(), ev.ServerTime, time.Second)
		assert.Equal(t, "judge1", ev.CreatedBy)
	}

	bibs := make([]int, 0)
	groups := make([]string, 0)
	for _, ev := range events {
		if ev.Bib != nil {
			bibs = append(bibs, *ev.Bib)
		}
		if ev.Group != nil {
			groups = append(groups, *ev.Group)
		}
	}
	assert.ElementsMatch(t, []int{12, 45}, bibs)
	assert.Equal(t, []string{"Open"}, groups)
}

func TestSubmitValidation(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	_, err := svc.Submit(ctx, sample.ID, "prologue",
		mustTargets(t, "12"), Payload{}, "")
	assert.ErrorIs(t, err, ErrPayloadKind)

	_, err = svc.Submit(ctx, sample.ID, "prologue",
		mustTargets(t, "12"), Payload{Duration: "125", End: "NOW"}, "")
	assert.ErrorIs(t, err, ErrPayloadKind)

	_, err = svc.Submit(ctx, sample.ID, "nope",
		mustTargets(t, "12"), Payload{Duration: "125"}, "")
	assert.ErrorContains(t, err, "stage nope")

	_, err = svc.Submit(ctx, "norace", "prologue",
		mustTargets(t, "12"), Payload{Duration: "125"}, "")
	assert.ErrorContains(t, err, "race norace")
}

func TestSubmitStartOnLocalClock(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	ids, err := svc.Submit(ctx, sample.ID, "climb",
		mustTargets(t, "12"), Payload{Start: "10:00:00"}, "")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	ev, err := eventrepos.LoadByID(ctx, pool, ids[0])
	require.NoError(t, err)
	require.NotNil(t, ev.StartTime)
	// 10:00 Brussels on race day is 08:00 UTC during DST
	assert.Equal(t, "2024-04-28T08:00:00Z", ev.StartTime.UTC().Format(time.RFC3339))
}

func TestPendingEndClaim(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	pendingID, err := svc.SubmitPendingEnd(ctx, sample.ID, "climb", "NOW", "finishline")
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx, sample.ID, "climb", "finishline")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingID, pending[0].ID)

	claimed, duplicates, err := svc.Claim(ctx, pendingID, "finishline",
		mustTargets(t, "12,45"))
	require.NoError(t, err)
	assert.Equal(t, pendingID, claimed)
	require.Len(t, duplicates, 1)

	// the duplicate shares payload and capture times with the original
	original, err := eventrepos.LoadByID(ctx, pool, claimed)
	require.NoError(t, err)
	dup, err := eventrepos.LoadByID(ctx, pool, duplicates[0])
	require.NoError(t, err)
	assert.Equal(t, 12, *original.Bib)
	assert.Equal(t, 45, *dup.Bib)
	assert.True(t, original.EndTime.Equal(*dup.EndTime))
	assert.True(t, original.ClientTime.Equal(dup.ClientTime))

	// nothing pending anymore
	pending, err = svc.ListPending(ctx, sample.ID, "climb", "finishline")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPendingEndNeedsIdentity(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	_, err := svc.SubmitPendingEnd(ctx, sample.ID, "climb", "NOW", "")
	assert.ErrorContains(t, err, "identity")
}

func TestClaimGuards(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	pendingID, err := svc.SubmitPendingEnd(ctx, sample.ID, "climb", "NOW", "finishline")
	require.NoError(t, err)

	// only the creating identity may claim
	_, _, err = svc.Claim(ctx, pendingID, "somebodyelse", mustTargets(t, "12"))
	assert.ErrorIs(t, err, ErrNotCreator)

	// a claimed event cannot be claimed again
	_, _, err = svc.Claim(ctx, pendingID, "finishline", mustTargets(t, "12"))
	require.NoError(t, err)
	_, _, err = svc.Claim(ctx, pendingID, "finishline", mustTargets(t, "45"))
	assert.ErrorIs(t, err, ErrAlreadyTargeted)

	// a targeted submission is not claimable either
	ids, err := svc.Submit(ctx, sample.ID, "prologue",
		mustTargets(t, "12"), Payload{Duration: "125"}, "finishline")
	require.NoError(t, err)
	_, _, err = svc.Claim(ctx, ids[0], "finishline", mustTargets(t, "45"))
	assert.ErrorIs(t, err, ErrAlreadyTargeted)
}

func TestEditEvent(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	ids, err := svc.Submit(ctx, sample.ID, "prologue",
		mustTargets(t, "12"), Payload{Duration: "125"}, "")
	require.NoError(t, err)

	ev, err := eventrepos.LoadByID(ctx, pool, ids[0])
	require.NoError(t, err)
	newSecs := 130
	ev.DurationSeconds = &newSecs
	got, err := svc.EditEvent(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, 130, *got.DurationSeconds)

	// the edit path enforces the same cardinality rules as ingest
	bad := *got
	end := basedata.TestTime()
	bad.EndTime = &end
	_, err = svc.EditEvent(ctx, &bad)
	assert.ErrorIs(t, err, ErrPayloadKind)
}

func TestDeleteEvent(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)
	svc := NewIngestService(pool, WithClock(fixedClock()))

	ids, err := svc.Submit(ctx, sample.ID, "prologue",
		mustTargets(t, "12"), Payload{Duration: "125"}, "")
	require.NoError(t, err)

	num, err := svc.DeleteEvent(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, num)

	num, err = svc.DeleteEvent(ctx, uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	assert.Equal(t, 0, num)
}
