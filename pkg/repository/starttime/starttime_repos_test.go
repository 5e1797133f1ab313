package starttime

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/testsupport/basedata"
	"github.com/JeroenBertels/glh-timer/testsupport/testdb"
)

func TestUpsert(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	entry := &model.StageStartTime{
		RaceID: sample.ID, StageID: "climb",
		GroupName: "Elite", StartHMS: "10:00:00",
	}
	assert.NilError(t, Upsert(ctx, pool, entry))

	// the same group replaces, it does not accumulate
	entry.StartHMS = "10:30:00"
	assert.NilError(t, Upsert(ctx, pool, entry))

	entries, err := LoadByStage(ctx, pool, sample.ID, "climb")
	assert.NilError(t, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, "10:30:00", entries[0].StartHMS)
}

func TestLoadByStage(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	for _, entry := range []*model.StageStartTime{
		{RaceID: sample.ID, StageID: "climb", GroupName: "Open", StartHMS: "10:30:00"},
		{RaceID: sample.ID, StageID: "climb", GroupName: "Elite", StartHMS: "10:00:00"},
	} {
		assert.NilError(t, Upsert(ctx, pool, entry))
	}

	entries, err := LoadByStage(ctx, pool, sample.ID, "climb")
	assert.NilError(t, err)
	assert.Equal(t, 2, len(entries))
	// ordered by group name
	assert.Equal(t, "Elite", entries[0].GroupName)
	assert.Equal(t, "Open", entries[1].GroupName)

	none, err := LoadByStage(ctx, pool, sample.ID, "prologue")
	assert.NilError(t, err)
	assert.Equal(t, 0, len(none))
}

func TestDeleteByGroup(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	entry := &model.StageStartTime{
		RaceID: sample.ID, StageID: "climb",
		GroupName: "Elite", StartHMS: "10:00:00",
	}
	assert.NilError(t, Upsert(ctx, pool, entry))

	num, err := DeleteByGroup(ctx, pool, sample.ID, "climb", "Elite")
	assert.NilError(t, err)
	assert.Equal(t, 1, num)

	num, err = DeleteByGroup(ctx, pool, sample.ID, "climb", "Elite")
	assert.NilError(t, err)
	assert.Equal(t, 0, num)
}
