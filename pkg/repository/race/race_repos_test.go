package race_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
	"github.com/JeroenBertels/glh-timer/pkg/repository/race"
	stagerepos "github.com/JeroenBertels/glh-timer/pkg/repository/stage"
	"github.com/JeroenBertels/glh-timer/testsupport/basedata"
	"github.com/JeroenBertels/glh-timer/testsupport/testdb"
)

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.SampleRace()

	created, err := race.Create(ctx, pool, sample)
	require.NoError(t, err)
	assert.Equal(t, sample.ID, created.ID)
	assert.Equal(t, sample.Timezone, created.Timezone)

	_, err = race.Create(ctx, pool, sample)
	assert.Error(t, err, "duplicate id must be rejected")
}

func TestLoadByID(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	got, err := race.LoadByID(ctx, pool, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, sample.Name, got.Name)

	_, err = race.LoadByID(ctx, pool, "unknown")
	assert.ErrorIs(t, err, repository.ErrNoData)
}

func TestLoadAll(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	basedata.CreateSampleRace(pool)
	other := basedata.SampleRace()
	other.ID = "another"
	_, err := race.Create(ctx, pool, other)
	require.NoError(t, err)

	races, err := race.LoadAll(ctx, pool)
	require.NoError(t, err)
	require.Len(t, races, 2)
	// ordered by id
	assert.Equal(t, "another", races[0].ID)
	assert.Equal(t, "testrace", races[1].ID)
}

func TestUpdate(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	sample.Name = "Renamed"
	got, err := race.Update(ctx, pool, sample)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	_, err = race.Update(ctx, pool, &model.Race{ID: "unknown", Timezone: "UTC"})
	assert.ErrorIs(t, err, repository.ErrNoData)
}

func TestDeleteByIDCascades(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	num, err := race.DeleteByID(ctx, pool, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, num)

	stages, err := stagerepos.LoadByRace(ctx, pool, sample.ID)
	require.NoError(t, err)
	assert.Empty(t, stages, "stages must go with their race")

	num, err = race.DeleteByID(ctx, pool, sample.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, num)
}
