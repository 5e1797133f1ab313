package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
	"github.com/JeroenBertels/glh-timer/testsupport/basedata"
	"github.com/JeroenBertels/glh-timer/testsupport/testdb"
)

func TestCreate(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	sample := basedata.CreateSampleRace(pool)

	created, err := Create(ctx, pool, &model.Account{
		Username: "organizer1", PasswordHash: "hash",
		Role: model.RoleOrganizer, RaceID: sample.ID, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, sample.ID, created.RaceID)
	assert.True(t, created.Active)

	_, err = Create(ctx, pool, &model.Account{
		Username: "organizer1", PasswordHash: "hash", Role: model.RoleOrganizer,
	})
	assert.Error(t, err, "duplicate username must be rejected")
}

// an empty race id must be stored as null, not as a dangling reference
func TestCreateUnscoped(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	created, err := Create(ctx, pool, &model.Account{
		Username: "admin", PasswordHash: "hash",
		Role: model.RoleAdmin, Active: true,
	})
	require.NoError(t, err)
	assert.Empty(t, created.RaceID)
}

func TestLoadByUsername(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	_, err := Create(ctx, pool, &model.Account{
		Username: "admin", PasswordHash: "hash",
		Role: model.RoleAdmin, Active: true,
	})
	require.NoError(t, err)

	got, err := LoadByUsername(ctx, pool, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, err = LoadByUsername(ctx, pool, "nobody")
	assert.ErrorIs(t, err, repository.ErrNoData)
}

func TestSetPassword(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	_, err := Create(ctx, pool, &model.Account{
		Username: "admin", PasswordHash: "old",
		Role: model.RoleAdmin, Active: true,
	})
	require.NoError(t, err)

	num, err := SetPassword(ctx, pool, "admin", "new")
	require.NoError(t, err)
	assert.Equal(t, 1, num)

	got, err := LoadByUsername(ctx, pool, "admin")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	num, err = SetPassword(ctx, pool, "nobody", "new")
	require.NoError(t, err)
	assert.Equal(t, 0, num)
}

func TestDeleteByUsername(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()

	_, err := Create(ctx, pool, &model.Account{
		Username: "admin", PasswordHash: "hash",
		Role: model.RoleAdmin, Active: true,
	})
	require.NoError(t, err)

	num, err := DeleteByUsername(ctx, pool, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, num)

	num, err = DeleteByUsername(ctx, pool, "admin")
	require.NoError(t, err)
	assert.Equal(t, 0, num)
}
