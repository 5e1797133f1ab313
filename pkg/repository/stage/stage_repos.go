package stage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
)

var selector = `select s.race_id, s.stage_id, s.name, s.stage_order, s.mode
	from stage s`

func Create(
	ctx context.Context,
	conn repository.Querier,
	stage *model.Stage,
) (*model.Stage, error) {
	_, err := conn.Exec(ctx, `
	insert into stage (race_id, stage_id, name, stage_order, mode)
	values ($1,$2,$3,$4,$5)
		`,
		stage.RaceID, stage.ID, stage.Name, stage.Order, stage.Mode,
	)
	if err != nil {
		return nil, err
	}
	return LoadByID(ctx, conn, stage.RaceID, stage.ID)
}

// EnsureOverall creates the system managed overall stage if it is
// missing. Returns true when a row was created.
func EnsureOverall(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
) (bool, error) {
	cmdTag, err := conn.Exec(ctx, `
	insert into stage (race_id, stage_id, name, stage_order, mode)
	values ($1,$2,$2,$3,$4)
	on conflict (race_id, stage_id) do nothing
		`,
		raceID, model.OverallStageID, model.OverallOrder, model.StageModeOverall,
	)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

//nolint:whitespace // can't make both editor and linter happy
func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	raceID, stageID string,
) (*model.Stage, error) {
	return loadBySelector(ctx, conn,
		fmt.Sprintf("%s where s.race_id=$1 and s.stage_id=$2", selector),
		raceID, stageID)
}

// LoadByRace returns all stages of a race ordered by stage order. The
// overall stage sorts first by its sentinel order.
func LoadByRace(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
) ([]*model.Stage, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where s.race_id=$1 order by s.stage_order, s.stage_id",
			selector),
		raceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Stage, 0)
	for rows.Next() {
		item, err := readData(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

func Update(
	ctx context.Context,
	conn repository.Querier,
	stage *model.Stage,
) (*model.Stage, error) {
	cmdTag, err := conn.Exec(ctx, `
	update stage set name=$3, stage_order=$4, mode=$5
	where race_id=$1 and stage_id=$2
		`,
		stage.RaceID, stage.ID, stage.Name, stage.Order, stage.Mode,
	)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, repository.ErrNoData
	}
	return LoadByID(ctx, conn, stage.RaceID, stage.ID)
}

func DeleteByID(
	ctx context.Context,
	conn repository.Querier,
	raceID, stageID string,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"delete from stage where race_id=$1 and stage_id=$2",
		raceID, stageID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

//nolint:whitespace // can't make both editor and linter happy
func loadBySelector(
	ctx context.Context,
	conn repository.Querier,
	sel string,
	args ...any,
) (*model.Stage, error) {
	row := conn.QueryRow(ctx, sel, args...)
	ret, err := readData(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoData
		}
		return nil, err
	}
	return ret, nil
}

func readData(row pgx.Row) (*model.Stage, error) {
	var item model.Stage
	if err := row.Scan(
		&item.RaceID, &item.ID, &item.Name, &item.Order, &item.Mode,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
