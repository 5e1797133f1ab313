package race

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
)

var selector = `select r.id, r.name, r.race_date, r.timezone from race r`

func Create(
	ctx context.Context,
	conn repository.Querier,
	race *model.Race,
) (*model.Race, error) {
	_, err := conn.Exec(ctx, `
	insert into race (id, name, race_date, timezone)
	values ($1,$2,$3,$4)
		`,
		race.ID, race.Name, race.Date, race.Timezone,
	)
	if err != nil {
		return nil, err
	}
	return LoadByID(ctx, conn, race.ID)
}

func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id string,
) (*model.Race, error) {
	return loadBySelector(ctx, conn, fmt.Sprintf("%s where r.id=$1", selector), id)
}

func LoadAll(
	ctx context.Context,
	conn repository.Querier,
) ([]*model.Race, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf("%s order by r.id", selector))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Race, 0)
	for rows.Next() {
		item, err := readData(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

// Update modifies the mutable attributes. The id is immutable.
func Update(
	ctx context.Context,
	conn repository.Querier,
	race *model.Race,
) (*model.Race, error) {
	cmdTag, err := conn.Exec(ctx, `
	update race set name=$2, race_date=$3, timezone=$4 where id=$1
		`,
		race.ID, race.Name, race.Date, race.Timezone,
	)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, repository.ErrNoData
	}
	return LoadByID(ctx, conn, race.ID)
}

// DeleteByID removes the race and via cascade all dependent data.
func DeleteByID(
	ctx context.Context,
	conn repository.Querier,
	id string,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from race where id=$1", id)
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
) (*model.Race, error) {
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

func readData(row pgx.Row) (*model.Race, error) {
	var item model.Race
	if err := row.Scan(
		&item.ID, &item.Name, &item.Date, &item.Timezone,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
