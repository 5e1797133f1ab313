//nolint:dupl // repository boilerplate looks alike on purpose
package participant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
)

var selector = `select p.race_id, p.bib, p.first_name, p.last_name,
	p.group_name, p.club, p.sex
	from participant p`

func Create(
	ctx context.Context,
	conn repository.Querier,
	participant *model.Participant,
) (*model.Participant, error) {
	_, err := conn.Exec(ctx, `
	insert into participant (
		race_id, bib, first_name, last_name, group_name, club, sex
	) values ($1,$2,$3,$4,$5,$6,$7)
		`,
		participant.RaceID, participant.Bib,
		participant.FirstName, participant.LastName,
		participant.Group, participant.Club, participant.Sex,
	)
	if err != nil {
		return nil, err
	}
	return LoadByBib(ctx, conn, participant.RaceID, participant.Bib)
}

//nolint:whitespace // can't make both editor and linter happy
func LoadByBib(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
	bib int,
) (*model.Participant, error) {
	return loadBySelector(ctx, conn,
		fmt.Sprintf("%s where p.race_id=$1 and p.bib=$2", selector),
		raceID, bib)
}

func LoadByRace(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
) ([]*model.Participant, error) {
	return loadMany(ctx, conn,
		fmt.Sprintf("%s where p.race_id=$1 order by p.bib", selector),
		raceID)
}

func LoadByGroup(
	ctx context.Context,
	conn repository.Querier,
	raceID, group string,
) ([]*model.Participant, error) {
	return loadMany(ctx, conn,
		fmt.Sprintf("%s where p.race_id=$1 and p.group_name=$2 order by p.bib",
			selector),
		raceID, group)
}

func Update(
	ctx context.Context,
	conn repository.Querier,
	participant *model.Participant,
) (*model.Participant, error) {
	cmdTag, err := conn.Exec(ctx, `
	update participant
	set first_name=$3, last_name=$4, group_name=$5, club=$6, sex=$7
	where race_id=$1 and bib=$2
		`,
		participant.RaceID, participant.Bib,
		participant.FirstName, participant.LastName,
		participant.Group, participant.Club, participant.Sex,
	)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, repository.ErrNoData
	}
	return LoadByBib(ctx, conn, participant.RaceID, participant.Bib)
}

func DeleteByBib(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
	bib int,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"delete from participant where race_id=$1 and bib=$2",
		raceID, bib)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func loadMany(
	ctx context.Context,
	conn repository.Querier,
	sel string,
	args ...any,
) ([]*model.Participant, error) {
	rows, err := conn.Query(ctx, sel, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.Participant, 0)
	for rows.Next() {
		item, err := readData(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func loadBySelector(
	ctx context.Context,
	conn repository.Querier,
	sel string,
	args ...any,
) (*model.Participant, error) {
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

func readData(row pgx.Row) (*model.Participant, error) {
	var item model.Participant
	if err := row.Scan(
		&item.RaceID, &item.Bib, &item.FirstName, &item.LastName,
		&item.Group, &item.Club, &item.Sex,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
