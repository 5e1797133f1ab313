package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
)

var selector = `select a.username, a.password_hash, a.role, a.race_id, a.active
	from account a`

func Create(
	ctx context.Context,
	conn repository.Querier,
	account *model.Account,
) (*model.Account, error) {
	_, err := conn.Exec(ctx, `
	insert into account (username, password_hash, role, race_id, active)
	values ($1,$2,$3,nullif($4,''),$5)
		`,
		account.Username, account.PasswordHash, account.Role,
		account.RaceID, account.Active,
	)
	if err != nil {
		return nil, err
	}
	return LoadByUsername(ctx, conn, account.Username)
}

//nolint:whitespace // can't make both editor and linter happy
func LoadByUsername(
	ctx context.Context,
	conn repository.Querier,
	username string,
) (*model.Account, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where a.username=$1", selector), username)
	ret, err := readData(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNoData
		}
		return nil, err
	}
	return ret, nil
}

func SetPassword(
	ctx context.Context,
	conn repository.Querier,
	username, passwordHash string,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"update account set password_hash=$2 where username=$1",
		username, passwordHash)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func DeleteByUsername(
	ctx context.Context,
	conn repository.Querier,
	username string,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"delete from account where username=$1", username)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func readData(row pgx.Row) (*model.Account, error) {
	var item model.Account
	var raceID *string
	if err := row.Scan(
		&item.Username, &item.PasswordHash, &item.Role, &raceID, &item.Active,
	); err != nil {
		return nil, err
	}
	if raceID != nil {
		item.RaceID = *raceID
	}
	return &item, nil
}
