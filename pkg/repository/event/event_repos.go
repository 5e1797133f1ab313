package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
)

var selector = `select e.id, e.race_id, e.stage_id, e.bib, e.group_name,
	e.duration_seconds, e.start_time, e.end_time,
	e.client_time, e.server_time, e.created_by
	from timing_event e`

func Create(
	ctx context.Context,
	conn repository.Querier,
	event *model.TimingEvent,
) (*model.TimingEvent, error) {
	row := conn.QueryRow(ctx, `
	insert into timing_event (
		race_id, stage_id, bib, group_name,
		duration_seconds, start_time, end_time,
		client_time, server_time, created_by
	) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	returning id
		`,
		event.RaceID, event.StageID, event.Bib, event.Group,
		event.DurationSeconds, event.StartTime, event.EndTime,
		event.ClientTime, event.ServerTime, event.CreatedBy,
	)
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return nil, err
	}
	return LoadByID(ctx, conn, id)
}

//nolint:whitespace // can't make both editor and linter happy
func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
) (*model.TimingEvent, error) {
	return loadBySelector(ctx, conn,
		fmt.Sprintf("%s where e.id=$1", selector), id)
}

// LoadByRaceStage returns all events of a stage in capture order.
func LoadByRaceStage(
	ctx context.Context,
	conn repository.Querier,
	raceID, stageID string,
) ([]*model.TimingEvent, error) {
	return loadMany(ctx, conn,
		fmt.Sprintf("%s where e.race_id=$1 and e.stage_id=$2 "+
			"order by e.server_time, e.id", selector),
		raceID, stageID)
}

func LoadByRace(
	ctx context.Context,
	conn repository.Querier,
	raceID string,
) ([]*model.TimingEvent, error) {
	return loadMany(ctx, conn,
		fmt.Sprintf("%s where e.race_id=$1 "+
			"order by e.stage_id, e.server_time, e.id", selector),
		raceID)
}

// LoadPendingByCreator returns the claimable events of one identity:
// still targetless end captures on the given stage.
//
//nolint:whitespace // can't make both editor and linter happy
func LoadPendingByCreator(
	ctx context.Context,
	conn repository.Querier,
	raceID, stageID, createdBy string,
) ([]*model.TimingEvent, error) {
	return loadMany(ctx, conn,
		fmt.Sprintf("%s where e.race_id=$1 and e.stage_id=$2 "+
			"and e.bib is null and e.group_name is null "+
			"and e.end_time is not null and e.created_by=$3 "+
			"order by e.server_time, e.id", selector),
		raceID, stageID, createdBy)
}

// Update rewrites target and payload of a single event. Used by the
// explicit edit operation only.
func Update(
	ctx context.Context,
	conn repository.Querier,
	event *model.TimingEvent,
) (*model.TimingEvent, error) {
	cmdTag, err := conn.Exec(ctx, `
	update timing_event
	set bib=$2, group_name=$3, duration_seconds=$4,
		start_time=$5, end_time=$6, client_time=$7
	where id=$1
		`,
		event.ID, event.Bib, event.Group, event.DurationSeconds,
		event.StartTime, event.EndTime, event.ClientTime,
	)
	if err != nil {
		return nil, err
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, repository.ErrNoData
	}
	return LoadByID(ctx, conn, event.ID)
}

// ClaimTarget assigns a target to a pending event. The where clause is
// the compare-and-set: it only matches while the event is still
// targetless, carries an end time and belongs to the claiming identity.
// Returns the number of updated rows (0 = lost or ineligible).
//
//nolint:whitespace // can't make both editor and linter happy
func ClaimTarget(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
	createdBy string,
	bib *int,
	group *string,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, `
	update timing_event set bib=$2, group_name=$3
	where id=$1
		and bib is null and group_name is null
		and end_time is not null
		and created_by=$4
		`,
		id, bib, group, createdBy,
	)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func DeleteByID(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from timing_event where id=$1", id)
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
) ([]*model.TimingEvent, error) {
	rows, err := conn.Query(ctx, sel, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.TimingEvent, 0)
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
) (*model.TimingEvent, error) {
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

func readData(row pgx.Row) (*model.TimingEvent, error) {
	var item model.TimingEvent
	if err := row.Scan(
		&item.ID, &item.RaceID, &item.StageID, &item.Bib, &item.Group,
		&item.DurationSeconds, &item.StartTime, &item.EndTime,
		&item.ClientTime, &item.ServerTime, &item.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
