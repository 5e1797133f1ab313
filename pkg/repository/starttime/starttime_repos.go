package starttime

import (
	"context"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/repository"
)

var selector = `select t.race_id, t.stage_id, t.group_name, t.start_hms
	from stage_start_time t`

// Upsert stores the authoritative start for a stage group, replacing an
// existing entry for the same group.
func Upsert(
	ctx context.Context,
	conn repository.Querier,
	entry *model.StageStartTime,
) error {
	_, err := conn.Exec(ctx, `
	insert into stage_start_time (race_id, stage_id, group_name, start_hms)
	values ($1,$2,$3,$4)
	on conflict (race_id, stage_id, group_name)
	do update set start_hms=excluded.start_hms
		`,
		entry.RaceID, entry.StageID, entry.GroupName, entry.StartHMS,
	)
	return err
}

func LoadByStage(
	ctx context.Context,
	conn repository.Querier,
	raceID, stageID string,
) ([]*model.StageStartTime, error) {
	rows, err := conn.Query(ctx,
		selector+" where t.race_id=$1 and t.stage_id=$2 order by t.group_name",
		raceID, stageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.StageStartTime, 0)
	for rows.Next() {
		var item model.StageStartTime
		if err := rows.Scan(
			&item.RaceID, &item.StageID, &item.GroupName, &item.StartHMS,
		); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, nil
}

func DeleteByGroup(
	ctx context.Context,
	conn repository.Querier,
	raceID, stageID, groupName string,
) (int, error) {
	cmdTag, err := conn.Exec(ctx,
		"delete from stage_start_time "+
			"where race_id=$1 and stage_id=$2 and group_name=$3",
		raceID, stageID, groupName)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
