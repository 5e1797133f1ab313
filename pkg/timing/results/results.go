package results

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/timing"
	"github.com/JeroenBertels/glh-timer/pkg/timing/resolve"
)

// DNF is the display text for rows without a resolvable duration.
const DNF = "DNF"

type (
	// Filter restricts the ranked participants. Empty attributes match
	// everything.
	Filter struct {
		Group string
		Sex   string
	}

	// Row is one line of a ranked result table. Rank is nil for
	// participants without a resolvable duration, Splits carries the
	// per stage durations when the row belongs to the overall stage.
	Row struct {
		Rank            *int           `json:"rank,omitempty"`
		Bib             int            `json:"bib"`
		Name            string         `json:"name"`
		Group           string         `json:"group"`
		Sex             string         `json:"sex"`
		DurationSeconds *int           `json:"durationSeconds,omitempty"`
		Formatted       string         `json:"formatted"`
		Splits          map[string]int `json:"splits,omitempty"`
		Note            string         `json:"note,omitempty"`
	}
)

// BuildStageResults ranks one regular stage.
//
//nolint:whitespace // can't make both editor and linter happy
func BuildStageResults(
	participants []*model.Participant,
	input resolve.StageInput,
	filter Filter,
) []*Row {
	resolver := input.Resolver()
	rows := make([]*Row, 0)
	for _, p := range selectParticipants(participants, filter) {
		row := newRow(p)
		if secs, ok := resolver.Best(p.Bib, p.Group); ok {
			row.setDuration(secs)
		}
		rows = append(rows, row)
	}
	rank(rows)
	return rows
}

// BuildOverallResults ranks the synthetic overall stage. The inputs are
// the regular stages in stage order. A participant gets a total only
// when every stage resolves; a single unresolved stage means DNF with a
// note naming what is missing.
//
//nolint:whitespace // can't make both editor and linter happy
func BuildOverallResults(
	participants []*model.Participant,
	inputs []resolve.StageInput,
	filter Filter,
) []*Row {
	resolvers := lo.Map(inputs,
		func(in resolve.StageInput, _ int) *resolve.Resolver {
			return in.Resolver()
		})
	rows := make([]*Row, 0)
	for _, p := range selectParticipants(participants, filter) {
		row := newRow(p)
		row.Splits = make(map[string]int)
		total := 0
		missing := make([]string, 0)
		for i, in := range inputs {
			secs, ok := resolvers[i].Best(p.Bib, p.Group)
			if !ok {
				missing = append(missing, in.Stage.ID)
				continue
			}
			row.Splits[in.Stage.ID] = secs
			total += secs
		}
		// vacuously complete with no stages: everybody totals zero
		if len(missing) == 0 {
			row.setDuration(total)
		} else {
			row.Note = fmt.Sprintf("Missing: %s", strings.Join(missing, ", "))
		}
		rows = append(rows, row)
	}
	rank(rows)
	return rows
}

//nolint:whitespace // can't make both editor and linter happy
func selectParticipants(
	participants []*model.Participant,
	filter Filter,
) []*model.Participant {
	return lo.Filter(participants, func(p *model.Participant, _ int) bool {
		if filter.Group != "" && p.Group != filter.Group {
			return false
		}
		if filter.Sex != "" && p.Sex != filter.Sex {
			return false
		}
		return true
	})
}

func newRow(p *model.Participant) *Row {
	return &Row{
		Bib:       p.Bib,
		Name:      p.Name(),
		Group:     p.Group,
		Sex:       p.Sex,
		Formatted: DNF,
	}
}

func (r *Row) setDuration(secs int) {
	r.DurationSeconds = &secs
	r.Formatted = timing.FormatSeconds(secs)
}

// rank sorts finishers ascending by duration and appends the DNF rows
// in their incoming order, then assigns 1..k to the finishers only.
func rank(rows []*Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].DurationSeconds, rows[j].DurationSeconds
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})
	pos := 1
	for _, row := range rows {
		if row.DurationSeconds == nil {
			continue
		}
		p := pos
		row.Rank = &p
		pos++
	}
}
