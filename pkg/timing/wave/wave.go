package wave

import (
	"sort"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/timing"
	"github.com/JeroenBertels/glh-timer/pkg/timing/resolve"
)

// Entry is one scheduled wave start: the participant and its start
// offset relative to the first starter.
type Entry struct {
	Bib           int    `json:"bib"`
	Name          string `json:"name"`
	Group         string `json:"group"`
	OffsetSeconds int    `json:"offsetSeconds"`
	Formatted     string `json:"formatted"`
}

// Schedule computes staggered start offsets for the given participants
// from their cumulative elapsed time over the preceding stages. A
// participant missing a duration on any preceding stage is left out.
// The result is ordered ascending by offset, fastest first.
//
//nolint:whitespace // can't make both editor and linter happy
func Schedule(
	participants []*model.Participant,
	preceding []resolve.StageInput,
) []*Entry {
	resolvers := make([]*resolve.Resolver, len(preceding))
	for i, in := range preceding {
		resolvers[i] = in.Resolver()
	}
	ret := make([]*Entry, 0)
	for _, p := range participants {
		total := 0
		complete := true
		for _, r := range resolvers {
			secs, ok := r.Best(p.Bib, p.Group)
			if !ok {
				complete = false
				break
			}
			total += secs
		}
		if !complete {
			continue
		}
		ret = append(ret, &Entry{
			Bib:           p.Bib,
			Name:          p.Name(),
			Group:         p.Group,
			OffsetSeconds: total,
			Formatted:     timing.FormatSeconds(total),
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].OffsetSeconds < ret[j].OffsetSeconds
	})
	return ret
}
