package resolve

import (
	"time"

	"github.com/JeroenBertels/glh-timer/pkg/model"
)

type (
	Option func(*Resolver)

	// Resolver computes the elapsed time of participants for one stage
	// from the raw captures of that stage. It never mutates its inputs
	// and is safe for concurrent use.
	Resolver struct {
		events      []*model.TimingEvent
		groupStarts map[string]time.Time
	}

	// StageInput bundles everything needed to resolve durations on one
	// stage.
	StageInput struct {
		Stage       *model.Stage
		Events      []*model.TimingEvent
		GroupStarts map[string]time.Time
	}
)

func WithEvents(events []*model.TimingEvent) Option {
	return func(r *Resolver) {
		r.events = events
	}
}

// WithGroupStarts supplies configured stage starts keyed by group name.
// A participant uses the entry of its group, else the DEFAULT entry.
// Only set for stages timed by start/end pairs.
func WithGroupStarts(starts map[string]time.Time) Option {
	return func(r *Resolver) {
		r.groupStarts = starts
	}
}

func New(opts ...Option) *Resolver {
	ret := &Resolver{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s StageInput) Resolver() *Resolver {
	return New(WithEvents(s.Events), WithGroupStarts(s.GroupStarts))
}

// Best returns the fastest defensible elapsed time for the participant
// in whole seconds. Candidates are every explicit duration targeted at
// the bib or the group, plus the difference of every start/end
// timestamp combination where the end is not before the start. The
// second return value is false when no candidate exists (DNF).
func (r *Resolver) Best(bib int, group string) (int, bool) {
	durations := make([]int, 0)
	starts := make([]time.Time, 0)
	ends := make([]time.Time, 0)
	for _, ev := range r.events {
		if !ev.Matches(bib, group) {
			continue
		}
		switch {
		case ev.DurationSeconds != nil:
			durations = append(durations, *ev.DurationSeconds)
		case ev.StartTime != nil:
			starts = append(starts, *ev.StartTime)
		case ev.EndTime != nil:
			ends = append(ends, *ev.EndTime)
		}
	}
	if fallback, ok := r.fallbackStart(group); ok {
		starts = append(starts, fallback)
	}

	best := 0
	found := false
	record := func(cand int) {
		if !found || cand < best {
			best = cand
			found = true
		}
	}
	for _, d := range durations {
		record(d)
	}
	for _, s := range starts {
		for _, e := range ends {
			if e.Before(s) {
				continue
			}
			record(int(e.Sub(s).Seconds()))
		}
	}
	return best, found
}

func (r *Resolver) fallbackStart(group string) (time.Time, bool) {
	if len(r.groupStarts) == 0 {
		return time.Time{}, false
	}
	if t, ok := r.groupStarts[group]; ok && group != "" {
		return t, true
	}
	t, ok := r.groupStarts[model.DefaultStartGroup]
	return t, ok
}
