package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JeroenBertels/glh-timer/pkg/model"
)

func ptrInt(v int) *int          { return &v }
func ptrStr(v string) *string    { return &v }
func ts(v string) time.Time      { t, _ := time.Parse(time.RFC3339, v); return t }
func ptrTime(v string) *time.Time { t := ts(v); return &t }

func durationEvent(bib *int, group *string, secs int) *model.TimingEvent {
	return &model.TimingEvent{Bib: bib, Group: group, DurationSeconds: ptrInt(secs)}
}

func startEvent(bib *int, group *string, at string) *model.TimingEvent {
	return &model.TimingEvent{Bib: bib, Group: group, StartTime: ptrTime(at)}
}

func endEvent(bib *int, group *string, at string) *model.TimingEvent {
	return &model.TimingEvent{Bib: bib, Group: group, EndTime: ptrTime(at)}
}

func TestResolverBest(t *testing.T) {
	tests := []struct {
		name   string
		events []*model.TimingEvent
		starts map[string]time.Time
		bib    int
		group  string
		want   int
		wantOk bool
	}{
		{
			name:   "no_candidates_means_dnf",
			events: []*model.TimingEvent{},
			bib:    12, group: "Elite",
			wantOk: false,
		},
		{
			name: "unrelated_events_mean_dnf",
			events: []*model.TimingEvent{
				durationEvent(ptrInt(45), nil, 100),
				durationEvent(nil, ptrStr("Open"), 200),
			},
			bib: 12, group: "Elite",
			wantOk: false,
		},
		{
			name: "global_minimum_over_explicit_and_pairs",
			events: []*model.TimingEvent{
				durationEvent(ptrInt(12), nil, 130),
				durationEvent(ptrInt(12), nil, 125),
				startEvent(ptrInt(12), nil, "2024-04-28T10:00:00Z"),
				endEvent(ptrInt(12), nil, "2024-04-28T10:02:08Z"),
			},
			bib: 12, group: "Elite",
			want: 125, wantOk: true,
		},
		{
			name: "group_events_apply_to_members",
			events: []*model.TimingEvent{
				startEvent(nil, ptrStr("Elite"), "2024-04-28T10:00:00Z"),
				endEvent(ptrInt(12), nil, "2024-04-28T10:03:00Z"),
			},
			bib: 12, group: "Elite",
			want: 180, wantOk: true,
		},
		{
			name: "cross_product_picks_fastest_valid_pair",
			events: []*model.TimingEvent{
				startEvent(ptrInt(12), nil, "2024-04-28T10:00:00Z"),
				startEvent(ptrInt(12), nil, "2024-04-28T10:01:00Z"),
				endEvent(ptrInt(12), nil, "2024-04-28T10:02:30Z"),
				endEvent(ptrInt(12), nil, "2024-04-28T10:05:00Z"),
			},
			bib: 12, group: "Elite",
			// 10:01:00 -> 10:02:30 is the fastest of the four combinations
			want: 90, wantOk: true,
		},
		{
			name: "end_before_start_is_no_candidate",
			events: []*model.TimingEvent{
				startEvent(ptrInt(12), nil, "2024-04-28T10:10:00Z"),
				endEvent(ptrInt(12), nil, "2024-04-28T10:05:00Z"),
			},
			bib: 12, group: "Elite",
			wantOk: false,
		},
		{
			name: "configured_group_start_as_fallback",
			events: []*model.TimingEvent{
				endEvent(ptrInt(12), nil, "2024-04-28T10:04:00Z"),
			},
			starts: map[string]time.Time{
				"Elite": ts("2024-04-28T10:00:00Z"),
			},
			bib: 12, group: "Elite",
			want: 240, wantOk: true,
		},
		{
			name: "default_start_when_group_has_none",
			events: []*model.TimingEvent{
				endEvent(ptrInt(12), nil, "2024-04-28T10:04:00Z"),
			},
			starts: map[string]time.Time{
				model.DefaultStartGroup: ts("2024-04-28T10:01:00Z"),
			},
			bib: 12, group: "Elite",
			want: 180, wantOk: true,
		},
		{
			name: "captured_start_beats_slower_fallback",
			events: []*model.TimingEvent{
				startEvent(ptrInt(12), nil, "2024-04-28T10:02:00Z"),
				endEvent(ptrInt(12), nil, "2024-04-28T10:04:00Z"),
			},
			starts: map[string]time.Time{
				model.DefaultStartGroup: ts("2024-04-28T10:00:00Z"),
			},
			bib: 12, group: "Elite",
			want: 120, wantOk: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(WithEvents(tt.events), WithGroupStarts(tt.starts))
			got, ok := r.Best(tt.bib, tt.group)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
