package reconcile

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParticipantsCsv(t *testing.T) {
	input := `bib,first_name,last_name,group,club,sex
12, Ann ,Astrup,Elite,GLH,F
45,Ben,Bos,Elite,,M
`
	rows, err := ParseParticipantsCsv(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// cell content is trimmed before classification
	assert.Equal(t, "Ann", rows[0].FirstName)
	assert.Equal(t, "45", rows[1].Bib)
}

func TestParseCsvHeaderMismatch(t *testing.T) {
	input := "bib,name\n12,Ann\n"
	_, err := ParseParticipantsCsv(strings.NewReader(input))
	assert.ErrorContains(t, err, "expected header")
}

func TestWriteParticipantsCsvRoundTrip(t *testing.T) {
	rows := []ParticipantRow{
		{Bib: "12", FirstName: "Ann", LastName: "Astrup", Group: "Elite", Sex: "F"},
		{Bib: "77", FirstName: "Cas", LastName: "Claes", Group: "Open", Sex: "M"},
	}
	var buf strings.Builder
	require.NoError(t, WriteParticipantsCsv(&buf, rows))

	back, err := ParseParticipantsCsv(strings.NewReader(buf.String()))
	require.NoError(t, err)
	if diff := cmp.Diff(rows, back); diff != "" {
		t.Errorf("round trip mismatch: %s", diff)
	}
}

func TestParticipantRowToModel(t *testing.T) {
	tests := []struct {
		name    string
		row     ParticipantRow
		wantErr string
	}{
		{name: "valid", row: ParticipantRow{Bib: "12", Group: "Elite"}},
		{name: "no_group", row: ParticipantRow{Bib: "12"}},
		{name: "bad_bib", row: ParticipantRow{Bib: "x"}, wantErr: "invalid bib"},
		{name: "zero_bib", row: ParticipantRow{Bib: "0"}, wantErr: "invalid bib"},
		{
			name:    "group_starting_with_digit",
			row:     ParticipantRow{Bib: "12", Group: "1K"},
			wantErr: "group names must start with a letter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.row.ToModel("testrace")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "testrace", got.RaceID)
			assert.Equal(t, 12, got.Bib)
		})
	}
}

func TestStageRowToModel(t *testing.T) {
	_, err := StageRow{}.ToModel("testrace")
	assert.ErrorContains(t, err, "must not be empty")

	_, err = StageRow{ID: "x", Order: "nope"}.ToModel("testrace")
	assert.ErrorContains(t, err, "invalid order")

	_, err = StageRow{ID: "Overall", Order: "-1", Mode: "OVERALL_AGGREGATE"}.ToModel("testrace")
	assert.ErrorContains(t, err, "system managed")

	got, err := StageRow{ID: "climb", Name: "Climb", Order: "2", Mode: "START_END_PAIR"}.
		ToModel("testrace")
	require.NoError(t, err)
	assert.Equal(t, "START_END_PAIR", string(got.Mode))
}

func TestEventRowToModel(t *testing.T) {
	now := time.Date(2024, 4, 28, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		row     EventRow
		wantErr string
	}{
		{
			name: "duration_for_bib",
			row:  EventRow{StageID: "prologue", Bib: "12", Duration: "02:05"},
		},
		{
			name: "pending_end",
			row:  EventRow{StageID: "climb", End: "2024-04-28T10:05:00Z"},
		},
		{
			name:    "no_stage",
			row:     EventRow{Bib: "12", Duration: "125"},
			wantErr: "without stage id",
		},
		{
			name:    "both_targets",
			row:     EventRow{StageID: "prologue", Bib: "12", Group: "Elite", Duration: "125"},
			wantErr: "mutually exclusive",
		},
		{
			name:    "no_payload",
			row:     EventRow{StageID: "prologue", Bib: "12"},
			wantErr: "exactly one of",
		},
		{
			name: "two_payloads",
			row: EventRow{
				StageID: "climb", Bib: "12",
				Start: "2024-04-28T10:00:00Z", End: "2024-04-28T10:05:00Z",
			},
			wantErr: "exactly one of",
		},
		{
			name:    "pending_needs_end",
			row:     EventRow{StageID: "prologue", Duration: "125"},
			wantErr: "needs an end time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.row.ToModel("testrace", now)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, now, got.ServerTime)
		})
	}
}

func TestEventRowToModelClientTime(t *testing.T) {
	now := time.Date(2024, 4, 28, 10, 0, 0, 0, time.UTC)
	row := EventRow{
		StageID: "prologue", Bib: "12", Duration: "125",
		ClientTime: "2024-04-28T09:58:30Z",
	}
	got, err := row.ToModel("testrace", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 28, 9, 58, 30, 0, time.UTC), got.ClientTime)
	assert.Equal(t, now, got.ServerTime)
	assert.Equal(t, 125, *got.DurationSeconds)
}
