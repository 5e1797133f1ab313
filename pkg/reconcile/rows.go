package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/JeroenBertels/glh-timer/pkg/model"
	"github.com/JeroenBertels/glh-timer/pkg/timing"
)

// dateLayout is the canonical civil date format used in race csv files.
const dateLayout = "2006-01-02"

// row shapes mirror the exported csv columns so an unchanged export
// reimports as all ignored

type (
	RaceRow struct {
		ID       string
		Name     string
		Date     string
		Timezone string
	}

	// StageRow is race scoped: the race comes from the import call.
	StageRow struct {
		ID    string
		Name  string
		Order string
		Mode  string
	}

	ParticipantRow struct {
		Bib       string
		FirstName string
		LastName  string
		Group     string
		Club      string
		Sex       string
	}

	// EventRow with an empty id describes a new capture and is always
	// classified as added.
	EventRow struct {
		ID         string
		StageID    string
		Bib        string
		Group      string
		Duration   string
		Start      string
		End        string
		ClientTime string
	}
)

var (
	raceHeader        = []string{"id", "name", "date", "timezone"}
	stageHeader       = []string{"stage_id", "name", "stage_order", "mode"}
	participantHeader = []string{"bib", "first_name", "last_name", "group", "club", "sex"}
	eventHeader       = []string{
		"id", "stage_id", "bib", "group",
		"duration", "start_time", "end_time", "client_time",
	}
)

func (r RaceRow) Key() (string, bool) {
	return r.ID, r.ID != ""
}

func (r StageRow) Key() (string, bool) {
	return r.ID, r.ID != ""
}

func (r ParticipantRow) Key() (string, bool) {
	return r.Bib, r.Bib != ""
}

func (r EventRow) Key() (string, bool) {
	return r.ID, r.ID != ""
}

// RaceRowOf renders the canonical csv view of a race.
func RaceRowOf(m *model.Race) RaceRow {
	return RaceRow{
		ID:       m.ID,
		Name:     m.Name,
		Date:     m.Date.Format(dateLayout),
		Timezone: m.Timezone,
	}
}

func (r RaceRow) ToModel() (*model.Race, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("race id must not be empty")
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return nil, fmt.Errorf("race %s: invalid date %q", r.ID, r.Date)
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return nil, fmt.Errorf("race %s: invalid timezone %q", r.ID, r.Timezone)
	}
	return &model.Race{
		ID:       r.ID,
		Name:     r.Name,
		Date:     date,
		Timezone: r.Timezone,
	}, nil
}

func StageRowOf(m *model.Stage) StageRow {
	return StageRow{
		ID:    m.ID,
		Name:  m.Name,
		Order: strconv.Itoa(m.Order),
		Mode:  string(m.Mode),
	}
}

func (r StageRow) ToModel(raceID string) (*model.Stage, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("stage id must not be empty")
	}
	order, err := strconv.Atoi(r.Order)
	if err != nil {
		return nil, fmt.Errorf("stage %s: invalid order %q", r.ID, r.Order)
	}
	mode := model.StageModeDuration
	switch model.StageMode(r.Mode) {
	case model.StageModeDuration, model.StageModeStartEnd:
		mode = model.StageMode(r.Mode)
	case model.StageModeOverall:
		return nil, fmt.Errorf("stage %s: the overall stage is system managed", r.ID)
	default:
		if r.Mode != "" {
			return nil, fmt.Errorf("stage %s: invalid mode %q", r.ID, r.Mode)
		}
	}
	return &model.Stage{
		RaceID: raceID,
		ID:     r.ID,
		Name:   r.Name,
		Order:  order,
		Mode:   mode,
	}, nil
}

func ParticipantRowOf(m *model.Participant) ParticipantRow {
	return ParticipantRow{
		Bib:       strconv.Itoa(m.Bib),
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Group:     m.Group,
		Club:      m.Club,
		Sex:       m.Sex,
	}
}

func (r ParticipantRow) ToModel(raceID string) (*model.Participant, error) {
	bib, err := strconv.Atoi(r.Bib)
	if err != nil || bib <= 0 {
		return nil, fmt.Errorf("invalid bib %q", r.Bib)
	}
	if r.Group != "" && !model.ValidGroupName(r.Group) {
		return nil, fmt.Errorf("bib %d: %s", bib, model.GroupNameRule)
	}
	return &model.Participant{
		RaceID:    raceID,
		Bib:       bib,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Group:     r.Group,
		Club:      r.Club,
		Sex:       r.Sex,
	}, nil
}

func EventRowOf(m *model.TimingEvent) EventRow {
	ret := EventRow{
		ID:         m.ID.String(),
		StageID:    m.StageID,
		ClientTime: m.ClientTime.Format(time.RFC3339),
	}
	if m.Bib != nil {
		ret.Bib = strconv.Itoa(*m.Bib)
	}
	if m.Group != nil {
		ret.Group = *m.Group
	}
	if m.DurationSeconds != nil {
		ret.Duration = strconv.Itoa(*m.DurationSeconds)
	}
	if m.StartTime != nil {
		ret.Start = m.StartTime.Format(time.RFC3339)
	}
	if m.EndTime != nil {
		ret.End = m.EndTime.Format(time.RFC3339)
	}
	return ret
}

// ToModel validates the row and builds the event. The now argument
// stamps the server time and substitutes a missing client time.
//
//nolint:gocognit // row validation is a flat rule list
func (r EventRow) ToModel(raceID string, now time.Time) (*model.TimingEvent, error) {
	ret := &model.TimingEvent{
		RaceID:     raceID,
		StageID:    r.StageID,
		ClientTime: now,
		ServerTime: now,
	}
	if r.StageID == "" {
		return nil, fmt.Errorf("event row without stage id")
	}
	if r.ID != "" {
		id, err := uuid.FromString(r.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q", r.ID)
		}
		ret.ID = id
	}
	if r.Bib != "" && r.Group != "" {
		return nil, fmt.Errorf("event %s: bib and group are mutually exclusive", r.ID)
	}
	if r.Bib != "" {
		bib, err := strconv.Atoi(r.Bib)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid bib %q", r.ID, r.Bib)
		}
		ret.Bib = &bib
	}
	if r.Group != "" {
		group := r.Group
		ret.Group = &group
	}
	payloads := 0
	if r.Duration != "" {
		secs, err := timing.ParseDurationSeconds(r.Duration)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", r.ID, err)
		}
		ret.DurationSeconds = &secs
		payloads++
	}
	if r.Start != "" {
		ts, err := time.Parse(time.RFC3339, r.Start)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid start time %q", r.ID, r.Start)
		}
		ret.StartTime = &ts
		payloads++
	}
	if r.End != "" {
		ts, err := time.Parse(time.RFC3339, r.End)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid end time %q", r.ID, r.End)
		}
		ret.EndTime = &ts
		payloads++
	}
	if payloads != 1 {
		return nil, fmt.Errorf(
			"event %s: exactly one of duration, start or end required", r.ID)
	}
	if ret.Pending() && ret.EndTime == nil {
		return nil, fmt.Errorf("event %s: a targetless event needs an end time", r.ID)
	}
	if r.ClientTime != "" {
		ts, err := time.Parse(time.RFC3339, r.ClientTime)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid client time %q", r.ID, r.ClientTime)
		}
		ret.ClientTime = ts
	}
	return ret, nil
}

func ParseRacesCsv(r io.Reader) ([]RaceRow, error) {
	records, err := readRecords(r, raceHeader)
	if err != nil {
		return nil, err
	}
	ret := make([]RaceRow, 0, len(records))
	for _, rec := range records {
		ret = append(ret, RaceRow{
			ID:       rec[0],
			Name:     rec[1],
			Date:     rec[2],
			Timezone: rec[3],
		})
	}
	return ret, nil
}

func ParseStagesCsv(r io.Reader) ([]StageRow, error) {
	records, err := readRecords(r, stageHeader)
	if err != nil {
		return nil, err
	}
	ret := make([]StageRow, 0, len(records))
	for _, rec := range records {
		ret = append(ret, StageRow{
			ID:    rec[0],
			Name:  rec[1],
			Order: rec[2],
			Mode:  rec[3],
		})
	}
	return ret, nil
}

func ParseParticipantsCsv(r io.Reader) ([]ParticipantRow, error) {
	records, err := readRecords(r, participantHeader)
	if err != nil {
		return nil, err
	}
	ret := make([]ParticipantRow, 0, len(records))
	for _, rec := range records {
		ret = append(ret, ParticipantRow{
			Bib:       rec[0],
			FirstName: rec[1],
			LastName:  rec[2],
			Group:     rec[3],
			Club:      rec[4],
			Sex:       rec[5],
		})
	}
	return ret, nil
}

func ParseEventsCsv(r io.Reader) ([]EventRow, error) {
	records, err := readRecords(r, eventHeader)
	if err != nil {
		return nil, err
	}
	ret := make([]EventRow, 0, len(records))
	for _, rec := range records {
		ret = append(ret, EventRow{
			ID:         rec[0],
			StageID:    rec[1],
			Bib:        rec[2],
			Group:      rec[3],
			Duration:   rec[4],
			Start:      rec[5],
			End:        rec[6],
			ClientTime: rec[7],
		})
	}
	return ret, nil
}

func WriteRacesCsv(w io.Writer, rows []RaceRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.ID, r.Name, r.Date, r.Timezone})
	}
	return writeRecords(w, raceHeader, records)
}

func WriteStagesCsv(w io.Writer, rows []StageRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.ID, r.Name, r.Order, r.Mode})
	}
	return writeRecords(w, stageHeader, records)
}

func WriteParticipantsCsv(w io.Writer, rows []ParticipantRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Bib, r.FirstName, r.LastName, r.Group, r.Club, r.Sex,
		})
	}
	return writeRecords(w, participantHeader, records)
}

func WriteEventsCsv(w io.Writer, rows []EventRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ID, r.StageID, r.Bib, r.Group,
			r.Duration, r.Start, r.End, r.ClientTime,
		})
	}
	return writeRecords(w, eventHeader, records)
}

func readRecords(r io.Reader, header []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv without header")
	}
	if err := checkHeader(records[0], header); err != nil {
		return nil, err
	}
	ret := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		ret = append(ret, rec)
	}
	return ret, nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("expected header %s", strings.Join(want, ","))
	}
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(got[i]), want[i]) {
			return fmt.Errorf("expected header %s", strings.Join(want, ","))
		}
	}
	return nil
}

func writeRecords(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
