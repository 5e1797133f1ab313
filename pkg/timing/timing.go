package timing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NowLiteral may be submitted instead of a clock time and resolves to
// the current server time in the race timezone.
const NowLiteral = "NOW"

// ParseDurationSeconds converts a duration text to whole seconds.
// Accepted forms: "MM:SS", "HH:MM:SS" or a plain number of seconds.
func ParseDurationSeconds(value string) (int, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if !strings.Contains(text, ":") {
		secs, err := strconv.Atoi(text)
		if err != nil || secs < 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return secs, nil
	}
	parts := strings.Split(text, ":")
	var hh, mm, ss string
	switch len(parts) {
	case 2:
		hh, mm, ss = "0", parts[0], parts[1]
	case 3:
		hh, mm, ss = parts[0], parts[1], parts[2]
	default:
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	s, errS := strconv.Atoi(ss)
	if errH != nil || errM != nil || errS != nil ||
		h < 0 || m < 0 || s < 0 || s > 59 {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return h*3600 + m*60 + s, nil
}

// FormatSeconds renders whole seconds as "H:MM:SS", omitting the hours
// part when zero.
func FormatSeconds(total int) string {
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseClock converts a submitted clock text to an absolute timestamp.
// "HH:MM:SS" is combined with the race date in the race timezone, the
// NowLiteral resolves to now localized to the race timezone.
//
//nolint:whitespace // can't make both editor and linter happy
func ParseClock(
	value string,
	raceDate time.Time,
	loc *time.Location,
	now time.Time,
) (time.Time, error) {
	text := strings.ToUpper(strings.TrimSpace(value))
	if text == NowLiteral {
		return now.In(loc), nil
	}
	clock, err := time.Parse("15:04:05", text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", value)
	}
	return time.Date(
		raceDate.Year(), raceDate.Month(), raceDate.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, loc,
	), nil
}
