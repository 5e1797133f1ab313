package target

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JeroenBertels/glh-timer/pkg/model"
)

// Target is the resolved destination of a timing capture: either a
// single bib number or a whole group. Token sniffing happens once at
// the ingestion edge, everything behind it works with this type.
type Target struct {
	bib   int
	group string
	byBib bool
}

func ByBib(bib int) Target {
	return Target{bib: bib, byBib: true}
}

func ByGroup(group string) Target {
	return Target{group: group}
}

// Bib returns the bib number when the target addresses a single
// participant.
func (t Target) Bib() (int, bool) {
	return t.bib, t.byBib
}

// Group returns the group name when the target addresses a category.
func (t Target) Group() (string, bool) {
	return t.group, !t.byBib
}

func (t Target) String() string {
	if t.byBib {
		return strconv.Itoa(t.bib)
	}
	return t.group
}

// Apply writes the target onto the event, clearing the other variant.
func (t Target) Apply(ev *model.TimingEvent) {
	if t.byBib {
		bib := t.bib
		ev.Bib = &bib
		ev.Group = nil
		return
	}
	group := t.group
	ev.Group = &group
	ev.Bib = nil
}

// Parse classifies one token: purely numeric means bib, any other
// non-empty text means group. Group tokens must satisfy the group
// naming rule.
func Parse(token string) (Target, error) {
	text := strings.TrimSpace(token)
	if text == "" {
		return Target{}, fmt.Errorf("empty target token")
	}
	if bib, err := strconv.Atoi(text); err == nil {
		if bib <= 0 {
			return Target{}, fmt.Errorf("invalid bib %q", token)
		}
		return ByBib(bib), nil
	}
	if !model.ValidGroupName(text) {
		return Target{}, fmt.Errorf("invalid group %q: %s",
			token, model.GroupNameRule)
	}
	return ByGroup(text), nil
}

// ParseList splits a comma separated token list. At least one token is
// required.
func ParseList(text string) ([]Target, error) {
	ret := make([]Target, 0)
	for _, token := range strings.Split(text, ",") {
		if strings.TrimSpace(token) == "" {
			continue
		}
		t, err := Parse(token)
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("no targets in %q", text)
	}
	return ret, nil
}
