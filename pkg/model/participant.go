package model

import "fmt"

// Participant is a registered starter of a race. The bib number is
// unique within the race and doubles as a timing target. The group is
// a category label which is also usable as a timing target covering
// all its members.
type Participant struct {
	RaceID    string `json:"raceId"`
	Bib       int    `json:"bib"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Group     string `json:"group"`
	Club      string `json:"club"`
	Sex       string `json:"sex"`
}

func (p *Participant) Name() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}
