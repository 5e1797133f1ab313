package model

import "unicode"

// GroupNameRule is the reason text for rejected group names.
const GroupNameRule = "group names must start with a letter"

// ValidGroupName checks the group naming rule. Group names double as
// timing targets, so a leading digit would make them indistinguishable
// from bib numbers.
func ValidGroupName(name string) bool {
	for _, r := range name {
		return unicode.IsLetter(r)
	}
	return false
}
