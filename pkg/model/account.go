package model

// account roles
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
)

// Account is an operator identity. Organizer accounts may be scoped to
// a single race; the engine consults that scope but enforcement is up
// to the calling layer.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	RaceID       string `json:"raceId,omitempty"`
	Active       bool   `json:"active"`
}

// AllowsRace reports whether the account may act on the given race.
// Admins and unscoped organizers may act on every race.
func (a *Account) AllowsRace(raceID string) bool {
	if !a.Active {
		return false
	}
	if a.Role == RoleAdmin || a.RaceID == "" {
		return true
	}
	return a.RaceID == raceID
}
