package reconcile

import "fmt"

// Kind names an importable entity family.
type Kind string

const (
	KindRaces        Kind = "races"
	KindStages       Kind = "stages"
	KindParticipants Kind = "participants"
	KindEvents       Kind = "events"
)

func ParseKind(text string) (Kind, error) {
	switch Kind(text) {
	case KindRaces, KindStages, KindParticipants, KindEvents:
		return Kind(text), nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", text)
	}
}

// Diff is the three way classification of incoming rows against the
// current state. Rows present in the store but absent from the input
// are not part of the diff: an import never deletes.
type Diff[R any] struct {
	Added    []R `json:"added"`
	Modified []R `json:"modified"`
	Ignored  []R `json:"ignored"`
}

func (d Diff[R]) Counts() (added, modified, ignored int) {
	return len(d.Added), len(d.Modified), len(d.Ignored)
}

// Classify buckets every incoming row by its natural key: unknown key
// (or no key at all) means added, known key with differing content
// means modified, known key with equal content means ignored.
//
//nolint:whitespace // can't make both editor and linter happy
func Classify[R any, K comparable](
	incoming []R,
	existing []R,
	key func(R) (K, bool),
	equal func(a, b R) bool,
) Diff[R] {
	index := make(map[K]R, len(existing))
	for _, row := range existing {
		if k, ok := key(row); ok {
			index[k] = row
		}
	}
	ret := Diff[R]{
		Added:    make([]R, 0),
		Modified: make([]R, 0),
		Ignored:  make([]R, 0),
	}
	for _, row := range incoming {
		k, ok := key(row)
		if !ok {
			ret.Added = append(ret.Added, row)
			continue
		}
		current, found := index[k]
		switch {
		case !found:
			ret.Added = append(ret.Added, row)
		case equal(current, row):
			ret.Ignored = append(ret.Ignored, row)
		default:
			ret.Modified = append(ret.Modified, row)
		}
	}
	return ret
}
