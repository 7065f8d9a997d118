package domain

import "strings"

// SelectionKind names which kind of entity is focused.
type SelectionKind string

const (
	SelectAll     SelectionKind = "all"
	SelectWorker  SelectionKind = "worker"
	SelectStation SelectionKind = "station"
)

// Selection marks one entity as visually focused. It never hides rows and
// is not validated against the current snapshot: a stale ID stays selected
// until it is reset or matches again.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// Select replaces the selection unconditionally.
func (s *Selection) Select(kind SelectionKind, id string) {
	s.Kind = kind
	s.ID = id
}

// Reset is Select(SelectAll, "").
func (s *Selection) Reset() {
	s.Select(SelectAll, "")
}

// Active reports whether an entity is focused.
func (s Selection) Active() bool {
	return s.ID != ""
}

func (s Selection) Matches(kind SelectionKind, id string) bool {
	return s.Active() && s.Kind == kind && s.ID == id
}

// String encodes the selection as "kind:id", or "" when nothing is focused.
func (s Selection) String() string {
	if !s.Active() {
		return ""
	}
	return string(s.Kind) + ":" + s.ID
}

// ParseSelection decodes the String form. Unknown kinds and empty input
// yield the reset selection.
func ParseSelection(v string) Selection {
	kind, id, ok := strings.Cut(v, ":")
	if !ok || id == "" {
		return Selection{Kind: SelectAll}
	}
	switch SelectionKind(kind) {
	case SelectWorker, SelectStation:
		return Selection{Kind: SelectionKind(kind), ID: id}
	default:
		return Selection{Kind: SelectAll}
	}
}
