package specification

import "noet-be/internal/entity"

// Specification is a predicate over notes. Repositories scan every note of a
// user and keep those satisfying all supplied specifications.
type Specification interface {
	IsSatisfiedBy(note *entity.Note) bool
}

// MatchAll reports whether note satisfies every spec. No specs matches everything.
func MatchAll(note *entity.Note, specs ...Specification) bool {
	for _, s := range specs {
		if s != nil && !s.IsSatisfiedBy(note) {
			return false
		}
	}
	return true
}
