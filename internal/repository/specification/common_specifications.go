package specification

import (
	"time"

	"noet-be/internal/entity"
)

// UpdatedSince keeps notes updated at or after Since.
type UpdatedSince struct {
	Since time.Time
}

func (s UpdatedSince) IsSatisfiedBy(note *entity.Note) bool {
	return !note.UpdatedAt.Before(s.Since)
}
