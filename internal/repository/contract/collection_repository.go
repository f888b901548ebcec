package contract

import (
	"context"

	"noet-be/internal/entity"

	"github.com/google/uuid"
)

// CollectionRepository stores one kind of tag, notebook or folder list per user.
// The whole list is read and flushed at once so sortOrder is always written
// for every member.
type CollectionRepository interface {
	Kind() entity.CollectionKind
	// FindAll returns the list ordered by sortOrder.
	FindAll(ctx context.Context, userId string) ([]*entity.Collection, error)
	// FindOne returns nil, nil when id is unknown.
	FindOne(ctx context.Context, userId string, id uuid.UUID) (*entity.Collection, error)
	SaveAll(ctx context.Context, userId string, items []*entity.Collection) error
}
