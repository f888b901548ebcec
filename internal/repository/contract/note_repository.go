package contract

import (
	"context"
	"io"

	"noet-be/internal/entity"
	"noet-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	// Create writes note.md then metadata.json into a new note directory.
	Create(ctx context.Context, note *entity.Note) error
	// Update rewrites metadata.json, and note.md first when withContent is set.
	Update(ctx context.Context, note *entity.Note, withContent bool) error
	// Delete removes the note directory and everything under it.
	Delete(ctx context.Context, userId string, id uuid.UUID) error
	// FindOne returns nil, nil when the note has no metadata.
	FindOne(ctx context.Context, userId string, id uuid.UUID) (*entity.Note, error)
	FindAll(ctx context.Context, userId string, specs ...specification.Specification) ([]*entity.Note, error)

	SaveAttachment(ctx context.Context, userId string, id uuid.UUID, filename string, src io.Reader) (int64, error)
	AttachmentPath(userId string, id uuid.UUID, filename string) string
	DeleteAttachment(ctx context.Context, userId string, id uuid.UUID, filename string) error
}
