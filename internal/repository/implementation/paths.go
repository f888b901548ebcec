package implementation

import (
	"path/filepath"

	"noet-be/internal/entity"

	"github.com/google/uuid"
)

const (
	metadataFile   = "metadata.json"
	contentFile    = "note.md"
	attachmentsDir = "attachments"
	collectionsDir = ".collections"
)

// layout resolves every on-disk location below one notes base path.
type layout struct {
	base string
}

func (l layout) userDir(userId string) string {
	return filepath.Join(l.base, userId)
}

func (l layout) noteDir(userId string, id uuid.UUID) string {
	return filepath.Join(l.base, userId, id.String())
}

func (l layout) metadataPath(userId string, id uuid.UUID) string {
	return filepath.Join(l.noteDir(userId, id), metadataFile)
}

func (l layout) contentPath(userId string, id uuid.UUID) string {
	return filepath.Join(l.noteDir(userId, id), contentFile)
}

func (l layout) attachmentsDir(userId string, id uuid.UUID) string {
	return filepath.Join(l.noteDir(userId, id), attachmentsDir)
}

func (l layout) collectionPath(userId string, kind entity.CollectionKind) string {
	return filepath.Join(l.base, userId, collectionsDir, string(kind)+".json")
}
