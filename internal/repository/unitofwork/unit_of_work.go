package unitofwork

import (
	"noet-be/internal/entity"
	"noet-be/internal/repository/contract"

	"github.com/google/uuid"
)

// UnitOfWork groups the repositories of one notes root with the locks that
// serialize read-modify-write cycles on it.
type UnitOfWork interface {
	BasePath() string

	NoteRepository() contract.NoteRepository
	CollectionRepository(kind entity.CollectionKind) contract.CollectionRepository

	// LockNote serializes mutations of one note; call the returned func to release.
	LockNote(userId string, id uuid.UUID) func()
	// LockCollection serializes mutations of one user's list of a kind.
	LockCollection(userId string, kind entity.CollectionKind) func()
}
