package unitofwork

import (
	"noet-be/internal/entity"
	"noet-be/internal/repository/contract"
	"noet-be/internal/repository/implementation"
	"noet-be/pkg/fsutil"

	"github.com/google/uuid"
)

type UnitOfWorkImpl struct {
	basePath string
	locker   *fsutil.Locker
}

func NewUnitOfWork(basePath string, locker *fsutil.Locker) UnitOfWork {
	return &UnitOfWorkImpl{
		basePath: basePath,
		locker:   locker,
	}
}

func (u *UnitOfWorkImpl) BasePath() string {
	return u.basePath
}

func (u *UnitOfWorkImpl) NoteRepository() contract.NoteRepository {
	return implementation.NewNoteRepository(u.basePath)
}

func (u *UnitOfWorkImpl) CollectionRepository(kind entity.CollectionKind) contract.CollectionRepository {
	return implementation.NewCollectionRepository(u.basePath, kind)
}

func (u *UnitOfWorkImpl) LockNote(userId string, id uuid.UUID) func() {
	return u.locker.Lock(u.basePath + "|note|" + userId + "|" + id.String())
}

func (u *UnitOfWorkImpl) LockCollection(userId string, kind entity.CollectionKind) func() {
	return u.locker.Lock(u.basePath + "|" + string(kind) + "|" + userId)
}
