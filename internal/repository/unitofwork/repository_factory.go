package unitofwork

import "context"

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
	// BasePath is the notes root new units of work are bound to.
	BasePath() string
	// SetBasePath switches the notes root for units of work created afterwards.
	SetBasePath(path string)
}
