package unitofwork

import (
	"context"
	"sync"

	"noet-be/pkg/fsutil"
)

type RepositoryFactoryImpl struct {
	mu       sync.RWMutex
	basePath string
	locker   *fsutil.Locker
}

func NewRepositoryFactory(basePath string) RepositoryFactory {
	return &RepositoryFactoryImpl{
		basePath: basePath,
		locker:   fsutil.NewLocker(),
	}
}

// NewUnitOfWork binds to the base path current at call time, so a request
// never straddles two notes roots.
func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.BasePath(), f.locker)
}

func (f *RepositoryFactoryImpl) BasePath() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.basePath
}

func (f *RepositoryFactoryImpl) SetBasePath(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.basePath = path
}
