package implementation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"noet-be/internal/entity"
	"noet-be/internal/mapper"
	"noet-be/internal/model"
	"noet-be/internal/repository/contract"
	"noet-be/pkg/fsutil"

	"github.com/google/uuid"
)

type CollectionRepositoryImpl struct {
	layout layout
	kind   entity.CollectionKind
	mapper *mapper.CollectionMapper
}

func NewCollectionRepository(basePath string, kind entity.CollectionKind) contract.CollectionRepository {
	return &CollectionRepositoryImpl{
		layout: layout{base: basePath},
		kind:   kind,
		mapper: mapper.NewCollectionMapper(),
	}
}

func (r *CollectionRepositoryImpl) Kind() entity.CollectionKind {
	return r.kind
}

func (r *CollectionRepositoryImpl) FindAll(ctx context.Context, userId string) ([]*entity.Collection, error) {
	var models []*model.Collection
	if err := fsutil.ReadJSON(r.layout.collectionPath(userId, r.kind), &models); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*entity.Collection{}, nil
		}
		return nil, err
	}
	return r.mapper.ToEntities(userId, r.kind, models), nil
}

func (r *CollectionRepositoryImpl) FindOne(ctx context.Context, userId string, id uuid.UUID) (*entity.Collection, error) {
	items, err := r.FindAll(ctx, userId)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Id == id {
			return item, nil
		}
	}
	return nil, nil
}

func (r *CollectionRepositoryImpl) SaveAll(ctx context.Context, userId string, items []*entity.Collection) error {
	path := r.layout.collectionPath(userId, r.kind)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create collections directory: %w", err)
	}
	return fsutil.WriteJSONAtomic(path, r.mapper.ToModels(items))
}
