package service

import (
	"context"
	"strings"
	"time"

	"noet-be/internal/config"
	"noet-be/internal/dto"
	"noet-be/internal/entity"
	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/logger"
	"noet-be/internal/pkg/metrics"
	"noet-be/internal/repository/specification"
	"noet-be/internal/repository/unitofwork"
	"noet-be/pkg/events"

	"github.com/google/uuid"
)

// ICollectionService serves tags, notebooks and folders. They share one
// shape and differ only in whether entities may nest.
type ICollectionService interface {
	List(ctx context.Context, userId string, kind entity.CollectionKind) ([]*dto.CollectionResponse, error)
	Create(ctx context.Context, userId string, kind entity.CollectionKind, req *dto.CreateCollectionRequest) (*dto.CollectionResponse, error)
	Show(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID) (*dto.CollectionResponse, error)
	Update(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID, req *dto.UpdateCollectionRequest) (*dto.CollectionResponse, error)
	Delete(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID) error
	Reorder(ctx context.Context, userId string, kind entity.CollectionKind, req *dto.ReorderRequest) ([]*dto.CollectionResponse, error)
	Move(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID, req *dto.MoveCollectionRequest) (*dto.CollectionResponse, error)
	Normalize(ctx context.Context, userId string, kind entity.CollectionKind) (int, error)
}

type collectionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
	metrics          *metrics.Metrics
	deletePolicy     string
	now              func() time.Time
}

func NewCollectionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
	m *metrics.Metrics,
	deletePolicy string,
) ICollectionService {
	return &collectionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
		metrics:          m,
		deletePolicy:     deletePolicy,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *collectionService) List(ctx context.Context, userId string, kind entity.CollectionKind) ([]*dto.CollectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.CollectionRepository(kind).FindAll(ctx, userId)
	if err != nil {
		return nil, apperror.IO("read "+string(kind), err)
	}
	return s.withNoteCounts(ctx, uow, userId, items)
}

func (s *collectionService) Show(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID) (*dto.CollectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	item, err := uow.CollectionRepository(kind).FindOne(ctx, userId, id)
	if err != nil {
		return nil, apperror.IO("read "+string(kind), err)
	}
	if item == nil {
		return nil, notFound(kind, id)
	}

	res, err := s.withNoteCounts(ctx, uow, userId, []*entity.Collection{item})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (s *collectionService) Create(ctx context.Context, userId string, kind entity.CollectionKind, req *dto.CreateCollectionRequest) (*dto.CollectionResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockCollection(userId, kind)
	defer unlock()

	repo := uow.CollectionRepository(kind)
	items, err := repo.FindAll(ctx, userId)
	if err != nil {
		return nil, apperror.IO("read "+string(kind), err)
	}

	parentId, err := resolveParent(kind, items, req.ParentId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := &entity.Collection{
		Id:        uuid.New(),
		UserId:    userId,
		Kind:      kind,
		Name:      name,
		Color:     req.Color,
		ParentId:  parentId,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items = append(items, item)
	Resequence(items)

	if err := repo.SaveAll(ctx, userId, items); err != nil {
		return nil, apperror.IO("write "+string(kind), err)
	}

	s.metrics.StoreOperation(string(kind), "create")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.CollectionCreated, userId, string(kind), item.Id.String()))
	return toCollectionResponse(item, 0), nil
}

func (s *collectionService) Update(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID, req *dto.UpdateCollectionRequest) (*dto.CollectionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockCollection(userId, kind)

	repo := uow.CollectionRepository(kind)
	items, err := repo.FindAll(ctx, userId)
	if err != nil {
		unlock()
		return nil, apperror.IO("read "+string(kind), err)
	}
	idx := indexOf(items, id)
	if idx < 0 {
		unlock()
		return nil, notFound(kind, id)
	}

	item := items[idx]
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			unlock()
			return nil, apperror.Validation("name must not be empty")
		}
		item.Name = name
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	item.UpdatedAt = s.now()

	err = repo.SaveAll(ctx, userId, items)
	unlock()
	if err != nil {
		return nil, apperror.IO("write "+string(kind), err)
	}

	s.metrics.StoreOperation(string(kind), "update")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.CollectionUpdated, userId, string(kind), id.String()))
	return s.Show(ctx, userId, kind, id)
}

// Delete removes the entity, lifts its children to the root and applies the
// configured policy to notes that reference it.
func (s *collectionService) Delete(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockCollection(userId, kind)
	defer unlock()

	repo := uow.CollectionRepository(kind)
	items, err := repo.FindAll(ctx, userId)
	if err != nil {
		return apperror.IO("read "+string(kind), err)
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return notFound(kind, id)
	}
	target := items[idx]

	var referencing []*entity.Note
	if s.deletePolicy != config.DeletePolicyIgnore {
		referencing, err = uow.NoteRepository().FindAll(ctx, userId, specification.References{Collection: target})
		if err != nil {
			return apperror.IO("list notes", err)
		}
	}

	if s.deletePolicy == config.DeletePolicyBlock {
		active := 0
		for _, note := range referencing {
			if !note.IsDeleted {
				active++
			}
		}
		if active > 0 {
			return apperror.Conflict("%s is used by %d notes", kind.Singular(), active)
		}
	}

	items = append(items[:idx], items[idx+1:]...)
	for _, item := range items {
		if item.ParentId != nil && *item.ParentId == id {
			item.ParentId = nil
		}
	}
	Resequence(items)

	if err := repo.SaveAll(ctx, userId, items); err != nil {
		return apperror.IO("write "+string(kind), err)
	}

	if s.deletePolicy == config.DeletePolicyCascade {
		s.detachNotes(ctx, uow, target, referencing)
	}

	s.metrics.StoreOperation(string(kind), "delete")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.CollectionDeleted, userId, string(kind), id.String()))
	return nil
}

// detachNotes clears references to a deleted entity. Each note is re-read
// under its own lock; failures are logged so one bad note does not undo the
// delete.
func (s *collectionService) detachNotes(ctx context.Context, uow unitofwork.UnitOfWork, target *entity.Collection, notes []*entity.Note) {
	repo := uow.NoteRepository()
	ref := specification.References{Collection: target}

	for _, candidate := range notes {
		func() {
			unlock := uow.LockNote(target.UserId, candidate.Id)
			defer unlock()

			note, err := repo.FindOne(ctx, target.UserId, candidate.Id)
			if err != nil || note == nil || !ref.IsSatisfiedBy(note) {
				return
			}

			switch target.Kind {
			case entity.KindTag:
				kept := make([]string, 0, len(note.Tags))
				for _, tag := range note.Tags {
					if tag != target.Id.String() && tag != target.Name {
						kept = append(kept, tag)
					}
				}
				note.Tags = kept
			case entity.KindNotebook:
				note.NotebookId = nil
			case entity.KindFolder:
				note.FolderId = nil
			}
			note.UpdatedAt = s.now()
			note.Version++

			if err := repo.Update(ctx, note, false); err != nil {
				s.logger.Error("CollectionService", "Failed to detach note", map[string]interface{}{
					"error":   err,
					"note_id": note.Id.String(),
					"kind":    string(target.Kind),
				})
				return
			}
			s.publisherService.Publish(ctx, events.NewChangeEvent(events.NoteUpdated, target.UserId, noteKind, note.Id.String()).WithVersion(note.Version))
		}()
	}
}

func (s *collectionService) Reorder(ctx context.Context, userId string, kind entity.CollectionKind, req *dto.ReorderRequest) ([]*dto.CollectionResponse, error) {
	sourceId, err := uuid.Parse(req.SourceId)
	if err != nil {
		return nil, apperror.Validation("sourceId must be a UUID")
	}
	targetId, err := uuid.Parse(req.TargetId)
	if err != nil {
		return nil, apperror.Validation("targetId must be a UUID")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockCollection(userId, kind)

	repo := uow.CollectionRepository(kind)
	items, err := repo.FindAll(ctx, userId)
	if err != nil {
		unlock()
		return nil, apperror.IO("read "+string(kind), err)
	}

	reordered, err := Reorder(items, sourceId, targetId, req.Position)
	if err != nil {
		unlock()
		return nil, err
	}
	if sourceId != targetId {
		now := s.now()
		for _, item := range reordered {
			if item.Id == sourceId {
				item.UpdatedAt = now
			}
		}
	}

	err = repo.SaveAll(ctx, userId, reordered)
	unlock()
	if err != nil {
		return nil, apperror.IO("write "+string(kind), err)
	}

	s.metrics.StoreOperation(string(kind), "reorder")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.CollectionReordered, userId, string(kind), sourceId.String()))
	return s.withNoteCounts(ctx, uow, userId, reordered)
}

// Move reparents a notebook or folder. A nil parent moves it to the root.
func (s *collectionService) Move(ctx context.Context, userId string, kind entity.CollectionKind, id uuid.UUID, req *dto.MoveCollectionRequest) (*dto.CollectionResponse, error) {
	if !kind.Nestable() {
		return nil, apperror.Validation("%s cannot be nested", kind)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockCollection(userId, kind)

	repo := uow.CollectionRepository(kind)
	items, err := repo.FindAll(ctx, userId)
	if err != nil {
		unlock()
		return nil, apperror.IO("read "+string(kind), err)
	}
	idx := indexOf(items, id)
	if idx < 0 {
		unlock()
		return nil, notFound(kind, id)
	}

	parentId, err := resolveParent(kind, items, req.ParentId)
	if err != nil {
		unlock()
		return nil, err
	}
	if parentId != nil && descendsFrom(items, *parentId, id) {
		unlock()
		return nil, apperror.Validation("cannot move a %s into itself or one of its descendants", kind.Singular())
	}

	items[idx].ParentId = parentId
	items[idx].UpdatedAt = s.now()

	err = repo.SaveAll(ctx, userId, items)
	unlock()
	if err != nil {
		return nil, apperror.IO("write "+string(kind), err)
	}

	s.metrics.StoreOperation(string(kind), "move")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.CollectionMoved, userId, string(kind), id.String()))
	return s.Show(ctx, userId, kind, id)
}

// Normalize rewrites the list with sortOrders 0..n-1, repairing duplicates
// and legacy records without an order. It returns the number of entities.
func (s *collectionService) Normalize(ctx context.Context, userId string, kind entity.CollectionKind) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockCollection(userId, kind)
	defer unlock()

	repo := uow.CollectionRepository(kind)
	items, err := repo.FindAll(ctx, userId)
	if err != nil {
		return 0, apperror.IO("read "+string(kind), err)
	}
	if len(items) == 0 {
		return 0, nil
	}
	Resequence(items)
	if err := repo.SaveAll(ctx, userId, items); err != nil {
		return 0, apperror.IO("write "+string(kind), err)
	}

	s.logger.Info("CollectionService", "Normalized sort order", map[string]interface{}{
		"user_id": userId,
		"kind":    string(kind),
		"count":   len(items),
	})
	return len(items), nil
}

// withNoteCounts derives noteCount from the non-deleted notes on every call.
func (s *collectionService) withNoteCounts(ctx context.Context, uow unitofwork.UnitOfWork, userId string, items []*entity.Collection) ([]*dto.CollectionResponse, error) {
	result := make([]*dto.CollectionResponse, 0, len(items))
	if len(items) == 0 {
		return result, nil
	}

	notes, err := uow.NoteRepository().FindAll(ctx, userId, specification.Deleted{Value: false})
	if err != nil {
		return nil, apperror.IO("list notes", err)
	}

	for _, item := range items {
		ref := specification.References{Collection: item}
		count := 0
		for _, note := range notes {
			if ref.IsSatisfiedBy(note) {
				count++
			}
		}
		result = append(result, toCollectionResponse(item, count))
	}
	return result, nil
}

func resolveParent(kind entity.CollectionKind, items []*entity.Collection, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if !kind.Nestable() {
		return nil, apperror.Validation("%s cannot be nested", kind)
	}
	parentId, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperror.Validation("parentId must be a UUID")
	}
	if indexOf(items, parentId) < 0 {
		return nil, apperror.NotFound("parent %s %s not found", kind.Singular(), parentId)
	}
	return &parentId, nil
}

func notFound(kind entity.CollectionKind, id uuid.UUID) error {
	return apperror.NotFound("%s %s not found", kind.Singular(), id)
}

func toCollectionResponse(item *entity.Collection, noteCount int) *dto.CollectionResponse {
	var parentId *string
	if item.ParentId != nil {
		p := item.ParentId.String()
		parentId = &p
	}
	return &dto.CollectionResponse{
		Id:        item.Id.String(),
		Name:      item.Name,
		Color:     item.Color,
		SortOrder: item.SortOrder,
		ParentId:  parentId,
		NoteCount: noteCount,
		Created:   item.CreatedAt,
		Updated:   item.UpdatedAt,
	}
}
