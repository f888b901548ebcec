package service

import (
	"context"
	"strings"
	"time"

	"noet-be/internal/dto"
	"noet-be/internal/entity"
	"noet-be/internal/mapper"
	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/metrics"
	"noet-be/internal/repository/specification"
	"noet-be/internal/repository/unitofwork"
	"noet-be/pkg/events"
	"noet-be/pkg/markdown"
	"noet-be/pkg/search"

	"github.com/google/uuid"
)

const noteKind = "notes"

type INoteService interface {
	List(ctx context.Context, userId string, query dto.ListNotesQuery) ([]*dto.NoteMetadataResponse, error)
	Create(ctx context.Context, userId string, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Show(ctx context.Context, userId string, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId string, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId string, id uuid.UUID) (*dto.NoteResponse, error)
	Restore(ctx context.Context, userId string, id uuid.UUID) (*dto.NoteResponse, error)
	Purge(ctx context.Context, userId string, id uuid.UUID) error
	Export(ctx context.Context, userId string, id uuid.UUID, format string) (*dto.ExportedNote, error)
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	metrics          *metrics.Metrics
	mapper           *mapper.NoteMapper
	now              func() time.Time
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	m *metrics.Metrics,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		metrics:          m,
		mapper:           mapper.NewNoteMapper(),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *noteService) List(ctx context.Context, userId string, query dto.ListNotesQuery) ([]*dto.NoteMetadataResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.Deleted{Value: false}}
	if query.Deleted != nil {
		specs[0] = specification.Deleted{Value: *query.Deleted}
	}
	if query.Starred != nil {
		specs = append(specs, specification.Starred{Value: *query.Starred})
	}
	if query.Archived != nil {
		specs = append(specs, specification.Archived{Value: *query.Archived})
	}
	if query.Since != nil {
		specs = append(specs, specification.UpdatedSince{Since: *query.Since})
	}
	if filters := search.ParseQuery(query.Search); !filters.Empty() {
		searchSpecs, ok, err := s.searchSpecifications(ctx, uow, userId, filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []*dto.NoteMetadataResponse{}, nil
		}
		specs = append(specs, searchSpecs...)
	}
	if query.Notebook != "" {
		specs = append(specs, specification.ByNotebookID{NotebookID: query.Notebook})
	}
	if query.Folder != "" {
		specs = append(specs, specification.ByFolderID{FolderID: query.Folder})
	}
	if query.Tag != "" {
		spec, err := s.tagSpecification(ctx, uow, userId, query.Tag)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	notes, err := uow.NoteRepository().FindAll(ctx, userId, specs...)
	if err != nil {
		return nil, apperror.IO("list notes", err)
	}

	result := make([]*dto.NoteMetadataResponse, 0, len(notes))
	for _, note := range notes {
		result = append(result, toNoteMetadataResponse(note))
	}
	return result, nil
}

// searchSpecifications turns parsed search filters into specifications.
// ok is false when a named notebook does not exist, so nothing can match.
func (s *noteService) searchSpecifications(ctx context.Context, uow unitofwork.UnitOfWork, userId string, filters search.Filters) ([]specification.Specification, bool, error) {
	var specs []specification.Specification
	if filters.Text != "" {
		specs = append(specs, specification.SearchQuery{Query: filters.Text})
	}
	if filters.Title != "" {
		specs = append(specs, specification.TitleContains{Term: filters.Title})
	}
	if filters.Tag != "" {
		spec := specification.ByTag{TagID: filters.Tag, Name: filters.Tag}
		tag, err := findByName(ctx, uow, userId, entity.KindTag, filters.Tag)
		if err != nil {
			return nil, false, err
		}
		if tag != nil {
			spec = specification.ByTag{TagID: tag.Id.String(), Name: tag.Name}
		}
		specs = append(specs, spec)
	}
	if filters.Notebook != "" {
		notebook, err := findByName(ctx, uow, userId, entity.KindNotebook, filters.Notebook)
		if err != nil {
			return nil, false, err
		}
		if notebook == nil {
			return nil, false, nil
		}
		specs = append(specs, specification.ByNotebookID{NotebookID: notebook.Id.String()})
	}
	return specs, true, nil
}

func findByName(ctx context.Context, uow unitofwork.UnitOfWork, userId string, kind entity.CollectionKind, name string) (*entity.Collection, error) {
	items, err := uow.CollectionRepository(kind).FindAll(ctx, userId)
	if err != nil {
		return nil, apperror.IO("read "+string(kind), err)
	}
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, nil
		}
	}
	return nil, nil
}

// tagSpecification matches by id, and also by name when the id is a known tag.
func (s *noteService) tagSpecification(ctx context.Context, uow unitofwork.UnitOfWork, userId, tag string) (specification.Specification, error) {
	spec := specification.ByTag{TagID: tag}
	id, err := uuid.Parse(tag)
	if err != nil {
		return spec, nil
	}
	found, err := uow.CollectionRepository(entity.KindTag).FindOne(ctx, userId, id)
	if err != nil {
		return nil, apperror.IO("read tags", err)
	}
	if found != nil {
		spec.Name = found.Name
	}
	return spec, nil
}

func (s *noteService) Create(ctx context.Context, userId string, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = entity.DefaultNoteTitle
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now()
	note := entity.Note{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       title,
		Content:     req.Content,
		Tags:        tags,
		NotebookId:  req.Notebook,
		FolderId:    req.Folder,
		Starred:     req.Starred,
		Archived:    req.Archived,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
		Attachments: []entity.Attachment{},
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, apperror.IO("create note", err)
	}

	s.metrics.StoreOperation(noteKind, "create")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.NoteCreated, userId, noteKind, note.Id.String()).WithVersion(note.Version))
	return toNoteResponse(&note), nil
}

func (s *noteService) Show(ctx context.Context, userId string, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := s.findNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, userId string, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockNote(userId, id)
	defer unlock()

	note, err := s.findNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != note.Version {
		return nil, apperror.Conflict("note %s is at version %d, update was based on version %d", id, note.Version, *req.Version)
	}

	meta := s.mapper.ToModel(note)
	if err := s.mapper.ApplyPatch(meta, req.Metadata); err != nil {
		return nil, apperror.Validation("invalid metadata: %v", err)
	}
	updated, err := s.mapper.ToEntity(userId, meta, note.Content)
	if err != nil {
		return nil, apperror.Validation("invalid metadata: %v", err)
	}

	if req.Content != nil {
		updated.Content = *req.Content
	}
	s.touch(updated, note.Version)

	if err := uow.NoteRepository().Update(ctx, updated, req.Content != nil); err != nil {
		return nil, apperror.IO("update note", err)
	}

	s.metrics.StoreOperation(noteKind, "update")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.NoteUpdated, userId, noteKind, id.String()).WithVersion(updated.Version))
	return toNoteResponse(updated), nil
}

// Delete moves the note to the trash. A note already in the trash keeps its
// original deletedAt.
func (s *noteService) Delete(ctx context.Context, userId string, id uuid.UUID) (*dto.NoteResponse, error) {
	return s.setDeleted(ctx, userId, id, true, events.NoteTrashed)
}

// Restore takes the note out of the trash. Restoring an active note still
// succeeds and bumps the version.
func (s *noteService) Restore(ctx context.Context, userId string, id uuid.UUID) (*dto.NoteResponse, error) {
	return s.setDeleted(ctx, userId, id, false, events.NoteRestored)
}

func (s *noteService) setDeleted(ctx context.Context, userId string, id uuid.UUID, deleted bool, eventType string) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockNote(userId, id)
	defer unlock()

	note, err := s.findNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	note.IsDeleted = deleted
	s.touch(note, note.Version)

	if err := uow.NoteRepository().Update(ctx, note, false); err != nil {
		return nil, apperror.IO("update note", err)
	}

	s.metrics.StoreOperation(noteKind, strings.ToLower(strings.TrimPrefix(eventType, "NOTE_")))
	s.publisherService.Publish(ctx, events.NewChangeEvent(eventType, userId, noteKind, id.String()).WithVersion(note.Version))
	return toNoteResponse(note), nil
}

func (s *noteService) Purge(ctx context.Context, userId string, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockNote(userId, id)
	defer unlock()

	if _, err := s.findNote(ctx, uow, userId, id); err != nil {
		return err
	}
	if err := uow.NoteRepository().Delete(ctx, userId, id); err != nil {
		return apperror.IO("purge note", err)
	}

	s.metrics.StoreOperation(noteKind, "purge")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.NotePurged, userId, noteKind, id.String()))
	return nil
}

func (s *noteService) Export(ctx context.Context, userId string, id uuid.UUID, format string) (*dto.ExportedNote, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := s.findNote(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	base := exportBaseName(note.Title)
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		body, err := markdown.WithFrontmatter(markdown.Frontmatter{
			ID:       note.Id.String(),
			Title:    note.Title,
			Tags:     note.Tags,
			Notebook: deref(note.NotebookId),
			Folder:   deref(note.FolderId),
			Starred:  note.Starred,
			Archived: note.Archived,
			Created:  note.CreatedAt,
			Updated:  note.UpdatedAt,
			Version:  note.Version,
		}, note.Content)
		if err != nil {
			return nil, apperror.IO("export note", err)
		}
		return &dto.ExportedNote{Filename: base + ".md", ContentType: "text/markdown; charset=utf-8", Body: body}, nil
	case "html":
		body, err := markdown.RenderHTML(note.Title, note.Content)
		if err != nil {
			return nil, apperror.IO("export note", err)
		}
		return &dto.ExportedNote{Filename: base + ".html", ContentType: "text/html; charset=utf-8", Body: body}, nil
	default:
		return nil, apperror.Validation("format must be markdown or html")
	}
}

func (s *noteService) findNote(ctx context.Context, uow unitofwork.UnitOfWork, userId string, id uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, userId, id)
	if err != nil {
		return nil, apperror.IO("read note", err)
	}
	if note == nil {
		return nil, apperror.NotFound("note %s not found", id)
	}
	return note, nil
}

// touch stamps a metadata write: refresh updated, bump the version and keep
// deletedAt paired with deleted.
func (s *noteService) touch(note *entity.Note, previousVersion int) {
	now := s.now()
	note.UpdatedAt = now
	note.Version = previousVersion + 1
	if note.IsDeleted {
		if note.DeletedAt == nil {
			note.DeletedAt = &now
		}
	} else {
		note.DeletedAt = nil
	}
}

func exportBaseName(title string) string {
	name := sanitizeFilename(title)
	if name == "" || name == defaultFilename {
		return "note"
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAttachmentResponses(attachments []entity.Attachment) []dto.AttachmentResponse {
	result := make([]dto.AttachmentResponse, len(attachments))
	for i, a := range attachments {
		result[i] = dto.AttachmentResponse{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			Size:         a.Size,
			MimeType:     a.MimeType,
			Uploaded:     a.UploadedAt,
		}
	}
	return result
}

func toNoteMetadataResponse(note *entity.Note) *dto.NoteMetadataResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.NoteMetadataResponse{
		Id:          note.Id.String(),
		Title:       note.Title,
		Tags:        tags,
		Notebook:    note.NotebookId,
		Folder:      note.FolderId,
		Starred:     note.Starred,
		Archived:    note.Archived,
		Deleted:     note.IsDeleted,
		DeletedAt:   note.DeletedAt,
		Created:     note.CreatedAt,
		Updated:     note.UpdatedAt,
		Version:     note.Version,
		Attachments: toAttachmentResponses(note.Attachments),
	}
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		NoteMetadataResponse: *toNoteMetadataResponse(note),
		Content:              note.Content,
	}
}
