package implementation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"noet-be/internal/entity"
	"noet-be/internal/mapper"
	"noet-be/internal/model"
	"noet-be/internal/repository/contract"
	"noet-be/internal/repository/specification"
	"noet-be/pkg/fsutil"

	"github.com/google/uuid"
)

type NoteRepositoryImpl struct {
	layout layout
	mapper *mapper.NoteMapper
}

func NewNoteRepository(basePath string) contract.NoteRepository {
	return &NoteRepositoryImpl{
		layout: layout{base: basePath},
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	dir := r.layout.noteDir(note.UserId, note.Id)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err == nil {
		return fmt.Errorf("note %s already exists", note.Id)
	}
	if err := os.MkdirAll(r.layout.attachmentsDir(note.UserId, note.Id), 0o755); err != nil {
		return fmt.Errorf("create note directory: %w", err)
	}
	return r.write(note, true)
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note, withContent bool) error {
	if _, err := os.Stat(r.layout.noteDir(note.UserId, note.Id)); err != nil {
		return fmt.Errorf("note directory: %w", err)
	}
	return r.write(note, withContent)
}

// write puts content on disk before metadata, so a crash in between leaves
// the previous version advertised rather than a version without its content.
func (r *NoteRepositoryImpl) write(note *entity.Note, withContent bool) error {
	if withContent {
		if err := fsutil.WriteFileAtomic(r.layout.contentPath(note.UserId, note.Id), []byte(note.Content), 0o644); err != nil {
			return fmt.Errorf("write content: %w", err)
		}
	}
	if err := fsutil.WriteJSONAtomic(r.layout.metadataPath(note.UserId, note.Id), r.mapper.ToModel(note)); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, userId string, id uuid.UUID) error {
	return os.RemoveAll(r.layout.noteDir(userId, id))
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, userId string, id uuid.UUID) (*entity.Note, error) {
	var meta model.NoteMetadata
	if err := fsutil.ReadJSON(r.layout.metadataPath(userId, id), &meta); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	content, err := os.ReadFile(r.layout.contentPath(userId, id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return r.mapper.ToEntity(userId, &meta, string(content))
}

// FindAll scans every note directory of the user. Entries that are not
// UUID-named directories, or whose metadata cannot be read, are skipped.
func (r *NoteRepositoryImpl) FindAll(ctx context.Context, userId string, specs ...specification.Specification) ([]*entity.Note, error) {
	entries, err := os.ReadDir(r.layout.userDir(userId))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*entity.Note{}, nil
		}
		return nil, err
	}

	notes := make([]*entity.Note, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		id, err := uuid.Parse(entry.Name())
		if err != nil {
			continue
		}

		note, err := r.FindOne(ctx, userId, id)
		if err != nil || note == nil {
			continue
		}
		if specification.MatchAll(note, specs...) {
			notes = append(notes, note)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (r *NoteRepositoryImpl) SaveAttachment(ctx context.Context, userId string, id uuid.UUID, filename string, src io.Reader) (int64, error) {
	dir := r.layout.attachmentsDir(userId, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(dir, ".upload.*")
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, filename)); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, err
	}
	return size, nil
}

func (r *NoteRepositoryImpl) AttachmentPath(userId string, id uuid.UUID, filename string) string {
	return filepath.Join(r.layout.attachmentsDir(userId, id), filename)
}

func (r *NoteRepositoryImpl) DeleteAttachment(ctx context.Context, userId string, id uuid.UUID, filename string) error {
	err := os.Remove(r.AttachmentPath(userId, id, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
