package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"noet-be/internal/dto"
	"noet-be/internal/entity"
	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/logger"
	"noet-be/internal/pkg/metrics"
	"noet-be/internal/repository/unitofwork"
	"noet-be/pkg/events"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	attachmentKind     = "attachments"
	defaultFilename    = "file"
	maxFilenameLength  = 120
	attachmentFormKey  = "file"
	attachmentNotFound = "attachment %s not found"
)

// AllowedMimeTypes are matched against the sniffed type and its parents, so
// "application/zip" also admits zip based office documents.
var AllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"image/bmp",
	"application/pdf",
	"text/plain",
	"text/markdown",
	"text/csv",
	"text/html",
	"application/json",
	"application/zip",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"audio/mpeg",
	"audio/wav",
	"audio/ogg",
	"video/mp4",
	"video/webm",
	"video/quicktime",
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type IAttachmentService interface {
	List(ctx context.Context, userId string, noteId uuid.UUID) ([]dto.AttachmentResponse, error)
	Upload(ctx context.Context, userId string, noteId uuid.UUID, files []*multipart.FileHeader) ([]dto.AttachmentResponse, error)
	Open(ctx context.Context, userId string, noteId uuid.UUID, filename string) (*AttachmentFile, error)
	Delete(ctx context.Context, userId string, noteId uuid.UUID, filename string) error
	MaxUploadBytes() int64
}

// AttachmentFile is an open attachment ready to stream. The caller owns Reader.
type AttachmentFile struct {
	Reader       io.ReadCloser
	Size         int64
	MimeType     string
	OriginalName string
}

type attachmentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
	metrics          *metrics.Metrics
	maxUploadBytes   int64
	now              func() time.Time
}

func NewAttachmentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
	m *metrics.Metrics,
	maxUploadBytes int64,
) IAttachmentService {
	return &attachmentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
		metrics:          m,
		maxUploadBytes:   maxUploadBytes,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *attachmentService) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

func (s *attachmentService) List(ctx context.Context, userId string, noteId uuid.UUID) ([]dto.AttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := findNoteForAttachment(ctx, uow, userId, noteId)
	if err != nil {
		return nil, err
	}
	return toAttachmentResponses(note.Attachments), nil
}

// Upload checks every file before storing any of them, then records them in
// a single metadata write.
func (s *attachmentService) Upload(ctx context.Context, userId string, noteId uuid.UUID, files []*multipart.FileHeader) ([]dto.AttachmentResponse, error) {
	if len(files) == 0 {
		return nil, apperror.Validation("no file in form field %q", attachmentFormKey)
	}

	mimeTypes := make([]string, len(files))
	for i, fh := range files {
		if fh.Size > s.maxUploadBytes {
			return nil, apperror.UploadTooLarge("%s exceeds the %d MB limit", fh.Filename, s.maxUploadBytes/(1024*1024))
		}
		mime, err := sniff(fh)
		if err != nil {
			return nil, err
		}
		mimeTypes[i] = mime
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockNote(userId, noteId)
	defer unlock()

	note, err := findNoteForAttachment(ctx, uow, userId, noteId)
	if err != nil {
		return nil, err
	}

	repo := uow.NoteRepository()
	added := make([]entity.Attachment, 0, len(files))
	discard := func() {
		for _, a := range added {
			if err := repo.DeleteAttachment(ctx, userId, noteId, a.Filename); err != nil {
				s.logger.Warn("AttachmentService", "Failed to remove unrecorded attachment", map[string]interface{}{
					"note_id":  noteId.String(),
					"filename": a.Filename,
					"error":    err.Error(),
				})
			}
		}
	}
	for i, fh := range files {
		filename := s.uniqueFilename(note, fh.Filename)

		src, err := fh.Open()
		if err != nil {
			discard()
			return nil, apperror.IO("open upload", err)
		}
		size, err := repo.SaveAttachment(ctx, userId, noteId, filename, src)
		src.Close()
		if err != nil {
			discard()
			return nil, apperror.IO("store attachment", err)
		}

		attachment := entity.Attachment{
			Filename:     filename,
			OriginalName: fh.Filename,
			Size:         size,
			MimeType:     mimeTypes[i],
			UploadedAt:   s.now(),
		}
		note.Attachments = append(note.Attachments, attachment)
		added = append(added, attachment)
		s.metrics.Uploaded(size)
	}

	note.UpdatedAt = s.now()
	note.Version++
	if err := repo.Update(ctx, note, false); err != nil {
		discard()
		return nil, apperror.IO("update note", err)
	}

	s.metrics.StoreOperation(attachmentKind, "create")
	for _, a := range added {
		s.publisherService.Publish(ctx, events.NewChangeEvent(events.AttachmentAdded, userId, attachmentKind, a.Filename).WithVersion(note.Version))
	}
	return toAttachmentResponses(added), nil
}

func (s *attachmentService) Open(ctx context.Context, userId string, noteId uuid.UUID, filename string) (*AttachmentFile, error) {
	if !safeStoredName(filename) {
		return nil, apperror.Validation("invalid attachment name")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := findNoteForAttachment(ctx, uow, userId, noteId)
	if err != nil {
		return nil, err
	}
	_, attachment := note.FindAttachment(filename)
	if attachment == nil {
		return nil, apperror.NotFound(attachmentNotFound, filename)
	}

	f, err := os.Open(uow.NoteRepository().AttachmentPath(userId, noteId, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound(attachmentNotFound, filename)
		}
		return nil, apperror.IO("open attachment", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, apperror.IO("stat attachment", err)
	}

	return &AttachmentFile{
		Reader:       f,
		Size:         info.Size(),
		MimeType:     attachment.MimeType,
		OriginalName: attachment.OriginalName,
	}, nil
}

func (s *attachmentService) Delete(ctx context.Context, userId string, noteId uuid.UUID, filename string) error {
	if !safeStoredName(filename) {
		return apperror.Validation("invalid attachment name")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	unlock := uow.LockNote(userId, noteId)
	defer unlock()

	note, err := findNoteForAttachment(ctx, uow, userId, noteId)
	if err != nil {
		return err
	}
	idx, _ := note.FindAttachment(filename)
	if idx < 0 {
		return apperror.NotFound(attachmentNotFound, filename)
	}

	repo := uow.NoteRepository()
	note.Attachments = append(note.Attachments[:idx], note.Attachments[idx+1:]...)
	note.UpdatedAt = s.now()
	note.Version++
	if err := repo.Update(ctx, note, false); err != nil {
		return apperror.IO("update note", err)
	}
	// metadata no longer lists it; a leftover file is harmless
	if err := repo.DeleteAttachment(ctx, userId, noteId, filename); err != nil {
		s.logger.Warn("AttachmentService", "Failed to remove attachment file", map[string]interface{}{
			"note_id":  noteId.String(),
			"filename": filename,
			"error":    err.Error(),
		})
	}

	s.metrics.StoreOperation(attachmentKind, "delete")
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.AttachmentRemoved, userId, attachmentKind, filename).WithVersion(note.Version))
	return nil
}

func (s *attachmentService) uniqueFilename(note *entity.Note, original string) string {
	base := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitizeFilename(original))
	name := base
	for i := 1; ; i++ {
		if _, existing := note.FindAttachment(name); existing == nil {
			return name
		}
		ext := filepath.Ext(base)
		name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), i, ext)
	}
}

func findNoteForAttachment(ctx context.Context, uow unitofwork.UnitOfWork, userId string, noteId uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, userId, noteId)
	if err != nil {
		return nil, apperror.IO("read note", err)
	}
	if note == nil {
		return nil, apperror.NotFound("note %s not found", noteId)
	}
	return note, nil
}

func sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", apperror.IO("open upload", err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", apperror.IO("read upload", err)
	}

	for m := detected; m != nil; m = m.Parent() {
		if mimetype.EqualsAny(m.String(), AllowedMimeTypes...) {
			return detected.String(), nil
		}
	}
	return "", apperror.UploadRejected("file type %s is not allowed", detected.String())
}

// sanitizeFilename keeps the base name with unsafe runs replaced by "_".
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = name[:maxFilenameLength-len(ext)] + ext
	}
	if name == "" {
		return defaultFilename
	}
	return name
}

func safeStoredName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && sanitizeFilename(name) == name
}
