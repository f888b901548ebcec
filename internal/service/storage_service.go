package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"noet-be/internal/dto"
	"noet-be/internal/model"
	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/logger"
	"noet-be/internal/repository/unitofwork"
	"noet-be/pkg/events"
	"noet-be/pkg/fsutil"
)

// IStorageService reads and switches the notes base path at runtime. The
// choice is persisted to a settings file and reapplied on startup.
type IStorageService interface {
	CurrentPath(ctx context.Context) *dto.StoragePathResponse
	Validate(ctx context.Context, path string) *dto.ValidateStorageResponse
	SetPath(ctx context.Context, path string) (*dto.StoragePathResponse, error)
	LoadPersisted(ctx context.Context) error
}

type storageService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
	settingsFile     string
	now              func() time.Time
}

func NewStorageService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
	settingsFile string,
) IStorageService {
	return &storageService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
		settingsFile:     settingsFile,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *storageService) CurrentPath(ctx context.Context) *dto.StoragePathResponse {
	res := &dto.StoragePathResponse{Path: s.uowFactory.BasePath()}

	var settings model.StorageSettings
	if err := fsutil.ReadJSON(s.settingsFile, &settings); err == nil && settings.NotesBasePath == res.Path {
		res.UpdatedAt = &settings.UpdatedAt
	}
	return res
}

// Validate reports whether path can serve as a notes root. A missing
// directory is acceptable when its parent exists and is writable.
func (s *storageService) Validate(ctx context.Context, path string) *dto.ValidateStorageResponse {
	res := &dto.ValidateStorageResponse{Path: path}
	if path == "" {
		res.Message = "path is required"
		return res
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		res.Message = fmt.Sprintf("invalid path: %v", err)
		return res
	}
	res.Path = abs

	info, err := os.Stat(abs)
	switch {
	case err == nil && !info.IsDir():
		res.Exists = true
		res.Message = "path exists but is not a directory"
		return res
	case err == nil:
		res.Exists = true
		res.Writable = writable(abs)
		if !res.Writable {
			res.Message = "directory is not writable"
			return res
		}
		res.Valid = true
		res.Message = "directory is ready"
		return res
	case !errors.Is(err, os.ErrNotExist):
		res.Message = fmt.Sprintf("cannot access path: %v", err)
		return res
	}

	parent := filepath.Dir(abs)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		res.Message = "parent directory does not exist"
		return res
	}
	res.Writable = writable(parent)
	if !res.Writable {
		res.Message = "parent directory is not writable"
		return res
	}
	res.Valid = true
	res.Message = "directory will be created"
	return res
}

func (s *storageService) SetPath(ctx context.Context, path string) (*dto.StoragePathResponse, error) {
	check := s.Validate(ctx, path)
	if !check.Valid {
		return nil, apperror.Validation("%s", check.Message)
	}

	if err := os.MkdirAll(check.Path, 0o755); err != nil {
		return nil, apperror.IO("create notes directory", err)
	}

	settings := model.StorageSettings{NotesBasePath: check.Path, UpdatedAt: s.now()}
	if err := os.MkdirAll(filepath.Dir(s.settingsFile), 0o755); err != nil {
		return nil, apperror.IO("create settings directory", err)
	}
	if err := fsutil.WriteJSONAtomic(s.settingsFile, settings); err != nil {
		return nil, apperror.IO("write storage settings", err)
	}

	previous := s.uowFactory.BasePath()
	s.uowFactory.SetBasePath(check.Path)

	s.logger.Info("StorageService", "Notes base path changed", map[string]interface{}{
		"from": previous,
		"to":   check.Path,
	})
	s.publisherService.Publish(ctx, events.NewChangeEvent(events.StoragePathChanged, "", "storage", ""))
	return &dto.StoragePathResponse{Path: check.Path, UpdatedAt: &settings.UpdatedAt}, nil
}

// LoadPersisted applies a previously saved base path, if any.
func (s *storageService) LoadPersisted(ctx context.Context) error {
	var settings model.StorageSettings
	if err := fsutil.ReadJSON(s.settingsFile, &settings); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if settings.NotesBasePath == "" {
		return nil
	}
	if err := os.MkdirAll(settings.NotesBasePath, 0o755); err != nil {
		return err
	}
	s.uowFactory.SetBasePath(settings.NotesBasePath)
	return nil
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".noet-write-check-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
