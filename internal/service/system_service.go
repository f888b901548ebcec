package service

import (
	"context"
	"errors"
	"runtime"
	"time"

	"noet-be/internal/config"
	"noet-be/internal/dto"
	"noet-be/internal/pkg/apperror"
	"noet-be/internal/pkg/logger"
)

type ISystemService interface {
	Health(ctx context.Context) *dto.HealthResponse
	Config(ctx context.Context) *dto.ConfigResponse
	Logs(ctx context.Context, level string, limit, offset int) ([]logger.LogEntry, error)
	LogById(ctx context.Context, id string) (*logger.LogEntry, error)
}

type systemService struct {
	cfg       *config.Config
	logger    logger.ILogger
	startedAt time.Time
}

func NewSystemService(cfg *config.Config, log logger.ILogger) ISystemService {
	return &systemService{
		cfg:       cfg,
		logger:    log,
		startedAt: time.Now(),
	}
}

func (s *systemService) Health(ctx context.Context) *dto.HealthResponse {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return &dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(s.startedAt).Seconds(),
		Memory: dto.MemoryStats{
			Alloc:     mem.Alloc,
			Sys:       mem.Sys,
			HeapInuse: mem.HeapInuse,
			NumGC:     mem.NumGC,
		},
		Port:        s.cfg.Endpoints.Backend.Port,
		Environment: s.cfg.App.Environment,
	}
}

func (s *systemService) Config(ctx context.Context) *dto.ConfigResponse {
	return &dto.ConfigResponse{
		BackendUrl:  s.cfg.Endpoints.Backend.URL(),
		FrontendUrl: s.cfg.Endpoints.Frontend.URL(),
		Environment: s.cfg.App.Environment,
		Limits: dto.LimitsResponse{
			MaxFileSize:      s.cfg.Limits.MaxUploadBytes,
			BodyLimit:        s.cfg.Limits.BodyLimitBytes,
			AllowedMimeTypes: AllowedMimeTypes,
		},
	}
}

func (s *systemService) Logs(ctx context.Context, level string, limit, offset int) ([]logger.LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.logger.GetLogs(level, limit, offset)
}

func (s *systemService) LogById(ctx context.Context, id string) (*logger.LogEntry, error) {
	entry, err := s.logger.GetLogById(id)
	if errors.Is(err, logger.ErrLogNotFound) {
		return nil, apperror.NotFound("log %s not found", id)
	}
	if err != nil {
		return nil, apperror.IO("read logs", err)
	}
	return entry, nil
}
