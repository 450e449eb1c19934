package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
	"github.com/noah-isme/gym-ops-api/pkg/export"
	"github.com/noah-isme/gym-ops-api/pkg/jobs"
)

type datasetSource interface {
	Dataset(ctx context.Context, report string, year int, month time.Month) (export.Dataset, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	Delete(filename string) error
}

type jobQueue interface {
	TryEnqueue(job jobs.Job) error
}

const defaultExportRetention = 24 * time.Hour

// ExportRequest asks for a report to be rendered in the background.
type ExportRequest struct {
	Report string `json:"report" validate:"required,oneof=negative-balances trainer-hours"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	Year   int    `json:"year" validate:"omitempty,min=1,max=9999"`
	Month  int    `json:"month" validate:"omitempty,min=1,max=12"`
}

// ExportService queues report exports and tracks their status in memory. Finished
// exports are forgotten, and their files removed, once older than the retention.
type ExportService struct {
	reports   datasetSource
	storage   exportStorage
	queue     jobQueue
	validator *validator.Validate
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	exports map[string]*models.ExportJob
}

// NewExportService constructs ExportService. AttachQueue must be called before Request.
func NewExportService(reports datasetSource, storage exportStorage, validate *validator.Validate, retention time.Duration, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if retention <= 0 {
		retention = defaultExportRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports:   reports,
		storage:   storage,
		validator: validate,
		retention: retention,
		logger:    logger,
		now:       time.Now,
		exports:   make(map[string]*models.ExportJob),
	}
}

// AttachQueue wires the worker queue whose handler is s.Handle.
func (s *ExportService) AttachQueue(queue jobQueue) {
	s.queue = queue
}

// Request records an export and hands it to the worker queue.
func (s *ExportService) Request(ctx context.Context, req ExportRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	if req.Report == ReportTrainerHours && (req.Year == 0 || req.Month == 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "trainer-hours export requires year and month")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export queue not configured")
	}
	s.sweep()

	record := &models.ExportJob{
		ID:          uuid.NewString(),
		Report:      req.Report,
		Format:      req.Format,
		Year:        req.Year,
		Month:       req.Month,
		Status:      models.ExportStatusQueued,
		RequestedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.exports[record.ID] = record
	s.mu.Unlock()

	if err := s.queue.TryEnqueue(jobs.Job{ID: record.ID, Type: record.Report}); err != nil {
		s.mu.Lock()
		delete(s.exports, record.ID)
		s.mu.Unlock()
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "export queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	s.logger.Info("export queued", zap.String("export_id", record.ID), zap.String("report", record.Report))
	return s.snapshot(record.ID)
}

// Get returns the current state of an export.
func (s *ExportService) Get(ctx context.Context, id string) (*models.ExportJob, error) {
	return s.snapshot(id)
}

// Download returns the rendered file of a completed export.
func (s *ExportService) Download(ctx context.Context, id string) ([]byte, *models.ExportJob, error) {
	record, err := s.snapshot(id)
	if err != nil {
		return nil, nil, err
	}
	if record.Status != models.ExportStatusCompleted {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export is not ready")
	}
	payload, err := s.storage.Read(record.File)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to read export")
	}
	return payload, record, nil
}

// Handle renders one queued export. Returning an error lets the queue retry it.
func (s *ExportService) Handle(ctx context.Context, job jobs.Job) error {
	record, err := s.snapshot(job.ID)
	if err != nil {
		return err
	}
	data, err := s.reports.Dataset(ctx, record.Report, record.Year, time.Month(record.Month))
	if err != nil {
		return err
	}
	renderer, err := export.NewRenderer(export.Format(record.Format))
	if err != nil {
		return err
	}
	payload, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("render export: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.%s", record.Report, record.ID, record.Format)
	rel, err := s.storage.Save(filename, payload)
	if err != nil {
		return fmt.Errorf("store export: %w", err)
	}
	s.finish(job.ID, rel, nil)
	s.logger.Info("export completed", zap.String("export_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}

// MarkFailed is the queue's failure hook for exports that exhausted their retries.
func (s *ExportService) MarkFailed(job jobs.Job, err error) {
	s.finish(job.ID, "", err)
	s.logger.Warn("export failed", zap.String("export_id", job.ID), zap.Error(err))
}

func (s *ExportService) finish(id, file string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.exports[id]
	if !ok {
		return
	}
	now := s.now().UTC()
	record.FinishedAt = &now
	if cause != nil {
		record.Status = models.ExportStatusFailed
		record.Error = cause.Error()
		return
	}
	record.Status = models.ExportStatusCompleted
	record.File = filepath.ToSlash(file)
	record.Error = ""
}

// sweep drops finished exports older than the retention and deletes their files.
func (s *ExportService) sweep() {
	cutoff := s.now().UTC().Add(-s.retention)
	var files []string
	s.mu.Lock()
	for id, record := range s.exports {
		if record.FinishedAt == nil || record.FinishedAt.After(cutoff) {
			continue
		}
		if record.File != "" {
			files = append(files, record.File)
		}
		delete(s.exports, id)
	}
	s.mu.Unlock()

	for _, file := range files {
		if err := s.storage.Delete(file); err != nil {
			s.logger.Warn("failed to remove expired export", zap.String("file", file), zap.Error(err))
		}
	}
}

func (s *ExportService) snapshot(id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.exports[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	copied := *record
	return &copied, nil
}
