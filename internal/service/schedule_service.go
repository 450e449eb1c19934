package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/repository"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type scheduleRepository interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
	FindCourseByName(ctx context.Context, category string, catalogNum int) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	CreateClass(ctx context.Context, class *models.Class, admit repository.ClassAdmission) error
	FindClassByID(ctx context.Context, id string) (*models.Class, error)
	ListClassesByTrainer(ctx context.Context, trainerID string) ([]models.Class, error)
	DeleteClass(ctx context.Context, id string) error
}

type trainerRepository interface {
	Create(ctx context.Context, trainer *models.Trainer) error
	FindByID(ctx context.Context, id string) (*models.Trainer, error)
	List(ctx context.Context) ([]models.Trainer, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CreateCourseRequest is the payload for a catalog course.
type CreateCourseRequest struct {
	Category   string `json:"category" validate:"required,max=50"`
	CatalogNum int    `json:"catalog_num" validate:"gte=0,lte=999"`
}

// CreateClassRequest is the payload for scheduling a weekly class.
type CreateClassRequest struct {
	CourseID        string    `json:"course_id" validate:"required"`
	TrainerID       string    `json:"trainer_id" validate:"required"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
}

// ConflictCheckRequest proposes a schedule for a trainer. Without dates it is checked as
// a single session on StartTime's date.
type ConflictCheckRequest struct {
	TrainerID       string     `json:"trainer_id" validate:"required"`
	StartTime       time.Time  `json:"start_time" validate:"required"`
	DurationMinutes int        `json:"duration_minutes"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
}

// CreateTrainerRequest is the payload for a trainer.
type CreateTrainerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=32"`
}

// ScheduleService manages courses, trainers and class scheduling.
type ScheduleService struct {
	repo      scheduleRepository
	trainers  trainerRepository
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	timeout   time.Duration
	logger    *zap.Logger
}

// NewScheduleService constructs ScheduleService. cache may be nil.
func NewScheduleService(repo scheduleRepository, trainers trainerRepository, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, timeout time.Duration, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:      repo,
		trainers:  trainers,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		timeout:   operationTimeout(timeout),
		logger:    logger,
	}
}

// CreateCourse adds a catalog course. Category and catalog number together are unique.
func (s *ScheduleService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	req.Category = strings.ToUpper(strings.TrimSpace(req.Category))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.repo.FindCourseByName(ctx, req.Category, req.CatalogNum); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storageFailure(err, "failed to check course")
	}

	course := &models.Course{Category: req.Category, CatalogNum: req.CatalogNum}
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, storageFailure(err, "failed to create course")
	}
	return course, nil
}

// ListCourses returns the course catalog.
func (s *ScheduleService) ListCourses(ctx context.Context) ([]models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

func validateSchedule(startDate, endDate time.Time, durationMinutes int) error {
	if dateOnly(startDate).After(dateOnly(endDate)) {
		return appErrors.Clone(appErrors.ErrInvalidDateRange, "")
	}
	if durationMinutes <= 0 || durationMinutes > models.MaxClassDurationMinutes {
		return appErrors.Clone(appErrors.ErrInvalidDuration, "")
	}
	return nil
}

// CreateClass schedules a weekly class. Checks run in order and stop at the first failure:
// date range, duration, capacity, then the trainer's existing timetable.
func (s *ScheduleService) CreateClass(ctx context.Context, req CreateClassRequest) (class *models.Class, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("schedule.create_class", start, err) }(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := validateSchedule(req.StartDate, req.EndDate, req.DurationMinutes); err != nil {
		return nil, err
	}
	if req.Capacity < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidCapacity, "")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.repo.FindCourseByID(ctx, req.CourseID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "course not found", "failed to load course")
	}

	class = &models.Class{
		CourseID:        req.CourseID,
		TrainerID:       req.TrainerID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		StartDate:       dateOnly(req.StartDate),
		EndDate:         dateOnly(req.EndDate),
		Capacity:        req.Capacity,
	}
	err = s.repo.CreateClass(ctx, class, func(existing []models.Class) error {
		if clash := findConflict(*class, existing); clash != nil {
			return appErrors.Clone(appErrors.ErrTrainerConflict, "trainer already teaches class "+clash.ID+" at that time")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrTrainerConflict) {
			s.metrics.RecordClassAdmission("conflict")
		}
		return nil, notFoundOr(err, appErrors.ErrNotFound, "trainer not found", "failed to create class")
	}
	s.metrics.RecordClassAdmission("created")
	s.invalidateReports(ctx)
	s.logger.Info("class scheduled",
		zap.String("class_id", class.ID),
		zap.String("trainer_id", class.TrainerID),
		zap.String("weekday", class.Weekday().String()),
	)
	return class, nil
}

// HasConflict reports whether a proposed schedule overlaps any of the trainer's classes.
func (s *ScheduleService) HasConflict(ctx context.Context, req ConflictCheckRequest) (*models.ClassConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	startDate, endDate := req.StartTime, req.StartTime
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}
	if err := validateSchedule(startDate, endDate, req.DurationMinutes); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.trainers.FindByID(ctx, req.TrainerID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "trainer not found", "failed to load trainer")
	}
	existing, err := s.repo.ListClassesByTrainer(ctx, req.TrainerID)
	if err != nil {
		return nil, storageFailure(err, "failed to list trainer classes")
	}

	candidate := models.Class{
		TrainerID:       req.TrainerID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		StartDate:       dateOnly(startDate),
		EndDate:         dateOnly(endDate),
	}
	if clash := findConflict(candidate, existing); clash != nil {
		return &models.ClassConflict{Conflict: true, ConflictClassID: clash.ID}, nil
	}
	return &models.ClassConflict{}, nil
}

// DeleteClass removes a class and its enrollments.
func (s *ScheduleService) DeleteClass(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.DeleteClass(ctx, id); err != nil {
		return notFoundOr(err, appErrors.ErrNotFound, "class not found", "failed to delete class")
	}
	s.invalidateReports(ctx)
	s.logger.Info("class deleted", zap.String("class_id", id))
	return nil
}

// ListTrainerClasses returns the classes a trainer teaches.
func (s *ScheduleService) ListTrainerClasses(ctx context.Context, trainerID string) ([]models.Class, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.trainers.FindByID(ctx, trainerID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "trainer not found", "failed to load trainer")
	}
	classes, err := s.repo.ListClassesByTrainer(ctx, trainerID)
	if err != nil {
		return nil, storageFailure(err, "failed to list trainer classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	return classes, nil
}

// CreateTrainer registers a trainer.
func (s *ScheduleService) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*models.Trainer, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid trainer payload")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	trainer := &models.Trainer{FirstName: req.FirstName, LastName: req.LastName, Phone: strings.TrimSpace(req.Phone)}
	if err := s.trainers.Create(ctx, trainer); err != nil {
		return nil, storageFailure(err, "failed to create trainer")
	}
	s.invalidateReports(ctx)
	return trainer, nil
}

// ListTrainers returns all trainers.
func (s *ScheduleService) ListTrainers(ctx context.Context) ([]models.Trainer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	trainers, err := s.trainers.List(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list trainers")
	}
	if trainers == nil {
		trainers = []models.Trainer{}
	}
	return trainers, nil
}

func (s *ScheduleService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, trainerHoursCachePattern); err != nil {
		s.logger.Warn("trainer hours cache not invalidated", zap.Error(err))
	}
}
