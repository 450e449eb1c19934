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
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type packageRepository interface {
	packageReader
	Create(ctx context.Context, pkg *models.Package, courseIDs []string) error
	List(ctx context.Context) ([]models.Package, error)
	UpdateCost(ctx context.Context, name string, costCents int64) error
	Delete(ctx context.Context, name string) error
}

type courseReader interface {
	FindCourseByID(ctx context.Context, id string) (*models.Course, error)
}

// CreatePackageRequest is the payload for a new package.
type CreatePackageRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	CostCents int64    `json:"cost_cents" validate:"gte=0,max=100000000000"`
	CourseIDs []string `json:"course_ids" validate:"required,min=1,dive,required"`
}

// UpdatePackageCostRequest changes a package's price.
type UpdatePackageCostRequest struct {
	CostCents int64 `json:"cost_cents" validate:"gte=0,max=100000000000"`
}

// PackageService manages the package catalog.
type PackageService struct {
	repo      packageRepository
	courses   courseReader
	members   memberReader
	validator *validator.Validate
	timeout   time.Duration
	logger    *zap.Logger
}

// NewPackageService constructs PackageService.
func NewPackageService(repo packageRepository, courses courseReader, members memberReader, validate *validator.Validate, timeout time.Duration, logger *zap.Logger) *PackageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{repo: repo, courses: courses, members: members, validator: validate, timeout: operationTimeout(timeout), logger: logger}
}

// Create adds a package granting the listed courses.
func (s *PackageService) Create(ctx context.Context, req CreatePackageRequest) (*models.PackageDetail, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.CostCents < 0 || req.CostCents > MaxAmountCents {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "package cost out of range")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "package name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storageFailure(err, "failed to check package name")
	}

	courseIDs := uniqueStrings(req.CourseIDs)
	courses := make([]models.Course, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, err := s.courses.FindCourseByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, appErrors.ErrNotFound, "course not found: "+id, "failed to load course")
		}
		courses = append(courses, *course)
	}

	pkg := &models.Package{Name: req.Name, CostCents: req.CostCents}
	if err := s.repo.Create(ctx, pkg, courseIDs); err != nil {
		return nil, storageFailure(err, "failed to create package")
	}
	s.logger.Info("package created", zap.String("package", pkg.Name), zap.Int("courses", len(courses)))
	return &models.PackageDetail{Package: *pkg, Courses: courses, PriceCents: pkg.CostCents}, nil
}

// List returns every package with its courses. When memberID is set, prices carry that
// member's tier discount.
func (s *PackageService) List(ctx context.Context, memberID string) ([]models.PackageDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tier := models.TierBasic
	if memberID != "" {
		member, err := s.members.FindByID(ctx, memberID)
		if err != nil {
			return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
		}
		tier = member.Tier
	}

	pkgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list packages")
	}
	details := make([]models.PackageDetail, 0, len(pkgs))
	for _, pkg := range pkgs {
		courses, err := s.repo.ListCourses(ctx, pkg.ID)
		if err != nil {
			return nil, storageFailure(err, "failed to list package courses")
		}
		if courses == nil {
			courses = []models.Course{}
		}
		details = append(details, models.PackageDetail{
			Package:         pkg,
			Courses:         courses,
			PriceCents:      DiscountedCost(pkg.CostCents, tier),
			DiscountApplied: DiscountFor(tier),
		})
	}
	return details, nil
}

// UpdateCost reprices a package. Past purchases are unaffected.
func (s *PackageService) UpdateCost(ctx context.Context, name string, req UpdatePackageCostRequest) error {
	if req.CostCents < 0 || req.CostCents > MaxAmountCents {
		return appErrors.Clone(appErrors.ErrInvalidAmount, "package cost out of range")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.UpdateCost(ctx, name, req.CostCents); err != nil {
		return notFoundOr(err, appErrors.ErrPackageNotFound, "package not found", "failed to update package")
	}
	return nil
}

// Delete removes a package. Existing enrollments remain.
func (s *PackageService) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, name); err != nil {
		return notFoundOr(err, appErrors.ErrPackageNotFound, "package not found", "failed to delete package")
	}
	s.logger.Info("package deleted", zap.String("package", name))
	return nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
