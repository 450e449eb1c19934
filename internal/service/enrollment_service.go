package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type enrollmentRepository interface {
	Enroll(ctx context.Context, memberID, classID string) (models.EnrollOutcome, error)
	FindClassByID(ctx context.Context, id string) (*models.Class, error)
	ListClassesByCourse(ctx context.Context, courseID string) ([]models.Class, error)
	ListClassesByMember(ctx context.Context, memberID string) ([]models.Class, error)
}

type packageReader interface {
	FindByName(ctx context.Context, name string) (*models.Package, error)
	ListCourses(ctx context.Context, packageID string) ([]models.Course, error)
}

type purchaseLedger interface {
	ApplyPurchase(ctx context.Context, memberID string, costCents int64) (*models.LedgerEntry, error)
}

// EnrollmentService turns package purchases into class enrollments.
type EnrollmentService struct {
	classes  enrollmentRepository
	packages packageReader
	members  memberReader
	ledger   purchaseLedger
	metrics  *MetricsService
	timeout  time.Duration
	logger   *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(classes enrollmentRepository, packages packageReader, members memberReader, ledger purchaseLedger, metrics *MetricsService, timeout time.Duration, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		classes:  classes,
		packages: packages,
		members:  members,
		ledger:   ledger,
		metrics:  metrics,
		timeout:  operationTimeout(timeout),
		logger:   logger,
	}
}

// PurchasePackage charges the member the tier-discounted package cost, then tries to
// enroll them in every class of every course in the package. Payment and each enrollment
// commit independently: a full class is reported, never fatal, and never refunds the
// payment. Classes the member already attends are skipped, so repeating or overlapping
// purchases never duplicate an enrollment.
func (s *EnrollmentService) PurchasePackage(ctx context.Context, memberID, packageName string) (result *models.PackagePurchase, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("enrollment.purchase_package", start, err) }(time.Now())

	member, pkg, err := s.loadBuyer(ctx, memberID, packageName)
	if err != nil {
		return nil, err
	}

	price := DiscountedCost(pkg.CostCents, member.Tier)
	entry, err := s.ledger.ApplyPurchase(ctx, memberID, price)
	if err != nil {
		return nil, err
	}

	result = &models.PackagePurchase{
		Transaction:      entry.Transaction,
		Enrolled:         []string{},
		AlreadyEnrolled:  []string{},
		CapacityExceeded: []string{},
	}

	classes, unresolved := s.resolveClasses(ctx, pkg)
	result.Failed = append(result.Failed, unresolved...)

	for _, class := range classes {
		outcome, enrollErr := s.enrollOnce(ctx, memberID, class.ID)
		if enrollErr != nil {
			s.logger.Warn("package enrollment attempt failed",
				zap.String("member_id", memberID),
				zap.String("class_id", class.ID),
				zap.Error(enrollErr),
			)
			result.Failed = append(result.Failed, class.ID)
			continue
		}
		switch outcome {
		case models.EnrollOutcomeEnrolled:
			result.Enrolled = append(result.Enrolled, class.ID)
		case models.EnrollOutcomeAlreadyEnrolled:
			result.AlreadyEnrolled = append(result.AlreadyEnrolled, class.ID)
		case models.EnrollOutcomeFull:
			result.CapacityExceeded = append(result.CapacityExceeded, class.ID)
		}
	}

	s.logger.Info("package purchased",
		zap.String("member_id", memberID),
		zap.String("package", pkg.Name),
		zap.Int64("price_cents", price),
		zap.Int("enrolled", len(result.Enrolled)),
		zap.Int("capacity_exceeded", len(result.CapacityExceeded)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *EnrollmentService) loadBuyer(ctx context.Context, memberID, packageName string) (*models.Member, *models.Package, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	pkg, err := s.packages.FindByName(ctx, packageName)
	if err != nil {
		return nil, nil, notFoundOr(err, appErrors.ErrPackageNotFound, "package not found", "failed to load package")
	}
	return member, pkg, nil
}

// resolveClasses lists the distinct classes under the package's courses. IDs of the package
// or courses that could not be listed are returned separately.
func (s *EnrollmentService) resolveClasses(ctx context.Context, pkg *models.Package) ([]models.Class, []string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	courses, err := s.packages.ListCourses(ctx, pkg.ID)
	if err != nil {
		s.logger.Warn("package courses unavailable", zap.String("package_id", pkg.ID), zap.Error(err))
		return nil, []string{pkg.ID}
	}

	var (
		classes    []models.Class
		unresolved []string
		seen       = make(map[string]struct{})
	)
	for _, course := range courses {
		list, err := s.classes.ListClassesByCourse(ctx, course.ID)
		if err != nil {
			s.logger.Warn("course classes unavailable", zap.String("course_id", course.ID), zap.Error(err))
			unresolved = append(unresolved, course.ID)
			continue
		}
		for _, class := range list {
			if _, dup := seen[class.ID]; dup {
				continue
			}
			seen[class.ID] = struct{}{}
			classes = append(classes, class)
		}
	}
	return classes, unresolved
}

func (s *EnrollmentService) enrollOnce(ctx context.Context, memberID, classID string) (models.EnrollOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome, err := s.classes.Enroll(ctx, memberID, classID)
	if err != nil {
		return "", err
	}
	s.metrics.RecordEnrollment(outcome)
	return outcome, nil
}

// EnrollInClass enrolls a member in a single class. Unlike package fan-out, a full class
// is an error here. Enrolling twice is a no-op reported as ALREADY_ENROLLED.
func (s *EnrollmentService) EnrollInClass(ctx context.Context, memberID, classID string) (outcome models.EnrollOutcome, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("enrollment.enroll_class", start, err) }(time.Now())

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.members.FindByID(lookupCtx, memberID); err != nil {
		return "", notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	if _, err := s.classes.FindClassByID(lookupCtx, classID); err != nil {
		return "", notFoundOr(err, appErrors.ErrNotFound, "class not found", "failed to load class")
	}

	outcome, err = s.enrollOnce(ctx, memberID, classID)
	if err != nil {
		return "", notFoundOr(err, appErrors.ErrNotFound, "class not found", "failed to enroll member")
	}
	if outcome == models.EnrollOutcomeFull {
		return outcome, appErrors.Clone(appErrors.ErrCapacityExceeded, "class is at capacity")
	}
	return outcome, nil
}

// ListMemberClasses returns the classes a member is enrolled in.
func (s *EnrollmentService) ListMemberClasses(ctx context.Context, memberID string) ([]models.Class, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	classes, err := s.classes.ListClassesByMember(ctx, memberID)
	if err != nil {
		return nil, storageFailure(err, "failed to list member classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	return classes, nil
}
