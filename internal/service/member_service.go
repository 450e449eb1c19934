package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/repository"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type memberRepository interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	DeleteCascade(ctx context.Context, id string) (*models.MemberDeletion, error)
}

// RegisterMemberRequest is the payload for member registration.
type RegisterMemberRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"required,max=32"`
	Email     string `json:"email" validate:"required,email"`
}

// MemberService registers, loads and removes members.
type MemberService struct {
	repo      memberRepository
	metrics   *MetricsService
	validator *validator.Validate
	timeout   time.Duration
	logger    *zap.Logger
}

// NewMemberService constructs MemberService.
func NewMemberService(repo memberRepository, metrics *MetricsService, validate *validator.Validate, timeout time.Duration, logger *zap.Logger) *MemberService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{repo: repo, metrics: metrics, validator: validate, timeout: operationTimeout(timeout), logger: logger}
}

// Register creates a member on the BASIC tier with a zero balance.
func (s *MemberService) Register(ctx context.Context, req RegisterMemberRequest) (*models.Member, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	member := &models.Member{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, storageFailure(err, "failed to register member")
	}
	s.logger.Info("member registered", zap.String("member_id", member.ID))
	return member, nil
}

// Get loads a member.
func (s *MemberService) Get(ctx context.Context, id string) (*models.Member, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	return member, nil
}

// Delete removes a member whose balance is not negative, unenrolling them and settling
// their outstanding rentals.
func (s *MemberService) Delete(ctx context.Context, id string) (result *models.MemberDeletion, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("member.delete", start, err) }(time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err = s.repo.DeleteCascade(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNegativeBalance) {
			return nil, appErrors.Clone(appErrors.ErrNegativeBalance, "member must settle a negative balance before removal")
		}
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to delete member")
	}
	s.logger.Info("member deleted",
		zap.String("member_id", id),
		zap.Int("unenrolled_classes", len(result.UnenrolledClasses)),
		zap.Int("settled_loans", len(result.SettledLoans)),
	)
	return result, nil
}
