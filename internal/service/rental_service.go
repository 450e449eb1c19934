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

type rentalRepository interface {
	CreateItem(ctx context.Context, item *models.RentalItem) error
	FindItemByID(ctx context.Context, id string) (*models.RentalItem, error)
	ListItems(ctx context.Context) ([]models.RentalItem, error)
	Checkout(ctx context.Context, memberID, itemID string, quantity int) (*models.RentalLogEntry, error)
	Return(ctx context.Context, memberID, itemID string) (*models.RentalLogEntry, error)
	ListOutstanding(ctx context.Context, memberID string) ([]models.OutstandingLoan, error)
}

// CreateRentalItemRequest is the payload for new equipment.
type CreateRentalItemRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	QuantityInStock int    `json:"quantity_in_stock" validate:"gte=0"`
}

// RentalRequest identifies a member and item for checkout or return. Quantity defaults to 1
// on checkout and is ignored on return.
type RentalRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// RentalService tracks equipment loans against stock.
type RentalService struct {
	repo      rentalRepository
	members   memberReader
	metrics   *MetricsService
	validator *validator.Validate
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRentalService constructs RentalService.
func NewRentalService(repo rentalRepository, members memberReader, metrics *MetricsService, validate *validator.Validate, timeout time.Duration, logger *zap.Logger) *RentalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RentalService{repo: repo, members: members, metrics: metrics, validator: validate, timeout: operationTimeout(timeout), logger: logger}
}

// CreateItem adds lendable equipment.
func (s *RentalService) CreateItem(ctx context.Context, req CreateRentalItemRequest) (*models.RentalItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rental item payload")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	item := &models.RentalItem{Name: req.Name, QuantityInStock: req.QuantityInStock}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, storageFailure(err, "failed to create rental item")
	}
	return item, nil
}

// ListItems returns all rental items with current stock.
func (s *RentalService) ListItems(ctx context.Context) ([]models.RentalItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, storageFailure(err, "failed to list rental items")
	}
	if items == nil {
		items = []models.RentalItem{}
	}
	return items, nil
}

// Checkout lends quantity units of an item to a member.
func (s *RentalService) Checkout(ctx context.Context, req RentalRequest) (entry *models.RentalLogEntry, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("rental.checkout", start, err)
		s.metrics.RecordRental("checkout", err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.members.FindByID(ctx, req.MemberID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	entry, err = s.repo.Checkout(ctx, req.MemberID, req.ItemID, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, appErrors.Clone(appErrors.ErrOutOfStock, "")
		}
		return nil, notFoundOr(err, appErrors.ErrNotFound, "rental item not found", "failed to check out item")
	}
	s.logger.Info("item checked out",
		zap.String("member_id", req.MemberID),
		zap.String("item_id", req.ItemID),
		zap.Int("quantity", req.Quantity),
	)
	return entry, nil
}

// Return settles the member's oldest open loan of the item.
func (s *RentalService) Return(ctx context.Context, req RentalRequest) (entry *models.RentalLogEntry, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("rental.return", start, err)
		s.metrics.RecordRental("return", err)
	}(time.Now())

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid return payload")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err = s.repo.Return(ctx, req.MemberID, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNoOpenLoan) {
			return nil, appErrors.Clone(appErrors.ErrNoSuchLoan, "")
		}
		return nil, notFoundOr(err, appErrors.ErrNotFound, "rental item not found", "failed to return item")
	}
	s.logger.Info("item returned",
		zap.String("member_id", req.MemberID),
		zap.String("item_id", req.ItemID),
		zap.String("loan_id", entry.ID),
	)
	return entry, nil
}

// OutstandingLoans maps item name to the quantity a member still holds.
func (s *RentalService) OutstandingLoans(ctx context.Context, memberID string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	loans, err := s.repo.ListOutstanding(ctx, memberID)
	if err != nil {
		return nil, storageFailure(err, "failed to list outstanding loans")
	}
	out := make(map[string]int, len(loans))
	for _, loan := range loans {
		out[loan.ItemName] += loan.Quantity
	}
	return out, nil
}
