package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/repository"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

// Cumulative purchase spend, in cents, at which each tier starts.
const (
	GoldThresholdCents    int64 = 100000
	DiamondThresholdCents int64 = 150000
)

// MaxAmountCents caps a single recharge, purchase or package cost.
const MaxAmountCents int64 = 100_000_000_000

type ledgerRepository interface {
	ApplyEntry(ctx context.Context, memberID string, txType models.TransactionType, amountCents int64, resolve repository.TierResolver) (*models.LedgerEntry, error)
	SumByMemberAndType(ctx context.Context, memberID string, txType models.TransactionType) (int64, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Transaction, int, error)
}

type memberReader interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

// TierForSpend resolves the tier for a cumulative purchase spend. Thresholds are inclusive.
func TierForSpend(spendCents int64) models.MembershipTier {
	switch {
	case spendCents >= DiamondThresholdCents:
		return models.TierDiamond
	case spendCents >= GoldThresholdCents:
		return models.TierGold
	default:
		return models.TierBasic
	}
}

// DiscountPercent is the whole-percent purchase discount for a tier.
func DiscountPercent(tier models.MembershipTier) int64 {
	switch tier {
	case models.TierDiamond:
		return 30
	case models.TierGold:
		return 20
	default:
		return 0
	}
}

// DiscountFor returns the discount for a tier as a fraction.
func DiscountFor(tier models.MembershipTier) float64 {
	return float64(DiscountPercent(tier)) / 100
}

// DiscountedCost applies the tier discount to a non-negative cost, rounding half up to
// the cent. Whole hundreds are scaled separately so the product cannot overflow.
func DiscountedCost(costCents int64, tier models.MembershipTier) int64 {
	keep := 100 - DiscountPercent(tier)
	return costCents/100*keep + (costCents%100*keep+50)/100
}

// LedgerService owns balance mutation and tier derivation.
type LedgerService struct {
	repo    ledgerRepository
	members memberReader
	metrics *MetricsService
	timeout time.Duration
	logger  *zap.Logger
}

// NewLedgerService constructs LedgerService.
func NewLedgerService(repo ledgerRepository, members memberReader, metrics *MetricsService, timeout time.Duration, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, members: members, metrics: metrics, timeout: operationTimeout(timeout), logger: logger}
}

// ApplyFunds records a recharge. The amount must be positive.
func (s *LedgerService) ApplyFunds(ctx context.Context, memberID string, amountCents int64) (entry *models.LedgerEntry, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("ledger.apply_funds", start, err) }(time.Now())
	if amountCents <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "recharge amount must be positive")
	}
	if amountCents > MaxAmountCents {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "recharge amount exceeds limit")
	}
	return s.apply(ctx, memberID, models.TransactionRecharge, amountCents)
}

// ApplyPurchase records a purchase of costCents, stored as a negative amount.
func (s *LedgerService) ApplyPurchase(ctx context.Context, memberID string, costCents int64) (entry *models.LedgerEntry, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("ledger.apply_purchase", start, err) }(time.Now())
	if costCents < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "purchase cost must not be negative")
	}
	if costCents > MaxAmountCents {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "purchase cost exceeds limit")
	}
	return s.apply(ctx, memberID, models.TransactionPurchase, -costCents)
}

func (s *LedgerService) apply(ctx context.Context, memberID string, txType models.TransactionType, amountCents int64) (*models.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entry, err := s.repo.ApplyEntry(ctx, memberID, txType, amountCents, TierForSpend)
	if err != nil {
		if errors.Is(err, repository.ErrBalanceOverflow) {
			return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "balance limit exceeded")
		}
		return nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to record transaction")
	}
	s.metrics.RecordLedgerEntry(txType, amountCents)
	s.logger.Info("ledger entry applied",
		zap.String("member_id", memberID),
		zap.String("type", string(txType)),
		zap.Int64("amount_cents", amountCents),
		zap.Int64("balance_cents", entry.Member.BalanceCents),
		zap.String("tier", string(entry.Member.Tier)),
	)
	return entry, nil
}

// CurrentTier derives the member's tier from cumulative purchase spend.
func (s *LedgerService) CurrentTier(ctx context.Context, memberID string) (models.MembershipTier, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return "", notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	total, err := s.repo.SumByMemberAndType(ctx, memberID, models.TransactionPurchase)
	if err != nil {
		return "", storageFailure(err, "failed to sum purchases")
	}
	return TierForSpend(-total), nil
}

// History lists one page of a member's transactions, oldest first. Page below 1 selects
// the first page; size below 1 returns every transaction.
func (s *LedgerService) History(ctx context.Context, memberID string, page, size int) ([]models.Transaction, *models.Pagination, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		return nil, nil, notFoundOr(err, appErrors.ErrNotFound, "member not found", "failed to load member")
	}
	if page < 1 {
		page = 1
	}
	limit, offset := 0, 0
	if size > 0 {
		limit, offset = size, (page-1)*size
	}
	txs, total, err := s.repo.ListByMember(ctx, memberID, limit, offset)
	if err != nil {
		return nil, nil, storageFailure(err, "failed to list transactions")
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	if size < 1 {
		size = total
	}
	return txs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
