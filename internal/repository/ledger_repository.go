package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// ErrBalanceOverflow is returned when an entry would push a balance outside int64.
var ErrBalanceOverflow = errors.New("balance out of range")

// TierResolver maps cumulative purchase spend (a positive magnitude, in cents) to a tier.
type TierResolver func(spendCents int64) models.MembershipTier

// LedgerRepository persists transactions together with the member balance they affect.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ApplyEntry records a transaction and updates the member's balance and tier as one unit.
// The member row is locked for the duration so concurrent entries serialise.
func (r *LedgerRepository) ApplyEntry(ctx context.Context, memberID string, txType models.TransactionType, amountCents int64, resolve TierResolver) (entry *models.LedgerEntry, err error) {
	ctx, span := tracer.Start(ctx, "ledger.apply_entry",
		trace.WithAttributes(
			attribute.String("member.id", memberID),
			attribute.String("transaction.type", string(txType)),
			attribute.Int64("amount.cents", amountCents),
		),
	)
	defer func() { finishSpan(span, err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var member models.Member
	if err = tx.GetContext(ctx, &member, `SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, memberID); err != nil {
		return nil, err
	}
	if addOverflows(member.BalanceCents, amountCents) {
		return nil, ErrBalanceOverflow
	}

	now := time.Now().UTC()
	record := models.Transaction{
		ID:          uuid.NewString(),
		MemberID:    memberID,
		Type:        txType,
		AmountCents: amountCents,
		CreatedAt:   now,
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, member_id, type, amount_cents, created_at) VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.MemberID, record.Type, record.AmountCents, record.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	var spend int64
	if err = tx.GetContext(ctx, &spend,
		`SELECT COALESCE(-SUM(amount_cents), 0) FROM transactions WHERE member_id = $1 AND type = $2`,
		memberID, models.TransactionPurchase); err != nil {
		return nil, fmt.Errorf("sum purchase spend: %w", err)
	}

	member.Tier = resolve(spend)
	member.UpdatedAt = now
	if err = tx.GetContext(ctx, &member.BalanceCents,
		`UPDATE members SET balance_cents = balance_cents + $2, tier = $3, updated_at = $4 WHERE id = $1 RETURNING balance_cents`,
		memberID, amountCents, member.Tier, member.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update member balance: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger transaction: %w", err)
	}
	span.SetAttributes(attribute.String("member.tier", string(member.Tier)))
	return &models.LedgerEntry{Transaction: record, Member: member}, nil
}

// SumByMemberAndType returns the signed sum of a member's transactions of one type.
func (r *LedgerRepository) SumByMemberAndType(ctx context.Context, memberID string, txType models.TransactionType) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE member_id = $1 AND type = $2`
	var total int64
	if err := r.db.GetContext(ctx, &total, query, memberID, txType); err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

// ListByMember returns one page of a member's transactions, oldest first, and the
// member's total transaction count. A limit below 1 returns everything from offset.
func (r *LedgerRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Transaction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions WHERE member_id = $1`, memberID); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT id, member_id, type, amount_cents, created_at FROM transactions WHERE member_id = $1 ORDER BY created_at, seq`
	args := []interface{}{memberID}
	if offset < 0 {
		offset = 0
	}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $2`
		args = append(args, offset)
	}

	var txs []models.Transaction
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return txs, total, nil
}

func addOverflows(balance, delta int64) bool {
	if delta > 0 {
		return balance > math.MaxInt64-delta
	}
	return balance < math.MinInt64-delta
}
