package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// ErrNegativeBalance is returned by DeleteCascade when the member still owes money.
var ErrNegativeBalance = errors.New("member balance is negative")

const memberColumns = `id, first_name, last_name, phone, email, tier, balance_cents, created_at, updated_at`

// MemberRepository handles persistence of members.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs the repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// FindByID returns a member by ID.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a new member with a zero balance on the BASIC tier.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	member.Tier = models.TierBasic
	member.BalanceCents = 0

	const query = `INSERT INTO members (id, first_name, last_name, phone, email, tier, balance_cents, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :phone, :email, :tier, :balance_cents, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// ListNegativeBalance returns members owing money, sorted by name.
func (r *MemberRepository) ListNegativeBalance(ctx context.Context) ([]models.NegativeBalanceMember, error) {
	const query = `SELECT id, TRIM(first_name || ' ' || last_name) AS name, phone, balance_cents
        FROM members WHERE balance_cents < 0 ORDER BY first_name, last_name, id`
	var rows []models.NegativeBalanceMember
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list negative balance members: %w", err)
	}
	return rows, nil
}

// DeleteCascade removes a member in one transaction. Enrollments are dropped and the
// affected classes decremented; unreturned loans are settled back into stock. Ledger and
// rental log rows are kept for audit.
func (r *MemberRepository) DeleteCascade(ctx context.Context, id string) (result *models.MemberDeletion, err error) {
	ctx, span := tracer.Start(ctx, "member.delete_cascade",
		trace.WithAttributes(attribute.String("member.id", id)),
	)
	defer func() { finishSpan(span, err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin member delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var balance int64
	if err = tx.GetContext(ctx, &balance, `SELECT balance_cents FROM members WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, err
	}
	if balance < 0 {
		err = ErrNegativeBalance
		return nil, err
	}

	result = &models.MemberDeletion{MemberID: id, UnenrolledClasses: []string{}, SettledLoans: []string{}}

	if err = tx.SelectContext(ctx, &result.UnenrolledClasses,
		`DELETE FROM enrollments WHERE member_id = $1 RETURNING class_id`, id); err != nil {
		return nil, fmt.Errorf("delete member enrollments: %w", err)
	}
	if len(result.UnenrolledClasses) > 0 {
		if _, err = tx.ExecContext(ctx,
			`UPDATE classes SET enrollment = enrollment - 1 WHERE id = ANY($1)`,
			pq.Array(result.UnenrolledClasses)); err != nil {
			return nil, fmt.Errorf("decrement class enrollment: %w", err)
		}
	}

	var loans []struct {
		ID       string `db:"id"`
		ItemID   string `db:"item_id"`
		Quantity int    `db:"quantity_borrowed"`
	}
	if err = tx.SelectContext(ctx, &loans,
		`UPDATE rental_log SET returned = TRUE, returned_at = $2 WHERE member_id = $1 AND NOT returned
        RETURNING id, item_id, quantity_borrowed`, id, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("settle member loans: %w", err)
	}
	for _, loan := range loans {
		if _, err = tx.ExecContext(ctx,
			`UPDATE rental_items SET quantity_in_stock = quantity_in_stock + $2 WHERE id = $1`,
			loan.ItemID, loan.Quantity); err != nil {
			return nil, fmt.Errorf("restock item %s: %w", loan.ItemID, err)
		}
		result.SettledLoans = append(result.SettledLoans, loan.ID)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete member: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit member delete: %w", err)
	}
	span.SetAttributes(
		attribute.Int("enrollments.removed", len(result.UnenrolledClasses)),
		attribute.Int("loans.settled", len(result.SettledLoans)),
	)
	return result, nil
}
