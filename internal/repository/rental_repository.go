package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// ErrInsufficientStock is returned by Checkout when fewer units remain than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrNoOpenLoan is returned by Return when the member holds no unreturned loan of the item.
var ErrNoOpenLoan = errors.New("no open loan")

const rentalLogColumns = `id, member_id, item_id, checkout_time, quantity_borrowed, returned, returned_at`

// RentalRepository persists rental items and the loan log.
type RentalRepository struct {
	db *sqlx.DB
}

// NewRentalRepository constructs the repository.
func NewRentalRepository(db *sqlx.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

// CreateItem inserts a rental item.
func (r *RentalRepository) CreateItem(ctx context.Context, item *models.RentalItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO rental_items (id, name, quantity_in_stock, created_at) VALUES (:id, :name, :quantity_in_stock, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create rental item: %w", err)
	}
	return nil
}

// FindItemByID returns a rental item by ID.
func (r *RentalRepository) FindItemByID(ctx context.Context, id string) (*models.RentalItem, error) {
	const query = `SELECT id, name, quantity_in_stock, created_at FROM rental_items WHERE id = $1`
	var item models.RentalItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns all rental items sorted by name.
func (r *RentalRepository) ListItems(ctx context.Context) ([]models.RentalItem, error) {
	const query = `SELECT id, name, quantity_in_stock, created_at FROM rental_items ORDER BY name`
	var items []models.RentalItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list rental items: %w", err)
	}
	return items, nil
}

// Checkout decrements stock and appends an unreturned log entry as one unit.
func (r *RentalRepository) Checkout(ctx context.Context, memberID, itemID string, quantity int) (entry *models.RentalLogEntry, err error) {
	ctx, span := tracer.Start(ctx, "rental.checkout",
		trace.WithAttributes(
			attribute.String("member.id", memberID),
			attribute.String("item.id", itemID),
			attribute.Int("quantity", quantity),
		),
	)
	defer func() { finishSpan(span, err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stock int
	if err = tx.GetContext(ctx, &stock, `SELECT quantity_in_stock FROM rental_items WHERE id = $1 FOR UPDATE`, itemID); err != nil {
		return nil, err
	}
	if stock < quantity {
		err = ErrInsufficientStock
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE rental_items SET quantity_in_stock = quantity_in_stock - $2 WHERE id = $1`, itemID, quantity); err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	entry = &models.RentalLogEntry{
		ID:               uuid.NewString(),
		MemberID:         memberID,
		ItemID:           itemID,
		CheckoutTime:     time.Now().UTC(),
		QuantityBorrowed: quantity,
	}
	const insert = `INSERT INTO rental_log (id, member_id, item_id, checkout_time, quantity_borrowed, returned, returned_at)
        VALUES (:id, :member_id, :item_id, :checkout_time, :quantity_borrowed, :returned, :returned_at)`
	if _, err = tx.NamedExecContext(ctx, insert, entry); err != nil {
		return nil, fmt.Errorf("insert rental log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return entry, nil
}

// Return settles the member's oldest unreturned loan of the item and restocks it. The item
// row is locked before the log row, matching Checkout's lock order.
func (r *RentalRepository) Return(ctx context.Context, memberID, itemID string) (entry *models.RentalLogEntry, err error) {
	ctx, span := tracer.Start(ctx, "rental.return",
		trace.WithAttributes(
			attribute.String("member.id", memberID),
			attribute.String("item.id", itemID),
		),
	)
	defer func() { finishSpan(span, err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin return: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string
	if err = tx.GetContext(ctx, &lockedID, `SELECT id FROM rental_items WHERE id = $1 FOR UPDATE`, itemID); err != nil {
		return nil, err
	}

	// seq breaks checkout_time ties in insertion order
	var open []models.RentalLogEntry
	if err = tx.SelectContext(ctx, &open,
		`SELECT `+rentalLogColumns+` FROM rental_log
        WHERE member_id = $1 AND item_id = $2 AND NOT returned
        ORDER BY checkout_time, seq LIMIT 1 FOR UPDATE`, memberID, itemID); err != nil {
		return nil, fmt.Errorf("find open loan: %w", err)
	}
	if len(open) == 0 {
		err = ErrNoOpenLoan
		return nil, err
	}
	entry = &open[0]

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx,
		`UPDATE rental_log SET returned = TRUE, returned_at = $2 WHERE id = $1`, entry.ID, now); err != nil {
		return nil, fmt.Errorf("mark loan returned: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE rental_items SET quantity_in_stock = quantity_in_stock + $2 WHERE id = $1`, itemID, entry.QuantityBorrowed); err != nil {
		return nil, fmt.Errorf("restock item: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit return: %w", err)
	}
	entry.Returned = true
	entry.ReturnedAt = &now
	return entry, nil
}

// ListOutstanding aggregates a member's unreturned quantities per item.
func (r *RentalRepository) ListOutstanding(ctx context.Context, memberID string) ([]models.OutstandingLoan, error) {
	const query = `SELECT l.item_id, i.name AS item_name, SUM(l.quantity_borrowed) AS quantity
        FROM rental_log l
        JOIN rental_items i ON i.id = l.item_id
        WHERE l.member_id = $1 AND NOT l.returned
        GROUP BY l.item_id, i.name
        ORDER BY i.name`
	var loans []models.OutstandingLoan
	if err := r.db.SelectContext(ctx, &loans, query, memberID); err != nil {
		return nil, fmt.Errorf("list outstanding loans: %w", err)
	}
	return loans, nil
}
