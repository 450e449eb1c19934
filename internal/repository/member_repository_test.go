package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var memberRowColumns = []string{"id", "first_name", "last_name", "phone", "email", "tier", "balance_cents", "created_at", "updated_at"}

func TestMemberRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(memberRowColumns).
		AddRow("mem-1", "Ada", "Lovelace", "555-0101", "ada@example.com", "GOLD", int64(-2500), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = $1")).
		WithArgs("mem-1").
		WillReturnRows(rows)

	member, err := repo.FindByID(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, models.TierGold, member.Tier)
	assert.Equal(t, int64(-2500), member.BalanceCents)
	assert.Equal(t, "Ada Lovelace", member.FullName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryCreateResetsLedgerFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO members")).
		WithArgs(sqlmock.AnyArg(), "Ada", "Lovelace", "555-0101", "ada@example.com", models.TierBasic, int64(0), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	member := &models.Member{FirstName: "Ada", LastName: "Lovelace", Phone: "555-0101", Email: "ada@example.com", Tier: models.TierDiamond, BalanceCents: 999}
	require.NoError(t, repo.Create(context.Background(), member))
	assert.NotEmpty(t, member.ID)
	assert.Equal(t, models.TierBasic, member.Tier)
	assert.Zero(t, member.BalanceCents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryListNegativeBalance(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "phone", "balance_cents"}).
		AddRow("mem-2", "Bo Diddley", "555-0102", int64(-7000))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE balance_cents < 0 ORDER BY first_name, last_name, id")).
		WillReturnRows(rows)

	list, err := repo.ListNegativeBalance(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bo Diddley", list[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryDeleteCascade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance_cents FROM members WHERE id = $1 FOR UPDATE")).
		WithArgs("mem-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM enrollments WHERE member_id = $1 RETURNING class_id")).
		WithArgs("mem-1").
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow("class-1").AddRow("class-2"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET enrollment = enrollment - 1 WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rental_log SET returned = TRUE")).
		WithArgs("mem-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "quantity_borrowed"}).AddRow("loan-1", "item-1", 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rental_items SET quantity_in_stock = quantity_in_stock + $2 WHERE id = $1")).
		WithArgs("item-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM members WHERE id = $1")).
		WithArgs("mem-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"class-1", "class-2"}, result.UnenrolledClasses)
	assert.Equal(t, []string{"loan-1"}, result.SettledLoans)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryDeleteCascadeRefusesNegativeBalance(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT balance_cents FROM members WHERE id = $1 FOR UPDATE")).
		WithArgs("mem-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(-1)))
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), "mem-1")
	require.ErrorIs(t, err, ErrNegativeBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryDeleteCascadeMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DeleteCascade(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
