package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// PackageRepository persists packages and the courses they grant.
type PackageRepository struct {
	db *sqlx.DB
}

// NewPackageRepository constructs the repository.
func NewPackageRepository(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// Create inserts a package and its course links in one transaction.
func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package, courseIDs []string) (err error) {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	pkg.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin package transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertPackage = `INSERT INTO packages (id, name, cost_cents, created_at) VALUES (:id, :name, :cost_cents, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertPackage, pkg); err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	if err = r.insertCourses(ctx, tx, pkg.ID, courseIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit package transaction: %w", err)
	}
	return nil
}

func (r *PackageRepository) insertCourses(ctx context.Context, exec sqlx.ExtContext, packageID string, courseIDs []string) error {
	const query = `INSERT INTO package_courses (package_id, course_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, courseID := range courseIDs {
		if _, err := exec.ExecContext(ctx, query, packageID, courseID); err != nil {
			return fmt.Errorf("link package course %s: %w", courseID, err)
		}
	}
	return nil
}

// FindByName returns a package by its unique name.
func (r *PackageRepository) FindByName(ctx context.Context, name string) (*models.Package, error) {
	const query = `SELECT id, name, cost_cents, created_at FROM packages WHERE name = $1`
	var pkg models.Package
	if err := r.db.GetContext(ctx, &pkg, query, name); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// List returns all packages sorted by name.
func (r *PackageRepository) List(ctx context.Context) ([]models.Package, error) {
	const query = `SELECT id, name, cost_cents, created_at FROM packages ORDER BY name`
	var pkgs []models.Package
	if err := r.db.SelectContext(ctx, &pkgs, query); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return pkgs, nil
}

// ListCourses returns the courses linked to a package.
func (r *PackageRepository) ListCourses(ctx context.Context, packageID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.category, c.catalog_num, c.created_at FROM courses c
        JOIN package_courses pc ON pc.course_id = c.id
        WHERE pc.package_id = $1 ORDER BY c.category, c.catalog_num`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, packageID); err != nil {
		return nil, fmt.Errorf("list package courses: %w", err)
	}
	return courses, nil
}

// UpdateCost changes a package's cost.
func (r *PackageRepository) UpdateCost(ctx context.Context, name string, costCents int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE packages SET cost_cents = $2 WHERE name = $1`, name, costCents)
	if err != nil {
		return fmt.Errorf("update package cost: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a package. Course links go with it.
func (r *PackageRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
