package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

const classColumns = `id, course_id, trainer_id, start_time, duration_minutes, start_date, end_date, enrollment, capacity, created_at`

const classColumnsQualified = `c.id, c.course_id, c.trainer_id, c.start_time, c.duration_minutes, c.start_date, c.end_date, c.enrollment, c.capacity, c.created_at`

// ClassAdmission inspects a trainer's existing classes before a new one is stored.
// Returning an error aborts the insert.
type ClassAdmission func(existing []models.Class) error

// CourseRepository persists courses, their scheduled classes and class enrollments.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// CreateCourse inserts a course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	course.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO courses (id, category, catalog_num, created_at) VALUES (:id, :category, :catalog_num, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindCourseByID returns a course by ID.
func (r *CourseRepository) FindCourseByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, category, catalog_num, created_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindCourseByName looks a course up by its category and catalog number.
func (r *CourseRepository) FindCourseByName(ctx context.Context, category string, catalogNum int) (*models.Course, error) {
	const query = `SELECT id, category, catalog_num, created_at FROM courses WHERE category = $1 AND catalog_num = $2`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, category, catalogNum); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCourses returns every course ordered by display name.
func (r *CourseRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, category, catalog_num, created_at FROM courses ORDER BY category, catalog_num`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// CreateClass stores a class with zero enrollment. The trainer row is locked while admit
// inspects the trainer's current classes, so two concurrent creations cannot both pass
// the check.
func (r *CourseRepository) CreateClass(ctx context.Context, class *models.Class, admit ClassAdmission) (err error) {
	ctx, span := tracer.Start(ctx, "class.create",
		trace.WithAttributes(
			attribute.String("course.id", class.CourseID),
			attribute.String("trainer.id", class.TrainerID),
		),
	)
	defer func() { finishSpan(span, err) }()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin class transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var trainerID string
	if err = tx.GetContext(ctx, &trainerID, `SELECT id FROM trainers WHERE id = $1 FOR UPDATE`, class.TrainerID); err != nil {
		return err
	}

	var existing []models.Class
	if err = tx.SelectContext(ctx, &existing,
		`SELECT `+classColumns+` FROM classes WHERE trainer_id = $1 ORDER BY start_date, id`, class.TrainerID); err != nil {
		return fmt.Errorf("list trainer classes: %w", err)
	}
	if admit != nil {
		if err = admit(existing); err != nil {
			return err
		}
	}

	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	class.Enrollment = 0
	class.CreatedAt = time.Now().UTC()
	const insert = `INSERT INTO classes (id, course_id, trainer_id, start_time, duration_minutes, start_date, end_date, enrollment, capacity, created_at)
        VALUES (:id, :course_id, :trainer_id, :start_time, :duration_minutes, :start_date, :end_date, :enrollment, :capacity, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, class); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit class transaction: %w", err)
	}
	span.SetAttributes(attribute.String("class.id", class.ID))
	return nil
}

// FindClassByID returns a class by ID.
func (r *CourseRepository) FindClassByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.db.GetContext(ctx, &class, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListClassesByCourse returns the classes scheduled under a course.
func (r *CourseRepository) ListClassesByCourse(ctx context.Context, courseID string) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes,
		`SELECT `+classColumns+` FROM classes WHERE course_id = $1 ORDER BY start_date, id`, courseID); err != nil {
		return nil, fmt.Errorf("list course classes: %w", err)
	}
	return classes, nil
}

// ListClassesByTrainer returns the classes a trainer teaches.
func (r *CourseRepository) ListClassesByTrainer(ctx context.Context, trainerID string) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes,
		`SELECT `+classColumns+` FROM classes WHERE trainer_id = $1 ORDER BY start_date, id`, trainerID); err != nil {
		return nil, fmt.Errorf("list trainer classes: %w", err)
	}
	return classes, nil
}

// ListClassesActiveBetween returns classes whose date window intersects [from, to].
func (r *CourseRepository) ListClassesActiveBetween(ctx context.Context, from, to time.Time) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes,
		`SELECT `+classColumns+` FROM classes WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date, id`, from, to); err != nil {
		return nil, fmt.Errorf("list active classes: %w", err)
	}
	return classes, nil
}

// ListClassesByMember returns the classes a member is enrolled in.
func (r *CourseRepository) ListClassesByMember(ctx context.Context, memberID string) ([]models.Class, error) {
	query := `SELECT ` + classColumnsQualified + ` FROM classes c
        JOIN enrollments e ON e.class_id = c.id
        WHERE e.member_id = $1 ORDER BY c.start_date, c.id`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, memberID); err != nil {
		return nil, fmt.Errorf("list member classes: %w", err)
	}
	return classes, nil
}

// DeleteClass removes a class and its enrollments.
func (r *CourseRepository) DeleteClass(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin class delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM enrollments WHERE class_id = $1`, id); err != nil {
		return fmt.Errorf("delete class enrollments: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if err = requireAffected(res); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit class delete: %w", err)
	}
	return nil
}

// Enroll adds a member to a class unless the pair already exists or the class is full.
// The class row is locked so the capacity check and increment happen atomically.
func (r *CourseRepository) Enroll(ctx context.Context, memberID, classID string) (outcome models.EnrollOutcome, err error) {
	ctx, span := tracer.Start(ctx, "class.enroll",
		trace.WithAttributes(
			attribute.String("member.id", memberID),
			attribute.String("class.id", classID),
		),
	)
	defer func() {
		span.SetAttributes(attribute.String("enroll.outcome", string(outcome)))
		finishSpan(span, err)
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var seats struct {
		Enrollment int `db:"enrollment"`
		Capacity   int `db:"capacity"`
	}
	if err = tx.GetContext(ctx, &seats, `SELECT enrollment, capacity FROM classes WHERE id = $1 FOR UPDATE`, classID); err != nil {
		return "", err
	}

	var exists bool
	if err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE member_id = $1 AND class_id = $2)`, memberID, classID); err != nil {
		return "", fmt.Errorf("check enrollment: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return models.EnrollOutcomeAlreadyEnrolled, nil
	}
	if seats.Enrollment >= seats.Capacity {
		_ = tx.Rollback()
		return models.EnrollOutcomeFull, nil
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO enrollments (member_id, class_id, enrolled_at) VALUES ($1, $2, $3)`,
		memberID, classID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert enrollment: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE classes SET enrollment = enrollment + 1 WHERE id = $1`, classID); err != nil {
		return "", fmt.Errorf("increment enrollment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit enrollment: %w", err)
	}
	return models.EnrollOutcomeEnrolled, nil
}
