package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-gpa-api/internal/models"
)

const uniqueViolation = "23505"

// CourseSchema creates the courses table. Name uniqueness is case-insensitive.
const CourseSchema = `CREATE TABLE IF NOT EXISTS courses (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	credit INTEGER NOT NULL CHECK (credit BETWEEN 1 AND 4),
	grade_coefficient INTEGER NOT NULL,
	grade_note TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS courses_name_lower_idx ON courses (LOWER(name));`

const courseColumns = "id, name, credit, grade_coefficient, grade_note"

// QueryObserver receives query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

type courseRow struct {
	ID               int    `db:"id"`
	Name             string `db:"name"`
	Credit           int    `db:"credit"`
	GradeCoefficient int    `db:"grade_coefficient"`
	GradeNote        string `db:"grade_note"`
}

func (r courseRow) toModel() models.Course {
	return models.Course{
		ID:     r.ID,
		Name:   r.Name,
		Credit: r.Credit,
		Grade:  models.Grade{Coefficient: r.GradeCoefficient, Note: r.GradeNote},
	}
}

func rowFromModel(course *models.Course) courseRow {
	return courseRow{
		ID:               course.ID,
		Name:             course.Name,
		Credit:           course.Credit,
		GradeCoefficient: course.Grade.Coefficient,
		GradeNote:        course.Grade.Note,
	}
}

// PostgresCourseRepository persists courses in PostgreSQL.
type PostgresCourseRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewPostgresCourseRepository creates a repository; observer may be nil.
func NewPostgresCourseRepository(db *sqlx.DB, observer QueryObserver) *PostgresCourseRepository {
	return &PostgresCourseRepository{db: db, observer: observer}
}

// Migrate creates the schema when missing.
func (r *PostgresCourseRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, CourseSchema); err != nil {
		return fmt.Errorf("migrate courses: %w", err)
	}
	return nil
}

func (r *PostgresCourseRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// List returns all courses ordered by id.
func (r *PostgresCourseRepository) List(ctx context.Context) ([]models.Course, error) {
	defer r.observe("courses_list", time.Now())

	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+courseColumns+" FROM courses ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, nil
}

// FindByID returns a course by id.
func (r *PostgresCourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	defer r.observe("courses_find_by_id", time.Now())
	return r.findOne(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id)
}

// FindByName returns a course by case-insensitive name.
func (r *PostgresCourseRepository) FindByName(ctx context.Context, name string) (*models.Course, error) {
	defer r.observe("courses_find_by_name", time.Now())
	return r.findOne(ctx, "SELECT "+courseColumns+" FROM courses WHERE LOWER(name) = LOWER($1) LIMIT 1", name)
}

func (r *PostgresCourseRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Course, error) {
	var row courseRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	course := row.toModel()
	return &course, nil
}

// Create inserts the course and writes the generated id back.
func (r *PostgresCourseRepository) Create(ctx context.Context, course *models.Course) error {
	defer r.observe("courses_create", time.Now())

	const query = `INSERT INTO courses (name, credit, grade_coefficient, grade_note) VALUES ($1, $2, $3, $4) RETURNING id`
	row := rowFromModel(course)
	if err := r.db.QueryRowxContext(ctx, query, row.Name, row.Credit, row.GradeCoefficient, row.GradeNote).Scan(&course.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCourseName
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies name, credit and grade of an existing course.
func (r *PostgresCourseRepository) Update(ctx context.Context, course *models.Course) error {
	defer r.observe("courses_update", time.Now())

	const query = `UPDATE courses SET name = :name, credit = :credit, grade_coefficient = :grade_coefficient, grade_note = :grade_note WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, rowFromModel(course))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCourseName
		}
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(result)
}

// Delete removes a course by id.
func (r *PostgresCourseRepository) Delete(ctx context.Context, id int) error {
	defer r.observe("courses_delete", time.Now())

	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(result)
}

// Reset truncates the table and restarts the id sequence.
func (r *PostgresCourseRepository) Reset(ctx context.Context) error {
	defer r.observe("courses_reset", time.Now())

	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE courses RESTART IDENTITY`); err != nil {
		return fmt.Errorf("reset courses: %w", err)
	}
	return nil
}

// Count returns the number of stored courses.
func (r *PostgresCourseRepository) Count(ctx context.Context) (int, error) {
	defer r.observe("courses_count", time.Now())

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
