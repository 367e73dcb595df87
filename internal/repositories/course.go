package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
)

const courseColumns = `id, title, instructor, category, subcategory, course_url, status, created_at, updated_at`

// CourseRepository reads and writes rows of the courses table.
type CourseRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCourseRepository creates a new CourseRepository with the given database connection
func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db, now: time.Now}
}

// List returns every course ordered by category, then title
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY category ASC, title ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return courses, nil
}

// Get retrieves a course by id
func (r *CourseRepository) Get(ctx context.Context, id int64) (models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`

	course, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, fmt.Errorf("%w: %d", shared.ErrCourseNotFound, id)
	}
	return course, err
}

// UpdateStatus sets status and updated_at of the course with id.
//
// Returns [shared.ErrCourseNotFound] when no row matches.
func (r *CourseRepository) UpdateStatus(ctx context.Context, id int64, status models.Status, at time.Time) error {
	text, err := status.MarshalText()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `UPDATE courses SET status = ?, updated_at = ? WHERE id = ?`, string(text), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update course status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", shared.ErrCourseNotFound, id)
	}

	return nil
}

// InsertBatch validates and inserts rows in a single transaction and returns the stored courses.
//
// Nothing is written when any row fails validation or insertion.
func (r *CourseRepository) InsertBatch(ctx context.Context, inputs []models.CourseInput) ([]models.Course, error) {
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	now := r.now().UTC()
	inserted := make([]models.Course, 0, len(inputs))

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO courses (title, instructor, category, subcategory, course_url, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, in := range inputs {
			status := in.Status
			if status == "" {
				status = models.StatusUnchecked
			}

			var sub sql.NullString
			if in.Subcategory != nil {
				sub = sql.NullString{String: *in.Subcategory, Valid: true}
			}

			result, err := stmt.ExecContext(ctx, in.Title, in.Instructor, in.Category, sub, in.CourseURL, string(status), now, now)
			if err != nil {
				return fmt.Errorf("failed to insert course %q: %w", in.Title, err)
			}

			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get inserted id: %w", err)
			}

			inserted = append(inserted, models.Course{
				ID:          id,
				Title:       in.Title,
				Instructor:  in.Instructor,
				Category:    in.Category,
				Subcategory: in.Subcategory,
				CourseURL:   in.CourseURL,
				Status:      status,
				CreatedAt:   now,
				UpdatedAt:   now,
			}.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

// Count returns the number of rows in the courses table
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}

// scanRow scans a single row into a [models.Course]
func (r *CourseRepository) scanRow(row scanner) (models.Course, error) {
	var (
		course    models.Course
		sub       sql.NullString
		status    string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&course.ID, &course.Title, &course.Instructor, &course.Category, &sub, &course.CourseURL, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, err
	}
	if err != nil {
		return models.Course{}, fmt.Errorf("failed to scan course: %w", err)
	}

	if course.Status, err = models.ParseStatus(status); err != nil {
		return models.Course{}, err
	}
	if sub.Valid {
		course.Subcategory = &sub.String
	}
	course.CreatedAt = createdAt
	course.UpdatedAt = updatedAt

	return course, nil
}
