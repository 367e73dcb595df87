// SQLite implementation of [Connector] and [Loader]
package services

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/repositories"
	"github.com/desertthunder/coursecat/internal/shared"
)

// SQLConnector serves the courses table from a local SQLite database.
type SQLConnector struct {
	repo *repositories.CourseRepository
}

// NewSQLConnector wraps repo. A nil repo yields an unconfigured connector.
func NewSQLConnector(repo *repositories.CourseRepository) *SQLConnector {
	return &SQLConnector{repo: repo}
}

func (s *SQLConnector) Name() string { return shared.DriverSQLite }

func (s *SQLConnector) Configured() bool { return s.repo != nil }

// FetchCourses lists the table ordered by category, then title.
func (s *SQLConnector) FetchCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, asQueryError("select", err)
	}
	return courses, nil
}

// UpdateStatus writes status and updated_at for id.
func (s *SQLConnector) UpdateStatus(ctx context.Context, id int64, status models.Status, at time.Time) error {
	if err := s.repo.UpdateStatus(ctx, id, status, at); err != nil {
		return asQueryError("update", err)
	}
	return nil
}

// InsertCourses inserts one batch in a single transaction.
func (s *SQLConnector) InsertCourses(ctx context.Context, courses []models.CourseInput) ([]models.Course, error) {
	inserted, err := s.repo.InsertBatch(ctx, courses)
	if err != nil {
		return nil, asQueryError("insert", err)
	}
	return inserted, nil
}

// CountCourses counts the rows of the table.
func (s *SQLConnector) CountCourses(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, asQueryError("count", err)
	}
	return n, nil
}

// asQueryError keeps context errors intact so timeouts are not reported as query failures.
func asQueryError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Op: op, Message: err.Error(), Err: err}
}
