package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
)

// Connector is the remote courses table.
type Connector interface {
	// Name returns the driver name (e.g. "postgrest", "sqlite").
	Name() string

	// Configured reports whether the endpoint and credential are real values.
	Configured() bool

	// FetchCourses reads all courses ordered by category, then title.
	// An empty table yields an empty slice and a nil error.
	FetchCourses(ctx context.Context) ([]models.Course, error)

	// UpdateStatus writes status and updated_at for one course.
	UpdateStatus(ctx context.Context, id int64, status models.Status, at time.Time) error
}

// Loader is implemented by connectors that accept bulk inserts.
type Loader interface {
	// InsertCourses stores one batch and returns the stored rows.
	InsertCourses(ctx context.Context, courses []models.CourseInput) ([]models.Course, error)

	// CountCourses returns the number of rows in the table.
	CountCourses(ctx context.Context) (int, error)
}

// QueryError is an application-level failure reported by the remote.
//
// errors.Is(err, shared.ErrQueryFailed) holds for every QueryError.
type QueryError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *QueryError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("%s: %s: status %d (%s): %s", shared.ErrQueryFailed, e.Op, e.StatusCode, e.Code, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s: status %d: %s", shared.ErrQueryFailed, e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", shared.ErrQueryFailed, e.Op, e.Message)
	}
}

// Is matches [shared.ErrQueryFailed].
func (e *QueryError) Is(target error) bool { return target == shared.ErrQueryFailed }

func (e *QueryError) Unwrap() error { return e.Err }
