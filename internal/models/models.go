// package models defines the data model for the course catalog viewer
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/coursecat/internal/shared"
)

// DefaultCategory is the implicit bucket for courses with an empty category.
const DefaultCategory = "Uncategorized"

// Status is the completion state of a course.
type Status string

const (
	StatusUnchecked Status = "unchecked"
	StatusChecked   Status = "checked"
)

// ParseStatus converts column text to a [Status]. Empty text is the column default.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusUnchecked:
		return StatusUnchecked, nil
	case StatusChecked:
		return StatusChecked, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidStatus, s)
	}
}

// StatusOrUnchecked is [ParseStatus] for data this program does not own. Unknown text reads as
// [StatusUnchecked] and reports false.
func StatusOrUnchecked(s string) (Status, bool) {
	status, err := ParseStatus(s)
	if err != nil {
		return StatusUnchecked, false
	}
	return status, true
}

func (s Status) String() string { return string(s) }

// Completed reports whether s is [StatusChecked].
func (s Status) Completed() bool { return s == StatusChecked }

// MarshalText implements [encoding.TextMarshaler].
func (s Status) MarshalText() ([]byte, error) {
	if s == "" {
		return []byte(StatusUnchecked), nil
	}
	if s != StatusChecked && s != StatusUnchecked {
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidStatus, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Course is a record of the remote courses table.
type Course struct {
	ID          int64     `json:"id" toml:"id"`
	Title       string    `json:"title" toml:"title"`
	Instructor  string    `json:"instructor" toml:"instructor"`
	Category    string    `json:"category" toml:"category"`
	Subcategory *string   `json:"subcategory" toml:"subcategory,omitempty"`
	CourseURL   string    `json:"course_url" toml:"course_url"`
	Status      Status    `json:"status" toml:"status"`
	CreatedAt   time.Time `json:"created_at" toml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" toml:"updated_at"`
}

// CategoryKey returns the grouping key, falling back to [DefaultCategory].
func (c Course) CategoryKey() string {
	if strings.TrimSpace(c.Category) == "" {
		return DefaultCategory
	}
	return c.Category
}

// SubcategoryText returns the subcategory or an empty string.
func (c Course) SubcategoryText() string {
	if c.Subcategory == nil {
		return ""
	}
	return *c.Subcategory
}

// WithStatus returns a copy of c with status and updated_at replaced.
func (c Course) WithStatus(status Status, at time.Time) Course {
	c.Status = status
	c.UpdatedAt = at
	return c
}

// Clone returns a copy of c that shares no pointers with it.
func (c Course) Clone() Course {
	if c.Subcategory != nil {
		sub := *c.Subcategory
		c.Subcategory = &sub
	}
	return c
}

// CourseInput is a course row before the remote table assigns an id and timestamps.
type CourseInput struct {
	Title       string  `json:"title"`
	Instructor  string  `json:"instructor"`
	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory"`
	CourseURL   string  `json:"course_url"`
	Status      Status  `json:"status"`
}

// Validate checks the mandatory fields of an insert row.
func (in CourseInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	case strings.TrimSpace(in.Instructor) == "":
		return fmt.Errorf("%w: instructor is required", shared.ErrInvalidInput)
	case strings.TrimSpace(in.Category) == "":
		return fmt.Errorf("%w: category is required", shared.ErrInvalidInput)
	case strings.TrimSpace(in.CourseURL) == "":
		return fmt.Errorf("%w: course_url is required", shared.ErrInvalidInput)
	}
	if _, err := in.Status.MarshalText(); err != nil {
		return err
	}
	return nil
}

// DataSource identifies where the displayed courses come from.
type DataSource string

const (
	SourceSample   DataSource = "sample"
	SourceDatabase DataSource = "database"
)

func (d DataSource) String() string { return string(d) }

// SourceState pairs the active data source with remote reachability.
//
// It starts at sample/false and moves to database/true only after a non-empty remote fetch.
type SourceState struct {
	Source          DataSource `json:"source"`
	RemoteReachable bool       `json:"remote_reachable"`
}

// InitialSourceState is the state before any remote attempt.
func InitialSourceState() SourceState {
	return SourceState{Source: SourceSample, RemoteReachable: false}
}
