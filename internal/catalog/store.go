package catalog

import (
	"time"

	"github.com/desertthunder/coursecat/internal/models"
)

// Store is the canonical course list plus its derived catalog and selection state.
type Store struct {
	courses  []models.Course
	catalog  Catalog
	active   *models.Course
	expanded map[string]bool
	version  uint64
	now      func() time.Time
}

// Snapshot is a deep copy of the store state for observers.
type Snapshot struct {
	Version    uint64          `json:"version"`
	Courses    []models.Course `json:"courses"`
	Categories []Category      `json:"categories"`
	Active     *models.Course  `json:"active"`
	Expanded   []string        `json:"expanded"`
}

// NewStore creates an empty store. A nil clock defaults to [time.Now].
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		catalog:  GroupByCategory(nil),
		expanded: map[string]bool{},
		now:      now,
	}
}

// Load replaces the course list wholesale and rebuilds the catalog.
//
// The first course in source order becomes active and only the first category stays expanded.
// An empty list leaves an empty catalog and no active course.
func (s *Store) Load(courses []models.Course) {
	next := make([]models.Course, len(courses))
	for i, c := range courses {
		next[i] = c.Clone()
	}

	s.courses = next
	s.catalog = GroupByCategory(next)
	s.active = nil
	s.expanded = map[string]bool{}

	if len(next) > 0 {
		first := next[0].Clone()
		s.active = &first
	}
	if name, ok := s.catalog.First(); ok {
		s.expanded[name] = true
	}
	s.version++
}

// SetStatus replaces the status and updated_at of the course with id.
//
// Unknown ids and unchanged statuses are no-ops and return false. Otherwise the list, the catalog and the active
// course are replaced by new values, never edited in place.
func (s *Store) SetStatus(id int64, status models.Status) bool {
	i := s.indexOf(id)
	if i < 0 || s.courses[i].Status == status {
		return false
	}

	updated := s.courses[i].WithStatus(status, s.now())

	next := make([]models.Course, len(s.courses))
	copy(next, s.courses)
	next[i] = updated

	s.courses = next
	s.catalog = GroupByCategory(next)
	if s.active != nil && s.active.ID == id {
		active := updated.Clone()
		s.active = &active
	}
	s.version++
	return true
}

// Select makes the course with id active. Unknown ids return false.
func (s *Store) Select(id int64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	if s.active != nil && s.active.ID == id {
		return true
	}
	active := s.courses[i].Clone()
	s.active = &active
	s.version++
	return true
}

// ClearSelection returns to the catalog overview.
func (s *Store) ClearSelection() {
	if s.active == nil {
		return
	}
	s.active = nil
	s.version++
}

// Toggle flips the expansion of a category. Unknown categories return false.
func (s *Store) Toggle(category string) bool {
	if _, ok := s.catalog.Get(category); !ok {
		return false
	}
	if s.expanded[category] {
		delete(s.expanded, category)
	} else {
		s.expanded[category] = true
	}
	s.version++
	return true
}

// StartCategory expands only category and selects its first course.
func (s *Store) StartCategory(category string) bool {
	courses, ok := s.catalog.Get(category)
	if !ok || len(courses) == 0 {
		return false
	}
	s.expanded = map[string]bool{category: true}
	active := courses[0].Clone()
	s.active = &active
	s.version++
	return true
}

// Find returns the course with id.
func (s *Store) Find(id int64) (models.Course, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Course{}, false
	}
	return s.courses[i].Clone(), true
}

// Active returns the selected course.
func (s *Store) Active() (models.Course, bool) {
	if s.active == nil {
		return models.Course{}, false
	}
	return s.active.Clone(), true
}

// Expanded reports whether a category is expanded.
func (s *Store) Expanded(category string) bool { return s.expanded[category] }

// Catalog returns the derived catalog.
func (s *Store) Catalog() Catalog { return s.catalog }

// Len returns the number of courses.
func (s *Store) Len() int { return len(s.courses) }

// Version increments once per effective mutation.
func (s *Store) Version() uint64 { return s.version }

// CompletedCount returns the checked and total counts for a category.
func (s *Store) CompletedCount(category string) (done, total int) {
	return s.catalog.CompletedCount(category)
}

// Snapshot returns a deep copy of the current state. Expanded categories are listed in catalog order.
func (s *Store) Snapshot() Snapshot {
	courses := make([]models.Course, len(s.courses))
	for i, c := range s.courses {
		courses[i] = c.Clone()
	}

	expanded := []string{}
	for _, name := range s.catalog.Names() {
		if s.expanded[name] {
			expanded = append(expanded, name)
		}
	}

	var active *models.Course
	if s.active != nil {
		c := s.active.Clone()
		active = &c
	}

	return Snapshot{
		Version:    s.version,
		Courses:    courses,
		Categories: s.catalog.Categories(),
		Active:     active,
		Expanded:   expanded,
	}
}

func (s *Store) indexOf(id int64) int {
	for i, c := range s.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}
