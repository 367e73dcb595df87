// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/coursecat/internal/models"
)

// StatusUpdate records one call to [MockConnector.UpdateStatus].
type StatusUpdate struct {
	ID     int64
	Status models.Status
	At     time.Time
}

// MockConnector is a test double for services.Connector and services.Loader.
//
// Set the exported fields before handing it to the code under test. Fetch and update calls wait for Delay (or for
// ctx) so timeouts can be exercised.
type MockConnector struct {
	Unconfigured bool
	Courses      []models.Course
	FetchErr     error
	UpdateErr    error
	InsertErr    error
	// FailBatch makes the n-th insert call (1-based) return InsertErr. Zero fails every call when InsertErr is set.
	FailBatch int
	Delay     time.Duration

	mu         sync.Mutex
	fetchCalls int
	updates    []StatusUpdate
	batches    [][]models.CourseInput
}

func (m *MockConnector) Name() string { return "mock" }

func (m *MockConnector) Configured() bool { return !m.Unconfigured }

func (m *MockConnector) FetchCourses(ctx context.Context) ([]models.Course, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()

	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	courses := make([]models.Course, len(m.Courses))
	for i, c := range m.Courses {
		courses[i] = c.Clone()
	}
	return courses, nil
}

func (m *MockConnector) UpdateStatus(ctx context.Context, id int64, status models.Status, at time.Time) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, StatusUpdate{ID: id, Status: status, At: at})
	return m.UpdateErr
}

func (m *MockConnector) InsertCourses(ctx context.Context, courses []models.CourseInput) ([]models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.batches) + 1
	if m.InsertErr != nil && (m.FailBatch == 0 || m.FailBatch == call) {
		m.batches = append(m.batches, nil)
		return nil, m.InsertErr
	}

	m.batches = append(m.batches, courses)
	inserted := make([]models.Course, len(courses))
	for i, in := range courses {
		inserted[i] = models.Course{
			ID:          int64(len(m.Courses) + i + 1),
			Title:       in.Title,
			Instructor:  in.Instructor,
			Category:    in.Category,
			Subcategory: in.Subcategory,
			CourseURL:   in.CourseURL,
			Status:      in.Status,
		}
	}
	m.Courses = append(m.Courses, inserted...)
	return inserted, nil
}

func (m *MockConnector) CountCourses(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Courses), nil
}

// FetchCalls returns the number of FetchCourses calls so far.
func (m *MockConnector) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// Updates returns the recorded status writes in call order.
func (m *MockConnector) Updates() []StatusUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StatusUpdate(nil), m.updates...)
}

// Batches returns the insert batches in call order. Failed calls appear as nil.
func (m *MockConnector) Batches() [][]models.CourseInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]models.CourseInput(nil), m.batches...)
}

func (m *MockConnector) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
