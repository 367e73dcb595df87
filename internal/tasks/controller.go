package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/coursecat/internal/catalog"
	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/services"
	"github.com/desertthunder/coursecat/internal/shared"
)

const (
	DefaultConnectDelay = 1000 * time.Millisecond
	DefaultFetchTimeout = 5000 * time.Millisecond
	DefaultPushTimeout  = 5000 * time.Millisecond
)

// State is the reconciliation state of a session.
type State int

const (
	StateBootstrapping State = iota
	StateSampleActive
	StateDatabaseActive
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateSampleActive:
		return "sample_active"
	case StateDatabaseActive:
		return "database_active"
	default:
		return ""
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome classifies one remote read attempt.
type Outcome int

const (
	OutcomeNotConfigured Outcome = iota
	OutcomeTimeout
	OutcomeQueryFailed
	OutcomeCanceled
	OutcomeEmpty
	OutcomeLoaded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotConfigured:
		return "not_configured"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeQueryFailed:
		return "query_failed"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeEmpty:
		return "empty"
	case OutcomeLoaded:
		return "loaded"
	default:
		return ""
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// AttemptResult describes one remote read attempt. Err is informational and never surfaced as a user error.
type AttemptResult struct {
	Outcome Outcome `json:"outcome"`
	Count   int     `json:"count"`
	Err     error   `json:"-"`
}

// Reachable reports whether the remote answered.
func (r AttemptResult) Reachable() bool {
	return r.Outcome == OutcomeEmpty || r.Outcome == OutcomeLoaded
}

// View is what observers render: the store snapshot plus source, state and the displayed error.
type View struct {
	catalog.Snapshot
	Source   models.SourceState `json:"source"`
	State    State              `json:"state"`
	Error    string             `json:"error,omitempty"`
	CanRetry bool               `json:"can_retry"`
}

// ControllerOpts configures a [Controller].
type ControllerOpts struct {
	Connector    services.Connector
	SamplePath   string        // Optional TOML sample dataset; empty uses the built-in set
	ConnectDelay time.Duration // Wait before the automatic attempt (default: 1s, negative fires at once)
	FetchTimeout time.Duration // Bound on one read attempt (default: 5s)
	PushTimeout  time.Duration // Bound on one status write (default: 5s)
	Logger       *log.Logger
	Events       chan<- Event // Optional, receives events without blocking
	Now          func() time.Time
}

// Controller owns the [catalog.Store] and the data source state. Its methods are the only mutation entry points and
// are safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	store  *catalog.Store
	source models.SourceState
	state  State
	err    error

	connector    services.Connector
	samplePath   string
	connectDelay time.Duration
	fetchTimeout time.Duration
	pushTimeout  time.Duration
	events       chan<- Event
	now          func() time.Time
	logger       *log.Logger

	fetches  singleflight.Group
	timer    *time.Timer
	attempts sync.WaitGroup // scheduled attempt
	writes   sync.WaitGroup // status mirrors
}

// NewController creates a controller in the bootstrapping state. Call [Controller.Bootstrap] before use.
func NewController(opts ControllerOpts) *Controller {
	if opts.ConnectDelay < 0 {
		opts.ConnectDelay = 0
	} else if opts.ConnectDelay == 0 {
		opts.ConnectDelay = DefaultConnectDelay
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = DefaultPushTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	connector := opts.Connector
	if connector == nil {
		connector = services.NewSQLConnector(nil)
	}

	return &Controller{
		store:        catalog.NewStore(opts.Now),
		source:       models.InitialSourceState(),
		state:        StateBootstrapping,
		connector:    connector,
		samplePath:   opts.SamplePath,
		connectDelay: opts.ConnectDelay,
		fetchTimeout: opts.FetchTimeout,
		pushTimeout:  opts.PushTimeout,
		events:       opts.Events,
		now:          opts.Now,
		logger: shared.WithLogger(opts.Logger,
			"component", "controller", "session", shared.GenerateID(), "remote", connector.Name()),
	}
}

// Bootstrap loads the sample dataset and schedules the single delayed remote attempt, bound to ctx.
//
// A sample file that cannot be loaded is reported as [shared.ErrInitialization], both as the returned error and as
// the displayed error, and the built-in sample set is loaded in its place.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	c.source = models.InitialSourceState()
	n, err := c.loadSample(ctx)
	c.logger.Info("bootstrapped from sample data", "courses", n, "connect_delay", c.connectDelay)
	c.mu.Unlock()

	c.emit(Event{Kind: EventBootstrapped, Err: err})
	return err
}

// Reload reloads the sample dataset and schedules a new delayed attempt. It is the recovery action offered when the
// catalog is empty and returns [shared.ErrReloadUnavailable] otherwise. Remote reachability is kept.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.store.Len() > 0 {
		c.mu.Unlock()
		return shared.ErrReloadUnavailable
	}

	c.source.Source = models.SourceSample
	n, err := c.loadSample(ctx)
	c.logger.Info("reloaded sample data", "courses", n, "reachable", c.source.RemoteReachable)
	c.mu.Unlock()

	c.emit(Event{Kind: EventBootstrapped, Err: err})
	return err
}

// Connect makes one remote read attempt and applies it, cancelling the scheduled attempt if it has not fired.
// Concurrent callers share the attempt in flight.
func (c *Controller) Connect(ctx context.Context) AttemptResult {
	c.mu.Lock()
	c.stopTimer()
	c.mu.Unlock()
	return c.connect(ctx)
}

func (c *Controller) connect(ctx context.Context) AttemptResult {
	v, _, _ := c.fetches.Do("fetch", func() (any, error) {
		return c.attempt(ctx), nil
	})
	return v.(AttemptResult)
}

// Retry clears the displayed error and makes an attempt. It is only available while the remote is unreachable.
func (c *Controller) Retry(ctx context.Context) (AttemptResult, error) {
	c.mu.Lock()
	if c.source.RemoteReachable {
		c.mu.Unlock()
		return AttemptResult{}, shared.ErrRetryUnavailable
	}
	c.err = nil
	c.mu.Unlock()

	c.logger.Info("retrying remote connection")
	return c.Connect(ctx), nil
}

// MarkCompleted marks the course checked locally and mirrors the write to the remote when the data came from it.
//
// It always returns nil. Unknown ids change nothing and the remote write is fire-and-forget: its failure is only
// logged and local state is never rolled back.
func (c *Controller) MarkCompleted(ctx context.Context, id int64) error {
	c.mu.Lock()
	_, found := c.store.Find(id)
	changed := c.store.SetStatus(id, models.StatusChecked)
	at := c.now()
	push := found && c.source.Source == models.SourceDatabase && c.source.RemoteReachable
	if push {
		c.writes.Add(1)
	}
	c.mu.Unlock()

	if !found {
		c.logger.Debug("mark completed on unknown course", "course", id)
		return nil
	}
	if changed {
		c.emit(Event{Kind: EventStatusChanged, CourseID: id})
	}
	if push {
		go c.push(context.WithoutCancel(ctx), id, models.StatusChecked, at)
	}
	return nil
}

// Select makes a course active.
func (c *Controller) Select(id int64) error {
	c.mu.Lock()
	ok := c.store.Select(id)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", shared.ErrCourseNotFound, id)
	}
	c.emit(Event{Kind: EventSelectionChanged, CourseID: id})
	return nil
}

// ClearSelection returns to the catalog overview.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.store.ClearSelection()
	c.mu.Unlock()
	c.emit(Event{Kind: EventSelectionChanged})
}

// Toggle expands or collapses a category.
func (c *Controller) Toggle(category string) error {
	c.mu.Lock()
	ok := c.store.Toggle(category)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, category)
	}
	c.emit(Event{Kind: EventSelectionChanged})
	return nil
}

// StartCategory expands only category and selects its first course.
func (c *Controller) StartCategory(category string) error {
	c.mu.Lock()
	ok := c.store.StartCategory(category)
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, category)
	}
	c.emit(Event{Kind: EventSelectionChanged})
	return nil
}

// Find returns the course with id.
func (c *Controller) Find(id int64) (models.Course, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Find(id)
}

// Source returns the data source state.
func (c *Controller) Source() models.SourceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// State returns the reconciliation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the displayed error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns a deep copy of everything observers render.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Snapshot: c.store.Snapshot(),
		Source:   c.source,
		State:    c.state,
		CanRetry: !c.source.RemoteReachable,
	}
	if c.err != nil {
		v.Error = displayError(c.err)
	}
	return v
}

// Wait blocks until every status write started so far has finished.
func (c *Controller) Wait() {
	c.writes.Wait()
}

// Close cancels the scheduled attempt if it has not fired and waits for the attempt and writes in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopTimer()
	c.mu.Unlock()
	c.attempts.Wait()
	c.writes.Wait()
}

// loadSample fills the store from the sample dataset, falls back to the built-in set on failure and schedules the
// delayed attempt. Callers hold c.mu and set c.source.
func (c *Controller) loadSample(ctx context.Context) (int, error) {
	courses, err := c.sampleCourses()
	if err != nil {
		c.logger.Error("failed to load sample dataset, using built-in set", "path", c.samplePath, "error", err)
		err = fmt.Errorf("%w: %w", shared.ErrInitialization, err)
		courses = models.SampleCourses(c.now())
	}

	c.store.Load(courses)
	c.state = StateSampleActive
	c.err = err
	c.schedule(ctx)
	return len(courses), err
}

func (c *Controller) sampleCourses() ([]models.Course, error) {
	if c.samplePath == "" {
		return models.SampleCourses(c.now()), nil
	}
	return models.LoadSampleFile(c.samplePath, c.now())
}

// schedule replaces any pending automatic attempt. Callers hold c.mu.
func (c *Controller) schedule(ctx context.Context) {
	c.stopTimer()
	c.attempts.Add(1)
	c.timer = time.AfterFunc(c.connectDelay, func() {
		defer c.attempts.Done()
		if ctx.Err() != nil {
			return
		}
		c.connect(ctx)
	})
}

// stopTimer cancels a pending attempt that has not fired yet. Callers hold c.mu.
func (c *Controller) stopTimer() {
	if c.timer != nil && c.timer.Stop() {
		c.attempts.Done()
	}
	c.timer = nil
}

func (c *Controller) attempt(ctx context.Context) AttemptResult {
	courses, err := services.TryFetch(ctx, c.connector, c.fetchTimeout)
	result := classify(courses, err)

	loaded := result.Outcome == OutcomeLoaded
	c.mu.Lock()
	switch result.Outcome {
	case OutcomeLoaded:
		if c.state == StateDatabaseActive {
			// Local writes are authoritative once remote data is showing.
			loaded = false
			break
		}
		c.store.Load(courses)
		c.source = models.SourceState{Source: models.SourceDatabase, RemoteReachable: true}
		c.state = StateDatabaseActive
		c.err = nil
	case OutcomeEmpty:
		c.source.RemoteReachable = true
	}
	source, state := c.source, c.state
	c.mu.Unlock()

	l := c.logger.With("outcome", result.Outcome, "source", source.Source, "reachable", source.RemoteReachable)
	switch result.Outcome {
	case OutcomeNotConfigured, OutcomeTimeout, OutcomeCanceled:
		l.Info("remote attempt did not connect, staying on current data", "error", err)
	case OutcomeQueryFailed:
		l.Warn("remote query failed, staying on current data", "error", err)
	case OutcomeEmpty:
		l.Info("remote reachable but empty, keeping sample data")
	case OutcomeLoaded:
		if !loaded {
			l.Info("remote reachable, keeping local data already loaded from it", "courses", result.Count)
			break
		}
		l.Info("loaded courses from remote", "courses", result.Count)
	}

	c.emit(Event{Kind: EventAttempted, Attempt: &result, Source: source, State: state})
	return result
}

func (c *Controller) push(ctx context.Context, id int64, status models.Status, at time.Time) {
	defer c.writes.Done()

	err := services.PushStatus(ctx, c.connector, id, status, at, c.pushTimeout)
	if err != nil {
		c.logger.Warn("failed to mirror status to remote", "course", id, "status", status, "error", err)
		c.emit(Event{Kind: EventPushFailed, CourseID: id, Err: err})
		return
	}
	c.logger.Debug("mirrored status to remote", "course", id, "status", status)
	c.emit(Event{Kind: EventPushed, CourseID: id})
}

func (c *Controller) emit(e Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- e:
	default:
	}
}

func classify(courses []models.Course, err error) AttemptResult {
	switch {
	case err == nil && len(courses) == 0:
		return AttemptResult{Outcome: OutcomeEmpty}
	case err == nil:
		return AttemptResult{Outcome: OutcomeLoaded, Count: len(courses)}
	case errors.Is(err, shared.ErrNotConfigured):
		return AttemptResult{Outcome: OutcomeNotConfigured, Err: err}
	case errors.Is(err, shared.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return AttemptResult{Outcome: OutcomeTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return AttemptResult{Outcome: OutcomeCanceled, Err: err}
	default:
		return AttemptResult{Outcome: OutcomeQueryFailed, Err: err}
	}
}

// displayError renders the user facing message. Only initialization failures are ever displayed.
func displayError(err error) string {
	if errors.Is(err, shared.ErrInitialization) {
		return "Failed to initialize the application."
	}
	return err.Error()
}
