package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/coursecat/internal/formatter"
	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/desertthunder/coursecat/internal/tasks"
)

var _ Painter = (*Palette)(nil)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CatalogView ViewState = iota
	CourseView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	ctrl     *tasks.Controller
	events   <-chan tasks.Event
	width    int
	height   int
	list     list.Model
	snapshot tasks.View
	notice   string
	help     help.Model
	keys     keyMap
	open     func(string) error
}

// NewModel creates a TUI over ctrl. events should be the channel passed to the controller as
// [tasks.ControllerOpts.Events] and may be nil.
func NewModel(ctx context.Context, ctrl *tasks.Controller, events <-chan tasks.Event) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Course Catalog"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	return &Model{
		ctx:    ctx,
		view:   CatalogView,
		ctrl:   ctrl,
		events: events,
		list:   l,
		help:   help.New(),
		keys:   newKeyMap(),
		open:   shared.OpenBrowser,
	}
}

// Init bootstraps the controller from sample data and starts listening for controller events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.bootstrap(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case CatalogView:
			return m.handleCatalogKeys(msg)
		case CourseView:
			return m.handleCourseKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgBootstrapped:
		m.notice = ""
		return m, m.refresh()

	case MsgControllerEvent:
		return m, tea.Batch(m.refresh(), m.waitForEvent())

	case MsgAttempted:
		data := msg.data.(struct {
			result tasks.AttemptResult
			err    error
		})
		if data.err == nil && data.result.Outcome == tasks.OutcomeLoaded {
			m.notice = fmt.Sprintf("Loaded %d courses from the database", data.result.Count)
		}
		return m, m.refresh()

	case MsgOpened:
		data := msg.data.(struct {
			url string
			err error
		})
		if data.err != nil {
			m.notice = fmt.Sprintf("Could not open %s: %v", data.url, data.err)
		} else {
			m.notice = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleCatalogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		switch item := m.list.SelectedItem().(type) {
		case categoryItem:
			_ = m.ctrl.Toggle(item.name)
			return m, m.refresh()
		case courseItem:
			if err := m.ctrl.Select(item.course.ID); err != nil {
				return m, m.refresh()
			}
			m.view = CourseView
			return m, m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.start):
		var category string
		switch item := m.list.SelectedItem().(type) {
		case categoryItem:
			category = item.name
		case courseItem:
			category = item.course.CategoryKey()
		default:
			return m, nil
		}
		if err := m.ctrl.StartCategory(category); err == nil {
			m.view = CourseView
		}
		return m, m.refresh()

	case key.Matches(msg, m.keys.complete):
		if item, ok := m.list.SelectedItem().(courseItem); ok {
			_ = m.ctrl.MarkCompleted(m.ctx, item.course.ID)
			return m, m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.retry):
		return m, m.retry()

	case key.Matches(msg, m.keys.reload):
		if len(m.snapshot.Courses) > 0 {
			return m, nil
		}
		return m, m.bootstrap()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleCourseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	course, ok := m.activeCourse()

	switch {
	case key.Matches(msg, m.keys.back):
		m.ctrl.ClearSelection()
		m.view = CatalogView
		return m, m.refresh()

	case key.Matches(msg, m.keys.complete):
		if ok {
			_ = m.ctrl.MarkCompleted(m.ctx, course.ID)
		}
		return m, m.refresh()

	case key.Matches(msg, m.keys.open):
		if ok {
			return m, m.openCourse(formatter.EmbedURL(course.CourseURL))
		}

	case key.Matches(msg, m.keys.retry):
		return m, m.retry()
	}
	return m, nil
}

// activeCourse returns the current version of the active course, so status changes made after selection show up.
func (m *Model) activeCourse() (models.Course, bool) {
	if m.snapshot.Active == nil {
		return models.Course{}, false
	}
	for _, c := range m.snapshot.Courses {
		if c.ID == m.snapshot.Active.ID {
			return c, true
		}
	}
	return *m.snapshot.Active, true
}

// refresh re-reads the controller snapshot and rebuilds the list, keeping the cursor in place.
func (m *Model) refresh() tea.Cmd {
	m.snapshot = m.ctrl.Snapshot()
	if m.snapshot.Active == nil && m.view == CourseView {
		m.view = CatalogView
	}

	items := catalogItems(m.snapshot.Categories, m.snapshot.Expanded, m.snapshot.Active)
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	switch {
	case len(items) == 0:
	case idx >= len(items):
		m.list.Select(len(items) - 1)
	default:
		m.list.Select(idx)
	}
	return cmd
}

func (m *Model) bootstrap() tea.Cmd {
	return func() tea.Msg {
		return bootstrappedMsg(m.ctrl.Reload(m.ctx))
	}
}

func (m *Model) retry() tea.Cmd {
	if !m.snapshot.CanRetry {
		return nil
	}
	return func() tea.Msg {
		result, err := m.ctrl.Retry(m.ctx)
		return attemptedMsg(result, err)
	}
}

func (m *Model) openCourse(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg(url, m.open(url))
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e, ok := <-m.events:
			if !ok {
				return nil
			}
			return controllerEventMsg(e)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case CatalogView:
		body = m.renderCatalog()
	case CourseView:
		body = m.renderCourse()
	}
	return fmt.Sprintf("%s\n%s", body, m.renderStatus())
}

func (m *Model) renderCatalog() string {
	if len(m.snapshot.Courses) == 0 {
		title := styles.title.Render("Course Catalog")
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.warn.Render("No courses available."), helpView)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.start, m.keys.complete}
	if m.snapshot.CanRetry {
		helpKeys = append(helpKeys, m.keys.retry)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderCourse() string {
	course, ok := m.activeCourse()
	if !ok {
		return styles.warn.Render("No course selected")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(course.Title))
	b.WriteString("\n")

	status := styles.warn.Render("Not completed")
	if course.Status.Completed() {
		status = styles.ok.Render("✓ Completed")
	}

	rows := [][2]string{
		{"Instructor", course.Instructor},
		{"Category", course.CategoryKey()},
		{"Subcategory", course.SubcategoryText()},
		{"Status", status},
		{"Video", formatter.EmbedURL(course.CourseURL)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(r[0]), r[1])
	}

	done, total := 0, 0
	for _, cat := range m.snapshot.Categories {
		if cat.Name == course.CategoryKey() {
			done, total = cat.Completed(), len(cat.Courses)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", styles.help.Render(fmt.Sprintf("%s progress: %d/%d", course.CategoryKey(), done, total)))

	helpKeys := []key.Binding{m.keys.complete, m.keys.open, m.keys.back}
	if m.snapshot.CanRetry {
		helpKeys = append(helpKeys, m.keys.retry)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderStatus() string {
	var parts []string
	switch {
	case m.snapshot.Source.Source == models.SourceDatabase:
		parts = append(parts, styles.ok.Render("● database"))
	default:
		parts = append(parts, styles.warn.Render("○ sample data"))
	}
	parts = append(parts, m.snapshot.State.String())

	if m.snapshot.Error != "" {
		parts = append(parts, styles.err.Render(m.snapshot.Error))
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	return styles.status.Render(strings.Join(parts, " │ "))
}
