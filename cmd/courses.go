package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/coursecat/internal/formatter"
	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/desertthunder/coursecat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// openCatalog bootstraps a controller from sample data and makes the remote attempt right away instead of waiting
// for the scheduled one. Callers must Close the controller.
func (r *Runner) openCatalog(ctx context.Context, events chan<- tasks.Event) (*tasks.Controller, tasks.AttemptResult) {
	ctrl := tasks.NewController(r.controllerOpts(events))
	if err := ctrl.Bootstrap(ctx); err != nil {
		r.logger.Warn("using built-in sample data", "error", err)
	}
	return ctrl, ctrl.Connect(ctx)
}

// CoursesList prints the catalog grouped by category.
func (r *Runner) CoursesList(ctx context.Context, cmd *cli.Command) error {
	ctrl, _ := r.openCatalog(ctx, nil)
	defer ctrl.Close()

	view := ctrl.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Courses (%s)", view.Source.Source))
	if len(view.Courses) == 0 {
		r.writePlain("No courses available.\n")
		return nil
	}

	for _, cat := range view.Categories {
		r.writePlain("\n%s (%d/%d)\n", cat.Name, cat.Completed(), len(cat.Courses))
		for _, c := range cat.Courses {
			check := " "
			if c.Status.Completed() {
				check = "x"
			}
			r.writePlain("  [%s] %4d  %s - %s\n", check, c.ID, c.Title, c.Instructor)
		}
	}
	return nil
}

// CoursesComplete marks a course completed. The change is mirrored to the remote only when the catalog came from it.
func (r *Runner) CoursesComplete(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: course id %q", shared.ErrInvalidArgument, raw)
	}

	events := make(chan tasks.Event, 16)
	ctrl, _ := r.openCatalog(ctx, events)
	defer ctrl.Close()

	course, ok := ctrl.Find(id)
	if !ok {
		return fmt.Errorf("%w: %d", shared.ErrCourseNotFound, id)
	}

	_ = ctrl.MarkCompleted(ctx, id)
	ctrl.Wait()

	if course.Status.Completed() {
		r.writePlain("✓ %s was already completed\n", course.Title)
	} else {
		r.writePlain("✓ %s marked completed\n", course.Title)
	}
	if ctrl.Source().Source != models.SourceDatabase {
		r.writePlain("  Remote unavailable, change kept locally only\n")
		return nil
	}

	for {
		select {
		case e := <-events:
			switch e.Kind {
			case tasks.EventPushed:
				r.writePlain("  Saved to %s\n", r.connector.Name())
				return nil
			case tasks.EventPushFailed:
				r.logger.Warn("remote write failed", "course", id, "error", e.Err)
				r.writePlain("  Remote write failed, change kept locally only\n")
				return nil
			}
		default:
			return nil
		}
	}
}

// CoursesExport writes the catalog to a file.
func (r *Runner) CoursesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ctrl, _ := r.openCatalog(ctx, nil)
	defer ctrl.Close()

	view := ctrl.Snapshot()
	path, err := formatter.WriteExport(view.Snapshot, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported catalog", "path", path, "format", format, "courses", len(view.Courses))
	r.writePlain("✓ Exported %d courses (%s) to %s\n", len(view.Courses), view.Source.Source, path)
	return nil
}

// Connect makes one remote read attempt and reports what happened.
func (r *Runner) Connect(ctx context.Context, cmd *cli.Command) error {
	ctrl, result := r.openCatalog(ctx, nil)
	defer ctrl.Close()

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Remote  string              `json:"remote"`
			Attempt tasks.AttemptResult `json:"attempt"`
			Source  models.SourceState  `json:"source"`
		}{r.connector.Name(), result, ctrl.Source()}, true)
	}

	r.writePlain("Remote: %s\n", r.connector.Name())
	switch result.Outcome {
	case tasks.OutcomeLoaded:
		r.writePlain("✓ Loaded %d courses\n", result.Count)
	case tasks.OutcomeEmpty:
		r.writePlain("✓ Reachable, but the courses table is empty (showing sample data)\n")
	case tasks.OutcomeNotConfigured:
		r.writePlain("✗ Not configured (set remote.url and remote.key)\n")
	default:
		r.writePlain("✗ %s: %v\n", result.Outcome, result.Err)
	}
	return nil
}
