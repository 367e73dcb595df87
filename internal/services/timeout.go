package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
)

// WithTimeout runs fn under a context derived from ctx that expires after d.
//
// fn runs in its own goroutine. If the deadline passes first, WithTimeout returns [shared.ErrTimeout] immediately and
// whatever fn returns later is dropped. A non-positive d applies no bound.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", shared.ErrTimeout, d)
		}
		return zero, ctx.Err()
	}
}

// TryFetch makes one bounded read attempt.
//
// Unconfigured connectors return [shared.ErrNotConfigured] without any I/O.
func TryFetch(ctx context.Context, c Connector, timeout time.Duration) ([]models.Course, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotConfigured, c.Name())
	}

	courses, err := WithTimeout(ctx, timeout, c.FetchCourses)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// PushStatus makes one bounded status write.
func PushStatus(ctx context.Context, c Connector, id int64, status models.Status, at time.Time, timeout time.Duration) error {
	if !c.Configured() {
		return fmt.Errorf("%w: %s", shared.ErrNotConfigured, c.Name())
	}

	_, err := WithTimeout(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.UpdateStatus(ctx, id, status, at)
	})
	return err
}
