package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/coursecat/internal/formatter"
	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/services"
	"github.com/desertthunder/coursecat/internal/shared"
)

const DefaultBatchSize = 20

// LoadOpts contains configuration for a bulk CSV load.
type LoadOpts struct {
	Source    string  // HTTP(S) URL or file path of the spreadsheet export
	BatchSize int     // Rows per insert (default: 20)
	RateLimit float64 // Batches per second (default: 5)
	DryRun    bool    // Parse and report without inserting
}

// LoadResult summarises a bulk load.
type LoadResult struct {
	Parsed        int                 // Valid rows found in the CSV
	Skipped       int                 // Rows dropped for missing fields
	UnknownStatus int                 // Parsed rows whose status was unknown, loaded as unchecked
	Batches       int                 // Batches attempted
	Inserted      int                 // Rows stored
	Total         int                 // Rows in the table afterwards, -1 on dry runs
	Sample        *models.CourseInput // First parsed row, for display
}

// BulkLoader fills the remote courses table from a CSV export.
type BulkLoader struct {
	loader     services.Loader
	httpClient *http.Client
	logger     *log.Logger
}

// NewBulkLoader creates a loader. A nil client uses a client with a 30 second timeout.
func NewBulkLoader(loader services.Loader, client *http.Client, logger *log.Logger) *BulkLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BulkLoader{loader: loader, httpClient: client, logger: shared.WithLogger(logger, "component", "loader")}
}

// Run fetches and parses the CSV, then inserts it in rate limited batches.
//
// The first failed batch aborts the load; rows from earlier batches stay inserted.
func (b *BulkLoader) Run(ctx context.Context, prog chan<- ProgressUpdate, opts LoadOpts) (*LoadResult, error) {
	if opts.Source == "" {
		return nil, fmt.Errorf("%w: CSV source", shared.ErrMissingArgument)
	}
	if !opts.DryRun && b.loader == nil {
		return nil, fmt.Errorf("%w: remote does not accept inserts", shared.ErrServiceUnavailable)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	sendProgress(prog, fetchCSVUpdate(opts.Source))
	body, err := b.open(ctx, opts.Source)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	parsed, err := formatter.ParseCourseCSV(body)
	if err != nil {
		return nil, err
	}
	rows := parsed.Courses
	sendProgress(prog, parsedCSVUpdate(len(rows), parsed.Skipped))
	b.logger.Info("parsed CSV", "source", opts.Source, "valid", len(rows), "skipped", parsed.Skipped)
	if parsed.UnknownStatus > 0 {
		b.logger.Warn("unknown status values loaded as unchecked", "rows", parsed.UnknownStatus)
	}

	result := &LoadResult{Parsed: len(rows), Skipped: parsed.Skipped, UnknownStatus: parsed.UnknownStatus, Total: -1}
	if len(rows) > 0 {
		result.Sample = &rows[0]
	}
	if opts.DryRun {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	batches := formatter.Batches(rows, opts.BatchSize)
	for i, batch := range batches {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		result.Batches++
		sendProgress(prog, insertingBatchUpdate(i+1, len(batches), len(batch)))

		inserted, err := b.loader.InsertCourses(ctx, batch)
		if err != nil {
			sendProgress(prog, insertFailedUpdate(i+1, len(batches), err))
			b.logger.Error("batch insert failed", "batch", i+1, "of", len(batches), "error", err)
			return result, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}

		result.Inserted += len(inserted)
		sendProgress(prog, insertedBatchUpdate(i+1, len(batches), len(inserted)))
	}

	total, err := b.loader.CountCourses(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to count courses: %w", err)
	}
	result.Total = total
	sendProgress(prog, countRowsUpdate(total))
	b.logger.Info("bulk load finished", "inserted", result.Inserted, "total", total)

	return result, nil
}

// open returns the CSV body from an HTTP(S) URL or a local file.
func (b *BulkLoader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CSV: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch CSV: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
