package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/coursecat/internal/services"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/desertthunder/coursecat/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Load bulk loads a CSV export into the remote courses table.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) error {
	source := cmd.String("source")
	if source == "" {
		source = r.config.Loader.Source
	}
	batchSize := cmd.Int("batch-size")
	if batchSize <= 0 {
		batchSize = r.config.Loader.BatchSize
	}
	dryRun := cmd.Bool("dry-run")

	var loader services.Loader
	if l, ok := r.connector.(services.Loader); ok && r.connector.Configured() {
		loader = l
	} else if !dryRun {
		return fmt.Errorf("%w: %s remote is not configured for inserts", shared.ErrServiceUnavailable, r.connector.Name())
	}

	r.logger.Info("starting bulk load", "source", source, "batch_size", batchSize, "dry_run", dryRun)
	r.writePlain("Loading courses...\n")
	r.writePlain("Source: %s\n\n", source)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchCSV:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ParseCSV:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.InsertBatch:
				r.writePlain("   %s\n", update.Message)
			case tasks.CountRows:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	bulk := tasks.NewBulkLoader(loader, r.httpClient, r.logger)
	result, err := bulk.Run(ctx, progressCh, tasks.LoadOpts{
		Source:    source,
		BatchSize: batchSize,
		RateLimit: r.config.Loader.RateLimit,
		DryRun:    dryRun,
	})
	close(progressCh)
	wg.Wait()

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Load Complete!")
	r.writePlain("Parsed: %d (skipped %d)\n", result.Parsed, result.Skipped)
	if result.UnknownStatus > 0 {
		r.writePlain("Unknown status read as unchecked: %d\n", result.UnknownStatus)
	}
	if result.Sample != nil {
		r.writePlain("First row: %s - %s [%s]\n", result.Sample.Title, result.Sample.Instructor, result.Sample.Category)
	}
	if dryRun {
		r.writePlain("Dry run, nothing inserted\n")
		return nil
	}
	r.writePlain("Inserted: %d in %d batches\n", result.Inserted, result.Batches)
	r.writePlain("Rows in table: %d\n", result.Total)
	return nil
}
