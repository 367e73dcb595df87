// Package tasks reconciles the course catalog with its remote table and bulk loads the table from CSV.
//
// # Reconciliation
//
// A [Controller] starts every session on the built-in sample dataset so the catalog is never empty, then makes one
// delayed read attempt against the [services.Connector]:
//
//	Bootstrapping -> SampleActive -> {SampleActive, DatabaseActive}
//
// Not configured, timed out and failed attempts keep the current data and surface nothing to the user. An empty table
// marks the remote reachable but keeps the sample data. A non-empty table replaces the catalog wholesale and the
// session stays on database data from then on.
//
// [Controller.MarkCompleted] updates the store synchronously and, on database data, mirrors the write in a tracked
// goroutine. Write failures are logged and dropped. There is no retry queue.
//
// # Events
//
// Observers pass a channel in [ControllerOpts.Events]. Sends use select with default so a slow observer never blocks
// the controller; observers re-read [Controller.Snapshot] on each event.
//
// # Bulk Loading
//
// [BulkLoader] reads a spreadsheet export over HTTP or from disk, parses it with [formatter.ParseCourseCSV] and
// inserts batches paced by a [rate.Limiter], reporting [ProgressUpdate]s the same non-blocking way.
package tasks
