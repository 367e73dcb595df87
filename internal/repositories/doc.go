// Package repositories implements SQLite persistence for the courses table.
//
// [CourseRepository] backs the sqlite remote driver and the bulk loader when no hosted endpoint is configured.
// Reads are ordered by (category, title) to match the hosted read path, and status writes only touch status and
// updated_at.
package repositories
