// Package web exposes the catalog controller over a JSON API.
//
// # Routes
//
//	GET  /healthz                      → liveness and the served patterns
//	GET  /api/catalog                  → current view (snapshot, source, state, error)
//	POST /api/catalog/reload           → reload sample data, only while the catalog is empty
//	POST /api/catalog/clear            → clear the active course
//	POST /api/categories/{name}/toggle → expand or collapse a category
//	POST /api/categories/{name}/start  → expand only this category and select its first course
//	POST /api/courses/{id}/select      → make a course active
//	POST /api/courses/{id}/complete    → mark a course checked (mirrored to the remote when connected)
//	GET  /api/courses/{id}/embed       → embeddable player URL for a course
//	POST /api/connection/retry         → retry the remote read, only while unreachable
//
// Every mutating route answers with the updated view, so clients never have to issue a second read.
//
// # Errors
//
// Errors are JSON objects of the form {"error": "..."}:
//   - 400 for a malformed course id or an unknown category
//   - 404 for unknown courses
//   - 409 when retry is unavailable because the remote is already reachable, or reload because courses are showing
package web
