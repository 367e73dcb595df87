// Package server provides HTTP routing and middleware for the catalog web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] pattern routing ("POST /api/courses/{id}/complete"), so path
// parameters are read with [http.Request.PathValue] and method mismatches get 405.
//
// # Middleware
//
//   - [RequestIDMiddleware] : assigns or propagates X-Request-ID (uuid)
//   - [LoggingMiddleware] : one structured log line per request
//   - [RecoverMiddleware] : converts panics into 500 responses
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
