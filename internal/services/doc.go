// Package services defines the [Connector] interface for the hosted courses table and implements it for a PostgREST
// (Supabase REST) endpoint and for a local SQLite database.
//
// # Connector Interface
//
// A connector reads every course ordered by (category, title) and writes single status changes. Connectors whose
// endpoint or credential is a template value report Configured() == false and are never called over the network.
//
// # Timeouts
//
// [TryFetch] and [PushStatus] bound each call with [WithTimeout]. When the bound fires first the caller gets
// [shared.ErrTimeout] and the late result is discarded.
//
// # Error Handling
//
// Connectors return errors from the shared package:
//   - [shared.ErrNotConfigured] : endpoint or key is a placeholder
//   - [shared.ErrTimeout] : the bound fired before the query returned
//   - [shared.ErrQueryFailed] : the remote answered with an application error, see [QueryError]
package services
