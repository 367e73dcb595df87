// Package catalog implements the in-memory Course Store.
//
// The [Store] owns the canonical ordered course list and the derived [Catalog], an insertion-ordered grouping of
// courses by category. The catalog is rebuilt from the list on every change rather than patched, so it cannot drift
// from the list.
//
// Besides the list, the store keeps the presentation state derived from it: the active (selected) course and the set
// of expanded categories. Every effective mutation bumps [Store.Version] exactly once; no-op mutations leave it alone.
//
// The store is not safe for concurrent use. The reconciliation controller in internal/tasks serialises access.
package catalog
