// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the curriculum pipeline, which only ever inserts, selects by a filter
// and updates. No transaction semantics are assumed: callers rely on
// idempotent lookups so that a partially completed run can be re-invoked.
package store
