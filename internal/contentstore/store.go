// Package contentstore exposes the service's Postgres-backed content tables
// through a deliberately narrow table-CRUD contract: every caller works with
// generic rows and equality filters, never with hand-written SQL.
package contentstore

import (
	"context"
	"fmt"
)

// Tables the service reads and writes.
const (
	TableOffers           = "offers"
	TableSlideshow        = "slideshow"
	TableDailyNeeds       = "daily_needs"
	TableTrendingProducts = "trending_products"
	TableDailyNeedsItems  = "daily_needs_items"
	TableUsers            = "users"
	TableOTPCodes         = "otp_codes"
)

// Store is the table-CRUD contract. Filters and matches are column-equality
// maps; values are passed through as query parameters.
type Store interface {
	// Select returns every row matching the filter, ordered by id. A nil or
	// empty filter returns the whole table.
	Select(ctx context.Context, table string, filter map[string]any) ([]map[string]any, error)

	// Insert adds one row and returns it as stored, including any defaulted
	// columns.
	Insert(ctx context.Context, table string, row map[string]any) (map[string]any, error)

	// Update sets the given values on every row matching match and returns
	// the number of rows changed. An empty match is refused.
	Update(ctx context.Context, table string, match, values map[string]any) (int64, error)

	// Delete removes every row matching match and returns the number of rows
	// removed. An empty match is refused.
	Delete(ctx context.Context, table string, match map[string]any) (int64, error)
}

// ContentStoreError wraps a failed table operation with enough context to log
// without exposing SQL to callers.
type ContentStoreError struct {
	Table string
	Op    string
	Err   error
}

func (e *ContentStoreError) Error() string {
	return fmt.Sprintf("content store: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *ContentStoreError) Unwrap() error { return e.Err }
