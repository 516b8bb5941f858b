package contentstore

import (
	"context"
	"reflect"
	"sync"
)

// Memory is an in-memory Store for tests and local development. Rows keep
// insertion order, which matches the id ordering of the Postgres store for
// serial keys. A non-nil Err makes every operation fail with it.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	nextID int64

	Err error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]map[string]any), nextID: 1}
}

func (m *Memory) Select(ctx context.Context, table string, filter map[string]any) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, &ContentStoreError{Table: table, Op: "select", Err: m.Err}
	}

	out := []map[string]any{}
	for _, row := range m.tables[table] {
		if rowMatches(row, filter) {
			out = append(out, copyRow(row))
		}
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, row map[string]any) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, &ContentStoreError{Table: table, Op: "insert", Err: m.Err}
	}

	stored := copyRow(row)
	if _, ok := stored["id"]; !ok {
		stored["id"] = m.nextID
		m.nextID++
	}
	m.tables[table] = append(m.tables[table], stored)
	return copyRow(stored), nil
}

func (m *Memory) Update(ctx context.Context, table string, match, values map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, &ContentStoreError{Table: table, Op: "update", Err: m.Err}
	}

	var n int64
	for _, row := range m.tables[table] {
		if rowMatches(row, match) {
			for k, v := range values {
				row[k] = v
			}
			n++
		}
	}
	return n, nil
}

func (m *Memory) Delete(ctx context.Context, table string, match map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, &ContentStoreError{Table: table, Op: "delete", Err: m.Err}
	}

	kept := m.tables[table][:0]
	var n int64
	for _, row := range m.tables[table] {
		if rowMatches(row, match) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	m.tables[table] = kept
	return n, nil
}

// Rows returns a copy of a table's contents, for test assertions.
func (m *Memory) Rows(table string) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, 0, len(m.tables[table]))
	for _, row := range m.tables[table] {
		out = append(out, copyRow(row))
	}
	return out
}

func rowMatches(row, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := row[k]
		if !ok || !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual tolerates the int width differences that creep in between
// literals in tests and values scanned from a driver.
func looseEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ai, aok := asInt64(a)
	bi, bok := asInt64(b)
	return aok && bok && ai == bi
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func copyRow(row map[string]any) map[string]any {
	dst := make(map[string]any, len(row))
	for k, v := range row {
		dst[k] = v
	}
	return dst
}
