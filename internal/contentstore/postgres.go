package contentstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// identRe accepts plain SQL identifiers. Table and column names that fail it
// are rejected before any SQL is built; values never reach the statement text.
var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config carries the Postgres connection settings.
type Config struct {
	// URL is the connection string. A literal ${key} placeholder is replaced
	// with Key, so credentials can stay out of the URL itself.
	URL string
	Key string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

func (c Config) dsn() string {
	return strings.ReplaceAll(c.URL, "${key}", c.Key)
}

// Postgres implements Store over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect creates the connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config, logger *zerolog.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("error parsing content store config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("error creating content store pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to content store: %w", err)
	}

	return NewPostgres(pool, logger), nil
}

// NewPostgres wraps an existing pool, mainly for tests.
func NewPostgres(pool *pgxpool.Pool, logger *zerolog.Logger) *Postgres {
	return &Postgres{
		pool: pool,
		log:  logger.With().Str("component", "contentstore").Logger(),
	}
}

// Close closes the underlying pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Status reports whether the store is reachable.
func (p *Postgres) Status(ctx context.Context) error {
	if p.pool == nil {
		return errors.New("content store not initialized")
	}
	return p.pool.Ping(ctx)
}

func (p *Postgres) Select(ctx context.Context, table string, filter map[string]any) ([]map[string]any, error) {
	if err := checkIdentifiers(table, filter); err != nil {
		return nil, &ContentStoreError{Table: table, Op: "select", Err: err}
	}

	query := "SELECT * FROM " + table
	where, args := buildWhere(filter, 1)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &ContentStoreError{Table: table, Op: "select", Err: err}
	}
	out, err := rowsToMaps(rows)
	if err != nil {
		return nil, &ContentStoreError{Table: table, Op: "select", Err: err}
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, table string, row map[string]any) (map[string]any, error) {
	if len(row) == 0 {
		return nil, &ContentStoreError{Table: table, Op: "insert", Err: errors.New("empty row")}
	}
	if err := checkIdentifiers(table, row); err != nil {
		return nil, &ContentStoreError{Table: table, Op: "insert", Err: err}
	}

	cols := sortedKeys(row)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[col]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &ContentStoreError{Table: table, Op: "insert", Err: err}
	}
	inserted, err := rowsToMaps(rows)
	if err != nil {
		return nil, &ContentStoreError{Table: table, Op: "insert", Err: err}
	}
	if len(inserted) != 1 {
		return nil, &ContentStoreError{Table: table, Op: "insert", Err: fmt.Errorf("expected 1 returned row, got %d", len(inserted))}
	}
	return inserted[0], nil
}

func (p *Postgres) Update(ctx context.Context, table string, match, values map[string]any) (int64, error) {
	if len(match) == 0 {
		return 0, &ContentStoreError{Table: table, Op: "update", Err: errors.New("empty match refused")}
	}
	if len(values) == 0 {
		return 0, &ContentStoreError{Table: table, Op: "update", Err: errors.New("no values to set")}
	}
	if err := checkIdentifiers(table, match); err != nil {
		return 0, &ContentStoreError{Table: table, Op: "update", Err: err}
	}
	if err := checkIdentifiers(table, values); err != nil {
		return 0, &ContentStoreError{Table: table, Op: "update", Err: err}
	}

	cols := sortedKeys(values)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(values)+len(match))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, values[col])
	}
	where, whereArgs := buildWhere(match, len(cols)+1)
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where)
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, &ContentStoreError{Table: table, Op: "update", Err: err}
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Delete(ctx context.Context, table string, match map[string]any) (int64, error) {
	if len(match) == 0 {
		return 0, &ContentStoreError{Table: table, Op: "delete", Err: errors.New("empty match refused")}
	}
	if err := checkIdentifiers(table, match); err != nil {
		return 0, &ContentStoreError{Table: table, Op: "delete", Err: err}
	}

	where, args := buildWhere(match, 1)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, &ContentStoreError{Table: table, Op: "delete", Err: err}
	}
	return tag.RowsAffected(), nil
}

// checkIdentifiers validates the table name and every column key in cols.
func checkIdentifiers(table string, cols map[string]any) error {
	if !identRe.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	for col := range cols {
		if !identRe.MatchString(col) {
			return fmt.Errorf("invalid column name %q", col)
		}
	}
	return nil
}

// buildWhere renders sorted equality conditions starting at the given
// placeholder index. Sorting keeps statement text deterministic for the
// prepared-statement cache.
func buildWhere(match map[string]any, firstArg int) (string, []any) {
	if len(match) == 0 {
		return "", nil
	}
	cols := sortedKeys(match)
	conds := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		conds[i] = fmt.Sprintf("%s = $%d", col, firstArg+i)
		args[i] = match[col]
	}
	return strings.Join(conds, " AND "), args
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rowsToMaps drains a result set into generic rows keyed by column name.
func rowsToMaps(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []map[string]any{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
