// Package schema introspects the connected database and maps business labels
// to physical tables and columns. Catalog deployments are hand-maintained
// spreadsheet imports, so physical names vary; everything here is best-effort.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Column describes one physical column.
type Column struct {
	Name     string
	DataType string
}

// MetaSource reads table and column metadata. Implemented over pgx,
// faked in tests.
type MetaSource interface {
	TableNames(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]Column, error)
	PrimaryKey(ctx context.Context, table string) ([]string, error)
	DistinctValues(ctx context.Context, table, column string) ([]string, error)
}

// Inspector reads metadata from information_schema.
type Inspector struct {
	pool *pgxpool.Pool
}

// NewInspector constructs an Inspector over a connection pool.
func NewInspector(pool *pgxpool.Pool) *Inspector {
	return &Inspector{pool: pool}
}

// TableNames lists base tables in the public schema, sorted.
func (i *Inspector) TableNames(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("schema: list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Columns lists the columns of a table in ordinal position order.
func (i *Inspector) Columns(ctx context.Context, table string) ([]Column, error) {
	const query = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`
	rows, err := i.pool.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("schema: columns of %q: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// PrimaryKey returns the primary key columns of a table, in key order.
// An empty slice means the table has no primary key.
func (i *Inspector) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		WHERE tc.table_schema = 'public'
		  AND tc.table_name = $1
		  AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position`
	rows, err := i.pool.Query(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("schema: primary key of %q: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// DistinctValues returns the distinct non-blank values of a text column, sorted.
func (i *Inspector) DistinctValues(ctx context.Context, table, column string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %[1]s::text
		FROM %[2]s
		WHERE %[1]s IS NOT NULL AND trim(%[1]s::text) <> ''
		ORDER BY %[1]s::text`, QuoteIdent(column), QuoteIdent(table))
	rows, err := i.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("schema: distinct %q.%q: %w", table, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		v = strings.TrimSpace(v)
		if v != "" {
			values = append(values, v)
		}
	}
	return values, rows.Err()
}

// QuoteIdent quotes an identifier for direct interpolation into SQL.
// Catalog tables carry spaces and Cyrillic in their names, so every
// generated statement has to go through this.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
