// Package admin is a schema-driven maintenance surface over arbitrary
// catalog tables. The tables are hand-maintained spreadsheet imports, so
// everything works off live introspection rather than generated models.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimm-medical/magconfig/internal/platform/httpx"
	"github.com/trimm-medical/magconfig/internal/schema"
	"github.com/trimm-medical/magconfig/internal/shared"
)

// ColumnInfo describes one grid column.
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// TableInfo describes a table and whether row editing is available.
// Editing requires a single-column primary key.
type TableInfo struct {
	Name       string       `json:"name"`
	Columns    []ColumnInfo `json:"columns"`
	PrimaryKey string       `json:"primary_key,omitempty"`
	Editable   bool         `json:"editable"`
}

// RowSet is one page of rows rendered as text, NULLs kept distinct from
// empty strings.
type RowSet struct {
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

// Service implements the grid operations over a live pool.
type Service struct {
	pool   *pgxpool.Pool
	meta   schema.MetaSource
	logger *slog.Logger
}

// NewService constructs the admin grid service.
func NewService(pool *pgxpool.Pool, meta schema.MetaSource, logger *slog.Logger) *Service {
	return &Service{pool: pool, meta: meta, logger: logger}
}

// Tables lists the editable surface, sorted by name.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	return s.meta.TableNames(ctx)
}

// Describe returns the table's columns and primary key status.
func (s *Service) Describe(ctx context.Context, table string) (TableInfo, error) {
	if err := s.checkTable(ctx, table); err != nil {
		return TableInfo{}, err
	}
	cols, err := s.meta.Columns(ctx, table)
	if err != nil {
		return TableInfo{}, err
	}
	info := TableInfo{Name: table, Columns: make([]ColumnInfo, 0, len(cols))}
	for _, c := range cols {
		info.Columns = append(info.Columns, ColumnInfo{Name: c.Name, DataType: c.DataType})
	}
	if pk, err := s.singlePK(ctx, table); err == nil && pk != "" {
		info.PrimaryKey = pk
		info.Editable = true
	}
	return info, nil
}

// Rows returns one page ordered by the table's first column, so paging
// stays stable across refreshes.
func (s *Service) Rows(ctx context.Context, table string, p shared.Pagination) (RowSet, error) {
	if err := s.checkTable(ctx, table); err != nil {
		return RowSet{}, err
	}
	cols, err := s.meta.Columns(ctx, table)
	if err != nil {
		return RowSet{}, err
	}
	if len(cols) == 0 {
		return RowSet{}, fmt.Errorf("table %q has no columns: %w", table, httpx.ErrNotFound)
	}

	exprs := make([]string, len(cols))
	names := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = schema.QuoteIdent(c.Name) + "::text"
		names[i] = c.Name
	}
	query := fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY %s LIMIT %d OFFSET %d`,
		strings.Join(exprs, ", "),
		schema.QuoteIdent(table),
		schema.QuoteIdent(cols[0].Name),
		p.PerPage,
		p.Offset(),
	)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return RowSet{}, mapPgError(err)
	}
	defer rows.Close()

	set := RowSet{Columns: names, Rows: [][]*string{}, Limit: p.PerPage, Offset: p.Offset()}
	for rows.Next() {
		values := make([]*string, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return RowSet{}, err
		}
		set.Rows = append(set.Rows, values)
	}
	return set, rows.Err()
}

// Update rewrites the given columns of one row addressed by primary key.
// Empty strings become NULL.
func (s *Service) Update(ctx context.Context, table, pkValue string, values map[string]string) error {
	cols, pk, err := s.editableTable(ctx, table)
	if err != nil {
		return err
	}

	if err := s.checkColumns(cols, values, pk); err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	for _, c := range cols {
		raw, ok := values[c.Name]
		if !ok || c.Name == pk {
			continue
		}
		args = append(args, CoerceValue(c.DataType, raw))
		sets = append(sets, fmt.Sprintf("%s = $%d", schema.QuoteIdent(c.Name), len(args)))
	}
	if len(sets) == 0 {
		return fmt.Errorf("no editable columns in payload: %w", httpx.ErrValidation)
	}

	args = append(args, CoerceValue(columnType(cols, pk), pkValue))
	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE %s = $%d`,
		schema.QuoteIdent(table),
		strings.Join(sets, ", "),
		schema.QuoteIdent(pk),
		len(args),
	)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("row %q: %w", pkValue, httpx.ErrNotFound)
	}
	return nil
}

// BulkUpdate sets one column to one value across a set of rows.
func (s *Service) BulkUpdate(ctx context.Context, table, column, value string, pkValues []string) (int64, error) {
	cols, pk, err := s.editableTable(ctx, table)
	if err != nil {
		return 0, err
	}
	if columnType(cols, column) == "" || column == pk {
		return 0, fmt.Errorf("column %q is not bulk-editable: %w", column, httpx.ErrValidation)
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s = $1 WHERE %s = ANY($2)`,
		schema.QuoteIdent(table),
		schema.QuoteIdent(column),
		schema.QuoteIdent(pk),
	)
	tag, err := s.pool.Exec(ctx, query,
		CoerceValue(columnType(cols, column), value),
		coerceKeys(cols, pk, pkValues),
	)
	if err != nil {
		return 0, mapPgError(err)
	}
	return tag.RowsAffected(), nil
}

// Insert adds a row. Blank fields are omitted so column DEFAULTs and NULLs
// apply. Returns the new primary key when the table has one.
func (s *Service) Insert(ctx context.Context, table string, values map[string]string) (*string, error) {
	if err := s.checkTable(ctx, table); err != nil {
		return nil, err
	}
	cols, err := s.meta.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	if err := s.checkColumns(cols, values, ""); err != nil {
		return nil, err
	}
	pk, _ := s.singlePK(ctx, table)

	var (
		names        []string
		placeholders []string
		args         []any
	)
	for _, c := range cols {
		raw, ok := values[c.Name]
		if !ok || raw == "" {
			continue
		}
		args = append(args, CoerceValue(c.DataType, raw))
		names = append(names, schema.QuoteIdent(c.Name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	var query string
	if len(names) == 0 {
		query = fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES`, schema.QuoteIdent(table))
	} else {
		query = fmt.Sprintf(
			`INSERT INTO %s (%s) VALUES (%s)`,
			schema.QuoteIdent(table),
			strings.Join(names, ", "),
			strings.Join(placeholders, ", "),
		)
	}

	if pk != "" {
		query += fmt.Sprintf(` RETURNING %s::text`, schema.QuoteIdent(pk))
		var id *string
		if err := s.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return nil, mapPgError(err)
		}
		return id, nil
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return nil, mapPgError(err)
	}
	return nil, nil
}

// Delete removes rows by primary key and reports how many went away.
func (s *Service) Delete(ctx context.Context, table string, pkValues []string) (int64, error) {
	cols, pk, err := s.editableTable(ctx, table)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = ANY($1)`,
		schema.QuoteIdent(table),
		schema.QuoteIdent(pk),
	)
	tag, err := s.pool.Exec(ctx, query, coerceKeys(cols, pk, pkValues))
	if err != nil {
		return 0, mapPgError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Service) editableTable(ctx context.Context, table string) ([]schema.Column, string, error) {
	if err := s.checkTable(ctx, table); err != nil {
		return nil, "", err
	}
	pk, err := s.singlePK(ctx, table)
	if err != nil {
		return nil, "", err
	}
	if pk == "" {
		return nil, "", shared.ErrNoPrimaryKey
	}
	cols, err := s.meta.Columns(ctx, table)
	if err != nil {
		return nil, "", err
	}
	return cols, pk, nil
}

func (s *Service) checkTable(ctx context.Context, table string) error {
	names, err := s.meta.TableNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == table {
			return nil
		}
	}
	return fmt.Errorf("table %q: %w", table, httpx.ErrNotFound)
}

func (s *Service) singlePK(ctx context.Context, table string) (string, error) {
	pks, err := s.meta.PrimaryKey(ctx, table)
	if err != nil {
		return "", err
	}
	if len(pks) != 1 {
		return "", nil
	}
	return pks[0], nil
}

func (s *Service) checkColumns(cols []schema.Column, values map[string]string, pk string) error {
	for name := range values {
		if name == pk {
			return fmt.Errorf("primary key %q is read only: %w", name, httpx.ErrValidation)
		}
		if columnType(cols, name) == "" {
			return fmt.Errorf("unknown column %q: %w", name, httpx.ErrValidation)
		}
	}
	return nil
}

func columnType(cols []schema.Column, name string) string {
	for _, c := range cols {
		if c.Name == name {
			return c.DataType
		}
	}
	return ""
}

func coerceKeys(cols []schema.Column, pk string, raw []string) []any {
	dt := columnType(cols, pk)
	out := make([]any, len(raw))
	for i, v := range raw {
		out[i] = CoerceValue(dt, v)
	}
	return out
}

// mapPgError folds integrity violations into the conflict sentinel so the
// grid can show them without exposing driver errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return fmt.Errorf("%s: %w", pgErr.Message, httpx.ErrDuplicate)
		case pgErr.Code == "42P01":
			return fmt.Errorf("%s: %w", pgErr.Message, httpx.ErrNotFound)
		}
	}
	return err
}
