package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimm-medical/magconfig/internal/schema"
)

// Repository reads the reference and option tables.
type Repository interface {
	ReferenceColumns(ctx context.Context) (schema.ReferenceColumns, error)
	ReferenceRecords(ctx context.Context) ([]Record, error)
	LookupPartNumber(ctx context.Context, pn string) (Record, bool, error)
	OptionRows(ctx context.Context, table string) ([]OptionRow, error)
	Modes(ctx context.Context) []string
}

type repository struct {
	pool     *pgxpool.Pool
	resolver *schema.Resolver

	mu   sync.Mutex
	cols *schema.ReferenceColumns
}

// NewRepository constructs the pgx-backed catalog repository.
func NewRepository(pool *pgxpool.Pool, resolver *schema.Resolver) Repository {
	return &repository{pool: pool, resolver: resolver}
}

// ReferenceColumns resolves the reference table's physical columns once and
// reuses the result; the schema does not change under a running process.
func (r *repository) ReferenceColumns(ctx context.Context) (schema.ReferenceColumns, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cols != nil {
		return *r.cols, nil
	}
	cols, err := r.resolver.ReferenceColumns(ctx)
	if err != nil {
		return schema.ReferenceColumns{}, fmt.Errorf("catalog: resolve reference columns: %w", err)
	}
	r.cols = &cols
	return cols, nil
}

func (r *repository) Modes(ctx context.Context) []string {
	return r.resolver.Modes(ctx)
}

// optionalExpr renders a detected column or NULL when detection came up empty.
func optionalExpr(column string) string {
	if column == "" {
		return "NULL"
	}
	return schema.QuoteIdent(column) + "::text"
}

func (r *repository) ReferenceRecords(ctx context.Context) ([]Record, error) {
	cols, err := r.ReferenceColumns(ctx)
	if err != nil {
		return nil, err
	}
	table := r.resolver.Config().ReferenceTable

	query := fmt.Sprintf(
		`SELECT %s::text, %s, %s, %s, %s FROM %s`,
		schema.QuoteIdent(cols.PartNumber),
		optionalExpr(cols.Description),
		optionalExpr(cols.PackSize),
		optionalExpr(cols.ListPrice),
		optionalExpr(cols.BasePrice),
		schema.QuoteIdent(table),
	)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: load reference table: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var pn, desc, pack, list, base *string
		if err := rows.Scan(&pn, &desc, &pack, &list, &base); err != nil {
			return nil, err
		}
		if pn == nil {
			continue
		}
		records = append(records, buildRecord(*pn, desc, pack, list, base))
	}
	return records, rows.Err()
}

// LookupPartNumber matches one reference row by trimmed text, digit-stripped
// text, or numeric equivalence, in that priority, mirroring the mixed
// formats the sheets are imported with.
func (r *repository) LookupPartNumber(ctx context.Context, pn string) (Record, bool, error) {
	if strings.TrimSpace(pn) == "" {
		return Record{}, false, nil
	}
	cols, err := r.ReferenceColumns(ctx)
	if err != nil {
		return Record{}, false, err
	}
	table := r.resolver.Config().ReferenceTable

	pnText := strings.ReplaceAll(strings.TrimSpace(pn), ",", ".")
	pnDigits := DigitsOnly(pnText)

	refExpr := schema.QuoteIdent(cols.PartNumber) + "::text"
	query := fmt.Sprintf(
		`SELECT %s::text, %s, %s, %s, %s FROM %s WHERE trim(%s) = $1 OR regexp_replace(%s, '\D', '', 'g') = $2`,
		schema.QuoteIdent(cols.PartNumber),
		optionalExpr(cols.Description),
		optionalExpr(cols.PackSize),
		optionalExpr(cols.ListPrice),
		optionalExpr(cols.BasePrice),
		schema.QuoteIdent(table),
		refExpr,
		refExpr,
	)
	args := []any{pnText, pnDigits}

	if f, err := strconv.ParseFloat(pnText, 64); err == nil {
		query += fmt.Sprintf(
			` OR (%s ~ '^\s*\d+(\.\d+)?\s*$' AND %s::numeric = $3)`,
			refExpr,
			schema.QuoteIdent(cols.PartNumber),
		)
		args = append(args, f)
	}
	query += " LIMIT 1"

	var ref *string
	var desc, pack, list, base *string
	err = r.pool.QueryRow(ctx, query, args...).Scan(&ref, &desc, &pack, &list, &base)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("catalog: lookup %q: %w", pn, err)
	}
	if ref == nil {
		return Record{}, false, nil
	}
	return buildRecord(*ref, desc, pack, list, base), true, nil
}

// OptionRows loads one category table. The side column is probed because
// only the F-family tables carry one, under two different names.
func (r *repository) OptionRows(ctx context.Context, table string) ([]OptionRow, error) {
	sideCol, err := r.resolver.SideColumn(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("catalog: probe side column of %q: %w", table, err)
	}

	sideExpr := "NULL"
	if sideCol != "" {
		sideExpr = schema.QuoteIdent(sideCol) + "::text"
	}
	query := fmt.Sprintf(
		`SELECT %s::text, %s::text, %s::text, %s FROM %s`,
		schema.QuoteIdent("DIV"),
		schema.QuoteIdent("Disc Sh"),
		schema.QuoteIdent("PN"),
		sideExpr,
		schema.QuoteIdent(table),
	)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: load options %q: %w", table, err)
	}
	defer rows.Close()

	var out []OptionRow
	for rows.Next() {
		var mode, label, pn, side *string
		if err := rows.Scan(&mode, &label, &pn, &side); err != nil {
			return nil, err
		}
		out = append(out, OptionRow{
			Mode:       deref(mode),
			Label:      deref(label),
			PartNumber: NormalizePartNumber(deref(pn)),
			Side:       deref(side),
		})
	}
	return out, rows.Err()
}

func buildRecord(ref string, desc, pack, list, base *string) Record {
	rec := Record{
		PartNumber:  NormalizePartNumber(ref),
		Description: strings.TrimSpace(deref(desc)),
		PackSize:    strings.TrimSpace(deref(pack)),
	}
	if list != nil {
		if f, ok := ParseMoney(*list); ok {
			rec.ListPrice = &f
		}
	}
	if base != nil {
		if f, ok := ParseMoney(*base); ok {
			rec.BasePrice = &f
		}
	}
	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
