package templates

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trimm-medical/magconfig/internal/catalog"
	"github.com/trimm-medical/magconfig/internal/schema"
)

// ErrNoTemplateColumns means the templates table is missing or lacks the
// Type/PN columns; template application is disabled until it is fixed.
var ErrNoTemplateColumns = errors.New("templates: Type/PN columns not found")

// Repository reads the templates table.
type Repository interface {
	Load(ctx context.Context) (map[string][]Item, error)
}

type repository struct {
	pool     *pgxpool.Pool
	resolver *schema.Resolver
}

// NewRepository constructs the pgx-backed templates repository.
func NewRepository(pool *pgxpool.Pool, resolver *schema.Resolver) Repository {
	return &repository{pool: pool, resolver: resolver}
}

// Load reads every template row, keyed by lowercased type name with row
// order preserved. Rows with a blank type or part number are skipped;
// quantities parse through float so "2.0" counts as 2, defaulting to 1.
func (r *repository) Load(ctx context.Context) (map[string][]Item, error) {
	tc, ok, err := r.resolver.TemplateColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("templates: resolve columns: %w", err)
	}
	if !ok {
		return nil, ErrNoTemplateColumns
	}
	table := r.resolver.Config().TemplatesTable

	qtyExpr := "NULL"
	if tc.Quantity != "" {
		qtyExpr = schema.QuoteIdent(tc.Quantity) + "::text"
	}
	query := fmt.Sprintf(
		`SELECT %s::text, %s::text, %s FROM %s`,
		schema.QuoteIdent(tc.Type),
		schema.QuoteIdent(tc.PartNumber),
		qtyExpr,
		schema.QuoteIdent(table),
	)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("templates: load %q: %w", table, err)
	}
	defer rows.Close()

	out := make(map[string][]Item)
	for rows.Next() {
		var typ, pn, qty *string
		if err := rows.Scan(&typ, &pn, &qty); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(deref(typ))
		part := catalog.NormalizePartNumber(deref(pn))
		if name == "" || part == "" {
			continue
		}
		out[Key(name)] = append(out[Key(name)], Item{
			PartNumber: part,
			Quantity:   parseQuantity(deref(qty)),
		})
	}
	return out, rows.Err()
}

func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 1
	}
	if q := int(f); q > 1 {
		return q
	}
	return 1
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
