package schema

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeMeta struct {
	tables  map[string][]Column
	values  map[string][]string
	pks     map[string][]string
	lastErr error
}

func (f *fakeMeta) TableNames(ctx context.Context) ([]string, error) {
	var names []string
	for name := range f.tables {
		names = append(names, name)
	}
	return names, f.lastErr
}

func (f *fakeMeta) Columns(ctx context.Context, table string) ([]Column, error) {
	cols, ok := f.tables[table]
	if !ok {
		return nil, errors.New("no such table")
	}
	return cols, nil
}

func (f *fakeMeta) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	return f.pks[table], nil
}

func (f *fakeMeta) DistinctValues(ctx context.Context, table, column string) ([]string, error) {
	return f.values[table+"."+column], f.lastErr
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDetectReferenceColumns(t *testing.T) {
	cols := []Column{
		{Name: "REF #", DataType: "text"},
		{Name: "Наименование РУС", DataType: "text"},
		{Name: "В уп-ке", DataType: "text"},
		{Name: "Лист 25", DataType: "numeric"},
		{Name: "ТРИМ 25", DataType: "numeric"},
		{Name: "ТРМ 25 спец", DataType: "numeric"},
	}
	rc := DetectReferenceColumns(cols, "25")
	require.Equal(t, "REF #", rc.PartNumber)
	require.Equal(t, "Наименование РУС", rc.Description)
	require.Equal(t, "В уп-ке", rc.PackSize)
	require.Equal(t, "Лист 25", rc.ListPrice)
	// The special-terms column wins over the plain one.
	require.Equal(t, "ТРМ 25 спец", rc.BasePrice)
}

func TestDetectReferenceColumnsFallbacks(t *testing.T) {
	cols := []Column{
		{Name: "Колонка А", DataType: "text"},
		{Name: "Колонка Б", DataType: "text"},
	}
	rc := DetectReferenceColumns(cols, "25")
	require.Equal(t, "Колонка А", rc.PartNumber, "first column is the part number fallback")
	require.Equal(t, "Колонка Б", rc.Description, "second column is the description fallback")
	require.Empty(t, rc.PackSize)
	require.Empty(t, rc.ListPrice)
	require.Empty(t, rc.BasePrice)
}

func TestDetectReferenceColumnsRefSubstring(t *testing.T) {
	cols := []Column{
		{Name: "Код", DataType: "text"},
		{Name: "Reference Number", DataType: "text"},
	}
	rc := DetectReferenceColumns(cols, "25")
	require.Equal(t, "Reference Number", rc.PartNumber)
}

func TestFindColumn(t *testing.T) {
	cols := []Column{
		{Name: "Тип", DataType: "text"},
		{Name: "Кат. №", DataType: "text"},
		{Name: "Qts", DataType: "integer"},
	}

	name, ok := FindColumn(cols, []string{"Type", "Тип"})
	require.True(t, ok)
	require.Equal(t, "Тип", name)

	// Space-stripped fallback.
	name, ok = FindColumn(cols, []string{"кат.№"})
	require.True(t, ok)
	require.Equal(t, "Кат. №", name)

	_, ok = FindColumn(cols, []string{"Mode"})
	require.False(t, ok)
}

func TestResolverModes(t *testing.T) {
	meta := &fakeMeta{
		tables: map[string][]Column{
			"Modes": {{Name: "Mode", DataType: "text"}},
		},
		values: map[string][]string{
			"Modes.Mode": {"EVE", "F", "S"},
		},
	}
	r := NewResolver(meta, DefaultConfig(), discard())
	require.Equal(t, []string{"EVE", "F", "S"}, r.Modes(context.Background()))
}

func TestResolverModesFallback(t *testing.T) {
	tests := []struct {
		name string
		meta *fakeMeta
	}{
		{name: "missing table", meta: &fakeMeta{tables: map[string][]Column{}}},
		{name: "missing column", meta: &fakeMeta{
			tables: map[string][]Column{"Modes": {{Name: "Что-то", DataType: "text"}}},
		}},
		{name: "empty values", meta: &fakeMeta{
			tables: map[string][]Column{"Modes": {{Name: "Mode", DataType: "text"}}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.meta, DefaultConfig(), discard())
			require.Equal(t, DefaultModes, r.Modes(context.Background()))
		})
	}
}

func TestResolverTemplateColumns(t *testing.T) {
	meta := &fakeMeta{
		tables: map[string][]Column{
			"Templates": {
				{Name: "Тип", DataType: "text"},
				{Name: "Кат. №", DataType: "text"},
				{Name: "Qts", DataType: "integer"},
			},
		},
	}
	r := NewResolver(meta, DefaultConfig(), discard())
	tc, ok, err := r.TemplateColumns(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Тип", tc.Type)
	require.Equal(t, "Кат. №", tc.PartNumber)
	require.Equal(t, "Qts", tc.Quantity)
}

func TestResolverTemplateColumnsMissingPN(t *testing.T) {
	meta := &fakeMeta{
		tables: map[string][]Column{
			"Templates": {{Name: "Type", DataType: "text"}},
		},
	}
	r := NewResolver(meta, DefaultConfig(), discard())
	_, ok, err := r.TemplateColumns(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQuoteIdent(t *testing.T) {
	require.Equal(t, `"EVE TIN ALL"`, QuoteIdent("EVE TIN ALL"))
	require.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}
