package objects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Record is a row keyed by column name.
type Record map[string]any

// PK returns the record's value for the given primary key column.
func (r Record) PK(column string) any {
	return r[column]
}

// Queryset is a lazy view over a table: filters accumulate, rows are fetched
// only when All, One, or Count run. The zero value is unusable; construct
// with NewQueryset.
type Queryset struct {
	db       *sql.DB
	table    string
	pkColumn string

	filtered bool
	pks      []any
	none     bool
}

// QuerysetOption configures a queryset at construction.
type QuerysetOption func(*Queryset)

// WithPKColumn overrides the primary key column. Defaults to "id".
func WithPKColumn(column string) QuerysetOption {
	return func(qs *Queryset) {
		if trimmed := strings.TrimSpace(column); trimmed != "" {
			qs.pkColumn = trimmed
		}
	}
}

// NewQueryset builds an unfiltered queryset over the given table.
func NewQueryset(db *sql.DB, table string, options ...QuerysetOption) (Queryset, error) {
	if db == nil {
		return Queryset{}, errors.New("objects: db is required")
	}
	if strings.TrimSpace(table) == "" {
		return Queryset{}, errors.New("objects: table is required")
	}

	qs := Queryset{
		db:       db,
		table:    strings.TrimSpace(table),
		pkColumn: "id",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&qs)
		}
	}
	return qs, nil
}

// Table returns the table the queryset reads from.
func (qs Queryset) Table() string {
	return qs.table
}

// PKColumn returns the primary key column name.
func (qs Queryset) PKColumn() string {
	return qs.pkColumn
}

// Filter returns a copy restricted to the given primary keys. Filtering by an
// empty key list yields the empty queryset.
func (qs Queryset) Filter(pks ...any) Queryset {
	out := qs
	out.filtered = true
	out.pks = append([]any(nil), pks...)
	if len(out.pks) == 0 {
		out.none = true
	}
	return out
}

// None returns a copy that matches no rows.
func (qs Queryset) None() Queryset {
	out := qs
	out.filtered = true
	out.none = true
	out.pks = nil
	return out
}

// IsNone reports whether the queryset is the empty queryset.
func (qs Queryset) IsNone() bool {
	return qs.none
}

// All fetches the matching rows ordered by primary key.
func (qs Queryset) All(ctx context.Context) ([]Record, error) {
	if qs.db == nil {
		return nil, errors.New("objects: queryset has no database")
	}
	if qs.none {
		return nil, nil
	}

	query, args := qs.buildSelect()
	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("objects: query %s: %w", qs.table, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("objects: scan %s: %w", qs.table, err)
	}
	return records, nil
}

// One fetches a single row. The second return reports whether a row matched.
func (qs Queryset) One(ctx context.Context) (Record, bool, error) {
	records, err := qs.All(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

// Count returns the number of matching rows without fetching them.
func (qs Queryset) Count(ctx context.Context) (int64, error) {
	if qs.db == nil {
		return 0, errors.New("objects: queryset has no database")
	}
	if qs.none {
		return 0, nil
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", qs.table)
	var args []any
	if qs.filtered {
		query += fmt.Sprintf(" WHERE %s IN (%s)", qs.pkColumn, placeholders(len(qs.pks)))
		args = qs.pks
	}

	var count int64
	if err := qs.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("objects: count %s: %w", qs.table, err)
	}
	return count, nil
}

// PKs returns the primary keys of all matching rows.
func (qs Queryset) PKs(ctx context.Context) ([]any, error) {
	records, err := qs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(records))
	for _, record := range records {
		out = append(out, record.PK(qs.pkColumn))
	}
	return out, nil
}

func (qs Queryset) buildSelect() (string, []any) {
	query := fmt.Sprintf("SELECT * FROM %s", qs.table)
	var args []any
	if qs.filtered {
		query += fmt.Sprintf(" WHERE %s IN (%s)", qs.pkColumn, placeholders(len(qs.pks)))
		args = qs.pks
	}
	query += fmt.Sprintf(" ORDER BY %s", qs.pkColumn)
	return query, args
}

func placeholders(n int) string {
	if n == 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		record := make(Record, len(columns))
		for i, column := range columns {
			record[column] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// normalizeValue converts driver byte slices into strings so records compare
// and serialize predictably.
func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
