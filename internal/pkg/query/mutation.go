package query

import (
	"sort"
	"strings"
)

// UpdateBuilder constructs UPDATE statements. Columns render in name order so
// the same change always produces the same SQL.
type UpdateBuilder struct {
	table        string
	sets         map[string]any
	whereClauses []Condition
}

// Update creates an UpdateBuilder for table.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table, sets: make(map[string]any)}
}

// Set assigns value to column.
func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets[column] = value
	return b
}

// SetMap assigns every column in values.
func (b *UpdateBuilder) SetMap(values map[string]any) *UpdateBuilder {
	for col, v := range values {
		b.sets[col] = v
	}
	return b
}

// Where adds a WHERE condition. Multiple calls are combined with AND.
func (b *UpdateBuilder) Where(condition Condition) *UpdateBuilder {
	b.whereClauses = append(b.whereClauses, condition)
	return b
}

// Build renders the statement for dialect d.
func (b *UpdateBuilder) Build(d Dialect) Statement {
	args := &Args{dialect: d}
	var sql strings.Builder

	sql.WriteString("UPDATE ")
	sql.WriteString(b.table)
	sql.WriteString(" SET ")
	for i, col := range sortedColumns(b.sets) {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(col)
		sql.WriteString(" = ")
		sql.WriteString(args.Bind(b.sets[col]))
	}
	sql.WriteString(renderWhere(b.whereClauses, args))

	return newStatement(sql.String(), args)
}

// InsertBuilder constructs single-row INSERT statements.
type InsertBuilder struct {
	table  string
	values map[string]any
}

// InsertInto creates an InsertBuilder for table.
func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table, values: make(map[string]any)}
}

// Value sets column to v.
func (b *InsertBuilder) Value(column string, v any) *InsertBuilder {
	b.values[column] = v
	return b
}

// ValueMap sets every column in values.
func (b *InsertBuilder) ValueMap(values map[string]any) *InsertBuilder {
	for col, v := range values {
		b.values[col] = v
	}
	return b
}

// Build renders the statement for dialect d.
func (b *InsertBuilder) Build(d Dialect) Statement {
	args := &Args{dialect: d}
	cols := sortedColumns(b.values)
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = args.Bind(b.values[col])
	}

	sql := "INSERT INTO " + b.table +
		" (" + strings.Join(cols, ", ") + ")" +
		" VALUES (" + strings.Join(placeholders, ", ") + ")"
	return newStatement(sql, args)
}

// DeleteBuilder constructs DELETE statements.
type DeleteBuilder struct {
	table        string
	whereClauses []Condition
}

// DeleteFrom creates a DeleteBuilder for table.
func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where adds a WHERE condition. Multiple calls are combined with AND.
func (b *DeleteBuilder) Where(condition Condition) *DeleteBuilder {
	b.whereClauses = append(b.whereClauses, condition)
	return b
}

// Build renders the statement for dialect d.
func (b *DeleteBuilder) Build(d Dialect) Statement {
	args := &Args{dialect: d}
	sql := "DELETE FROM " + b.table + renderWhere(b.whereClauses, args)
	return newStatement(sql, args)
}

func sortedColumns(m map[string]any) []string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
