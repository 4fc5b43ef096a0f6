package query

import (
	"fmt"

	"cloud.google.com/go/spanner"
)

// Dialect selects the placeholder syntax of a statement.
type Dialect int

const (
	// Spanner uses named parameters (@p0, @p1, ...).
	Spanner Dialect = iota
	// SQLite uses positional question marks.
	SQLite
	// Postgres uses numbered parameters ($1, $2, ...).
	Postgres
)

func (d Dialect) String() string {
	switch d {
	case Spanner:
		return "spanner"
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Args collects bound values while a statement is rendered.
type Args struct {
	dialect Dialect
	names   []string
	values  []any
}

// Bind records v and returns its placeholder.
func (a *Args) Bind(v any) string {
	return a.BindNamed(fmt.Sprintf("p%d", len(a.values)), v)
}

// BindNamed is Bind with an explicit name. Only Spanner placeholders carry
// the name; positional dialects ignore it.
func (a *Args) BindNamed(name string, v any) string {
	a.names = append(a.names, name)
	a.values = append(a.values, v)
	switch a.dialect {
	case SQLite:
		return "?"
	case Postgres:
		return fmt.Sprintf("$%d", len(a.values))
	default:
		return "@" + name
	}
}

// Statement is rendered SQL with its bound values in order.
type Statement struct {
	SQL     string
	Args    []any
	Dialect Dialect

	names []string
}

func newStatement(sql string, a *Args) Statement {
	return Statement{SQL: sql, Args: a.values, Dialect: a.dialect, names: a.names}
}

// Params returns the bound values keyed by parameter name.
func (s Statement) Params() map[string]interface{} {
	params := make(map[string]interface{}, len(s.Args))
	for i, v := range s.Args {
		params[s.names[i]] = v
	}
	return params
}

// Spanner converts s into a spanner.Statement.
func (s Statement) Spanner() spanner.Statement {
	return spanner.Statement{SQL: s.SQL, Params: s.Params()}
}
