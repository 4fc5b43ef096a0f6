package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
// Implementations bind their values through args so the placeholder syntax
// follows the statement's dialect.
type Condition interface {
	// SQL returns the SQL fragment for this condition.
	SQL(args *Args) string
}

// eqCondition implements equality comparison (field = value).
type eqCondition struct {
	field string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("status", "active") generates "status = @p0" on Spanner.
func Eq(field string, value interface{}) Condition {
	return &eqCondition{
		field: field,
		value: value,
	}
}

// SQL generates the SQL fragment for equality comparison.
func (c *eqCondition) SQL(args *Args) string {
	return fmt.Sprintf("%s = %s", c.field, args.Bind(c.value))
}

// ltCondition implements strict less-than comparison (field < value).
type ltCondition struct {
	field string
	value interface{}
}

// Lt creates a WHERE condition for field < value.
func Lt(field string, value interface{}) Condition {
	return &ltCondition{field: field, value: value}
}

// SQL generates the SQL fragment for less-than comparison.
func (c *ltCondition) SQL(args *Args) string {
	return fmt.Sprintf("%s < %s", c.field, args.Bind(c.value))
}

// IsNull creates a WHERE condition for NULL checks.
// Example: IsNull("description") generates "description IS NULL"
func IsNull(field string) Condition {
	return &isNullCondition{field: field}
}

// isNullCondition implements IS NULL comparison.
type isNullCondition struct {
	field string
}

// SQL generates the SQL fragment for IS NULL comparison.
func (c *isNullCondition) SQL(*Args) string {
	return fmt.Sprintf("%s IS NULL", c.field)
}

// IsNotNull creates a WHERE condition for NOT NULL checks.
// Example: IsNotNull("description") generates "description IS NOT NULL"
func IsNotNull(field string) Condition {
	return &isNotNullCondition{field: field}
}

// isNotNullCondition implements IS NOT NULL comparison.
type isNotNullCondition struct {
	field string
}

// SQL generates the SQL fragment for IS NOT NULL comparison.
func (c *isNotNullCondition) SQL(*Args) string {
	return fmt.Sprintf("%s IS NOT NULL", c.field)
}

func renderWhere(conds []Condition, args *Args) string {
	if len(conds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, c.SQL(args))
	}
	return " WHERE " + strings.Join(parts, " AND ")
}
