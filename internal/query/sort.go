package query

import "strings"

// Order is a SQL sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// ParseOrder maps "asc"/"desc" in any case to an Order. Anything else
// yields Desc.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, "asc") {
		return Asc
	}
	return Desc
}

// SortSpec is a resource's allow-list of sortable fields.
type SortSpec struct {
	// Columns maps the public field name to the SQL column expression.
	Columns map[string]string

	// Default is the field used when the requested one is unknown.
	Default string
}

// Sort is a resolved ORDER BY clause.
type Sort struct {
	Column string
	Order  Order
}

// Resolve picks the column for field, falling back to the default field
// when field is empty or not allow-listed.
func (s SortSpec) Resolve(field, order string) Sort {
	col, ok := s.Columns[field]
	if !ok {
		col = s.Columns[s.Default]
	}
	return Sort{Column: col, Order: ParseOrder(order)}
}

// Allowed reports whether field is sortable.
func (s SortSpec) Allowed(field string) bool {
	_, ok := s.Columns[field]
	return ok
}

// SQL renders the ORDER BY clause. A secondary key on id keeps pages
// stable when the primary column has ties.
func (s Sort) SQL(tieBreaker string) string {
	clause := "ORDER BY " + s.Column + " " + string(s.Order)
	if tieBreaker != "" && tieBreaker != s.Column {
		clause += ", " + tieBreaker + " " + string(s.Order)
	}
	return clause
}
