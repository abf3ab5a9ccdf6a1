// Package query assembles parameterised list statements: an AND-folded
// WHERE clause, an allow-listed ORDER BY column, LIMIT/OFFSET paging and a
// COUNT statement that shares the exact same predicate.
//
// The only identifiers that reach SQL text are the sort columns, and those
// come from a fixed per-resource map. Every user value is a bound argument.
package query
