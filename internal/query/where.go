package query

import "strings"

// Where is an ordered list of predicate fragments and their arguments,
// folded with AND. The zero value matches every row.
type Where struct {
	conds []string
	args  []any
}

// And appends a condition using ? placeholders for args.
func (w *Where) And(cond string, args ...any) *Where {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
	return w
}

// Empty reports whether no condition has been added.
func (w Where) Empty() bool {
	return len(w.conds) == 0
}

// SQL renders "WHERE a AND b", or "" when empty.
func (w Where) SQL() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// Args returns a copy of the bound arguments in placeholder order.
func (w Where) Args() []any {
	out := make([]any, len(w.args))
	copy(out, w.args)
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains returns a LIKE pattern matching s anywhere, with wildcards in s
// escaped. Use it with "LIKE ? ESCAPE '\'".
func Contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
