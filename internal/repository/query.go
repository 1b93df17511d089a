package repository

import "strings"

// likeEscaper neutralises LIKE wildcards in user input so a search for
// "50%" matches the literal text.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a lower-cased %term% pattern for case-insensitive
// substring matching with LOWER(col) LIKE ?.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// whereClause joins conditions with AND, or returns "1=1" when empty.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return "1=1"
	}
	return strings.Join(conds, " AND ")
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func uint64Args(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
