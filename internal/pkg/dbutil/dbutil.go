package dbutil

import (
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

var limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)

// Finalize rewrites a gendry-built statement for the target driver: the
// MySQL style "LIMIT ?, ?" becomes "LIMIT ? OFFSET ?" and placeholders are
// rebound to the driver's bind type. For postgres, backtick quoted
// identifiers become double quoted ones.
func Finalize(bindType int, query string, args []interface{}) (string, []interface{}) {
	loc := limitRegex.FindStringIndex(query)
	if loc != nil {
		prefix := query[:loc[0]]
		qCount := strings.Count(prefix, "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	if bindType == sqlx.QUESTION {
		return query, args
	}
	if bindType == sqlx.DOLLAR {
		query = strings.ReplaceAll(query, "`", `"`)
	}
	return sqlx.Rebind(bindType, query), args
}
