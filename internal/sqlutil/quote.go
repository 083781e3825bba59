// Package sqlutil provides SQL helpers shared by the export sinks.
package sqlutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Dialect selects identifier quoting and placeholder syntax.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// QuoteIdentifier quotes a table or column name for the dialect, doubling
// any embedded quote character.
// Example: MySQL "my_table" -> "`my_table`", Postgres "my_table" -> "\"my_table\"".
func QuoteIdentifier(d Dialect, name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// validIdentifierRegex restricts identifiers to alphanumerics and underscores.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name only contains alphanumeric characters and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes an identifier after validating it.
// Use this for names that come from configuration or flags.
func QuoteIdentifierSafe(d Dialect, name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(d, name), nil
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func Placeholder(d Dialect, n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma-separated bind parameters starting at start.
func Placeholders(d Dialect, start, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = Placeholder(d, start+i)
	}
	return strings.Join(ps, ", ")
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
