package repositories

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the placeholder style of the SQL driver.
type Dialect int

const (
	// SQLite (modernc.org/sqlite) accepts "?" placeholders.
	SQLite Dialect = iota
	// Postgres (pgx stdlib) requires "$n" placeholders.
	Postgres
)

// ParseDialect maps a driver name to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	}
	return 0, fmt.Errorf("parse dialect: unknown driver %q", driver)
}

// Rebind rewrites "?" placeholders for the dialect. Queries must not contain
// literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
