package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour a *sql.DB speaks. Its value is also the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	default:
		return "", fmt.Errorf("parse dialect: unsupported driver %q", s)
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma-separated markers starting at from.
func (d Dialect) Placeholders(from, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.Placeholder(from + i)
	}
	return strings.Join(ph, ",")
}

// Rebind rewrites a query written with '?' markers into the dialect's form.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Open opens and pings a database for the given dialect.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", d, err)
	}

	if d == SQLite {
		// a single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify %s connection: %w", d, err)
	}

	return db, nil
}
