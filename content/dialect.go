package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect selects the SQL flavour spoken by the store.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a configuration value to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("content: unsupported database driver %q", s)
}

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) schema() string {
	if d == Postgres {
		return `
CREATE TABLE IF NOT EXISTS categories (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    feature_image TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 0,
    category BIGINT NOT NULL DEFAULT 0,
    post_date BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE TABLE IF NOT EXISTS users (
    user_name TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    login_history TEXT NOT NULL DEFAULT '[]'
);
`
	}
	return `
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    feature_image TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 0,
    category INTEGER NOT NULL DEFAULT 0,
    post_date INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE TABLE IF NOT EXISTS users (
    user_name TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    login_history TEXT NOT NULL DEFAULT '[]'
);
`
}

// statements splits the schema into individually executable statements.
func (d Dialect) statements() []string {
	var out []string
	for _, stmt := range strings.Split(d.schema(), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rebind rewrites '?' placeholders into '$n' for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
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

// isUniqueViolation reports whether err is a primary key or unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// extended result codes may be off; fall back to the primary code
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
