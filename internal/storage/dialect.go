package storage

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteTimeLayout is the canonical text form SQLite timestamps are stored
// in. It is understood by strftime()/date() and sorts chronologically.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// Dialect abstracts the store-specific pieces of SQL the repository cannot
// write portably: placeholder style, date-bucket formatting and
// constraint-violation detection. One implementation per supported backend,
// selected at startup from the connection URL.
type Dialect interface {
	Name() string

	// DriverName is the database/sql driver to open.
	DriverName() string

	// Rebind converts a query written with ? placeholders into the
	// dialect's native placeholder style.
	Rebind(query string) string

	// HourBucket returns an expression formatting a timestamp column as
	// "YYYY-MM-DD HH:00:00" (hour truncated, minutes and seconds zeroed).
	HourBucket(column string) string

	// DayBucket returns an expression formatting a timestamp column as a
	// plain "YYYY-MM-DD" calendar date.
	DayBucket(column string) string

	// TimeValue converts a timestamp into the driver's bind value. All
	// timestamps are normalized to UTC so that text comparison in SQLite
	// stays chronological.
	TimeValue(t time.Time) any

	IsUniqueViolation(err error) bool
	IsForeignKeyViolation(err error) bool
}

// DialectFor picks the dialect matching a database URL: postgres:// selects
// postgres, everything else is treated as a SQLite path.
func DialectFor(databaseURL string) Dialect {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgresDialect{}
	}
	return sqliteDialect{}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) HourBucket(column string) string {
	return "strftime('%Y-%m-%d %H:00:00', " + column + ")"
}

func (sqliteDialect) DayBucket(column string) string {
	return "date(" + column + ")"
}

func (sqliteDialect) TimeValue(t time.Time) any {
	return t.UTC().Format(sqliteTimeLayout)
}

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func (sqliteDialect) IsForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_TRIGGER
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

// Rebind rewrites ? placeholders as $1..$n for the postgres wire protocol.
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (postgresDialect) HourBucket(column string) string {
	return "to_char(" + column + ", 'YYYY-MM-DD HH24:00:00')"
}

func (postgresDialect) DayBucket(column string) string {
	return "to_char(" + column + ", 'YYYY-MM-DD')"
}

func (postgresDialect) TimeValue(t time.Time) any {
	return t.UTC()
}

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == "23505"
}

func (postgresDialect) IsForeignKeyViolation(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == "23503"
}
