package sqlstore

import (
	"fmt"
	"regexp"
)

// Supported values for DB_DRIVER
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Dialect hides the SQL differences between the supported drivers.
// Queries are written with $n placeholders and rebound per dialect.
type Dialect interface {
	Name() string
	DriverName() string
	GooseDialect() string
	MigrationsDir() string
	Rebind(query string) string
}

// NewDialect returns the dialect for a configured driver
func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case "", DriverPostgres:
		return postgresDialect{driver: DriverPostgres}, nil
	case DriverPgx:
		return postgresDialect{driver: DriverPgx}, nil
	case DriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type postgresDialect struct {
	driver string
}

func (d postgresDialect) Name() string               { return "postgres" }
func (d postgresDialect) DriverName() string         { return d.driver }
func (d postgresDialect) GooseDialect() string       { return "postgres" }
func (d postgresDialect) MigrationsDir() string      { return "postgres" }
func (d postgresDialect) Rebind(query string) string { return query }

var dollarPlaceholder = regexp.MustCompile(`\$(\d+)`)

type sqliteDialect struct{}

func (sqliteDialect) Name() string          { return "sqlite" }
func (sqliteDialect) DriverName() string    { return "sqlite" }
func (sqliteDialect) GooseDialect() string  { return "sqlite3" }
func (sqliteDialect) MigrationsDir() string { return "sqlite" }

// Rebind converts $n placeholders to SQLite's ?n form
func (sqliteDialect) Rebind(query string) string {
	return dollarPlaceholder.ReplaceAllString(query, "?${1}")
}
