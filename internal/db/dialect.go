package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Dialect renders the few SQL fragments that differ between PostgreSQL and
// SQLite. Everything else in the queries is portable SQL.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectOf returns the dialect of an open connection.
func DialectOf(db *gorm.DB) Dialect {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		return SQLite
	}
	return Postgres
}

// YearMonth formats a timestamp column as YYYY-MM.
func (d Dialect) YearMonth(col string) string {
	if d == SQLite {
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", col)
	}
	return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM')", col)
}

// Year extracts the calendar year of a timestamp column as a number.
func (d Dialect) Year(col string) string {
	if d == SQLite {
		return fmt.Sprintf("CAST(strftime('%%Y', %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("EXTRACT(YEAR FROM %s)", col)
}

// Month extracts the month (1-12) of a timestamp column as a number.
func (d Dialect) Month(col string) string {
	if d == SQLite {
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", col)
	}
	return fmt.Sprintf("EXTRACT(MONTH FROM %s)", col)
}

// Log10 is the base-10 logarithm. SQLite gets it from the function
// registered by Open.
func (d Dialect) Log10(expr string) string {
	if d == SQLite {
		return fmt.Sprintf("log10(%s)", expr)
	}
	return fmt.Sprintf("LOG(%s)", expr)
}
