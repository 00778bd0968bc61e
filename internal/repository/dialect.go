package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectMySQL
	dialectSQLite
)

func dialectOf(driverName string) dialect {
	switch strings.ToLower(driverName) {
	case "mysql":
		return dialectMySQL
	case "sqlite3", "sqlite":
		return dialectSQLite
	default:
		return dialectPostgres
	}
}

// fullName renders the "first last" expression for the given column prefix.
func (d dialect) fullName(prefix string) string {
	if d == dialectMySQL {
		return "CONCAT(" + prefix + "first_name, ' ', " + prefix + "last_name)"
	}
	return prefix + "first_name || ' ' || " + prefix + "last_name"
}

// likeEscape is appended after a LIKE operand. MySQL and PostgreSQL already
// treat backslash as the LIKE escape character.
func (d dialect) likeEscape() string {
	if d == dialectSQLite {
		return ` ESCAPE '\'`
	}
	return ""
}

// returning reports whether INSERT ... RETURNING id is available.
func (d dialect) returning() bool { return d != dialectMySQL }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into a LIKE pattern matching it anywhere.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// isUniqueViolation reports whether err is a unique-key conflict from any of
// the supported drivers. sqlite is matched on its message so the cgo driver
// stays out of production builds.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
