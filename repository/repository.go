// Package repository provides data access for playshare entities over a
// relational store. Implementations return (nil, nil) for lookups that
// match no row, and false (not an error) for replace/delete against a
// missing id; callers translate those into not-found responses.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a unique key violation. Used to
// map the store-level uniqueness backstop onto the API error taxonomy.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
