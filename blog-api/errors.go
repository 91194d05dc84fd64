package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrDanglingReference = errors.New("referenced row does not exist")
)

const pgForeignKeyViolation = "23503"

// badRequestError marks input the client has to fix.
type badRequestError struct {
	msg string
}

func (e badRequestError) Error() string { return e.msg }

type field struct {
	name    string
	present bool
}

// requireFields reports every absent field at once.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return badRequestError{msg: fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", "))}
}

// isForeignKeyViolation recognises a rejected insert for both supported stores.
// Handlers never check that a referenced user or post exists; the store's
// foreign keys reject dangling references and this turns them into 404s.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return false
}
