package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/example/roombooking/internal/persistence"
)

// mapError translates driver errors into persistence sentinels. The modernc
// driver reports constraint failures through the error message, so matching
// on the SQLite constraint text is the stable option.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	message := err.Error()
	switch {
	case strings.Contains(message, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(message, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	case strings.Contains(message, "FOREIGN KEY constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}
