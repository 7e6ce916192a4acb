package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
)

const (
	codeUniqueViolation       = "23505"
	codeForeignKeyViolation   = "23503"
	codeCheckViolation        = "23514"
	codeInvalidTextRepresent  = "22P02"
	codeNumericOutOfRange     = "22003"
	codeAdminShutdown         = "57P01"
	classConnectionException  = "08"
	classInsufficientResource = "53"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool { return pgCode(err) == codeUniqueViolation }

func IsForeignKeyViolation(err error) bool { return pgCode(err) == codeForeignKeyViolation }

func IsCheckViolation(err error) bool { return pgCode(err) == codeCheckViolation }

// IsOutOfRange reports a number too large for its column type.
func IsOutOfRange(err error) bool { return pgCode(err) == codeNumericOutOfRange }

// IsInvalidInput reports a value postgres could not parse, e.g. a malformed uuid.
func IsInvalidInput(err error) bool { return pgCode(err) == codeInvalidTextRepresent }

// IsConnectionError reports failures where the database could not be reached
// or dropped the connection.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	code := pgCode(err)
	return code == codeAdminShutdown ||
		strings.HasPrefix(code, classConnectionException) ||
		strings.HasPrefix(code, classInsufficientResource)
}

// Classify tags driver errors with an apperr kind. Errors it does not
// recognise are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsConnectionError(err):
		return fmt.Errorf("%w: %w", apperr.ErrUnavailable, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	case IsOutOfRange(err):
		return fmt.Errorf("%w: numeric value out of range", apperr.ErrValidation)
	default:
		return err
	}
}
