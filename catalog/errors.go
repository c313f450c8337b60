package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrForeignKey         = errors.New("foreign key violation")
	ErrInvalidData        = errors.New("invalid data")
	ErrConnectionFailed   = errors.New("database connection failed")
	ErrTooManyConnections = errors.New("too many connections")
	ErrQueryTimeout       = errors.New("query timeout exceeded")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTableNotFound      = errors.New("table not found")
	ErrDeadlock           = errors.New("deadlock detected")
	ErrMigrationFailed    = errors.New("migration failed")
	ErrUnknownDriver      = errors.New("unknown catalog driver")
)

// TranslateError maps gorm, PostgreSQL and MySQL errors to the sentinels of
// this package. Errors it does not recognise are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if sentinel := translate(err); sentinel != nil {
		return sentinel
	}
	return err
}

// translate returns the sentinel for err, or nil when there is none.
func translate(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrQueryTimeout
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue), errors.Is(err, gorm.ErrEmptySlice):
		return ErrInvalidData
	case errors.Is(err, gorm.ErrInvalidDB):
		return ErrConnectionFailed
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translatePostgres(pgErr)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return translateMySQL(myErr)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "broken pipe"):
		return ErrConnectionFailed
	case strings.Contains(msg, "timeout"):
		return ErrQueryTimeout
	}
	return nil
}

func translatePostgres(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case "23505": // unique_violation
		return ErrDuplicateKey
	case "23503": // foreign_key_violation
		return ErrForeignKey
	case "22001", "22P02", "23502": // string_data_right_truncation, invalid_text_representation, not_null_violation
		return ErrInvalidData
	case "42P01": // undefined_table
		return ErrTableNotFound
	case "42501", "28000", "28P01": // insufficient_privilege, invalid_authorization_specification, invalid_password
		return ErrPermissionDenied
	case "57014": // query_canceled
		return ErrQueryTimeout
	case "40P01": // deadlock_detected
		return ErrDeadlock
	case "53300": // too_many_connections
		return ErrTooManyConnections
	}
	if strings.HasPrefix(pgErr.Code, "08") { // connection_exception class
		return ErrConnectionFailed
	}
	return nil
}

func translateMySQL(myErr *mysql.MySQLError) error {
	switch myErr.Number {
	case 1062, 1586: // ER_DUP_ENTRY, ER_DUP_ENTRY_WITH_KEY_NAME
		return ErrDuplicateKey
	case 1216, 1217, 1451, 1452: // foreign key checks
		return ErrForeignKey
	case 1048, 1406, 1366: // ER_BAD_NULL_ERROR, ER_DATA_TOO_LONG, ER_TRUNCATED_WRONG_VALUE_FOR_FIELD
		return ErrInvalidData
	case 1146: // ER_NO_SUCH_TABLE
		return ErrTableNotFound
	case 1044, 1045, 1142: // ER_DBACCESS_DENIED_ERROR, ER_ACCESS_DENIED_ERROR, ER_TABLEACCESS_DENIED_ERROR
		return ErrPermissionDenied
	case 1205, 3024: // ER_LOCK_WAIT_TIMEOUT, ER_QUERY_TIMEOUT
		return ErrQueryTimeout
	case 1213: // ER_LOCK_DEADLOCK
		return ErrDeadlock
	case 1040: // ER_CON_COUNT_ERROR
		return ErrTooManyConnections
	}
	return nil
}

// wrapTranslated keeps the original error in the chain next to the sentinel.
func wrapTranslated(err error) error {
	sentinel := translate(err)
	if sentinel == nil {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
