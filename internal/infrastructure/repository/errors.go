// Package repository implements the domain persistence ports on GORM.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/helios-home/helios/internal/domain/shared"
)

// MySQL error numbers worth distinguishing.
const (
	mysqlDuplicateEntry  = 1062
	mysqlForeignKeyChild = 1452
	mysqlCheckViolation  = 3819
)

// translateError maps driver and gorm errors onto the domain sentinel set.
// The string fallbacks cover sqlite, which the integration tests run on.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %v", shared.ErrUniqueViolation, err)
		case mysqlForeignKeyChild:
			return fmt.Errorf("%w: %v", shared.ErrForeignKeyViolation, err)
		case mysqlCheckViolation:
			return fmt.Errorf("%w: %v", shared.ErrCheckViolation, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrUnknown, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", shared.ErrUniqueViolation, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "foreign key constraint"):
		return fmt.Errorf("%w: %v", shared.ErrForeignKeyViolation, err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %v", shared.ErrCheckViolation, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "bad connection"):
		return fmt.Errorf("%w: %v", shared.ErrConnectionFailed, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrUnknown, err)
}
