// Package shared holds domain concerns used by every aggregate: the repository
// error set and the unit-of-work ports.
package shared

import (
	"context"
	"errors"
)

// Repository errors. Infrastructure translates driver errors into this set;
// everything above the repository layer matches on these sentinels only.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
	ErrCheckViolation      = errors.New("check constraint violation")
	ErrConnectionFailed    = errors.New("database connection failed")
	ErrUnknown             = errors.New("unknown database error")
)

// UnitOfWork is an opaque transactional handle. Repositories receive it with
// every call; the concrete type belongs to the infrastructure layer.
type UnitOfWork interface {
	unitOfWork()
}

// UnitOfWorkProvider opens and resolves transactional boundaries. A unit of
// work holds one database connection for its lifetime and returns it on
// commit or rollback.
type UnitOfWorkProvider interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Commit(ctx context.Context, uow UnitOfWork) error
	Rollback(ctx context.Context, uow UnitOfWork) error
}

// UnitOfWorkBase is embedded by concrete unit-of-work types to satisfy the
// marker interface.
type UnitOfWorkBase struct{}

func (UnitOfWorkBase) unitOfWork() {}
