package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/helios-home/helios/internal/domain/shared"
)

// UnitOfWork wraps one gorm transaction. Repositories unwrap it with Tx.
type UnitOfWork struct {
	shared.UnitOfWorkBase
	tx *gorm.DB
}

// Tx unwraps the opaque handle repositories receive. Handles not produced by
// this provider are a programming error.
func Tx(uow shared.UnitOfWork) (*gorm.DB, error) {
	concrete, ok := uow.(*UnitOfWork)
	if !ok || concrete.tx == nil {
		return nil, errors.New("unit of work does not carry a gorm transaction")
	}
	return concrete.tx, nil
}

// UnitOfWorkProvider opens gorm transactions as opaque unit-of-work handles.
type UnitOfWorkProvider struct {
	db *gorm.DB
}

var _ shared.UnitOfWorkProvider = (*UnitOfWorkProvider)(nil)

func NewUnitOfWorkProvider(db *gorm.DB) *UnitOfWorkProvider {
	return &UnitOfWorkProvider{db: db}
}

func (p *UnitOfWorkProvider) Begin(ctx context.Context) (shared.UnitOfWork, error) {
	tx := p.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &UnitOfWork{tx: tx}, nil
}

func (p *UnitOfWorkProvider) Commit(_ context.Context, uow shared.UnitOfWork) error {
	tx, err := Tx(uow)
	if err != nil {
		return err
	}
	return tx.Commit().Error
}

func (p *UnitOfWorkProvider) Rollback(_ context.Context, uow shared.UnitOfWork) error {
	tx, err := Tx(uow)
	if err != nil {
		return err
	}
	return tx.Rollback().Error
}
