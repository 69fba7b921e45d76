package device

import (
	"context"

	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
)

// Pagination bounds a listing. A zero value means no paging.
type Pagination struct {
	Page  int
	Limit int
}

// Repository is the persistence port for devices.
type Repository interface {
	// FetchAll returns devices, optionally paginated, ordered by MAC.
	FetchAll(ctx context.Context, uow shared.UnitOfWork, pagination *Pagination) ([]*Device, error)

	// CountAll returns the total number of known devices.
	CountAll(ctx context.Context, uow shared.UnitOfWork) (int64, error)

	// FetchOne returns the device with the given MAC, or shared.ErrNotFound.
	FetchOne(ctx context.Context, uow shared.UnitOfWork, mac valueobjects.MACAddress) (*Device, error)

	// Create persists a newly discovered device.
	Create(ctx context.Context, uow shared.UnitOfWork, dev *Device) error

	// Update rewrites an existing device.
	Update(ctx context.Context, uow shared.UnitOfWork, dev *Device) error
}
