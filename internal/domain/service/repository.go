package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
)

// Repository is the persistence port for services. Every call operates inside
// the given unit of work. Reads that find nothing return shared.ErrNotFound
// except FindOne, which reports absence with a nil service.
type Repository interface {
	// FetchAllOfDevice returns all services registered on a device.
	FetchAllOfDevice(ctx context.Context, uow shared.UnitOfWork, mac valueobjects.MACAddress) ([]*Service, error)

	// FetchOne returns the service with the given id, or shared.ErrNotFound.
	FetchOne(ctx context.Context, uow shared.UnitOfWork, serviceID uuid.UUID) (*Service, error)

	// FindOne returns the service of (mac, kind) whose stored port-type-and-
	// number set exactly equals the given ports, or nil if none exists.
	FindOne(ctx context.Context, uow shared.UnitOfWork, mac valueobjects.MACAddress, kind Kind, ports []PortTemplate) (*Service, error)

	// Create persists a new service together with its ports.
	Create(ctx context.Context, uow shared.UnitOfWork, svc *Service) error

	// Update rewrites a service; the ports set is replaced atomically.
	Update(ctx context.Context, uow shared.UnitOfWork, svc *Service) error
}
