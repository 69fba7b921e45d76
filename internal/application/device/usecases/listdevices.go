package usecases

import (
	"context"

	"github.com/helios-home/helios/internal/application/device/dto"
	servicedto "github.com/helios-home/helios/internal/application/service/dto"
	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/shared/logger"
)

// ListDevicesQuery is the input of ListDevices.
type ListDevicesQuery struct {
	Page  int
	Limit int
	// Full attaches each device's registered services to the result.
	Full bool
}

// ListDevicesUseCase returns the known devices, optionally with their
// services attached.
type ListDevicesUseCase struct {
	uowProvider shared.UnitOfWorkProvider
	devices     device.Repository
	services    service.Repository
	logger      logger.Interface
}

// NewListDevicesUseCase creates a new ListDevicesUseCase.
func NewListDevicesUseCase(
	uowProvider shared.UnitOfWorkProvider,
	devices device.Repository,
	services service.Repository,
	log logger.Interface,
) *ListDevicesUseCase {
	return &ListDevicesUseCase{
		uowProvider: uowProvider,
		devices:     devices,
		services:    services,
		logger:      log,
	}
}

// Execute lists devices. Page and Limit of zero disable paging.
func (uc *ListDevicesUseCase) Execute(ctx context.Context, query ListDevicesQuery) (*dto.FullDeviceListDTO, error) {
	var pagination *device.Pagination
	if query.Limit > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		pagination = &device.Pagination{Page: page, Limit: query.Limit}
	}

	uow, err := uc.uowProvider.Begin(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := uc.devices.FetchAll(ctx, uow, pagination)
	if err != nil {
		uc.rollback(ctx, uow)
		return nil, err
	}
	total, err := uc.devices.CountAll(ctx, uow)
	if err != nil {
		uc.rollback(ctx, uow)
		return nil, err
	}

	out := make([]dto.FullDeviceDTO, 0, len(devices))
	for _, dev := range devices {
		full := dto.FullDeviceDTO{DeviceDTO: dto.FromDomain(dev), Services: []servicedto.ServiceDTO{}}
		if query.Full {
			services, err := uc.services.FetchAllOfDevice(ctx, uow, dev.MACAddress())
			if err != nil {
				uc.rollback(ctx, uow)
				return nil, err
			}
			full.Services = servicedto.FromDomainList(services)
		}
		out = append(out, full)
	}

	if err := uc.uowProvider.Commit(ctx, uow); err != nil {
		return nil, err
	}

	result := &dto.FullDeviceListDTO{
		Devices: out,
		Total:   total,
		Page:    query.Page,
		Limit:   query.Limit,
	}
	if result.Page < 1 {
		result.Page = 1
	}
	return result, nil
}

func (uc *ListDevicesUseCase) rollback(ctx context.Context, uow shared.UnitOfWork) {
	if err := uc.uowProvider.Rollback(ctx, uow); err != nil {
		uc.logger.Errorw("rollback failed", "error", err)
	}
}
