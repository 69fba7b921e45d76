package usecases

import (
	"context"
	"fmt"
	"net/http"

	"github.com/helios-home/helios/internal/application/service/dto"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/shared/errors"
	"github.com/helios-home/helios/internal/shared/logger"
)

// ListServicesUseCase returns the services registered on one device.
type ListServicesUseCase struct {
	uowProvider shared.UnitOfWorkProvider
	services    service.Repository
	logger      logger.Interface
}

// NewListServicesUseCase creates a new ListServicesUseCase.
func NewListServicesUseCase(uowProvider shared.UnitOfWorkProvider, services service.Repository, log logger.Interface) *ListServicesUseCase {
	return &ListServicesUseCase{
		uowProvider: uowProvider,
		services:    services,
		logger:      log,
	}
}

// Execute lists the services of the device identified by deviceMAC.
func (uc *ListServicesUseCase) Execute(ctx context.Context, deviceMAC string) ([]dto.ServiceDTO, error) {
	mac, err := valueobjects.ParseMACAddress(deviceMAC)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidQueryParams,
			fmt.Sprintf("invalid device MAC: %v", err), http.StatusBadRequest)
	}

	uow, err := uc.uowProvider.Begin(ctx)
	if err != nil {
		return nil, err
	}

	services, err := uc.services.FetchAllOfDevice(ctx, uow, mac)
	if err != nil {
		uc.rollback(ctx, uow)
		return nil, err
	}

	if err := uc.uowProvider.Commit(ctx, uow); err != nil {
		return nil, err
	}
	return dto.FromDomainList(services), nil
}

func (uc *ListServicesUseCase) rollback(ctx context.Context, uow shared.UnitOfWork) {
	if err := uc.uowProvider.Rollback(ctx, uow); err != nil {
		uc.logger.Errorw("rollback failed", "error", err)
	}
}
