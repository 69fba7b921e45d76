// Package usecases implements the service management operations.
package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/helios-home/helios/internal/application/service/dto"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	sharedservices "github.com/helios-home/helios/internal/domain/shared/services"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/shared/errors"
	"github.com/helios-home/helios/internal/shared/logger"
)

// PortInput is one user-submitted port.
type PortInput struct {
	Name                string `json:"name" validate:"required"`
	Port                uint16 `json:"port" validate:"required,min=1,max=65535"`
	TransportProtocol   string `json:"transportProtocol" validate:"required"`
	ApplicationProtocol string `json:"applicationProtocol" validate:"required"`
}

// CreateServiceCommand is the input of CreateService.
type CreateServiceCommand struct {
	DeviceMAC   string      `json:"deviceMac" validate:"required"`
	DisplayName string      `json:"displayName" validate:"required,min=1,max=100"`
	Kind        string      `json:"kind" validate:"required"`
	Ports       []PortInput `json:"ports" validate:"required,dive"`
}

// CreateServiceUseCase registers a new service identity on a device. Two
// services on the same device with the same kind are distinguishable only by
// their port numbers; an equivalent port set is rejected as a duplicate.
type CreateServiceUseCase struct {
	uowProvider shared.UnitOfWorkProvider
	services    service.Repository
	tokenGen    sharedservices.TokenGenerator
	logger      logger.Interface
}

// NewCreateServiceUseCase creates a new CreateServiceUseCase.
func NewCreateServiceUseCase(
	uowProvider shared.UnitOfWorkProvider,
	services service.Repository,
	tokenGen sharedservices.TokenGenerator,
	log logger.Interface,
) *CreateServiceUseCase {
	return &CreateServiceUseCase{
		uowProvider: uowProvider,
		services:    services,
		tokenGen:    tokenGen,
		logger:      log,
	}
}

// Execute validates the command, checks port-set equivalence against existing
// services and persists the new service with a freshly generated token.
func (uc *CreateServiceUseCase) Execute(ctx context.Context, cmd CreateServiceCommand) (*dto.ServiceDTO, error) {
	mac, err := valueobjects.ParseMACAddress(cmd.DeviceMAC)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid device MAC: %v", err))
	}
	if len(cmd.DisplayName) < 1 || len(cmd.DisplayName) > 100 {
		return nil, errors.NewValidationError("display name length must be between 1 and 100")
	}

	kind, err := service.ParseKind(cmd.Kind)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	ports, err := parsePorts(cmd.Ports)
	if err != nil {
		return nil, err
	}
	if err := service.ValidatePorts(kind, ports); err != nil {
		return nil, mapPortError(err)
	}

	uow, err := uc.uowProvider.Begin(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := uc.services.FindOne(ctx, uow, mac, kind, ports)
	if err != nil {
		uc.rollback(ctx, uow)
		return nil, err
	}
	if existing != nil {
		uc.rollback(ctx, uow)
		return nil, errors.NewConflictError(errors.CodeServiceAlreadyExists,
			"a service with this port configuration already exists on the device")
	}

	svc, err := service.NewService(mac, cmd.DisplayName, kind, ports, uc.tokenGen.Generate)
	if err != nil {
		uc.rollback(ctx, uow)
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.services.Create(ctx, uow, svc); err != nil {
		uc.rollback(ctx, uow)
		// The equivalence index catches inserts that raced past FindOne.
		if stderrors.Is(err, shared.ErrUniqueViolation) {
			return nil, errors.NewConflictError(errors.CodeServiceAlreadyExists,
				"a service with this port configuration already exists on the device")
		}
		if stderrors.Is(err, shared.ErrForeignKeyViolation) {
			return nil, errors.New(errors.CodeResourceFKViolation,
				"the device does not exist", http.StatusConflict)
		}
		return nil, err
	}

	if err := uc.uowProvider.Commit(ctx, uow); err != nil {
		return nil, err
	}

	uc.logger.Infow("service created",
		"service_id", svc.ServiceID(),
		"device_mac", mac,
		"kind", kind,
	)
	result := dto.FromDomain(svc)
	return &result, nil
}

func (uc *CreateServiceUseCase) rollback(ctx context.Context, uow shared.UnitOfWork) {
	if err := uc.uowProvider.Rollback(ctx, uow); err != nil {
		uc.logger.Errorw("rollback failed", "error", err)
	}
}

func parsePorts(inputs []PortInput) ([]service.PortTemplate, error) {
	ports := make([]service.PortTemplate, 0, len(inputs))
	for _, in := range inputs {
		transport, err := service.ParseTransportProtocol(in.TransportProtocol)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		application, err := service.ParseApplicationProtocol(in.ApplicationProtocol)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		if in.Port == 0 {
			return nil, errors.NewValidationError("port number must be between 1 and 65535")
		}
		ports = append(ports, service.PortTemplate{
			Name:                in.Name,
			Port:                in.Port,
			TransportProtocol:   transport,
			ApplicationProtocol: application,
		})
	}
	return ports, nil
}

func mapPortError(err error) error {
	switch {
	case stderrors.Is(err, service.ErrDuplicatePortNumber):
		return errors.New(errors.CodeDuplicatePortNumber, err.Error(), http.StatusBadRequest)
	case stderrors.Is(err, service.ErrDuplicatePortType):
		return errors.New(errors.CodeDuplicatePortType, err.Error(), http.StatusBadRequest)
	case stderrors.Is(err, service.ErrMissingRequiredPorts):
		return errors.New(errors.CodeMissingRequiredPorts, err.Error(), http.StatusBadRequest)
	case stderrors.Is(err, service.ErrInvalidPortConfiguration):
		return errors.New(errors.CodeInvalidPortConfiguration, err.Error(), http.StatusBadRequest)
	}
	return errors.NewValidationError(err.Error())
}
