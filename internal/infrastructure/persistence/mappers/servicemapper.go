package mappers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/infrastructure/persistence/models"
)

// ServiceMapper handles conversion between the Service aggregate and its model.
type ServiceMapper interface {
	ToModel(svc *service.Service) *models.ServiceModel
	ToDomain(model *models.ServiceModel) (*service.Service, error)
}

type serviceMapper struct{}

// NewServiceMapper creates a new ServiceMapper.
func NewServiceMapper() ServiceMapper {
	return serviceMapper{}
}

func (serviceMapper) ToModel(svc *service.Service) *models.ServiceModel {
	ports := svc.Ports()
	portModels := make([]models.ServicePortModel, 0, len(ports))
	for _, p := range ports {
		portModels = append(portModels, models.ServicePortModel{
			Name:                p.Name,
			Port:                p.Port,
			TransportProtocol:   string(p.TransportProtocol),
			ApplicationProtocol: string(p.ApplicationProtocol),
			IsOnline:            p.IsOnline,
		})
	}

	return &models.ServiceModel{
		ServiceID:        svc.ServiceID().String(),
		DeviceMAC:        svc.DeviceMAC().String(),
		DisplayName:      svc.DisplayName(),
		Kind:             string(svc.Kind()),
		IsManaged:        svc.IsManaged(),
		Token:            svc.Token(),
		PortsFingerprint: svc.PortsFingerprint(),
		Ports:            portModels,
	}
}

func (serviceMapper) ToDomain(model *models.ServiceModel) (*service.Service, error) {
	serviceID, err := uuid.Parse(model.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("stored service id %q is invalid: %w", model.ServiceID, err)
	}
	mac, err := valueobjects.ParseMACAddress(model.DeviceMAC)
	if err != nil {
		return nil, fmt.Errorf("stored MAC %q is invalid: %w", model.DeviceMAC, err)
	}
	kind, err := service.ParseKind(model.Kind)
	if err != nil {
		return nil, fmt.Errorf("stored kind is invalid: %w", err)
	}

	ports := make([]service.Port, 0, len(model.Ports))
	for _, p := range model.Ports {
		transport, err := service.ParseTransportProtocol(p.TransportProtocol)
		if err != nil {
			return nil, fmt.Errorf("stored port %q: %w", p.Name, err)
		}
		application, err := service.ParseApplicationProtocol(p.ApplicationProtocol)
		if err != nil {
			return nil, fmt.Errorf("stored port %q: %w", p.Name, err)
		}
		ports = append(ports, service.Port{
			Name:                p.Name,
			Port:                p.Port,
			TransportProtocol:   transport,
			ApplicationProtocol: application,
			IsOnline:            p.IsOnline,
		})
	}

	return service.Reconstruct(
		serviceID,
		mac,
		model.DisplayName,
		kind,
		model.IsManaged,
		ports,
		model.Token,
	)
}
