// Package dto defines the transfer shapes of the service surface. The agent
// token is deliberately absent from every type here: it leaves the server only
// through the install-script download.
package dto

import (
	"github.com/helios-home/helios/internal/domain/service"
)

// ServicePortDTO is one port of a service.
type ServicePortDTO struct {
	Name                string `json:"name"`
	Port                uint16 `json:"port"`
	TransportProtocol   string `json:"transportProtocol"`
	ApplicationProtocol string `json:"applicationProtocol"`
	IsOnline            bool   `json:"isOnline"`
}

// ServiceDTO is a service as the REST surface exposes it.
type ServiceDTO struct {
	ServiceID   string           `json:"serviceId"`
	DeviceMAC   string           `json:"deviceMac"`
	DisplayName string           `json:"displayName"`
	Kind        string           `json:"kind"`
	IsManaged   bool             `json:"isManaged"`
	Ports       []ServicePortDTO `json:"ports"`
}

// InstallScriptDTO is a rendered installer ready for download.
type InstallScriptDTO struct {
	Content  string
	MimeType string
	Filename string
}

// ServicePortTemplateDTO is one required port of a kind's template.
type ServicePortTemplateDTO struct {
	Name                string `json:"name"`
	Port                uint16 `json:"port"`
	TransportProtocol   string `json:"transportProtocol"`
	ApplicationProtocol string `json:"applicationProtocol"`
}

// ServiceTemplateDTO is the template of one service kind.
type ServiceTemplateDTO struct {
	Kind  string                   `json:"kind"`
	Ports []ServicePortTemplateDTO `json:"ports"`
}

// FromDomain converts a service aggregate.
func FromDomain(svc *service.Service) ServiceDTO {
	ports := svc.Ports()
	portDTOs := make([]ServicePortDTO, 0, len(ports))
	for _, p := range ports {
		portDTOs = append(portDTOs, ServicePortDTO{
			Name:                p.Name,
			Port:                p.Port,
			TransportProtocol:   string(p.TransportProtocol),
			ApplicationProtocol: string(p.ApplicationProtocol),
			IsOnline:            p.IsOnline,
		})
	}
	return ServiceDTO{
		ServiceID:   svc.ServiceID().String(),
		DeviceMAC:   svc.DeviceMAC().String(),
		DisplayName: svc.DisplayName(),
		Kind:        svc.Kind().String(),
		IsManaged:   svc.IsManaged(),
		Ports:       portDTOs,
	}
}

// FromDomainList converts a slice of services.
func FromDomainList(services []*service.Service) []ServiceDTO {
	out := make([]ServiceDTO, 0, len(services))
	for _, svc := range services {
		out = append(out, FromDomain(svc))
	}
	return out
}

// TemplateFromDomain converts a kind template.
func TemplateFromDomain(tpl service.Template) ServiceTemplateDTO {
	ports := make([]ServicePortTemplateDTO, 0, len(tpl.Ports))
	for _, p := range tpl.Ports {
		ports = append(ports, ServicePortTemplateDTO{
			Name:                p.Name,
			Port:                p.Port,
			TransportProtocol:   string(p.TransportProtocol),
			ApplicationProtocol: string(p.ApplicationProtocol),
		})
	}
	return ServiceTemplateDTO{Kind: tpl.Kind.String(), Ports: ports}
}
