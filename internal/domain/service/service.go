// Package service provides the service aggregate: the persistent identity an
// agent authenticates against, tied to a device MAC and a kind.
package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
)

const (
	displayNameMinLength = 1
	displayNameMaxLength = 100
)

// Service is the aggregate root. Its ports are a bijection to the template of
// its kind under port-type identity.
type Service struct {
	serviceID   uuid.UUID
	deviceMAC   valueobjects.MACAddress
	displayName string
	kind        Kind
	isManaged   bool
	ports       []Port
	token       string
}

// NewService builds a service from user input. The template of the kind
// provides the port type metadata; the input provides the chosen port numbers.
// The token is generated fresh and never changes afterwards except through an
// explicit rotation.
func NewService(
	deviceMAC valueobjects.MACAddress,
	displayName string,
	kind Kind,
	ports []PortTemplate,
	tokenGen TokenSource,
) (*Service, error) {
	if len(displayName) < displayNameMinLength || len(displayName) > displayNameMaxLength {
		return nil, fmt.Errorf("display name length must be between %d and %d", displayNameMinLength, displayNameMaxLength)
	}
	if deviceMAC.IsZero() {
		return nil, fmt.Errorf("device MAC is required")
	}
	if err := ValidatePorts(kind, ports); err != nil {
		return nil, err
	}

	token, err := tokenGen()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	serviceID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate service id: %w", err)
	}

	return &Service{
		serviceID:   serviceID,
		deviceMAC:   deviceMAC,
		displayName: displayName,
		kind:        kind,
		isManaged:   true,
		ports:       bindPorts(kind, ports),
		token:       token,
	}, nil
}

// TokenSource produces a fresh agent secret.
type TokenSource func() (string, error)

// Reconstruct rebuilds a service from persistence without revalidating
// against the current template set.
func Reconstruct(
	serviceID uuid.UUID,
	deviceMAC valueobjects.MACAddress,
	displayName string,
	kind Kind,
	isManaged bool,
	ports []Port,
	token string,
) (*Service, error) {
	if serviceID == uuid.Nil {
		return nil, fmt.Errorf("service id cannot be nil")
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("service must have at least one port")
	}
	return &Service{
		serviceID:   serviceID,
		deviceMAC:   deviceMAC,
		displayName: displayName,
		kind:        kind,
		isManaged:   isManaged,
		ports:       ports,
		token:       token,
	}, nil
}

// ValidatePorts checks the user-submitted port set against the template of
// the kind: unique port numbers, unique port types, and set equality of the
// type triples.
func ValidatePorts(kind Kind, ports []PortTemplate) error {
	if len(ports) == 0 {
		return ErrMissingRequiredPorts
	}

	numbers := make(map[uint16]struct{}, len(ports))
	for _, p := range ports {
		if _, dup := numbers[p.Port]; dup {
			return ErrDuplicatePortNumber
		}
		numbers[p.Port] = struct{}{}
	}

	inputTypes := make(map[PortType]struct{}, len(ports))
	for _, p := range ports {
		inputTypes[p.Type()] = struct{}{}
	}
	if len(inputTypes) != len(ports) {
		return ErrDuplicatePortType
	}

	template := TemplateFor(kind)
	if len(inputTypes) != len(template.Ports) {
		return ErrInvalidPortConfiguration
	}
	for _, tp := range template.Ports {
		if _, ok := inputTypes[tp.Type()]; !ok {
			return ErrInvalidPortConfiguration
		}
	}
	return nil
}

func bindPorts(kind Kind, ports []PortTemplate) []Port {
	byType := make(map[PortType]PortTemplate)
	for _, tp := range TemplateFor(kind).Ports {
		byType[tp.Type()] = tp
	}

	bound := make([]Port, 0, len(ports))
	for _, p := range ports {
		tp := byType[p.Type()]
		bound = append(bound, Port{
			Name:                tp.Name,
			Port:                p.Port,
			TransportProtocol:   tp.TransportProtocol,
			ApplicationProtocol: tp.ApplicationProtocol,
			IsOnline:            false,
		})
	}
	return bound
}

func (s *Service) ServiceID() uuid.UUID {
	return s.serviceID
}

func (s *Service) DeviceMAC() valueobjects.MACAddress {
	return s.deviceMAC
}

func (s *Service) DisplayName() string {
	return s.displayName
}

func (s *Service) Kind() Kind {
	return s.kind
}

func (s *Service) IsManaged() bool {
	return s.isManaged
}

// Ports returns a copy of the service's ports.
func (s *Service) Ports() []Port {
	ports := make([]Port, len(s.ports))
	copy(ports, s.ports)
	return ports
}

// Token returns the agent secret. It leaves the server only through the
// install-script endpoint.
func (s *Service) Token() string {
	return s.token
}

// PortsFingerprint returns the canonical fingerprint of the port set.
func (s *Service) PortsFingerprint() string {
	return FingerprintPorts(s.ports)
}

// Rename changes the user-visible label.
func (s *Service) Rename(displayName string) error {
	if len(displayName) < displayNameMinLength || len(displayName) > displayNameMaxLength {
		return fmt.Errorf("display name length must be between %d and %d", displayNameMinLength, displayNameMaxLength)
	}
	s.displayName = displayName
	return nil
}

// SetManaged flips the managed flag.
func (s *Service) SetManaged(managed bool) {
	s.isManaged = managed
}

// ReplacePorts rewrites the port set atomically after validating it against
// the kind's template.
func (s *Service) ReplacePorts(ports []PortTemplate) error {
	if err := ValidatePorts(s.kind, ports); err != nil {
		return err
	}
	s.ports = bindPorts(s.kind, ports)
	return nil
}

// RotateToken replaces the secret with a fresh one. Only the install-script
// download path calls this: a downloaded script invalidates earlier ones.
func (s *Service) RotateToken(tokenGen TokenSource) error {
	token, err := tokenGen()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	s.token = token
	return nil
}
