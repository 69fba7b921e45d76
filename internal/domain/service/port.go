package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// TransportProtocol is the L4 protocol of a service port.
type TransportProtocol string

const (
	TransportTCP TransportProtocol = "TCP"
	TransportUDP TransportProtocol = "UDP"
)

// ParseTransportProtocol validates a transport protocol string.
func ParseTransportProtocol(s string) (TransportProtocol, error) {
	switch TransportProtocol(s) {
	case TransportTCP, TransportUDP:
		return TransportProtocol(s), nil
	}
	return "", fmt.Errorf("unknown transport protocol %q", s)
}

// ApplicationProtocol is the L7 protocol of a service port.
type ApplicationProtocol string

const (
	ApplicationHTTP ApplicationProtocol = "HTTP"
)

// ParseApplicationProtocol validates an application protocol string.
func ParseApplicationProtocol(s string) (ApplicationProtocol, error) {
	switch ApplicationProtocol(s) {
	case ApplicationHTTP:
		return ApplicationProtocol(s), nil
	}
	return "", fmt.Errorf("unknown application protocol %q", s)
}

// Port is a port of a running service.
type Port struct {
	Name                string
	Port                uint16
	TransportProtocol   TransportProtocol
	ApplicationProtocol ApplicationProtocol
	IsOnline            bool
}

// PortTemplate is a port as the user submits it: the type triple plus the
// chosen port number.
type PortTemplate struct {
	Name                string              `json:"name"`
	Port                uint16              `json:"port"`
	TransportProtocol   TransportProtocol   `json:"transportProtocol"`
	ApplicationProtocol ApplicationProtocol `json:"applicationProtocol"`
}

// PortType is the identity triple of a port. Two ports with the same type are
// the same logical port of the service regardless of their port numbers.
type PortType struct {
	Name                string
	TransportProtocol   TransportProtocol
	ApplicationProtocol ApplicationProtocol
}

// Type returns the port-type identity of a template entry.
func (p PortTemplate) Type() PortType {
	return PortType{Name: p.Name, TransportProtocol: p.TransportProtocol, ApplicationProtocol: p.ApplicationProtocol}
}

// Type returns the port-type identity of a service port.
func (p Port) Type() PortType {
	return PortType{Name: p.Name, TransportProtocol: p.TransportProtocol, ApplicationProtocol: p.ApplicationProtocol}
}

// FingerprintTemplates computes the canonical fingerprint of a port set: the
// SHA-256 of the sorted (name, transport, application, port) tuples. Two port
// sets are equivalent exactly when their fingerprints match; the services
// table enforces uniqueness of (device_mac, kind, fingerprint).
func FingerprintTemplates(ports []PortTemplate) string {
	entries := make([]string, 0, len(ports))
	for _, p := range ports {
		entries = append(entries, fmt.Sprintf("%s/%s/%s/%d", p.Name, p.TransportProtocol, p.ApplicationProtocol, p.Port))
	}
	sort.Strings(entries)
	sum := sha256.Sum256([]byte(strings.Join(entries, "\n")))
	return hex.EncodeToString(sum[:])
}

// FingerprintPorts computes the fingerprint of persisted service ports.
func FingerprintPorts(ports []Port) string {
	templates := make([]PortTemplate, 0, len(ports))
	for _, p := range ports {
		templates = append(templates, PortTemplate{
			Name:                p.Name,
			Port:                p.Port,
			TransportProtocol:   p.TransportProtocol,
			ApplicationProtocol: p.ApplicationProtocol,
		})
	}
	return FingerprintTemplates(templates)
}
