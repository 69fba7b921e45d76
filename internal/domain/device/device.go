// Package device provides the device aggregate and the ports used to keep it
// in sync with the router's view of the network.
package device

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
)

// Device is a host the router has seen on the network. Devices are created
// and refreshed by the periodic scan; they are never deleted, only marked
// offline.
type Device struct {
	macAddress   valueobjects.MACAddress
	lastKnownIP  netip.Addr
	displayName  string
	isNameCustom bool
	notes        string
	isOnline     bool
	lastSeen     time.Time
	lastScanned  time.Time
}

// NewScanned builds a device from a router scan result.
func NewScanned(
	mac valueobjects.MACAddress,
	ip netip.Addr,
	displayName string,
	isOnline bool,
	lastSeen time.Time,
	lastScanned time.Time,
) (*Device, error) {
	if mac.IsZero() {
		return nil, fmt.Errorf("device MAC is required")
	}
	return &Device{
		macAddress:  mac,
		lastKnownIP: ip,
		displayName: displayName,
		isOnline:    isOnline,
		lastSeen:    lastSeen,
		lastScanned: lastScanned,
	}, nil
}

// Reconstruct rebuilds a device from persistence.
func Reconstruct(
	mac valueobjects.MACAddress,
	ip netip.Addr,
	displayName string,
	isNameCustom bool,
	notes string,
	isOnline bool,
	lastSeen time.Time,
	lastScanned time.Time,
) *Device {
	return &Device{
		macAddress:   mac,
		lastKnownIP:  ip,
		displayName:  displayName,
		isNameCustom: isNameCustom,
		notes:        notes,
		isOnline:     isOnline,
		lastSeen:     lastSeen,
		lastScanned:  lastScanned,
	}
}

func (d *Device) MACAddress() valueobjects.MACAddress { return d.macAddress }
func (d *Device) LastKnownIP() netip.Addr             { return d.lastKnownIP }
func (d *Device) DisplayName() string                 { return d.displayName }
func (d *Device) IsNameCustom() bool                  { return d.isNameCustom }
func (d *Device) Notes() string                       { return d.notes }
func (d *Device) IsOnline() bool                      { return d.isOnline }
func (d *Device) LastSeen() time.Time                 { return d.lastSeen }
func (d *Device) LastScanned() time.Time              { return d.lastScanned }

// ApplyScan merges a fresh scan of the same device. A user-customized display
// name survives; address, liveness and timestamps are taken from the scan.
func (d *Device) ApplyScan(scanned *Device) error {
	if d.macAddress != scanned.macAddress {
		return fmt.Errorf("cannot apply scan of %s to device %s", scanned.macAddress, d.macAddress)
	}
	d.lastKnownIP = scanned.lastKnownIP
	if !d.isNameCustom {
		d.displayName = scanned.displayName
	}
	d.isOnline = scanned.isOnline
	d.lastSeen = scanned.lastSeen
	d.lastScanned = scanned.lastScanned
	return nil
}

// MarkOffline records that the device was absent from the latest scan.
func (d *Device) MarkOffline(scannedAt time.Time) {
	d.isOnline = false
	d.lastScanned = scannedAt
}
