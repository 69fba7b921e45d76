// Package dto defines the transfer shapes of the device surface.
package dto

import (
	"time"

	servicedto "github.com/helios-home/helios/internal/application/service/dto"
	"github.com/helios-home/helios/internal/domain/device"
)

// DeviceDTO is a device as the REST surface exposes it.
type DeviceDTO struct {
	MACAddress   string    `json:"macAddress"`
	LastKnownIP  string    `json:"lastKnownIp"`
	DisplayName  string    `json:"displayName"`
	IsNameCustom bool      `json:"isNameCustom"`
	Notes        string    `json:"notes"`
	IsOnline     bool      `json:"isOnline"`
	LastSeen     time.Time `json:"lastSeen"`
	LastScanned  time.Time `json:"lastScanned"`
}

// FullDeviceDTO is a device together with its registered services.
type FullDeviceDTO struct {
	DeviceDTO
	Services []servicedto.ServiceDTO `json:"services"`
}

// DeviceListDTO is a paginated device listing.
type DeviceListDTO struct {
	Devices []DeviceDTO `json:"devices"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// FullDeviceListDTO is a paginated listing with services attached.
type FullDeviceListDTO struct {
	Devices []FullDeviceDTO `json:"devices"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// FromDomain converts a device aggregate.
func FromDomain(dev *device.Device) DeviceDTO {
	ip := ""
	if dev.LastKnownIP().IsValid() {
		ip = dev.LastKnownIP().String()
	}
	return DeviceDTO{
		MACAddress:   dev.MACAddress().String(),
		LastKnownIP:  ip,
		DisplayName:  dev.DisplayName(),
		IsNameCustom: dev.IsNameCustom(),
		Notes:        dev.Notes(),
		IsOnline:     dev.IsOnline(),
		LastSeen:     dev.LastSeen(),
		LastScanned:  dev.LastScanned(),
	}
}

// FromDomainList converts a slice of devices.
func FromDomainList(devices []*device.Device) []DeviceDTO {
	out := make([]DeviceDTO, 0, len(devices))
	for _, dev := range devices {
		out = append(out, FromDomain(dev))
	}
	return out
}
