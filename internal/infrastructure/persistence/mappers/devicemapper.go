// Package mappers converts between domain aggregates and GORM models.
package mappers

import (
	"fmt"
	"net/netip"

	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/infrastructure/persistence/models"
)

// DeviceMapper handles conversion between the Device aggregate and its model.
type DeviceMapper interface {
	ToModel(dev *device.Device) *models.DeviceModel
	ToDomain(model *models.DeviceModel) (*device.Device, error)
}

type deviceMapper struct{}

// NewDeviceMapper creates a new DeviceMapper.
func NewDeviceMapper() DeviceMapper {
	return deviceMapper{}
}

func (deviceMapper) ToModel(dev *device.Device) *models.DeviceModel {
	var ip string
	if dev.LastKnownIP().IsValid() {
		ip = dev.LastKnownIP().String()
	}
	return &models.DeviceModel{
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

func (deviceMapper) ToDomain(model *models.DeviceModel) (*device.Device, error) {
	mac, err := valueobjects.ParseMACAddress(model.MACAddress)
	if err != nil {
		return nil, fmt.Errorf("stored MAC %q is invalid: %w", model.MACAddress, err)
	}

	var ip netip.Addr
	if model.LastKnownIP != "" {
		ip, err = netip.ParseAddr(model.LastKnownIP)
		if err != nil {
			return nil, fmt.Errorf("stored IP %q is invalid: %w", model.LastKnownIP, err)
		}
	}

	return device.Reconstruct(
		mac,
		ip,
		model.DisplayName,
		model.IsNameCustom,
		model.Notes,
		model.IsOnline,
		model.LastSeen,
		model.LastScanned,
	), nil
}
