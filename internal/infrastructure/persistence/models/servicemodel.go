package models

import "time"

// ServiceModel is the persistence model for services. PortsFingerprint is the
// canonical hash of the port set; the unique index over
// (device_mac, kind, ports_fingerprint) turns concurrent creation of
// equivalent services into a unique violation instead of a duplicate row.
type ServiceModel struct {
	ID               uint   `gorm:"primarykey"`
	ServiceID        string `gorm:"column:service_id;not null;size:36;uniqueIndex:idx_services_service_id"`
	DeviceMAC        string `gorm:"column:device_mac;not null;size:17;index:idx_services_device_mac;uniqueIndex:idx_services_equivalence,priority:1"`
	DisplayName      string `gorm:"not null;size:100"`
	Kind             string `gorm:"not null;size:50;uniqueIndex:idx_services_equivalence,priority:2"`
	IsManaged        bool   `gorm:"not null;default:true"`
	Token            string `gorm:"not null;size:64"`
	PortsFingerprint string `gorm:"column:ports_fingerprint;not null;size:64;uniqueIndex:idx_services_equivalence,priority:3"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// A service row may only reference a known device.
	Device *DeviceModel       `gorm:"foreignKey:DeviceMAC;references:MACAddress"`
	Ports  []ServicePortModel `gorm:"foreignKey:ServiceModelID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM.
func (ServiceModel) TableName() string {
	return "services"
}

// ServicePortModel is one port row of a service.
type ServicePortModel struct {
	ID                  uint   `gorm:"primarykey"`
	ServiceModelID      uint   `gorm:"column:service_model_id;not null;index:idx_service_ports_service"`
	Name                string `gorm:"not null;size:100"`
	Port                uint16 `gorm:"not null"`
	TransportProtocol   string `gorm:"not null;size:10"`
	ApplicationProtocol string `gorm:"not null;size:20"`
	IsOnline            bool   `gorm:"not null;default:false"`
}

// TableName specifies the table name for GORM.
func (ServicePortModel) TableName() string {
	return "service_ports"
}
