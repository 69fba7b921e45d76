// Package models holds the GORM persistence models.
package models

import "time"

// DeviceModel is the persistence model for scanned network devices.
type DeviceModel struct {
	ID           uint   `gorm:"primarykey"`
	MACAddress   string `gorm:"column:mac_address;not null;size:17;uniqueIndex:idx_devices_mac"`
	LastKnownIP  string `gorm:"column:last_known_ip;size:45"`
	DisplayName  string `gorm:"size:100"`
	IsNameCustom bool   `gorm:"not null;default:false"`
	Notes        string `gorm:"size:1000"`
	IsOnline     bool   `gorm:"not null;default:false;index:idx_devices_is_online"`
	LastSeen     time.Time
	LastScanned  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM.
func (DeviceModel) TableName() string {
	return "devices"
}
