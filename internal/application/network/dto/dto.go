// Package dto defines the transfer shapes of the network status surface.
package dto

import (
	"time"

	"github.com/helios-home/helios/internal/domain/device"
)

// WANConnectivityDTO mirrors the router's view of the WAN link.
type WANConnectivityDTO struct {
	IsConnected bool   `json:"isConnected"`
	IPAddress   string `json:"ipAddress"`
	Uptime      int64  `json:"uptime"`
}

// WANStatsDTO carries the WAN traffic counters.
type WANStatsDTO struct {
	BytesReceived     int64     `json:"bytesReceived"`
	BytesSent         int64     `json:"bytesSent"`
	BandwidthUpKbps   int64     `json:"bandwidthUpKbps"`
	BandwidthDownKbps int64     `json:"bandwidthDownKbps"`
	CollectedAt       time.Time `json:"collectedAt"`
}

// NetworkStatusDTO is the combined WAN snapshot. Either side may be absent
// when the corresponding router call failed.
type NetworkStatusDTO struct {
	Connectivity *WANConnectivityDTO `json:"connectivity,omitempty"`
	Stats        *WANStatsDTO        `json:"stats,omitempty"`
}

// ConnectivityFromDomain converts the router port result.
func ConnectivityFromDomain(c *device.WANConnectivity) *WANConnectivityDTO {
	if c == nil {
		return nil
	}
	return &WANConnectivityDTO{
		IsConnected: c.IsConnected,
		IPAddress:   c.IPAddress,
		Uptime:      c.Uptime,
	}
}

// StatsFromDomain converts the router port result.
func StatsFromDomain(s *device.WANStats) *WANStatsDTO {
	if s == nil {
		return nil
	}
	return &WANStatsDTO{
		BytesReceived:     s.BytesReceived,
		BytesSent:         s.BytesSent,
		BandwidthUpKbps:   s.BandwidthUpKbps,
		BandwidthDownKbps: s.BandwidthDownKbps,
		CollectedAt:       s.CollectedAt,
	}
}
