package device

import (
	"context"
	"errors"
	"time"
)

// Router API errors. The REST boundary maps these to stable response codes.
var (
	ErrRouterUnavailable     = errors.New("router API is unavailable")
	ErrRouterInvalidResponse = errors.New("router API returned an invalid response")
	ErrRouterAuthFailed      = errors.New("router API authentication failed")
)

// WANConnectivity describes the state of the WAN link.
type WANConnectivity struct {
	IsConnected bool   `json:"isConnected"`
	IPAddress   string `json:"ipAddress"`
	Uptime      int64  `json:"uptime"`
}

// WANStats carries the router's WAN traffic counters.
type WANStats struct {
	BytesReceived     int64     `json:"bytesReceived"`
	BytesSent         int64     `json:"bytesSent"`
	BandwidthUpKbps   int64     `json:"bandwidthUpKbps"`
	BandwidthDownKbps int64     `json:"bandwidthDownKbps"`
	CollectedAt       time.Time `json:"collectedAt"`
}

// RouterAPI is the port to the consumer-grade router the control plane sits
// behind. Implementations authenticate as needed and translate transport
// failures into the router error set.
type RouterAPI interface {
	ListDevices(ctx context.Context) ([]*Device, error)
	WANConnectivity(ctx context.Context) (*WANConnectivity, error)
	WANStats(ctx context.Context) (*WANStats, error)
}
