// Package routerapi implements the device.RouterAPI port against consumer
// router firmwares. The only adapter today talks to a Bouygues Bbox.
package routerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	sharedConfig "github.com/helios-home/helios/internal/shared/config"
	"github.com/helios-home/helios/internal/shared/logger"
)

// New builds the router client configured by kind.
func New(cfg *sharedConfig.RouterAPIConfig, log logger.Interface) (device.RouterAPI, error) {
	switch cfg.Kind {
	case "bbox", "":
		return NewBboxClient(cfg.BaseURL, cfg.Password, log)
	}
	return nil, fmt.Errorf("unknown router API kind %q", cfg.Kind)
}

// BboxClient talks to the Bbox local HTTP API. Authenticated endpoints ride on
// a session cookie obtained from /api/v1/login; the client re-authenticates
// transparently when the router forgets the session.
type BboxClient struct {
	httpClient *http.Client
	baseURL    string
	password   string
	logger     logger.Interface

	cookie   string
	cookieMu sync.RWMutex
}

var _ device.RouterAPI = (*BboxClient)(nil)

// NewBboxClient creates a client for the Bbox at baseURL. No request is made
// until the first call; a router that is down at boot only fails that call.
func NewBboxClient(baseURL, password string, log logger.Interface) (*BboxClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("router API base URL is required")
	}
	return &BboxClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		password:   password,
		logger:     log,
	}, nil
}

// flexInt tolerates the Bbox's habit of returning numbers as strings.
type flexInt struct {
	value int64
	valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = flexInt{}
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = flexInt{}
		return nil
	}
	*f = flexInt{value: n, valid: true}
	return nil
}

type bboxHost struct {
	Hostname   string  `json:"hostname"`
	MACAddress string  `json:"macaddress"`
	IPAddress  string  `json:"ipaddress"`
	LastSeen   flexInt `json:"lastseen"`
	Active     int     `json:"active"`
}

type bboxWanIP struct {
	Address    string `json:"address"`
	Gateway    string `json:"gateway"`
	IP6Address []struct {
		IPAddress string `json:"ipaddress"`
	} `json:"ip6address"`
}

type bboxWanStatsItem struct {
	Bytes        flexInt `json:"bytes"`
	Bandwidth    flexInt `json:"bandwidth"`
	MaxBandwidth flexInt `json:"maxBandwidth"`
}

func (c *BboxClient) authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("password", c.password)
	form.Set("remember", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", device.ErrRouterUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", device.ErrRouterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: login rejected", device.ErrRouterAuthFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned status %d", device.ErrRouterInvalidResponse, resp.StatusCode)
	}

	cookie := resp.Header.Get("Set-Cookie")
	if cookie == "" {
		return fmt.Errorf("%w: login response carries no session cookie", device.ErrRouterInvalidResponse)
	}

	c.cookieMu.Lock()
	c.cookie = cookie
	c.cookieMu.Unlock()
	c.logger.Debugw("authenticated against router API")
	return nil
}

// getJSON performs an authenticated GET and decodes into out. A 401 triggers
// one re-authentication and retry; a second 401 is an authentication failure.
func (c *BboxClient) getJSON(ctx context.Context, path string, out any) error {
	for attempt := 0; attempt < 2; attempt++ {
		c.cookieMu.RLock()
		cookie := c.cookie
		c.cookieMu.RUnlock()

		if cookie == "" {
			if err := c.authenticate(ctx); err != nil {
				return err
			}
			c.cookieMu.RLock()
			cookie = c.cookie
			c.cookieMu.RUnlock()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", device.ErrRouterUnavailable, err)
		}
		req.Header.Set("Cookie", cookie)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", device.ErrRouterUnavailable, err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.cookieMu.Lock()
			c.cookie = ""
			c.cookieMu.Unlock()
			if attempt == 1 {
				return fmt.Errorf("%w: session rejected after re-login", device.ErrRouterAuthFailed)
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: %v", device.ErrRouterUnavailable, readErr)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: %s returned status %d", device.ErrRouterInvalidResponse, path, resp.StatusCode)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", device.ErrRouterInvalidResponse, err)
		}
		return nil
	}
	return fmt.Errorf("%w: session rejected after re-login", device.ErrRouterAuthFailed)
}

// ListDevices returns the router's current view of hosts on the network.
func (c *BboxClient) ListDevices(ctx context.Context) ([]*device.Device, error) {
	var payload []struct {
		Hosts struct {
			List []bboxHost `json:"list"`
		} `json:"hosts"`
	}
	if err := c.getJSON(ctx, "/api/v1/hosts", &payload); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: hosts response is empty", device.ErrRouterInvalidResponse)
	}

	hosts := payload[0].Hosts.List
	if len(hosts) == 0 {
		c.logger.Warnw("router API returned an empty device list")
	}

	now := time.Now().UTC()
	devices := make([]*device.Device, 0, len(hosts))
	for _, host := range hosts {
		mac, err := valueobjects.ParseMACAddress(host.MACAddress)
		if err != nil {
			c.logger.Warnw("skipping host with invalid MAC", "mac", host.MACAddress, "error", err)
			continue
		}

		var ip netip.Addr
		if host.IPAddress != "" {
			ip, _ = netip.ParseAddr(host.IPAddress)
		}

		lastSeen := now
		if host.LastSeen.valid {
			lastSeen = now.Add(-time.Duration(host.LastSeen.value) * time.Second)
		}

		dev, err := device.NewScanned(mac, ip, host.Hostname, host.Active == 1, lastSeen, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", device.ErrRouterInvalidResponse, err)
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// WANConnectivity reports the WAN link state.
func (c *BboxClient) WANConnectivity(ctx context.Context) (*device.WANConnectivity, error) {
	var wanPayload []struct {
		WAN struct {
			IP bboxWanIP `json:"ip"`
		} `json:"wan"`
	}
	if err := c.getJSON(ctx, "/api/v1/wan/ip", &wanPayload); err != nil {
		return nil, err
	}
	if len(wanPayload) == 0 {
		return nil, fmt.Errorf("%w: wan/ip response is empty", device.ErrRouterInvalidResponse)
	}

	var infoPayload []struct {
		Device struct {
			Uptime flexInt `json:"uptime"`
		} `json:"device"`
	}
	if err := c.getJSON(ctx, "/api/v1/device", &infoPayload); err != nil {
		return nil, err
	}
	if len(infoPayload) == 0 {
		return nil, fmt.Errorf("%w: device response is empty", device.ErrRouterInvalidResponse)
	}

	ip := wanPayload[0].WAN.IP
	addr, err := netip.ParseAddr(ip.Address)
	connected := err == nil && !addr.IsUnspecified()

	return &device.WANConnectivity{
		IsConnected: connected,
		IPAddress:   ip.Address,
		Uptime:      infoPayload[0].Device.Uptime.value,
	}, nil
}

// WANStats reports the WAN traffic counters.
func (c *BboxClient) WANStats(ctx context.Context) (*device.WANStats, error) {
	var payload []struct {
		WAN struct {
			IP struct {
				Stats struct {
					RX bboxWanStatsItem `json:"rx"`
					TX bboxWanStatsItem `json:"tx"`
				} `json:"stats"`
			} `json:"ip"`
		} `json:"wan"`
	}
	if err := c.getJSON(ctx, "/api/v1/wan/ip/stats", &payload); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: wan/ip/stats response is empty", device.ErrRouterInvalidResponse)
	}

	stats := payload[0].WAN.IP.Stats
	return &device.WANStats{
		BytesReceived:     stats.RX.Bytes.value,
		BytesSent:         stats.TX.Bytes.value,
		BandwidthDownKbps: stats.RX.Bandwidth.value,
		BandwidthUpKbps:   stats.TX.Bandwidth.value,
		CollectedAt:       time.Now().UTC(),
	}, nil
}
