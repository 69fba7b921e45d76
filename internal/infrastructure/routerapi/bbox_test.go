package routerapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/shared/logger"
)

// fakeBbox mimics the router's local API closely enough for the client:
// cookie-based login and the versioned JSON endpoints, numbers sometimes
// encoded as strings.
func fakeBbox(t *testing.T, password string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var logins atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("password") != password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		logins.Add(1)
		w.Header().Set("Set-Cookie", "BBOX_ID=session-1; Path=/")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v1/hosts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"hosts":{"list":[
			{"hostname":"living-room-pi","macaddress":"AA:BB:CC:DD:EE:01","ipaddress":"192.168.1.10","lastseen":"42","active":1},
			{"hostname":"old-laptop","macaddress":"aa:bb:cc:dd:ee:02","ipaddress":"192.168.1.11","lastseen":86400,"active":0}
		]}}]`))
	})
	mux.HandleFunc("/api/v1/wan/ip", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"wan":{"ip":{"address":"82.64.12.7","gateway":"82.64.12.1","ip6address":[]}}}]`))
	})
	mux.HandleFunc("/api/v1/device", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"device":{"uptime":"3600"}}]`))
	})
	mux.HandleFunc("/api/v1/wan/ip/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"wan":{"ip":{"stats":{
			"rx":{"bytes":"123456789","bandwidth":500000},
			"tx":{"bytes":987654,"bandwidth":"40000"}
		}}}}]`))
	})

	return httptest.NewServer(mux), &logins
}

func TestBboxListDevices(t *testing.T) {
	srv, _ := fakeBbox(t, "hunter2")
	defer srv.Close()

	client, err := NewBboxClient(srv.URL, "hunter2", logger.NewNop())
	require.NoError(t, err)

	devices, err := client.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "aa:bb:cc:dd:ee:01", devices[0].MACAddress().String())
	assert.Equal(t, "living-room-pi", devices[0].DisplayName())
	assert.True(t, devices[0].IsOnline())
	assert.Equal(t, "192.168.1.10", devices[0].LastKnownIP().String())

	assert.False(t, devices[1].IsOnline())
	assert.True(t, devices[1].LastSeen().Before(devices[0].LastSeen()))
}

func TestBboxReauthenticatesOnce(t *testing.T) {
	srv, logins := fakeBbox(t, "hunter2")
	defer srv.Close()

	client, err := NewBboxClient(srv.URL, "hunter2", logger.NewNop())
	require.NoError(t, err)

	_, err = client.ListDevices(context.Background())
	require.NoError(t, err)

	// A second call reuses the session instead of logging in again.
	_, err = client.WANStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), logins.Load())
}

func TestBboxWrongPassword(t *testing.T) {
	srv, _ := fakeBbox(t, "hunter2")
	defer srv.Close()

	client, err := NewBboxClient(srv.URL, "wrong", logger.NewNop())
	require.NoError(t, err)

	_, err = client.ListDevices(context.Background())
	assert.True(t, errors.Is(err, device.ErrRouterAuthFailed))
}

func TestBboxRouterDown(t *testing.T) {
	srv, _ := fakeBbox(t, "hunter2")
	srv.Close()

	client, err := NewBboxClient(srv.URL, "hunter2", logger.NewNop())
	require.NoError(t, err)

	_, err = client.ListDevices(context.Background())
	assert.True(t, errors.Is(err, device.ErrRouterUnavailable))
}

func TestBboxWANStats(t *testing.T) {
	srv, _ := fakeBbox(t, "hunter2")
	defer srv.Close()

	client, err := NewBboxClient(srv.URL, "hunter2", logger.NewNop())
	require.NoError(t, err)

	stats, err := client.WANStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), stats.BytesReceived)
	assert.Equal(t, int64(987654), stats.BytesSent)
	assert.Equal(t, int64(500000), stats.BandwidthDownKbps)
	assert.Equal(t, int64(40000), stats.BandwidthUpKbps)
}

func TestBboxWANConnectivity(t *testing.T) {
	srv, _ := fakeBbox(t, "hunter2")
	defer srv.Close()

	client, err := NewBboxClient(srv.URL, "hunter2", logger.NewNop())
	require.NoError(t, err)

	conn, err := client.WANConnectivity(context.Background())
	require.NoError(t, err)
	assert.True(t, conn.IsConnected)
	assert.Equal(t, "82.64.12.7", conn.IPAddress)
	assert.Equal(t, int64(3600), conn.Uptime)
}
