package usecases

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-home/helios/internal/application/testutil"
	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/shared/logger"
)

func scannedDevice(t *testing.T, macStr, ipStr, name string, online bool) *device.Device {
	t.Helper()

	mac, err := valueobjects.ParseMACAddress(macStr)
	require.NoError(t, err)
	ip := netip.Addr{}
	if ipStr != "" {
		ip, err = netip.ParseAddr(ipStr)
		require.NoError(t, err)
	}
	now := time.Now()
	dev, err := device.NewScanned(mac, ip, name, online, now, now)
	require.NoError(t, err)
	return dev
}

func mustMAC(t *testing.T, s string) valueobjects.MACAddress {
	t.Helper()
	mac, err := valueobjects.ParseMACAddress(s)
	require.NoError(t, err)
	return mac
}

func TestSyncDevicesReconciles(t *testing.T) {
	repo := testutil.NewDeviceRepository()
	repo.Seed(scannedDevice(t, "aa:00:00:00:00:0a", "192.168.1.10", "device-a", true))
	repo.Seed(scannedDevice(t, "aa:00:00:00:00:0b", "192.168.1.11", "device-b", true))

	router := &testutil.RouterAPI{Devices: []*device.Device{
		scannedDevice(t, "aa:00:00:00:00:0a", "192.168.1.20", "device-a", true),
		scannedDevice(t, "aa:00:00:00:00:0c", "192.168.1.12", "device-c", true),
	}}

	uc := NewSyncDevicesUseCase(&testutil.UnitOfWorkProvider{}, repo, router, time.Minute, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background()))

	a := repo.Get(mustMAC(t, "aa:00:00:00:00:0a"))
	require.NotNil(t, a)
	assert.True(t, a.IsOnline())
	assert.Equal(t, "192.168.1.20", a.LastKnownIP().String())

	b := repo.Get(mustMAC(t, "aa:00:00:00:00:0b"))
	require.NotNil(t, b)
	assert.False(t, b.IsOnline())

	c := repo.Get(mustMAC(t, "aa:00:00:00:00:0c"))
	require.NotNil(t, c)
	assert.True(t, c.IsOnline())
}

func TestSyncDevicesPreservesCustomNames(t *testing.T) {
	repo := testutil.NewDeviceRepository()
	mac := mustMAC(t, "aa:00:00:00:00:0a")
	now := time.Now()
	repo.Seed(device.Reconstruct(mac, netip.MustParseAddr("192.168.1.10"),
		"Kitchen tablet", true, "", true, now, now))

	router := &testutil.RouterAPI{Devices: []*device.Device{
		scannedDevice(t, "aa:00:00:00:00:0a", "192.168.1.10", "android-3f2a", true),
	}}

	uc := NewSyncDevicesUseCase(&testutil.UnitOfWorkProvider{}, repo, router, time.Minute, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background()))

	stored := repo.Get(mac)
	require.NotNil(t, stored)
	assert.Equal(t, "Kitchen tablet", stored.DisplayName())
	assert.True(t, stored.IsNameCustom())
}

func TestSyncDevicesIsIdempotent(t *testing.T) {
	repo := testutil.NewDeviceRepository()
	router := &testutil.RouterAPI{Devices: []*device.Device{
		scannedDevice(t, "aa:00:00:00:00:0a", "192.168.1.10", "device-a", true),
		scannedDevice(t, "aa:00:00:00:00:0b", "192.168.1.11", "device-b", false),
	}}

	uc := NewSyncDevicesUseCase(&testutil.UnitOfWorkProvider{}, repo, router, time.Minute, logger.NewNop())
	require.NoError(t, uc.Execute(context.Background()))
	require.NoError(t, uc.Execute(context.Background()))

	count, err := repo.CountAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	a := repo.Get(mustMAC(t, "aa:00:00:00:00:0a"))
	require.NotNil(t, a)
	assert.True(t, a.IsOnline())
	b := repo.Get(mustMAC(t, "aa:00:00:00:00:0b"))
	require.NotNil(t, b)
	assert.False(t, b.IsOnline())
}

func TestSyncDevicesAbortsOnWriteFailure(t *testing.T) {
	repo := testutil.NewDeviceRepository()
	repo.CreateErr = errors.New("disk full")
	router := &testutil.RouterAPI{Devices: []*device.Device{
		scannedDevice(t, "aa:00:00:00:00:0a", "192.168.1.10", "device-a", true),
	}}
	uowp := &testutil.UnitOfWorkProvider{}

	uc := NewSyncDevicesUseCase(uowp, repo, router, time.Minute, logger.NewNop())
	err := uc.Execute(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, uowp.RolledBck)
	assert.Equal(t, 0, uowp.Committed)
}

func TestSyncDevicesSkipsWriteWhenRouterUnavailable(t *testing.T) {
	repo := testutil.NewDeviceRepository()
	router := &testutil.RouterAPI{DevicesErr: device.ErrRouterUnavailable}
	uowp := &testutil.UnitOfWorkProvider{}

	uc := NewSyncDevicesUseCase(uowp, repo, router, time.Minute, logger.NewNop())
	err := uc.Execute(context.Background())

	require.ErrorIs(t, err, device.ErrRouterUnavailable)
	assert.Equal(t, 0, uowp.Begun)
}

func TestSyncDevicesJobCadence(t *testing.T) {
	uc := NewSyncDevicesUseCase(&testutil.UnitOfWorkProvider{}, testutil.NewDeviceRepository(),
		&testutil.RouterAPI{}, 45*time.Second, logger.NewNop())

	assert.Equal(t, "sync-devices", uc.Name())
	next, ok := uc.NextExecution()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(45*time.Second), next, time.Second)
}
