package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-home/helios/internal/application/testutil"
	"github.com/helios-home/helios/internal/domain/service"
	sharedservices "github.com/helios-home/helios/internal/domain/shared/services"
	"github.com/helios-home/helios/internal/shared/logger"
)

func TestListDevicesPaginates(t *testing.T) {
	repo := testutil.NewDeviceRepository()
	repo.Seed(scannedDevice(t, "aa:00:00:00:00:01", "192.168.1.1", "one", true))
	repo.Seed(scannedDevice(t, "aa:00:00:00:00:02", "192.168.1.2", "two", true))
	repo.Seed(scannedDevice(t, "aa:00:00:00:00:03", "192.168.1.3", "three", false))

	uc := NewListDevicesUseCase(&testutil.UnitOfWorkProvider{}, repo, testutil.NewServiceRepository(), logger.NewNop())

	result, err := uc.Execute(context.Background(), ListDevicesQuery{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 2, result.Page)
	require.Len(t, result.Devices, 1)
	assert.Equal(t, "aa:00:00:00:00:03", result.Devices[0].MACAddress)
}

func TestListDevicesFullAttachesServices(t *testing.T) {
	devices := testutil.NewDeviceRepository()
	devices.Seed(scannedDevice(t, "aa:00:00:00:00:01", "192.168.1.1", "nas", true))

	services := testutil.NewServiceRepository()
	svc, err := service.NewService(mustMAC(t, "aa:00:00:00:00:01"), "Hello on the NAS",
		service.KindHelloWorld,
		[]service.PortTemplate{
			{Name: "HTTP", Port: 8080, TransportProtocol: service.TransportTCP, ApplicationProtocol: service.ApplicationHTTP},
		},
		sharedservices.NewTokenGenerator().Generate)
	require.NoError(t, err)
	services.Seed(svc)

	uc := NewListDevicesUseCase(&testutil.UnitOfWorkProvider{}, devices, services, logger.NewNop())

	result, err := uc.Execute(context.Background(), ListDevicesQuery{Full: true})
	require.NoError(t, err)

	require.Len(t, result.Devices, 1)
	require.Len(t, result.Devices[0].Services, 1)
	assert.Equal(t, "Hello on the NAS", result.Devices[0].Services[0].DisplayName)

	// Without the full flag the services stay empty.
	result, err = uc.Execute(context.Background(), ListDevicesQuery{})
	require.NoError(t, err)
	require.Len(t, result.Devices, 1)
	assert.Empty(t, result.Devices[0].Services)
}
