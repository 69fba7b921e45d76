package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-home/helios/internal/application/testutil"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	sharedservices "github.com/helios-home/helios/internal/domain/shared/services"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/shared/errors"
	"github.com/helios-home/helios/internal/shared/logger"
)

func newCreateFixture() (*CreateServiceUseCase, *testutil.ServiceRepository, *testutil.UnitOfWorkProvider) {
	repo := testutil.NewServiceRepository()
	uow := &testutil.UnitOfWorkProvider{}
	uc := NewCreateServiceUseCase(uow, repo, sharedservices.NewTokenGenerator(), logger.NewNop())
	return uc, repo, uow
}

func helloWorldCommand() CreateServiceCommand {
	return CreateServiceCommand{
		DeviceMAC:   "aa:bb:cc:dd:ee:ff",
		DisplayName: "Living room hello",
		Kind:        "hello-world",
		Ports: []PortInput{
			{Name: "HTTP", Port: 8080, TransportProtocol: "TCP", ApplicationProtocol: "HTTP"},
		},
	}
}

func TestCreateServiceSucceeds(t *testing.T) {
	uc, repo, uowp := newCreateFixture()

	result, err := uc.Execute(context.Background(), helloWorldCommand())
	require.NoError(t, err)

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", result.DeviceMAC)
	assert.Equal(t, "Living room hello", result.DisplayName)
	assert.Equal(t, "hello-world", result.Kind)
	assert.True(t, result.IsManaged)
	require.Len(t, result.Ports, 1)
	assert.Equal(t, uint16(8080), result.Ports[0].Port)
	assert.False(t, result.Ports[0].IsOnline)

	assert.Equal(t, 1, uowp.Committed)
	assert.Equal(t, 0, uowp.RolledBck)

	mac, _ := valueobjects.ParseMACAddress("aa:bb:cc:dd:ee:ff")
	stored, err := repo.FetchAllOfDevice(context.Background(), nil, mac)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.GreaterOrEqual(t, len(stored[0].Token()), 32)
}

func TestCreateServiceRejectsDuplicatePortNumbers(t *testing.T) {
	uc, _, uowp := newCreateFixture()

	cmd := CreateServiceCommand{
		DeviceMAC:   "aa:bb:cc:dd:ee:ff",
		DisplayName: "Doubled",
		Kind:        "hello-world2",
		Ports: []PortInput{
			{Name: "HTTP/2", Port: 9000, TransportProtocol: "TCP", ApplicationProtocol: "HTTP"},
			{Name: "HTTP/3", Port: 9000, TransportProtocol: "UDP", ApplicationProtocol: "HTTP"},
		},
	}
	_, err := uc.Execute(context.Background(), cmd)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeDuplicatePortNumber, appErr.Code)
	assert.Equal(t, 0, uowp.Begun)
}

func TestCreateServiceRejectsDuplicatePortTypes(t *testing.T) {
	uc, _, _ := newCreateFixture()

	cmd := CreateServiceCommand{
		DeviceMAC:   "aa:bb:cc:dd:ee:ff",
		DisplayName: "Doubled",
		Kind:        "hello-world2",
		Ports: []PortInput{
			{Name: "HTTP/2", Port: 9000, TransportProtocol: "TCP", ApplicationProtocol: "HTTP"},
			{Name: "HTTP/2", Port: 9001, TransportProtocol: "TCP", ApplicationProtocol: "HTTP"},
		},
	}
	_, err := uc.Execute(context.Background(), cmd)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeDuplicatePortType, appErr.Code)
}

func TestCreateServiceRejectsEmptyPortSet(t *testing.T) {
	uc, _, _ := newCreateFixture()

	cmd := helloWorldCommand()
	cmd.Ports = nil
	_, err := uc.Execute(context.Background(), cmd)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeMissingRequiredPorts, appErr.Code)
}

func TestCreateServiceRejectsTemplateMismatch(t *testing.T) {
	uc, _, _ := newCreateFixture()

	// hello-world2 requires two ports; submitting only one is a mismatch.
	cmd := helloWorldCommand()
	cmd.Kind = "hello-world2"
	_, err := uc.Execute(context.Background(), cmd)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeInvalidPortConfiguration, appErr.Code)
}

func TestCreateServiceRejectsUnknownKind(t *testing.T) {
	uc, _, _ := newCreateFixture()

	cmd := helloWorldCommand()
	cmd.Kind = "time-machine"
	_, err := uc.Execute(context.Background(), cmd)

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodePayloadValidationFailed, appErr.Code)
}

func TestCreateServiceRejectsEquivalentPortSet(t *testing.T) {
	uc, repo, uowp := newCreateFixture()

	mac, _ := valueobjects.ParseMACAddress("aa:bb:cc:dd:ee:ff")
	existing, err := service.NewService(mac, "First", service.KindHelloWorld,
		[]service.PortTemplate{
			{Name: "HTTP", Port: 8080, TransportProtocol: service.TransportTCP, ApplicationProtocol: service.ApplicationHTTP},
		},
		sharedservices.NewTokenGenerator().Generate)
	require.NoError(t, err)
	repo.Seed(existing)

	_, err = uc.Execute(context.Background(), helloWorldCommand())

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeServiceAlreadyExists, appErr.Code)
	assert.Equal(t, 1, uowp.RolledBck)

	// A different port number is a different service.
	cmd := helloWorldCommand()
	cmd.Ports[0].Port = 8081
	_, err = uc.Execute(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestCreateServiceTranslatesUniqueViolation(t *testing.T) {
	uc, repo, _ := newCreateFixture()
	repo.CreateErr = shared.ErrUniqueViolation

	_, err := uc.Execute(context.Background(), helloWorldCommand())

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeServiceAlreadyExists, appErr.Code)
}

func TestCreateServiceTranslatesUnknownDevice(t *testing.T) {
	uc, repo, uowp := newCreateFixture()
	repo.CreateErr = shared.ErrForeignKeyViolation

	_, err := uc.Execute(context.Background(), helloWorldCommand())

	appErr := errors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.CodeResourceFKViolation, appErr.Code)
	assert.Equal(t, 1, uowp.RolledBck)
}
