package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helios-home/helios/internal/application/testutil"
	"github.com/helios-home/helios/internal/domain/service"
	sharedservices "github.com/helios-home/helios/internal/domain/shared/services"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/infrastructure/acm"
	"github.com/helios-home/helios/internal/protocol"
	"github.com/helios-home/helios/internal/shared/logger"
)

// pipeStream is an in-memory FrameStream half backed by unbuffered channels.
type pipeStream struct {
	in   <-chan string
	out  chan<- string
	done chan struct{}
	once *sync.Once
}

func newPipe() (*pipeStream, *pipeStream) {
	a := make(chan string)
	b := make(chan string)
	done := make(chan struct{})
	once := &sync.Once{}
	left := &pipeStream{in: a, out: b, done: done, once: once}
	right := &pipeStream{in: b, out: a, done: done, once: once}
	return left, right
}

func (p *pipeStream) ReadFrame(ctx context.Context) (string, error) {
	select {
	case frame := <-p.in:
		return frame, nil
	case <-p.done:
		return "", protocol.ErrStreamClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeStream) WriteFrame(ctx context.Context, frame string) error {
	select {
	case p.out <- frame:
		return nil
	case <-p.done:
		return protocol.ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeStream) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func newConnectionFixture(t *testing.T) (*HandleAgentConnectionUseCase, *acm.Manager, *service.Service) {
	t.Helper()

	repo := testutil.NewServiceRepository()
	mac, err := valueobjects.ParseMACAddress("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	svc, err := service.NewService(mac, "Hello", service.KindHelloWorld,
		[]service.PortTemplate{
			{Name: "HTTP", Port: 8080, TransportProtocol: service.TransportTCP, ApplicationProtocol: service.ApplicationHTTP},
		},
		sharedservices.NewTokenGenerator().Generate)
	require.NoError(t, err)
	repo.Seed(svc)

	manager := acm.NewManager(logger.NewNop())
	uc := NewHandleAgentConnectionUseCase(&testutil.UnitOfWorkProvider{}, repo, manager, logger.NewNop())
	return uc, manager, svc
}

func TestHandleAgentConnectionLifecycle(t *testing.T) {
	uc, manager, svc := newConnectionFixture(t)
	server, client := newPipe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- uc.Execute(ctx, server) }()

	require.NoError(t, protocol.InitiateHandshake(ctx, client, svc.ServiceID(), svc.Token()))

	require.Eventually(t, func() bool {
		return len(manager.Connected()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, svc.ServiceID(), manager.Connected()[0])

	require.NoError(t, client.Close())
	select {
	case err := <-done:
		require.Error(t, err)
	case <-ctx.Done():
		t.Fatal("connection did not terminate")
	}

	// The registration is released on exit, a reconnect may proceed.
	assert.Empty(t, manager.Connected())
}

func TestHandleAgentConnectionWrongToken(t *testing.T) {
	uc, manager, svc := newConnectionFixture(t)
	server, client := newPipe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- uc.Execute(ctx, server) }()

	err := protocol.InitiateHandshake(ctx, client, svc.ServiceID(), "wrong-token")
	require.ErrorIs(t, err, protocol.ErrHandshakeFailed)

	select {
	case err := <-done:
		require.ErrorIs(t, err, protocol.ErrHandshakeFailed)
	case <-ctx.Done():
		t.Fatal("connection did not terminate")
	}
	assert.Empty(t, manager.Connected())
}

func TestHandleAgentConnectionUnknownService(t *testing.T) {
	uc, _, svc := newConnectionFixture(t)
	server, client := newPipe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- uc.Execute(ctx, server) }()

	unknown := svc.ServiceID()
	unknown[0] ^= 0xff
	err := protocol.InitiateHandshake(ctx, client, unknown, svc.Token())
	require.ErrorIs(t, err, protocol.ErrHandshakeFailed)

	select {
	case err := <-done:
		require.ErrorIs(t, err, protocol.ErrAgentNotFound)
	case <-ctx.Done():
		t.Fatal("connection did not terminate")
	}
}

func TestHandleAgentConnectionDuplicateIsRefused(t *testing.T) {
	uc, manager, svc := newConnectionFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// First connection holds the registration.
	_, err := manager.Register(ctx, svc.ServiceID())
	require.NoError(t, err)

	server, client := newPipe()
	done := make(chan error, 1)
	go func() { done <- uc.Execute(ctx, server) }()

	require.NoError(t, protocol.InitiateHandshake(ctx, client, svc.ServiceID(), svc.Token()))

	frame, err := client.ReadFrame(ctx)
	require.NoError(t, err)
	msg, err := protocol.Decode(frame)
	require.NoError(t, err)
	assert.IsType(t, protocol.AlreadyConnected{}, msg.Body)

	select {
	case err := <-done:
		require.ErrorIs(t, err, protocol.ErrAlreadyConnected)
	case <-ctx.Done():
		t.Fatal("connection did not terminate")
	}

	// The original registration survives.
	require.Len(t, manager.Connected(), 1)
}

func TestAgentPingJob(t *testing.T) {
	connections := testutil.NewConnectionManager()
	uc := NewAgentPingUseCase(connections, 15*time.Second, logger.NewNop())

	assert.Equal(t, "agent-ping", uc.Name())
	next, ok := uc.NextExecution()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(15*time.Second), next, time.Second)

	require.NoError(t, uc.Execute(context.Background()))
	require.NoError(t, uc.Execute(context.Background()))
	assert.Equal(t, 2, connections.BroadcastCount())
}
