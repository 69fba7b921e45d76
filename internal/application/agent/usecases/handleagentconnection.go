// Package usecases implements the agent-facing control plane operations.
package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/agent"
	"github.com/helios-home/helios/internal/domain/service"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/protocol"
	"github.com/helios-home/helios/internal/shared/logger"
)

// HandleAgentConnectionUseCase owns the full lifetime of one agent
// connection: handshake, registration, steady-state session, unregistration.
// The registration is released on every exit path; a leaked entry would wedge
// the service id until restart.
type HandleAgentConnectionUseCase struct {
	uowProvider shared.UnitOfWorkProvider
	services    service.Repository
	connections agent.ConnectionManager
	logger      logger.Interface
}

// NewHandleAgentConnectionUseCase creates a new HandleAgentConnectionUseCase.
func NewHandleAgentConnectionUseCase(
	uowProvider shared.UnitOfWorkProvider,
	services service.Repository,
	connections agent.ConnectionManager,
	log logger.Interface,
) *HandleAgentConnectionUseCase {
	return &HandleAgentConnectionUseCase{
		uowProvider: uowProvider,
		services:    services,
		connections: connections,
		logger:      log,
	}
}

// Execute drives the connection until it ends. The stream is closed before
// returning.
func (uc *HandleAgentConnectionUseCase) Execute(ctx context.Context, stream protocol.FrameStream) error {
	defer func() {
		if err := stream.Close(); err != nil {
			uc.logger.Debugw("stream close failed", "error", err)
		}
	}()

	serviceID, err := protocol.AcceptHandshake(ctx, stream, uc.resolveToken)
	if err != nil {
		uc.logger.Infow("agent handshake failed", "error", err)
		return err
	}
	log := uc.logger.With("service_id", serviceID)

	receivers, err := uc.connections.Register(ctx, serviceID)
	if err != nil {
		if stderrors.Is(err, agent.ErrAgentAlreadyRegistered) {
			log.Warnw("rejecting duplicate agent connection")
			if sendErr := protocol.Send(ctx, stream, protocol.NewMessage(protocol.AlreadyConnected{})); sendErr != nil {
				return sendErr
			}
			return protocol.ErrAlreadyConnected
		}
		return err
	}
	defer func() {
		if err := uc.connections.Unregister(context.WithoutCancel(ctx), serviceID); err != nil {
			log.Errorw("failed to unregister agent", "error", err)
		}
	}()

	log.Infow("agent connected")
	err = protocol.NewServerSession(stream, log).Run(ctx, receivers)
	log.Infow("agent disconnected", "reason", err)
	return err
}

// resolveToken fetches the token of the claimed service in its own read-only
// unit of work.
func (uc *HandleAgentConnectionUseCase) resolveToken(ctx context.Context, serviceID uuid.UUID) (string, error) {
	uow, err := uc.uowProvider.Begin(ctx)
	if err != nil {
		return "", err
	}

	svc, err := uc.services.FetchOne(ctx, uow, serviceID)
	if err != nil {
		if rbErr := uc.uowProvider.Rollback(ctx, uow); rbErr != nil {
			uc.logger.Errorw("rollback failed", "error", rbErr)
		}
		if stderrors.Is(err, shared.ErrNotFound) {
			return "", protocol.ErrAgentNotFound
		}
		return "", fmt.Errorf("failed to resolve service token: %w", err)
	}

	if err := uc.uowProvider.Commit(ctx, uow); err != nil {
		return "", err
	}
	return svc.Token(), nil
}
