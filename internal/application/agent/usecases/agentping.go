package usecases

import (
	"context"
	"time"

	"github.com/helios-home/helios/internal/domain/agent"
	"github.com/helios-home/helios/internal/shared/logger"
)

// AgentPingUseCase periodically broadcasts a ping event. Each connection runs
// its own liveness round and closes itself when the agent stays silent.
type AgentPingUseCase struct {
	connections agent.ConnectionManager
	interval    time.Duration
	logger      logger.Interface
}

// NewAgentPingUseCase creates a new AgentPingUseCase.
func NewAgentPingUseCase(connections agent.ConnectionManager, interval time.Duration, log logger.Interface) *AgentPingUseCase {
	return &AgentPingUseCase{
		connections: connections,
		interval:    interval,
		logger:      log,
	}
}

// Name identifies the job in scheduler logs.
func (uc *AgentPingUseCase) Name() string { return "agent-ping" }

// NextExecution schedules the next ping round one interval from now.
func (uc *AgentPingUseCase) NextExecution() (time.Time, bool) {
	return time.Now().Add(uc.interval), true
}

// Execute publishes one ping event to every connected agent.
func (uc *AgentPingUseCase) Execute(ctx context.Context) error {
	if err := uc.connections.Broadcast(ctx, agent.PingEvent{}); err != nil {
		return err
	}
	uc.logger.Debugw("agent ping broadcast")
	return nil
}
