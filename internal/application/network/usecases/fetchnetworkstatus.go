// Package usecases implements the network status queries.
package usecases

import (
	"context"

	"github.com/helios-home/helios/internal/application/network/dto"
	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/shared/logger"
)

// StatusCache stores the last WAN snapshot. Get reports a miss with
// (nil, nil).
type StatusCache interface {
	Get(ctx context.Context) (*dto.NetworkStatusDTO, error)
	Set(ctx context.Context, status *dto.NetworkStatusDTO) error
}

// FetchNetworkStatusUseCase reads WAN connectivity and traffic counters from
// the router, short-circuiting through the cache between scan ticks.
type FetchNetworkStatusUseCase struct {
	routerAPI device.RouterAPI
	cache     StatusCache
	logger    logger.Interface
}

// NewFetchNetworkStatusUseCase creates a new FetchNetworkStatusUseCase. The
// cache is optional.
func NewFetchNetworkStatusUseCase(routerAPI device.RouterAPI, cache StatusCache, log logger.Interface) *FetchNetworkStatusUseCase {
	return &FetchNetworkStatusUseCase{
		routerAPI: routerAPI,
		cache:     cache,
		logger:    log,
	}
}

// Execute returns the WAN snapshot. Connectivity and stats are fetched
// independently; a partial result is returned as long as one side succeeds.
func (uc *FetchNetworkStatusUseCase) Execute(ctx context.Context) (*dto.NetworkStatusDTO, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warnw("network status cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	connectivity, connErr := uc.routerAPI.WANConnectivity(ctx)
	stats, statsErr := uc.routerAPI.WANStats(ctx)

	if connErr != nil && statsErr != nil {
		uc.logger.Errorw("failed to fetch network status", "error", connErr)
		return nil, connErr
	}
	if connErr != nil {
		uc.logger.Warnw("failed to fetch WAN connectivity", "error", connErr)
	}
	if statsErr != nil {
		uc.logger.Warnw("failed to fetch WAN stats", "error", statsErr)
	}

	status := &dto.NetworkStatusDTO{
		Connectivity: dto.ConnectivityFromDomain(connectivity),
		Stats:        dto.StatsFromDomain(stats),
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, status); err != nil {
			uc.logger.Warnw("network status cache write failed", "error", err)
		}
	}
	return status, nil
}
