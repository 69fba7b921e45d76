// Package usecases implements the device scan and listing operations.
package usecases

import (
	"context"
	"time"

	"github.com/helios-home/helios/internal/domain/device"
	"github.com/helios-home/helios/internal/domain/shared"
	"github.com/helios-home/helios/internal/domain/shared/valueobjects"
	"github.com/helios-home/helios/internal/shared/logger"
)

// SyncDevicesUseCase reconciles the router's device list with persisted state.
// It runs as a periodic job; each tick is one transaction, and any row-level
// write failure aborts the whole tick so the next one retries from a clean
// snapshot.
type SyncDevicesUseCase struct {
	uowProvider shared.UnitOfWorkProvider
	devices     device.Repository
	routerAPI   device.RouterAPI
	interval    time.Duration
	logger      logger.Interface
}

// NewSyncDevicesUseCase creates a new SyncDevicesUseCase.
func NewSyncDevicesUseCase(
	uowProvider shared.UnitOfWorkProvider,
	devices device.Repository,
	routerAPI device.RouterAPI,
	interval time.Duration,
	log logger.Interface,
) *SyncDevicesUseCase {
	return &SyncDevicesUseCase{
		uowProvider: uowProvider,
		devices:     devices,
		routerAPI:   routerAPI,
		interval:    interval,
		logger:      log,
	}
}

// Name identifies the job in scheduler logs.
func (uc *SyncDevicesUseCase) Name() string { return "sync-devices" }

// NextExecution schedules the next scan one interval from now.
func (uc *SyncDevicesUseCase) NextExecution() (time.Time, bool) {
	return time.Now().Add(uc.interval), true
}

// Execute performs one scan cycle.
func (uc *SyncDevicesUseCase) Execute(ctx context.Context) error {
	scanned, err := uc.routerAPI.ListDevices(ctx)
	if err != nil {
		return err
	}

	uow, err := uc.uowProvider.Begin(ctx)
	if err != nil {
		return err
	}

	known, err := uc.devices.FetchAll(ctx, uow, nil)
	if err != nil {
		uc.rollback(ctx, uow)
		return err
	}
	knownByMAC := make(map[valueobjects.MACAddress]*device.Device, len(known))
	for _, dev := range known {
		knownByMAC[dev.MACAddress()] = dev
	}

	var created, reconnected, disconnected int
	for _, scan := range scanned {
		existing, ok := knownByMAC[scan.MACAddress()]
		if !ok {
			if err := uc.devices.Create(ctx, uow, scan); err != nil {
				uc.rollback(ctx, uow)
				return err
			}
			created++
			uc.logger.Infow("new device discovered",
				"mac", scan.MACAddress(),
				"name", scan.DisplayName(),
			)
			continue
		}
		delete(knownByMAC, scan.MACAddress())

		wasOnline := existing.IsOnline()
		if err := existing.ApplyScan(scan); err != nil {
			uc.rollback(ctx, uow)
			return err
		}
		if err := uc.devices.Update(ctx, uow, existing); err != nil {
			uc.rollback(ctx, uow)
			return err
		}
		switch {
		case !wasOnline && existing.IsOnline():
			reconnected++
			uc.logger.Infow("device reconnected", "mac", existing.MACAddress())
		case wasOnline && !existing.IsOnline():
			disconnected++
			uc.logger.Infow("device disconnected", "mac", existing.MACAddress())
		}
	}

	// Devices the scan no longer reports are gone from the network.
	scannedAt := time.Now()
	for _, dev := range knownByMAC {
		wasOnline := dev.IsOnline()
		dev.MarkOffline(scannedAt)
		if err := uc.devices.Update(ctx, uow, dev); err != nil {
			uc.rollback(ctx, uow)
			return err
		}
		if wasOnline {
			disconnected++
			uc.logger.Infow("device disconnected", "mac", dev.MACAddress())
		}
	}

	if err := uc.uowProvider.Commit(ctx, uow); err != nil {
		return err
	}

	uc.logger.Debugw("device scan finished",
		"scanned", len(scanned),
		"new", created,
		"reconnected", reconnected,
		"disconnected", disconnected,
	)
	return nil
}

func (uc *SyncDevicesUseCase) rollback(ctx context.Context, uow shared.UnitOfWork) {
	if err := uc.uowProvider.Rollback(ctx, uow); err != nil {
		uc.logger.Errorw("rollback failed", "error", err)
	}
}
